package external

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestWikipediaClient(baseURL string) *wikipediaClient {
	return &wikipediaClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     testLogger(),
		baseURL:    baseURL,
	}
}

func TestSummary_ReturnsPageSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != wikipediaUserAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"type": "standard",
			"title": "Nguyễn Du",
			"extract": "Nguyễn Du là đại thi hào dân tộc Việt Nam.",
			"content_urls": {"desktop": {"page": "https://vi.wikipedia.org/wiki/Nguy%E1%BB%85n_Du"}},
			"thumbnail": {"source": "https://upload.wikimedia.org/nguyen-du.jpg"}
		}`)
	}))
	defer server.Close()

	client := newTestWikipediaClient(server.URL)

	summary, err := client.Summary(context.Background(), "Nguyễn Du", "vi")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary == nil {
		t.Fatal("expected a summary")
	}
	if summary.Title != "Nguyễn Du" {
		t.Errorf("unexpected title %q", summary.Title)
	}
	if summary.Extract == "" || summary.URL == "" || summary.Thumbnail == "" {
		t.Errorf("incomplete summary: %+v", summary)
	}
}

func TestSummary_NotFoundIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestWikipediaClient(server.URL)

	summary, err := client.Summary(context.Background(), "Không Tồn Tại", "vi")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary != nil {
		t.Errorf("expected nil summary, got %+v", summary)
	}
}

func TestSummary_DisambiguationIsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"type": "disambiguation", "title": "Hương", "extract": "Hương có thể là:"}`)
	}))
	defer server.Close()

	client := newTestWikipediaClient(server.URL)

	summary, err := client.Summary(context.Background(), "Hương", "vi")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary != nil {
		t.Errorf("expected nil summary for disambiguation, got %+v", summary)
	}
}
