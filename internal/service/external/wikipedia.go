package external

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"minote/internal/domain"
	extsvc "minote/internal/domain/services/external"
)

const wikipediaUserAgent = "MiNote/1.0 (Educational Literature App)"

// wikipediaClient looks up page summaries via the Wikipedia REST API.
type wikipediaClient struct {
	httpClient *http.Client
	logger     *slog.Logger

	// baseURL overrides the per-language endpoint when set (tests).
	baseURL string
}

// NewWikipediaClient creates a summary client against the public REST API.
func NewWikipediaClient(logger *slog.Logger) extsvc.SummaryClient {
	return &wikipediaClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type wikipediaSummaryResponse struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// Summary fetches the page summary for query. Missing pages, disambiguation
// pages and pages without an extract all return (nil, nil).
func (c *wikipediaClient) Summary(ctx context.Context, query, lang string) (*extsvc.Summary, error) {
	if lang == "" {
		lang = "vi"
	}

	base := c.baseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.wikipedia.org/api/rest_v1", lang)
	}
	apiURL := fmt.Sprintf("%s/page/summary/%s", base, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", wikipediaUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: wikipedia request: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("wikipedia page not found", "query", query, "lang", lang, "status", resp.StatusCode)
		return nil, nil
	}

	var data wikipediaSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: wikipedia decode: %v", domain.ErrExternalService, err)
	}

	if data.Type == "disambiguation" || data.Type == "no-extract" || data.Extract == "" {
		return nil, nil
	}

	return &extsvc.Summary{
		Title:     data.Title,
		Extract:   data.Extract,
		URL:       data.ContentURLs.Desktop.Page,
		Thumbnail: data.Thumbnail.Source,
	}, nil
}
