package external

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"minote/internal/config"
	"minote/internal/domain"
	"minote/internal/domain/models"
	"minote/internal/domain/repositories"
	extsvc "minote/internal/domain/services/external"
)

// sheetIDPattern pulls the spreadsheet id out of an export URL of the form
// https://docs.google.com/spreadsheets/d/{SHEET_ID}/export?format=csv
var sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// sheetCache is the time-boxed cache over a published-as-CSV spreadsheet.
type sheetCache struct {
	csvURL     string
	freshness  time.Duration
	repo       repositories.ExternalDataRepository
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSheetCache builds the cache for csvURL. An empty csvURL disables the
// source entirely; GetOrFetch then always reports no data.
func NewSheetCache(csvURL string, repo repositories.ExternalDataRepository, logger *slog.Logger) extsvc.SheetCache {
	return &sheetCache{
		csvURL:     strings.TrimSpace(csvURL),
		freshness:  config.SheetCacheFreshness,
		repo:       repo,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// GetOrFetch returns the formatted sheet content, cache-first. A cache entry
// younger than the freshness window short-circuits the network fetch.
func (s *sheetCache) GetOrFetch(ctx context.Context, userID string) (string, error) {
	if s.csvURL == "" {
		return "", nil
	}

	sourceID := extractSheetID(s.csvURL)

	cached, err := s.repo.GetBySource(ctx, models.SourceGoogleSheet, sourceID)
	if err == nil && time.Since(cached.LastSyncedAt) < s.freshness {
		return cached.Content, nil
	}

	content, err := s.fetchAndFormat(ctx)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", nil
	}

	entry := &models.ExternalDataEntry{
		UserID:       userID,
		Source:       models.SourceGoogleSheet,
		SourceID:     sourceID,
		Name:         "Sheet: " + sourceID,
		Content:      content,
		LastSyncedAt: time.Now(),
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		// A failed cache write does not invalidate the fetched data.
		s.logger.Warn("failed to cache sheet data", "source_id", sourceID, "error", err)
	}

	return content, nil
}

// fetchAndFormat downloads the CSV export and reformats it for prompting.
func (s *sheetCache) fetchAndFormat(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.csvURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sheet fetch: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: sheet fetch: %s", domain.ErrExternalService, resp.Status)
	}

	rows, err := parseCSV(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: sheet parse: %v", domain.ErrExternalService, err)
	}
	if len(rows) == 0 {
		return "", nil
	}

	return formatSheetData(rows), nil
}

// parseCSV reads the whole response as rows, tolerating ragged row lengths.
func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		empty := true
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
			if record[i] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, record)
		}
	}
	return rows, nil
}

// formatSheetData renders the rows for the model. A two-column sheet is
// presented as a question/answer list, anything else as a delimited table.
func formatSheetData(rows [][]string) string {
	headers := rows[0]
	dataRows := rows[1:]

	var b strings.Builder
	b.WriteString("=== KNOWLEDGE BASE DATA ===\n\n")

	if len(headers) == 2 {
		b.WriteString(fmt.Sprintf("%s | %s\n", headers[0], headers[1]))
		b.WriteString("---\n")
		for _, row := range dataRows {
			if len(row) >= 2 && row[0] != "" && row[1] != "" {
				b.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", row[0], row[1]))
			}
		}
	} else {
		b.WriteString(strings.Join(headers, " | ") + "\n")
		separators := make([]string, len(headers))
		for i := range separators {
			separators[i] = "---"
		}
		b.WriteString(strings.Join(separators, " | ") + "\n")
		for _, row := range dataRows {
			if len(row) > 0 {
				b.WriteString(strings.Join(row, " | ") + "\n")
			}
		}
	}

	b.WriteString("\n=== END KNOWLEDGE BASE ===\n")

	return b.String()
}

// extractSheetID falls back to a fixed id when the URL has no /d/ segment so
// that such URLs still share one cache slot.
func extractSheetID(url string) string {
	if match := sheetIDPattern.FindStringSubmatch(url); match != nil {
		return match[1]
	}
	return "default"
}
