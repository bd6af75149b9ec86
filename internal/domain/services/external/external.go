package external

import (
	"context"
)

// SheetCache is the time-boxed cache over the configured spreadsheet source.
type SheetCache interface {
	// GetOrFetch returns the formatted sheet content, refreshing the cache
	// entry when it is stale. It returns ("", nil) when no source is
	// configured and ("", err) on fetch/parse failure; callers treat both
	// as "no supplementary data available".
	GetOrFetch(ctx context.Context, userID string) (string, error)
}

// Summary is an encyclopedia page summary.
type Summary struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	URL       string `json:"url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// SummaryClient looks up short encyclopedia summaries for proper names.
type SummaryClient interface {
	// Summary returns (nil, nil) for pages that do not exist or have no
	// usable extract (disambiguation pages included).
	Summary(ctx context.Context, query, lang string) (*Summary, error)
}

// CandidateExtractor pulls encyclopedia lookup candidates out of a user's
// raw message text. The default implementation is a capitalization heuristic
// tuned for Vietnamese literature questions; keeping it behind an interface
// lets it be swapped for a real entity recognizer without touching the
// conversation pipeline.
type CandidateExtractor interface {
	// Candidates returns up to max candidate proper names, best first, or
	// nothing when the text does not look like it needs a lookup.
	Candidates(text string, max int) []string
}
