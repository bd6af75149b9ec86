package config

import "time"

const (
	// MaxDocumentTitleLength caps document titles. 255 fits comfortably in
	// the sidebar and in a VARCHAR(255) column.
	MaxDocumentTitleLength = 255

	// MaxSessionTitleLength caps chat session titles.
	MaxSessionTitleLength = 255

	// HistoryWindow is how many of a session's most recent messages are
	// replayed to the provider. Older turns are dropped, never newer ones.
	HistoryWindow = 20

	// MaxDocumentExcerptChars caps the content of each tagged document
	// inlined into the prompt; overflow is truncated with an ellipsis.
	MaxDocumentExcerptChars = 3000

	// MaxEncyclopediaLookups caps supplemental summary lookups per turn.
	MaxEncyclopediaLookups = 2

	// GenerateMaxTokens and GenerateTemperature are the fixed generation
	// parameters for conversational replies.
	GenerateMaxTokens   = 4000
	GenerateTemperature = 0.7

	// TitleMaxRunes is the hard cap on auto-generated session titles;
	// TitleTruncateRunes is where overflowing titles are cut before the
	// ellipsis marker.
	TitleMaxRunes      = 105
	TitleTruncateRunes = 100

	// SheetCacheFreshness is how long a cached sheet snapshot stays valid.
	SheetCacheFreshness = 5 * time.Minute

	// UploadURLExpiry and DownloadURLExpiry bound presigned object URLs.
	UploadURLExpiry   = 15 * time.Minute
	DownloadURLExpiry = time.Hour
)
