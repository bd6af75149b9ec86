package postgres

import "fmt"

// TableNames holds dynamically prefixed table names. Each environment gets
// its own prefix (dev_, test_, prod_) so they can share a database.
type TableNames struct {
	Documents     string
	ChatSessions  string
	ChatMessages  string
	ExternalData  string
	UploadedFiles string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Documents:     fmt.Sprintf("%sdocuments", prefix),
		ChatSessions:  fmt.Sprintf("%schat_sessions", prefix),
		ChatMessages:  fmt.Sprintf("%schat_messages", prefix),
		ExternalData:  fmt.Sprintf("%sexternal_data", prefix),
		UploadedFiles: fmt.Sprintf("%suploaded_files", prefix),
	}
}
