package models

import (
	"time"
)

// Role is the author of a chat message. Kept as a closed set so that an
// invalid role is a construction-time concern, not a runtime surprise.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ChatSession is a conversation container. Sessions are owner-exclusive:
// no cross-owner read or mutation exists, unlike documents which have a
// public-read path.
type ChatSession struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Title        *string   `json:"title,omitempty" db:"title"`
	DocumentID   *string   `json:"document_id,omitempty" db:"document_id"`
	SystemPrompt *string   `json:"system_prompt,omitempty" db:"system_prompt"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ChatMessage is one turn in a session. Messages are immutable once created
// and ordered by creation time within their session. DocumentIDs carries the
// documents tagged into a user turn; it is empty for assistant turns.
type ChatMessage struct {
	ID          string    `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	Role        Role      `json:"role" db:"role"`
	Content     string    `json:"content" db:"content"`
	DocumentIDs []string  `json:"document_ids,omitempty" db:"document_ids"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
