package models

import (
	"time"
)

// Document is a node in a per-owner forest. ParentID, when set, references
// another document owned by the same user; the link is established at creation
// and never cross-checked on read. A nil ParentID means root level.
type Document struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	ParentID     *string   `json:"parent_document,omitempty" db:"parent_id"`
	IsArchived   bool      `json:"is_archived" db:"is_archived"`
	IsPublished  bool      `json:"is_published" db:"is_published"`
	AllowEditing bool      `json:"allow_editing" db:"allow_editing"`
	IsPinned     bool      `json:"is_pinned" db:"is_pinned"`
	Content      *string   `json:"content,omitempty" db:"content"`
	CoverImage   *string   `json:"cover_image,omitempty" db:"cover_image"`
	Icon         *string   `json:"icon,omitempty" db:"icon"`
	Order        *int      `json:"order,omitempty" db:"sort_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
