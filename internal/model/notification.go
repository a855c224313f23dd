// internal/model/notification.go
package model

import (
	"encoding/json"
	"time"
)

// Notification is a user-facing feed record. It shares the campaign
// store's upsert merge rule but carries no due-time semantics.
type Notification struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Title     string          `db:"title" json:"title"`
	Body      json.RawMessage `db:"body" json:"body,omitempty"`
	Read      bool            `db:"read" json:"read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}

type NotificationPayload struct {
	ID     *string         `json:"id,omitempty"`
	UserID *string         `json:"user_id,omitempty"`
	Title  *string         `json:"title,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
	Read   *bool           `json:"read,omitempty"`
}
