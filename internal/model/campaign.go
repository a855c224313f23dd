// internal/model/campaign.go
package model

import (
	"encoding/json"
	"time"
)

// Campaign statuses. Only active campaigns are ever dispatched.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

// RecurrenceDaily re-opens the delivery window once per calendar day.
// An empty recurrence means the campaign is single-shot.
const RecurrenceDaily = "daily"

type Campaign struct {
	ID              string          `db:"id" json:"id"`
	Status          string          `db:"status" json:"status"`
	Message         json.RawMessage `db:"message" json:"message,omitempty"`
	Audience        json.RawMessage `db:"audience" json:"audience,omitempty"`
	Recurrence      string          `db:"recurrence" json:"recurrence,omitempty"`
	ScheduledAt     *time.Time      `db:"scheduled_at" json:"scheduled_at,omitempty"`
	LastDeliveredAt *time.Time      `db:"last_delivered_at" json:"last_delivered_at,omitempty"`
	DeliveryCount   int             `db:"delivery_count" json:"delivery_count"`
	Version         int             `db:"version" json:"version"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}

// SingleShot reports whether the campaign is delivered at most once ever.
func (c *Campaign) SingleShot() bool {
	return c.Recurrence == ""
}

// ValidStatus reports whether s is a known campaign status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

// CampaignPayload is the partial-update shape accepted by upsert.
// Nil fields leave the stored value untouched. The merge is field-level:
// a payload that supplies message replaces the whole message value.
type CampaignPayload struct {
	ID          *string         `json:"id,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Message     json.RawMessage `json:"message,omitempty"`
	Audience    json.RawMessage `json:"audience,omitempty"`
	Recurrence  *string         `json:"recurrence,omitempty"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
}
