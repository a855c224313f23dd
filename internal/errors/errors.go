// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrNotificationNotFound mirrors ErrCampaignNotFound for the feed store.
type ErrNotificationNotFound struct {
	NotificationID string
}

func (e *ErrNotificationNotFound) Error() string {
	return fmt.Sprintf("notification with ID %s not found", e.NotificationID)
}

func NewNotificationNotFound(id string) error {
	return &ErrNotificationNotFound{NotificationID: id}
}

// ErrConflict means a save raced a concurrent writer: the record's version
// changed since it was read. Always retryable by re-reading and reapplying.
type ErrConflict struct {
	CampaignID string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("campaign %s was concurrently modified", e.CampaignID)
}

func NewConflict(id string) error {
	return &ErrConflict{CampaignID: id}
}

// ErrGuardBusy means another dispatch holds the campaign's delivery lease.
// Not a real failure: the scheduler reports it as skipped.
type ErrGuardBusy struct {
	CampaignID string
}

func (e *ErrGuardBusy) Error() string {
	return fmt.Sprintf("delivery of campaign %s already in flight", e.CampaignID)
}

func NewGuardBusy(id string) error {
	return &ErrGuardBusy{CampaignID: id}
}

// ErrValidation rejects a malformed upsert payload before any store mutation.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) error {
	return &ErrValidation{Field: field, Reason: reason}
}

func IsNotFound(err error) bool {
	var c *ErrCampaignNotFound
	if errors.As(err, &c) {
		return true
	}
	var n *ErrNotificationNotFound
	return errors.As(err, &n)
}

func IsConflict(err error) bool {
	var e *ErrConflict
	return errors.As(err, &e)
}

func IsBusy(err error) bool {
	var e *ErrGuardBusy
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ErrValidation
	return errors.As(err, &e)
}
