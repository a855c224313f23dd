// Package scheduler holds the pure due-evaluation logic. It never
// mutates state: the same campaign snapshot and the same now always
// produce the same answer.
package scheduler

import (
	"time"

	"github.com/mkandie/concierge-backend/internal/model"
)

// Evaluator decides which campaigns are eligible for delivery right now.
// Loc fixes where the daily window boundary falls for recurring
// campaigns; the cadence itself is the campaign's recurrence field.
type Evaluator struct {
	Loc *time.Location
}

func NewEvaluator(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.UTC
	}
	return &Evaluator{Loc: loc}
}

// Eligible checks status and schedule only: the campaign is active and
// its scheduled time, if any, has passed.
func (e *Evaluator) Eligible(c *model.Campaign, now time.Time) bool {
	if c.Status != model.StatusActive {
		return false
	}
	if c.ScheduledAt != nil && c.ScheduledAt.After(now) {
		return false
	}
	return true
}

// ForceEligible is the operator-override eligibility check. A completed
// campaign is the delivered terminal of an active single-shot, so force
// may re-deliver it; a draft, scheduled, or paused campaign is still
// never dispatched, and a future scheduled_at still holds.
func (e *Evaluator) ForceEligible(c *model.Campaign, now time.Time) bool {
	if c.Status != model.StatusActive && c.Status != model.StatusCompleted {
		return false
	}
	if c.ScheduledAt != nil && c.ScheduledAt.After(now) {
		return false
	}
	return true
}

// Due reports whether the campaign should be dispatched in this run:
// eligible, and not already delivered within the current window. A
// single-shot campaign's window never re-opens; a daily campaign's
// window re-opens at midnight in e.Loc.
func (e *Evaluator) Due(c *model.Campaign, now time.Time) bool {
	if !e.Eligible(c, now) {
		return false
	}
	if c.LastDeliveredAt == nil {
		return true
	}
	if c.SingleShot() {
		return false
	}
	return c.LastDeliveredAt.Before(e.windowStart(now))
}

func (e *Evaluator) windowStart(now time.Time) time.Time {
	local := now.In(e.Loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.Loc)
}
