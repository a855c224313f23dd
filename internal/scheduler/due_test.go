package scheduler_test

import (
	"testing"
	"time"

	"github.com/mkandie/concierge-backend/internal/model"
	"github.com/mkandie/concierge-backend/internal/scheduler"
)

func tp(t time.Time) *time.Time { return &t }

func TestDue(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	e := scheduler.NewEvaluator(nil)

	tests := []struct {
		name     string
		campaign model.Campaign
		want     bool
	}{
		{
			name:     "active single-shot never delivered",
			campaign: model.Campaign{Status: model.StatusActive},
			want:     true,
		},
		{
			name: "active single-shot with passed schedule",
			campaign: model.Campaign{
				Status:      model.StatusActive,
				ScheduledAt: tp(now.Add(-time.Hour)),
			},
			want: true,
		},
		{
			name: "future schedule is not due",
			campaign: model.Campaign{
				Status:      model.StatusActive,
				ScheduledAt: tp(now.Add(time.Hour)),
			},
			want: false,
		},
		{
			name: "delivered single-shot never re-opens",
			campaign: model.Campaign{
				Status:          model.StatusActive,
				LastDeliveredAt: tp(now.Add(-48 * time.Hour)),
			},
			want: false,
		},
		{
			name: "daily campaign delivered yesterday is due again",
			campaign: model.Campaign{
				Status:          model.StatusActive,
				Recurrence:      model.RecurrenceDaily,
				LastDeliveredAt: tp(time.Date(2024, 6, 14, 23, 59, 0, 0, time.UTC)),
			},
			want: true,
		},
		{
			name: "daily campaign delivered today is not due",
			campaign: model.Campaign{
				Status:          model.StatusActive,
				Recurrence:      model.RecurrenceDaily,
				LastDeliveredAt: tp(time.Date(2024, 6, 15, 0, 1, 0, 0, time.UTC)),
			},
			want: false,
		},
		{
			name:     "paused campaign is never due",
			campaign: model.Campaign{Status: model.StatusPaused},
			want:     false,
		},
		{
			name:     "draft campaign is never due",
			campaign: model.Campaign{Status: model.StatusDraft},
			want:     false,
		},
		{
			name: "completed campaign is never due",
			campaign: model.Campaign{
				Status:          model.StatusCompleted,
				LastDeliveredAt: tp(now.Add(-time.Hour)),
			},
			want: false,
		},
		{
			name: "scheduled status does not dispatch even when time passed",
			campaign: model.Campaign{
				Status:      model.StatusScheduled,
				ScheduledAt: tp(now.Add(-time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Due(&tt.campaign, now); got != tt.want {
				t.Errorf("Due() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDueWindowBoundaryInLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	e := scheduler.NewEvaluator(nairobi)

	// 22:30 UTC on the 14th is already 01:30 on the 15th in EAT, so a
	// delivery from 20:00 UTC (23:00 EAT, previous day) re-opens.
	now := time.Date(2024, 6, 14, 22, 30, 0, 0, time.UTC)
	c := model.Campaign{
		Status:          model.StatusActive,
		Recurrence:      model.RecurrenceDaily,
		LastDeliveredAt: tp(time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)),
	}
	if !e.Due(&c, now) {
		t.Error("expected daily campaign to re-open after local midnight")
	}

	// In UTC the same instant is still the 14th, so the window holds.
	utc := scheduler.NewEvaluator(time.UTC)
	if utc.Due(&c, now) {
		t.Error("expected window to hold before UTC midnight")
	}
}

func TestForceEligible(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	e := scheduler.NewEvaluator(nil)

	tests := []struct {
		name     string
		campaign model.Campaign
		want     bool
	}{
		{
			name:     "active campaign",
			campaign: model.Campaign{Status: model.StatusActive},
			want:     true,
		},
		{
			name: "completed single-shot may be re-delivered",
			campaign: model.Campaign{
				Status:          model.StatusCompleted,
				LastDeliveredAt: tp(now.Add(-time.Hour)),
			},
			want: true,
		},
		{
			name:     "paused campaign stays excluded",
			campaign: model.Campaign{Status: model.StatusPaused},
			want:     false,
		},
		{
			name:     "draft campaign stays excluded",
			campaign: model.Campaign{Status: model.StatusDraft},
			want:     false,
		},
		{
			name: "future schedule still holds under force",
			campaign: model.Campaign{
				Status:      model.StatusActive,
				ScheduledAt: tp(now.Add(time.Hour)),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ForceEligible(&tt.campaign, now); got != tt.want {
				t.Errorf("ForceEligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
