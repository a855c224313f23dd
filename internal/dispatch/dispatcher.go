// Package dispatch invokes the push transport for one campaign and
// records the outcome on the campaign record. It never retries
// internally; retry is the caller's next scheduler run.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkandie/concierge-backend/internal/model"
)

// Sender is the external send capability. Ordinary delivery failures
// come back in the outcome, not as an error; a non-nil error means the
// transport itself was unreachable.
type Sender interface {
	Send(ctx context.Context, message, audience json.RawMessage) (model.DeliveryOutcome, error)
}

// Store is the slice of the campaign store the dispatcher writes through.
type Store interface {
	Save(ctx context.Context, c *model.Campaign) error
}

type Dispatcher struct {
	Store  Store
	Sender Sender
}

func New(store Store, sender Sender) *Dispatcher {
	return &Dispatcher{Store: store, Sender: sender}
}

// Dispatch sends the campaign and persists the result. On success the
// delivery count increments by exactly one, last_delivered_at is set to
// now, and a single-shot campaign moves to completed. On failure the
// record keeps its state apart from updated_at, and the reason surfaces
// in the returned error for the run summary, never on the record.
//
// A conflicting save after a successful send is reported as an error so
// the increment is retried rather than silently lost; the caller treats
// it as failed-but-retryable.
func (d *Dispatcher) Dispatch(ctx context.Context, c *model.Campaign, now time.Time) (model.DeliveryOutcome, error) {
	outcome, err := d.Sender.Send(ctx, c.Message, c.Audience)
	if err != nil {
		d.touch(ctx, c)
		return outcome, fmt.Errorf("dispatch campaign %s: transport unreachable: %w", c.ID, err)
	}
	if !outcome.Delivered {
		d.touch(ctx, c)
		return outcome, fmt.Errorf("dispatch campaign %s: %s", c.ID, reasonOrUnknown(outcome.Error))
	}

	t := now
	c.LastDeliveredAt = &t
	c.DeliveryCount++
	if c.SingleShot() {
		c.Status = model.StatusCompleted
	}

	if err := d.Store.Save(ctx, c); err != nil {
		return outcome, fmt.Errorf("dispatch campaign %s: record outcome: %w", c.ID, err)
	}
	return outcome, nil
}

// touch bumps updated_at without changing delivery state. Best effort:
// a failed dispatch must not be masked by a failed bookkeeping write.
func (d *Dispatcher) touch(ctx context.Context, c *model.Campaign) {
	_ = d.Store.Save(ctx, c)
}

func reasonOrUnknown(reason string) string {
	if reason == "" {
		return "transport reported failure"
	}
	return reason
}
