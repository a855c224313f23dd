// internal/service/campaign_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	appErrors "github.com/mkandie/concierge-backend/internal/errors"
	"github.com/mkandie/concierge-backend/internal/guard"
	"github.com/mkandie/concierge-backend/internal/metrics"
	"github.com/mkandie/concierge-backend/internal/model"
	"github.com/mkandie/concierge-backend/internal/repository"
	"github.com/mkandie/concierge-backend/internal/scheduler"
)

// DispatcherInterface is the slice of the dispatcher the service drives.
type DispatcherInterface interface {
	Dispatch(ctx context.Context, c *model.Campaign, now time.Time) (model.DeliveryOutcome, error)
}

// CampaignService is the scheduler entry point. It is re-entrant:
// concurrent invocations are safe because exclusion is per campaign
// (the guard lease), never per run.
type CampaignService struct {
	Store      repository.CampaignStoreInterface
	Guard      guard.Guard
	Dispatcher DispatcherInterface
	Evaluator  *scheduler.Evaluator
	Metrics    metrics.Sink

	// Now is the run clock; overridable so due evaluation can be tested
	// against frozen times.
	Now func() time.Time
}

func NewCampaignService(store repository.CampaignStoreInterface, g guard.Guard, d DispatcherInterface, e *scheduler.Evaluator) *CampaignService {
	if e == nil {
		e = scheduler.NewEvaluator(nil)
	}
	return &CampaignService{
		Store:      store,
		Guard:      g,
		Dispatcher: d,
		Evaluator:  e,
		Metrics:    metrics.NewNoopSink(),
		Now:        time.Now,
	}
}

// WithMetrics attaches a metrics sink.
func (s *CampaignService) WithMetrics(sink metrics.Sink) *CampaignService {
	s.Metrics = sink
	return s
}

// UpsertResult is returned by both trigger surfaces so callers can treat
// them uniformly.
type UpsertResult struct {
	Created  bool              `json:"created"`
	Item     *model.Campaign   `json:"item"`
	Delivery *model.RunSummary `json:"delivery,omitempty"`
}

// UpsertCampaign validates and stores a campaign payload. Validation
// failures are rejected before any store mutation.
func (s *CampaignService) UpsertCampaign(ctx context.Context, p model.CampaignPayload) (*UpsertResult, error) {
	if err := validatePayload(p); err != nil {
		return nil, err
	}
	created, c, err := s.Store.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	return &UpsertResult{Created: created, Item: c}, nil
}

// UpsertAndDeliver upserts, then optionally attempts an immediate
// delivery of the stored campaign. force bypasses the window dedup
// check but never the guard lease.
func (s *CampaignService) UpsertAndDeliver(ctx context.Context, p model.CampaignPayload, deliverNow, force bool) (*UpsertResult, error) {
	res, err := s.UpsertCampaign(ctx, p)
	if err != nil {
		return nil, err
	}
	if !deliverNow {
		return res, nil
	}
	summary, err := s.DeliverCampaign(ctx, res.Item.ID, force)
	if err != nil {
		return res, err
	}
	res.Delivery = summary
	return res, nil
}

// RunDue is the unconditional "run all due campaigns now" entry point.
// now is captured once so every due evaluation in the run is consistent.
// Per-campaign failures never abort the pass.
func (s *CampaignService) RunDue(ctx context.Context) (*model.RunSummary, error) {
	now := s.Now()

	campaigns, err := s.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	summary := &model.RunSummary{Checked: len(campaigns), Items: []model.RunItem{}}
	for _, c := range campaigns {
		if !s.Evaluator.Due(c, now) {
			continue
		}
		summary.Due++
		s.deliverOne(ctx, c, now, false, summary)
	}

	s.Metrics.RunCompleted(s.Now().Sub(now), summary.Checked, summary.Due)
	return summary, nil
}

// DeliverCampaign attempts delivery of a single campaign. It returns
// the same summary shape as RunDue. force bypasses the window dedup
// (including the completed terminal of a delivered single-shot) but a
// draft, scheduled, or paused campaign is skipped even under force.
func (s *CampaignService) DeliverCampaign(ctx context.Context, id string, force bool) (*model.RunSummary, error) {
	now := s.Now()

	c, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &model.RunSummary{Checked: 1, Items: []model.RunItem{}}

	eligible := s.Evaluator.Eligible(c, now)
	if force {
		eligible = s.Evaluator.ForceEligible(c, now)
	}
	if !eligible {
		summary.Add(c.ID, model.ActionSkipped, "campaign is not active or not yet scheduled")
		s.Metrics.DeliveryOutcome(model.ActionSkipped)
		return summary, nil
	}

	due := s.Evaluator.Due(c, now)
	if due {
		summary.Due++
	}
	if !due && !force {
		summary.Add(c.ID, model.ActionSkipped, "already delivered in current window")
		s.Metrics.DeliveryOutcome(model.ActionSkipped)
		return summary, nil
	}

	s.deliverOne(ctx, c, now, force, summary)
	return summary, nil
}

// deliverOne runs the guarded dispatch path for one campaign:
// AcquireGuard -> Revalidate -> Dispatch -> RecordOutcome -> ReleaseGuard.
func (s *CampaignService) deliverOne(ctx context.Context, c *model.Campaign, now time.Time, force bool, summary *model.RunSummary) {
	token, err := s.Guard.Acquire(ctx, c.ID)
	if err != nil {
		if appErrors.IsBusy(err) {
			summary.Add(c.ID, model.ActionSkipped, "delivery already in flight")
		} else {
			summary.Add(c.ID, model.ActionSkipped, "guard unavailable: "+err.Error())
		}
		s.Metrics.DeliveryOutcome(model.ActionSkipped)
		return
	}
	release := func() {
		if relErr := s.Guard.Release(ctx, c.ID, token); relErr != nil {
			log.Printf("scheduler: release lease for campaign %s: %v", c.ID, relErr)
		}
	}

	// The snapshot predates the lease: a holder that delivered and
	// released between our read and our acquire would otherwise be
	// dispatched again. Re-read and re-evaluate under the lease.
	fresh, err := s.Store.GetByID(ctx, c.ID)
	if err != nil {
		release()
		summary.Add(c.ID, model.ActionSkipped, "campaign unavailable: "+err.Error())
		s.Metrics.DeliveryOutcome(model.ActionSkipped)
		return
	}
	stillDue := s.Evaluator.Due(fresh, now)
	if force {
		stillDue = s.Evaluator.ForceEligible(fresh, now)
	}
	if !stillDue {
		release()
		summary.Add(c.ID, model.ActionSkipped, "already delivered in current window")
		s.Metrics.DeliveryOutcome(model.ActionSkipped)
		return
	}

	outcome, err := s.Dispatcher.Dispatch(ctx, fresh, now)

	// Released after the store write inside Dispatch has settled, on
	// success and failure alike, so a retry can proceed immediately.
	release()

	if err != nil {
		summary.Add(c.ID, model.ActionFailed, err.Error())
		s.Metrics.DeliveryOutcome(model.ActionFailed)
		return
	}

	summary.Add(c.ID, model.ActionDelivered, fmt.Sprintf("delivered to %d recipients", outcome.RecipientCount))
	s.Metrics.DeliveryOutcome(model.ActionDelivered)
}

func validatePayload(p model.CampaignPayload) error {
	if p.Status != nil && !model.ValidStatus(*p.Status) {
		return appErrors.NewValidation("status", fmt.Sprintf("unknown status %q", *p.Status))
	}
	if p.Recurrence != nil && *p.Recurrence != "" && *p.Recurrence != model.RecurrenceDaily {
		return appErrors.NewValidation("recurrence", fmt.Sprintf("unsupported recurrence %q", *p.Recurrence))
	}
	return nil
}
