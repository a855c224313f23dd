// internal/model/delivery.go
package model

// DeliveryOutcome is what the push transport reports for one send.
// Ordinary delivery failures come back in Error, not as a Go error,
// so the dispatcher handles broker refusals and device failures uniformly.
type DeliveryOutcome struct {
	Delivered      bool   `json:"delivered"`
	RecipientCount int    `json:"recipient_count"`
	Error          string `json:"error,omitempty"`
}

// Per-campaign run actions.
const (
	ActionDelivered = "delivered"
	ActionSkipped   = "skipped"
	ActionFailed    = "failed"
)

// RunItem is the per-campaign line of a scheduler run.
type RunItem struct {
	CampaignID string `json:"campaign_id"`
	Action     string `json:"action"`
	Detail     string `json:"detail,omitempty"`
}

// RunSummary aggregates one scheduler invocation across all examined
// campaigns. Callers always get the whole summary, never a single
// pass/fail flag.
type RunSummary struct {
	Checked   int       `json:"checked"`
	Due       int       `json:"due"`
	Delivered int       `json:"delivered"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Items     []RunItem `json:"items"`
}

// Add appends a per-campaign item and bumps the matching counter.
func (s *RunSummary) Add(campaignID, action, detail string) {
	switch action {
	case ActionDelivered:
		s.Delivered++
	case ActionSkipped:
		s.Skipped++
	case ActionFailed:
		s.Failed++
	}
	s.Items = append(s.Items, RunItem{CampaignID: campaignID, Action: action, Detail: detail})
}
