package metrics

import "time"

// Sink records scheduler metrics. All methods are fire-and-forget:
// implementations must not block or propagate errors.
type Sink interface {
	RunCompleted(duration time.Duration, checked, due int)
	DeliveryOutcome(action string) // delivered | skipped | failed
}

// NoopSink is used when metrics are disabled, avoiding nil checks.
type NoopSink struct{}

func NewNoopSink() *NoopSink { return &NoopSink{} }

func (n *NoopSink) RunCompleted(duration time.Duration, checked, due int) {}
func (n *NoopSink) DeliveryOutcome(action string)                         {}
