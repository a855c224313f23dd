package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink with the Prometheus client library.
// Registration errors are logged, never propagated.
type PrometheusSink struct {
	runsTotal        prometheus.Counter
	runDuration      prometheus.Histogram
	campaignsChecked prometheus.Counter
	campaignsDue     prometheus.Counter
	outcomesTotal    *prometheus.CounterVec
}

func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "concierge_scheduler_runs_total",
			Help: "Total number of scheduler runs.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "concierge_scheduler_run_duration_seconds",
			Help:    "Duration of each scheduler run in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		}),
		campaignsChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "concierge_scheduler_campaigns_checked_total",
			Help: "Total number of campaigns examined across runs.",
		}),
		campaignsDue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "concierge_scheduler_campaigns_due_total",
			Help: "Total number of campaigns judged due across runs.",
		}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "concierge_delivery_outcomes_total",
			Help: "Total per-campaign delivery outcomes.",
		}, []string{"action"}),
	}

	s.register(reg, s.runsTotal, "concierge_scheduler_runs_total")
	s.register(reg, s.runDuration, "concierge_scheduler_run_duration_seconds")
	s.register(reg, s.campaignsChecked, "concierge_scheduler_campaigns_checked_total")
	s.register(reg, s.campaignsDue, "concierge_scheduler_campaigns_due_total")
	s.register(reg, s.outcomesTotal, "concierge_delivery_outcomes_total")
	return s
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

func (s *PrometheusSink) RunCompleted(duration time.Duration, checked, due int) {
	s.runsTotal.Inc()
	s.runDuration.Observe(duration.Seconds())
	s.campaignsChecked.Add(float64(checked))
	s.campaignsDue.Add(float64(due))
}

func (s *PrometheusSink) DeliveryOutcome(action string) {
	s.outcomesTotal.WithLabelValues(action).Inc()
}

var _ Sink = (*PrometheusSink)(nil)
