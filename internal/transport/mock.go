package transport

import (
	"context"
	"encoding/json"
	"math/rand"

	"github.com/mkandie/concierge-backend/internal/model"
)

// MockSender simulates the push transport for local development.
// SuccessRate 0.9 mirrors real-world flakiness without a broker.
type MockSender struct {
	SuccessRate float64
}

func NewMockSender() *MockSender {
	return &MockSender{SuccessRate: 0.9}
}

func (s *MockSender) Send(ctx context.Context, message, audience json.RawMessage) (model.DeliveryOutcome, error) {
	if rand.Float64() >= s.SuccessRate {
		return model.DeliveryOutcome{Delivered: false, Error: "mock sending failed"}, nil
	}
	return model.DeliveryOutcome{
		Delivered:      true,
		RecipientCount: RecipientCountHint(audience),
	}, nil
}
