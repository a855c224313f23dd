package guard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/mkandie/concierge-backend/internal/errors"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// LocalGuard keeps leases in process memory. Same semantics as the
// Redis guard, single-process scope only.
type LocalGuard struct {
	mu     sync.Mutex
	ttl    time.Duration
	leases map[string]lease
	now    func() time.Time
}

func NewLocalGuard(ttl time.Duration) *LocalGuard {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &LocalGuard{
		ttl:    ttl,
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

func (g *LocalGuard) Acquire(ctx context.Context, campaignID string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if l, ok := g.leases[campaignID]; ok && now.Before(l.expiresAt) {
		return "", appErrors.NewGuardBusy(campaignID)
	}

	token := uuid.NewString()
	g.leases[campaignID] = lease{token: token, expiresAt: now.Add(g.ttl)}
	return token, nil
}

func (g *LocalGuard) Release(ctx context.Context, campaignID, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if l, ok := g.leases[campaignID]; ok && l.token == token {
		delete(g.leases, campaignID)
	}
	return nil
}

var _ Guard = (*LocalGuard)(nil)
