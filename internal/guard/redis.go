package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appErrors "github.com/mkandie/concierge-backend/internal/errors"
)

const DefaultLeaseTTL = 30 * time.Second

// releaseScript deletes the lease only when the caller still owns it,
// so a holder whose lease expired cannot free a successor's lease.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0
`)

// RedisGuard backs the lease with SET NX PX so concurrent runs on
// different processes still serialize per campaign.
type RedisGuard struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}
	return &RedisGuard{Client: client, TTL: ttl}
}

func leaseKey(campaignID string) string {
	return "campaign:delivery_lease:" + campaignID
}

func (g *RedisGuard) Acquire(ctx context.Context, campaignID string) (string, error) {
	token := uuid.NewString()
	ok, err := g.Client.SetNX(ctx, leaseKey(campaignID), token, g.TTL).Result()
	if err != nil {
		return "", fmt.Errorf("guard: acquire lease for %s: %w", campaignID, err)
	}
	if !ok {
		return "", appErrors.NewGuardBusy(campaignID)
	}
	return token, nil
}

func (g *RedisGuard) Release(ctx context.Context, campaignID, token string) error {
	if err := releaseScript.Run(ctx, g.Client, []string{leaseKey(campaignID)}, token).Err(); err != nil {
		return fmt.Errorf("guard: release lease for %s: %w", campaignID, err)
	}
	return nil
}

var _ Guard = (*RedisGuard)(nil)
