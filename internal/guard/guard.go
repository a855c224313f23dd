// Package guard enforces at-most-one in-flight dispatch per campaign.
//
// A lease is a short-lived mutual-exclusion token. The TTL is the
// cancellation backstop: if a dispatch hangs past it, the lease expires
// and a later run may retry the campaign.
package guard

import (
	"context"
)

// Guard hands out per-campaign delivery leases.
// Acquire returns appErrors.ErrGuardBusy while another holder is live.
// Release is a no-op for a token that no longer owns the lease.
type Guard interface {
	Acquire(ctx context.Context, campaignID string) (token string, err error)
	Release(ctx context.Context, campaignID, token string) error
}
