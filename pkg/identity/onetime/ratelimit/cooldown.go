package ratelimit

import (
	"context"
	"time"

	"github.com/ledgerline/identity/pkg/logx"
	"github.com/redis/go-redis/v9"
)

// Cooldown throttles one-time-code issuance per contact address. The check
// runs before any user lookup so a throttled request is indistinguishable
// from a successful one to the caller (no enumeration signal).
type Cooldown struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewCooldown creates a Redis-backed issuance cooldown.
func NewCooldown(rdb redis.UniversalClient, ttl time.Duration) *Cooldown {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &Cooldown{rdb: rdb, ttl: ttl}
}

func cooldownKey(contact string) string {
	return "onetime:cooldown:" + contact
}

// Allow reports whether a code may be issued for contact, claiming the
// cooldown slot when it is free. Redis being unreachable fails open: a
// missed cooldown is preferable to blocking every recovery flow.
func (c *Cooldown) Allow(ctx context.Context, contact string) bool {
	ok, err := c.rdb.SetNX(ctx, cooldownKey(contact), 1, c.ttl).Result()
	if err != nil {
		logx.WithError(err).Warn("onetime/ratelimit: cooldown check failed, allowing")
		return true
	}
	return ok
}

// Reset releases the cooldown slot for contact.
func (c *Cooldown) Reset(ctx context.Context, contact string) {
	if err := c.rdb.Del(ctx, cooldownKey(contact)).Err(); err != nil && err != redis.Nil {
		logx.WithError(err).Debug("onetime/ratelimit: cooldown reset failed")
	}
}
