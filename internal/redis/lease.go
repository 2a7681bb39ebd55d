package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lease only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a single-holder lock with a TTL. Scheduler replicas use it so only
// one of them produces each daily snapshot.
type Lease struct {
	client *redis.Client
	key    string
	holder string
	ttl    time.Duration
}

// NewLease returns a lease on key identified by holder.
func NewLease(client *redis.Client, key, holder string, ttl time.Duration) *Lease {
	return &Lease{client: client, key: key, holder: holder, ttl: ttl}
}

// Acquire takes the lease if it is free or already held by this holder,
// refreshing the TTL in the latter case.
func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.holder, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis acquire lease %s: %w", l.key, err)
	}
	if ok {
		return true, nil
	}

	owner, err := l.client.Get(ctx, l.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis read lease %s: %w", l.key, err)
	}
	if owner != l.holder {
		return false, nil
	}
	if err := l.client.PExpire(ctx, l.key, l.ttl).Err(); err != nil {
		return false, fmt.Errorf("redis refresh lease %s: %w", l.key, err)
	}
	return true, nil
}

// Release gives the lease up if this holder owns it.
func (l *Lease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.holder).Err(); err != nil {
		return fmt.Errorf("redis release lease %s: %w", l.key, err)
	}
	return nil
}

func (l *Lease) Holder() string { return l.holder }
