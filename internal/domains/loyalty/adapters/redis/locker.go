package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/loyalty/ports"
	"github.com/vuhk2k6/web-order-sub000/internal/shared/ids"
)

const (
	defaultLeaseTTL  = 10 * time.Second
	defaultRetryWait = 25 * time.Millisecond
)

var ErrLockNotAcquired = errors.New("loyalty lock not acquired")

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

var _ ports.Locker = (*Locker)(nil)

// Locker is a Redis lease lock shared by every API instance.
type Locker struct {
	client    redis.UniversalClient
	ttl       time.Duration
	retryWait time.Duration
}

type Option func(*Locker)

func WithLeaseTTL(ttl time.Duration) Option {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func NewLocker(client redis.UniversalClient, opts ...Option) *Locker {
	l := &Locker{client: client, ttl: defaultLeaseTTL, retryWait: defaultRetryWait}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock polls SET NX until it wins the lease or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	token := ids.New()
	ticker := time.NewTicker(l.retryWait)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func(releaseCtx context.Context) error {
				return releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
		case <-ticker.C:
		}
	}
}
