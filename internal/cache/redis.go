package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/meridianpay/authgateway/internal/errors"
)

// RedisConfig mirrors third_party/cache.RedisConfig, extended with the
// timeout/ping-interval fields this long-lived adapter needs to track
// its own liveness between requests.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	DialTimeout  time.Duration
	PingInterval time.Duration
}

func (c *RedisConfig) setDefaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = 3 * time.Second
	}
	if c.PingInterval == 0 {
		c.PingInterval = 15 * time.Second
	}
}

// RedisCache implements Cache against Redis. Construction follows
// third_party/cache.NewRedisConnection's connect-and-ping idiom; a
// background ping loop then keeps IsConnected current without a live
// round trip. The gateway's circuit breaker does not read it.
type RedisCache struct {
	client    *redis.Client
	connected atomic.Bool
	stop      chan struct{}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	cfg.setDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr(cfg),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logx.Errorf("failed to connect to cache: %v", err)
		return nil, errors.Wrap(errors.KindDependencyUnavail, "connect to cache", ErrConnection)
	}
	logx.Info("connected to token/cache store")

	c := &RedisCache{client: rdb, stop: make(chan struct{})}
	c.connected.Store(true)
	go c.pingLoop(cfg.PingInterval)
	return c, nil
}

func (c *RedisCache) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			_, err := c.client.Ping(ctx).Result()
			cancel()
			c.connected.Store(err == nil)
			if err != nil {
				logx.Errorf("cache ping failed: %v", err)
			}
		}
	}
}

func (c *RedisCache) Close() error {
	close(c.stop)
	return c.client.Close()
}

func (c *RedisCache) IsConnected() bool { return c.connected.Load() }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		c.connected.Store(false)
		return nil, errors.Wrap(errors.KindDependencyUnavail, "cache get", ErrConnection)
	}
	return val, nil
}

func (c *RedisCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.connected.Store(false)
		return errors.Wrap(errors.KindDependencyUnavail, "cache set", ErrConnection)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.connected.Store(false)
		return errors.Wrap(errors.KindDependencyUnavail, "cache delete", ErrConnection)
	}
	return nil
}

func (c *RedisCache) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.connected.Store(false)
		return nil, errors.Wrap(errors.KindDependencyUnavail, "cache scan", ErrConnection)
	}
	return keys, nil
}

func (c *RedisCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	keys, err := c.ScanPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.connected.Store(false)
		return errors.Wrap(errors.KindDependencyUnavail, "cache bulk delete", ErrConnection)
	}
	return nil
}

// releaseLeaseScript deletes key only if its value still equals the
// lease token, the standard check-and-delete idiom for Redis-backed
// distributed locks (compare-then-delete must be atomic to avoid
// releasing a lease acquired by someone else after expiry).
var releaseLeaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

func (c *RedisCache) AcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		c.connected.Store(false)
		return false, errors.Wrap(errors.KindDependencyUnavail, "acquire lease", ErrConnection)
	}
	return ok, nil
}

func (c *RedisCache) ReleaseLease(ctx context.Context, key, token string) error {
	if err := releaseLeaseScript.Run(ctx, c.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		c.connected.Store(false)
		return errors.Wrap(errors.KindDependencyUnavail, "release lease", ErrConnection)
	}
	return nil
}

func addr(cfg RedisConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
