package admission

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/semaphore"
)

const (
	defaultKeyPrefix = "adm:"
	defaultLeaseTTL  = 2 * time.Minute
	releaseTimeout   = 2 * time.Second
)

// Config holds admission budgets. Zero budgets disable the corresponding check.
//
// Cluster reservations are leases that expire after LeaseTTL even if the
// holder never releases them, so LeaseTTL must exceed the longest KDF call.
// Lease expiry is computed from each replica's clock.
type Config struct {
	LocalMemoryKiB   int64
	Wait             time.Duration
	ClusterMemoryKiB int64
	LeaseTTL         time.Duration
	KeyPrefix        string
}

// Controller reserves memory from the local and cluster budgets.
// It is safe for concurrent use.
type Controller struct {
	config   Config
	local    *semaphore.Weighted
	redis    redis.UniversalClient
	inFlight atomic.Int64
	now      func() time.Time
}

// New creates a Controller. redisClient may be nil, in which case the cluster
// budget is ignored.
func New(redisClient redis.UniversalClient, cfg Config) *Controller {
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = defaultLeaseTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}

	c := &Controller{config: cfg, now: time.Now}
	if cfg.LocalMemoryKiB > 0 {
		c.local = semaphore.NewWeighted(cfg.LocalMemoryKiB)
	}
	if cfg.ClusterMemoryKiB > 0 {
		c.redis = redisClient
	}
	return c
}

// Acquire reserves weight KiB. The returned release func is idempotent and must
// be called once the work is done, whatever its outcome.
func (c *Controller) Acquire(ctx context.Context, weight int64) (func(), error) {
	if weight <= 0 {
		return func() {}, nil
	}

	if err := c.acquireLocal(ctx, weight); err != nil {
		return nil, err
	}

	lease, err := c.acquireCluster(ctx, weight)
	if err != nil {
		c.releaseLocal(weight)
		return nil, err
	}

	c.inFlight.Add(weight)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.inFlight.Add(-weight)
			c.releaseCluster(lease)
			c.releaseLocal(weight)
		})
	}, nil
}

// InFlight returns the KiB currently reserved through this Controller.
func (c *Controller) InFlight() int64 {
	return c.inFlight.Load()
}

// ClusterUsage returns the KiB held by unexpired leases across all replicas, or
// zero when the cluster budget is disabled.
func (c *Controller) ClusterUsage(ctx context.Context) (int64, error) {
	if c.redis == nil {
		return 0, nil
	}
	members, err := c.redis.ZRangeByScore(ctx, c.clusterKey(), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(c.now().UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var used int64
	for _, m := range members {
		if w, ok := leaseWeight(m); ok {
			used += w
		}
	}
	return used, nil
}

func (c *Controller) acquireLocal(ctx context.Context, weight int64) error {
	if c.local == nil {
		return nil
	}
	if weight > c.config.LocalMemoryKiB {
		return fmt.Errorf("%w: request of %d KiB exceeds local budget of %d KiB", ErrOverloaded, weight, c.config.LocalMemoryKiB)
	}

	if c.config.Wait <= 0 {
		if !c.local.TryAcquire(weight) {
			return ErrOverloaded
		}
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.config.Wait)
	defer cancel()

	if err := c.local.Acquire(waitCtx, weight); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrOverloaded
	}
	return nil
}

func (c *Controller) releaseLocal(weight int64) {
	if c.local != nil {
		c.local.Release(weight)
	}
}

// acquireScript drops expired leases, sums the live ones and adds the new lease
// when it fits. Members are "<id>:<weight>" scored by expiry in Unix
// milliseconds. It returns the reserved total, or -1 when the budget is full.
//
// KEYS[1] lease set; ARGV now, expiry, weight, limit, member, ttl (ms).
var acquireScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local used = 0
for _, m in ipairs(redis.call('ZRANGE', KEYS[1], 0, -1)) do
  used = used + tonumber(string.match(m, ':(%d+)$'))
end
local weight = tonumber(ARGV[3])
if used + weight > tonumber(ARGV[4]) then
  return -1
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return used + weight
`)

func (c *Controller) acquireCluster(ctx context.Context, weight int64) (string, error) {
	if c.redis == nil {
		return "", nil
	}
	if weight > c.config.ClusterMemoryKiB {
		return "", fmt.Errorf("%w: request of %d KiB exceeds cluster budget of %d KiB", ErrOverloaded, weight, c.config.ClusterMemoryKiB)
	}

	now := c.now()
	member := uuid.NewString() + ":" + strconv.FormatInt(weight, 10)
	total, err := acquireScript.Run(ctx, c.redis, []string{c.clusterKey()},
		now.UnixMilli(),
		now.Add(c.config.LeaseTTL).UnixMilli(),
		weight,
		c.config.ClusterMemoryKiB,
		member,
		c.config.LeaseTTL.Milliseconds(),
	).Int64()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if total < 0 {
		return "", ErrOverloaded
	}
	return member, nil
}

// releaseCluster runs detached from the request context so a cancelled request
// still returns its lease. Removing a lease that already expired is a no-op.
func (c *Controller) releaseCluster(member string) {
	if c.redis == nil || member == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	_ = c.redis.ZRem(ctx, c.clusterKey(), member).Err()
}

func (c *Controller) clusterKey() string {
	return c.config.KeyPrefix + "leases"
}

// leaseWeight extracts the weight suffix of a lease member.
func leaseWeight(member string) (int64, bool) {
	i := strings.LastIndexByte(member, ':')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(member[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
