package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/angelmondragon/fooddiscount-backend/api/responses"
	"github.com/angelmondragon/fooddiscount-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/fooddiscount-backend/pkg/errors"
	"github.com/angelmondragon/fooddiscount-backend/pkg/logger"
)

const (
	rateLimitKeyPrefix = "fooddiscount:rl:global:"
	localEntryTTL      = 10 * time.Minute
	localSweepInterval = 5 * time.Minute
)

// RateLimiter applies a per-client GCRA limit shared through Redis. When Redis
// errors the limiter either degrades to an in-process token bucket or rejects,
// depending on FailOpen.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	limit    redis_rate.Limit
	failOpen bool
	logg     *logger.Logger
}

// NewRateLimiter builds the global limiter. A nil rdb keeps all state local.
func NewRateLimiter(rdb *redis.Client, cfg config.RateLimitConfig, logg *logger.Logger) *RateLimiter {
	rl := &RateLimiter{
		fallback: newLocalLimiter(),
		limit: redis_rate.Limit{
			Rate:   cfg.RequestsPerMinute,
			Burst:  max(cfg.Burst, 1),
			Period: time.Minute,
		},
		failOpen: cfg.FailOpen,
		logg:     logg,
	}
	if rdb != nil {
		rl.limiter = redis_rate.NewLimiter(rdb)
	}
	return rl
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	if rl == nil || rl.limit.Rate <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := rateLimitKeyPrefix + clientIP(r)

		res, err := rl.allow(ctx, key)
		if err != nil {
			responses.WriteError(ctx, rl.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
			return
		}

		setRateLimitHeaders(w, res, rl.limit)
		if res.Allowed == 0 {
			retryAfter := max(int(res.RetryAfter.Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			responses.WriteError(ctx, nil, w, pkgerrors.Newf(pkgerrors.CodeRateLimit, "rate limit exceeded, retry after %d seconds", retryAfter))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (*redis_rate.Result, error) {
	if rl.limiter == nil {
		return rl.fallback.allow(key, rl.limit), nil
	}
	res, err := rl.limiter.Allow(ctx, key, rl.limit)
	if err == nil {
		return res, nil
	}
	if !rl.failOpen {
		return nil, err
	}
	if rl.logg != nil {
		rl.logg.Warn(rl.logg.WithField(ctx, "error", err.Error()), "rate_limit.redis_unavailable")
	}
	return rl.fallback.allow(key, rl.limit), nil
}

func setRateLimitHeaders(w http.ResponseWriter, res *redis_rate.Result, limit redis_rate.Limit) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type localLimiter struct {
	mu        sync.Mutex
	entries   map[string]*localEntry
	lastSweep time.Time
	now       func() time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{entries: map[string]*localEntry{}, now: time.Now}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > localSweepInterval {
		for k, entry := range l.entries {
			if now.Sub(entry.lastSeen) > localEntryTTL {
				delete(l.entries, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.entries[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	interval := time.Duration(float64(time.Second) / perSecond)
	res := &redis_rate.Result{Limit: limit, ResetAfter: interval, RetryAfter: -1}
	if entry.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	res.Remaining = max(int(entry.limiter.TokensAt(now)), 0)
	return res
}
