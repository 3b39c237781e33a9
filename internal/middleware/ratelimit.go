package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"qawala/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what a Limit does when Redis cannot be reached.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	FailClosed
)

// Limit is the request budget for one kind of write.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	Policy FailPolicy
}

var (
	// LikeToggleLimit caps like/unlike flips per signed-in viewer.
	LikeToggleLimit = Limit{Name: "like_toggle", Max: 30, Window: time.Minute}
	// EnrollmentLimit caps course enrollment submissions per client.
	EnrollmentLimit = Limit{Name: "enroll", Max: 5, Window: 10 * time.Minute}
)

var errNoCounterStore = errors.New("rate limit: no redis client")

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per Limit and viewer in Redis fixed windows.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewLimiter returns a Limiter. A disabled Limiter allows every request.
func NewLimiter(rdb *redis.Client, enabled bool) *Limiter {
	return &Limiter{rdb: rdb, enabled: enabled}
}

// LimiterForEnv disables limits in the test and development environments.
func LimiterForEnv(rdb *redis.Client, env string) *Limiter {
	return NewLimiter(rdb, env != "test" && env != "development" && env != "")
}

// Allow counts one request by viewer against limit.
func (l *Limiter) Allow(ctx context.Context, limit Limit, viewer string) (Decision, error) {
	if !l.enabled {
		return Decision{Allowed: true, Remaining: limit.Max}, nil
	}
	if l.rdb == nil {
		return Decision{}, errNoCounterStore
	}

	key := "rl:" + limit.Name + ":" + viewer
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, err
	}
	if n == 1 {
		l.rdb.Expire(ctx, key, limit.Window)
	}

	d := Decision{Allowed: n <= int64(limit.Max), Remaining: limit.Max - int(n)}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = limit.Window
		if ttl, err := l.rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
			d.RetryAfter = ttl
		}
	}
	return d, nil
}

// Handler enforces limit on a route. Signed-in viewers are counted by user ID,
// everyone else by client IP.
func (l *Limiter) Handler(limit Limit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		viewer := "ip:" + c.IP()
		if uid := UserID(c); uid != "" {
			viewer = "user:" + uid
		}

		d, err := l.Allow(c.UserContext(), limit, viewer)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable",
				"limit", limit.Name, "route", c.Route().Path, "error", err)
			if limit.Policy == FailClosed {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "Rate limit unavailable",
					Code:  models.CodeInternal,
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			RateLimited.WithLabelValues(limit.Name).Inc()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int((d.RetryAfter+time.Second-1)/time.Second)))
			return models.Respond(c, &models.AppError{
				Code:    models.CodeRateLimited,
				Message: "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
