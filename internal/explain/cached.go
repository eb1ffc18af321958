package explain

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"finbot/internal/cache"
	"finbot/internal/core"
)

// DefaultCallTimeout bounds a shared upstream call when NewCached is given
// no timeout.
const DefaultCallTimeout = 10 * time.Second

// Cached memoizes a provider. Concurrent calls with the same input share one
// upstream request. Failures are not cached.
//
// The shared request runs detached from any single caller's cancellation and
// is bounded by its own timeout. Each caller still stops waiting when its own
// context ends.
type Cached struct {
	inner   Provider
	cache   cache.Cache[string]
	timeout time.Duration
	group   singleflight.Group
}

// NewCached wraps inner with c. Shared upstream calls are bounded by timeout.
func NewCached(inner Provider, c cache.Cache[string], timeout time.Duration) *Cached {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Cached{inner: inner, cache: c, timeout: timeout}
}

func (c *Cached) Explain(ctx context.Context, summary core.RecommendationSummary, goal *core.GoalPlan) (string, error) {
	key := Key(summary, goal)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if text, ok := c.cache.Get(key); ok {
			return text, nil
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		text, err := c.inner.Explain(callCtx, summary, goal)
		if err != nil {
			return "", err
		}
		c.cache.Set(key, text)
		return text, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
