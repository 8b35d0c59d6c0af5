package domain

import (
	"context"
	"sync/atomic"
)

// Usage accumulates embedding tokens spent while serving one request.
// All methods are safe on a nil *Usage and for concurrent use.
type Usage struct {
	tokens atomic.Int64
	calls  atomic.Int64
}

// Add records one embedding call that cost n tokens. Cache hits cost zero
// but still count as a call.
func (u *Usage) Add(n int) {
	if u == nil {
		return
	}
	u.calls.Add(1)
	u.tokens.Add(int64(n))
}

// Tokens returns the total recorded so far.
func (u *Usage) Tokens() int64 {
	if u == nil {
		return 0
	}
	return u.tokens.Load()
}

// Embedded reports whether any embedding call was recorded.
func (u *Usage) Embedded() bool {
	return u != nil && u.calls.Load() > 0
}

type usageKey struct{}

// WithUsage attaches a fresh Usage to ctx and returns both.
func WithUsage(ctx context.Context) (context.Context, *Usage) {
	u := new(Usage)
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFrom returns the Usage attached by WithUsage, or nil.
func UsageFrom(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}
