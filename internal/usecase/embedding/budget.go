package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/domain"
)

// Policy decides what Check does once a limit is reached.
type Policy string

const (
	PolicyWarn   Policy = "warn"   // log and let the call through
	PolicyReject Policy = "reject" // fail with domain.ErrEmbeddingQuotaExceeded
)

// Limits caps tokens per UTC day and month. Zero means no cap.
type Limits struct {
	Daily   int64
	Monthly int64
	Policy  Policy
}

// CounterStore persists usage so restarts and replicas share one budget.
type CounterStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// persistTimeout bounds the write-behind of Record.
const persistTimeout = 2 * time.Second

// period is one accounting window.
type period struct {
	name   string // "daily" or "monthly", also the key segment
	layout string // date format in the store key
	limit  int64
	used   int64
	start  time.Time
	floor  func(time.Time) time.Time
}

func newPeriod(name, layout string, limit int64, floor func(time.Time) time.Time, now time.Time) period {
	return period{name: name, layout: layout, limit: limit, floor: floor, start: floor(now)}
}

// advance resets the counter when now is past the current window.
func (p *period) advance(now time.Time) {
	if start := p.floor(now); start.After(p.start) {
		p.start, p.used = start, 0
	}
}

func (p *period) spent() bool { return p.limit > 0 && p.used >= p.limit }

func (p *period) left() int64 {
	if p.limit == 0 {
		return -1
	}
	return max(0, p.limit-p.used)
}

// Budget enforces Limits for one provider. Check reads memory only; Record
// updates memory and then writes through to the CounterStore, if any.
type Budget struct {
	mu       sync.Mutex
	provider string
	policy   Policy
	day      period
	month    period
	store    CounterStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewBudget starts an in-memory budget at zero usage.
func NewBudget(provider string, limits Limits, logger *zap.Logger) *Budget {
	clock := func() time.Time { return time.Now().UTC() }
	now := clock()
	return &Budget{
		provider: provider,
		policy:   limits.Policy,
		day:      newPeriod("daily", "2006-01-02", limits.Daily, startOfDay, now),
		month:    newPeriod("monthly", "2006-01", limits.Monthly, startOfMonth, now),
		now:      clock,
		logger:   logger,
	}
}

// Persist attaches store and seeds the counters from it. A counter that cannot
// be read starts at zero.
func (b *Budget) Persist(ctx context.Context, store CounterStore) *Budget {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = store
	now := b.now()
	for _, p := range b.periods() {
		used, err := store.Get(ctx, b.key(p, now))
		if err != nil {
			b.logger.Warn("Budget counter unavailable, starting from zero",
				zap.String("provider", b.provider), zap.String("period", p.name), zap.Error(err))
			continue
		}
		p.used = used
	}
	b.logger.Info("Embedding budget restored",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("monthly_used", b.month.used),
	)
	return b
}

// Check fails with domain.ErrEmbeddingQuotaExceeded when a limit is spent and
// the policy is reject. Under warn it only logs.
func (b *Budget) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	if !b.day.spent() && !b.month.spent() {
		return nil
	}
	if b.policy == PolicyReject {
		return domain.ErrEmbeddingQuotaExceeded
	}
	b.logger.Warn("Embedding budget exceeded, continuing under warn policy",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.day.used),
		zap.Int64("daily_limit", b.day.limit),
		zap.Int64("monthly_used", b.month.used),
		zap.Int64("monthly_limit", b.month.limit),
	)
	return nil
}

// Record charges tokens to both windows.
func (b *Budget) Record(tokens int64) {
	b.mu.Lock()
	b.advance()
	b.day.used += tokens
	b.month.used += tokens
	now := b.now()
	keys := [2]string{b.key(&b.day, now), b.key(&b.month, now)}
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}
	// detached: the caller's request may already be finishing
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	for _, key := range keys {
		if err := store.IncrBy(ctx, key, tokens); err != nil {
			b.logger.Warn("Budget counter write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// RemainingDaily returns tokens left today, -1 when uncapped.
func (b *Budget) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.day.left()
}

// RemainingMonthly returns tokens left this month, -1 when uncapped.
func (b *Budget) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.month.left()
}

// Used returns tokens consumed in the current day and month.
func (b *Budget) Used() (daily, monthly int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.day.used, b.month.used
}

// key renders vrag:budget:{provider}:{daily|monthly}:{date}.
func (b *Budget) key(p *period, t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:%s:%s", domain.KeyPrefix, b.provider, p.name, t.Format(p.layout))
}

func (b *Budget) periods() []*period { return []*period{&b.day, &b.month} }

func (b *Budget) advance() {
	now := b.now()
	for _, p := range b.periods() {
		p.advance(now)
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
