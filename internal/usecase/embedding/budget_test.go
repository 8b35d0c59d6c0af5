package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/andrewcz-se/vector-rag/internal/domain"
)

func newTestBudget(daily, monthly int64, policy Policy) *Budget {
	return NewBudget("openai", Limits{Daily: daily, Monthly: monthly, Policy: policy}, zap.NewNop())
}

func TestBudget_Check(t *testing.T) {
	tests := []struct {
		name           string
		daily, monthly int64
		policy         Policy
		used           int64
		wantErr        bool
	}{
		{"below daily", 1000, 10000, PolicyReject, 500, false},
		{"daily reached", 100, 0, PolicyReject, 100, true},
		{"monthly reached", 0, 500, PolicyReject, 500, true},
		{"warn only", 100, 0, PolicyWarn, 200, false},
		{"uncapped", 0, 0, PolicyReject, 1 << 40, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBudget(tc.daily, tc.monthly, tc.policy)
			b.Record(tc.used)

			err := b.Check(context.Background())
			if tc.wantErr != (err != nil) {
				t.Fatalf("Check() = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr && !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
				t.Errorf("expected ErrEmbeddingQuotaExceeded, got %v", err)
			}
		})
	}
}

func TestBudget_Remaining(t *testing.T) {
	capped := newTestBudget(1000, 10000, PolicyWarn)
	capped.Record(300)
	if d, m := capped.RemainingDaily(), capped.RemainingMonthly(); d != 700 || m != 9700 {
		t.Errorf("remaining = %d/%d, want 700/9700", d, m)
	}

	over := newTestBudget(10, 0, PolicyWarn)
	over.Record(25)
	if d := over.RemainingDaily(); d != 0 {
		t.Errorf("overspent daily remaining = %d, want 0", d)
	}

	uncapped := newTestBudget(0, 0, PolicyWarn)
	if d, m := uncapped.RemainingDaily(), uncapped.RemainingMonthly(); d != -1 || m != -1 {
		t.Errorf("uncapped remaining = %d/%d, want -1/-1", d, m)
	}
}

func TestBudget_Key(t *testing.T) {
	b := newTestBudget(0, 0, PolicyWarn)
	at := time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC)

	if got := b.key(&b.day, at); got != "vrag:budget:openai:daily:2026-03-07" {
		t.Errorf("daily key = %s", got)
	}
	if got := b.key(&b.month, at); got != "vrag:budget:openai:monthly:2026-03" {
		t.Errorf("monthly key = %s", got)
	}
}

func TestBudget_RollsOverAtMidnight(t *testing.T) {
	clock := time.Date(2026, time.March, 31, 23, 0, 0, 0, time.UTC)
	b := newTestBudget(100, 1000, PolicyReject)
	b.now = func() time.Time { return clock }
	b.day = newPeriod("daily", "2006-01-02", 100, startOfDay, clock)
	b.month = newPeriod("monthly", "2006-01", 1000, startOfMonth, clock)

	b.Record(100)
	if err := b.Check(context.Background()); err == nil {
		t.Fatal("expected the day to be spent")
	}

	clock = clock.Add(2 * time.Hour) // April 1st
	if err := b.Check(context.Background()); err != nil {
		t.Fatalf("new day and month must start fresh: %v", err)
	}
	if d, m := b.Used(); d != 0 || m != 0 {
		t.Errorf("used = %d/%d after rollover, want 0/0", d, m)
	}
}

func TestBudget_PersistRestoresCounters(t *testing.T) {
	store := newFakeBudgetStore()
	b := newTestBudget(1000, 10000, PolicyReject)
	now := b.now()
	store.data[b.key(&b.day, now)] = 300
	store.data[b.key(&b.month, now)] = 5000

	b.Persist(context.Background(), store)

	if d, m := b.Used(); d != 300 || m != 5000 {
		t.Errorf("used = %d/%d, want 300/5000", d, m)
	}
}

func TestBudget_PersistReadErrorStartsAtZero(t *testing.T) {
	store := newFakeBudgetStore()
	store.getErr = errors.New("connection refused")

	b := newTestBudget(1000, 10000, PolicyReject).Persist(context.Background(), store)

	if d, m := b.Used(); d != 0 || m != 0 {
		t.Errorf("used = %d/%d, want 0/0", d, m)
	}
}

func TestBudget_RecordWritesThrough(t *testing.T) {
	store := newFakeBudgetStore()
	b := newTestBudget(10000, 100000, PolicyWarn).Persist(context.Background(), store)

	for _, n := range []int64{100, 200, 300} {
		b.Record(n)
	}

	now := b.now()
	if got := store.value(b.key(&b.day, now)); got != 600 {
		t.Errorf("stored daily = %d, want 600", got)
	}
	if got := store.value(b.key(&b.month, now)); got != 600 {
		t.Errorf("stored monthly = %d, want 600", got)
	}
}

func TestBudget_RecordSurvivesStoreError(t *testing.T) {
	store := newFakeBudgetStore()
	b := newTestBudget(100, 0, PolicyReject).Persist(context.Background(), store)
	store.setErr = errors.New("write timeout")

	b.Record(100)

	if d, _ := b.Used(); d != 100 {
		t.Errorf("daily used = %d, want 100", d)
	}
	if err := b.Check(context.Background()); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Errorf("in-memory counter must still reject, got %v", err)
	}
}
