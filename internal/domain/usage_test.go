package domain

import (
	"context"
	"sync"
	"testing"
)

func TestUsage_NilSafe(t *testing.T) {
	var u *Usage
	u.Add(10)
	if u.Tokens() != 0 || u.Embedded() {
		t.Error("nil usage must stay empty")
	}
	if UsageFrom(context.Background()) != nil {
		t.Error("expected nil usage for a bare context")
	}
}

func TestUsage_ThroughContext(t *testing.T) {
	ctx, u := WithUsage(context.Background())
	if u.Embedded() {
		t.Fatal("fresh usage reports a call")
	}

	UsageFrom(ctx).Add(0)
	if !u.Embedded() || u.Tokens() != 0 {
		t.Errorf("cache hit: embedded=%v tokens=%d", u.Embedded(), u.Tokens())
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UsageFrom(ctx).Add(7)
		}()
	}
	wg.Wait()
	if u.Tokens() != 70 {
		t.Errorf("tokens = %d, want 70", u.Tokens())
	}
}
