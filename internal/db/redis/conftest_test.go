package redis

import (
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/andrewcz-se/vector-rag/internal/db"
)

// newMockStore returns a store over a gomock rueidis client.
func newMockStore(t *testing.T) (*Store, *mock.Client) {
	t.Helper()
	c := mock.NewClient(gomock.NewController(t))
	return Wrap(c), c
}

// command matches a command by name and leading arguments.
func command(name string, args ...string) gomock.Matcher {
	return mock.MatchFn(func(cmd []string) bool {
		if len(cmd) < 1+len(args) || cmd[0] != name {
			return false
		}
		for i, a := range args {
			if cmd[i+1] != a {
				return false
			}
		}
		return true
	})
}

// requireDBError asserts err is a *db.Error for op and key.
func requireDBError(t *testing.T, err error, op, key string) {
	t.Helper()
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected *db.Error, got %T (%v)", err, err)
	}
	if dbErr.Op != op || dbErr.Key != key {
		t.Errorf("db.Error{Op: %q, Key: %q}, want {%q, %q}", dbErr.Op, dbErr.Key, op, key)
	}
}
