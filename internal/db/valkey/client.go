// Package valkey implements db.Store for Valkey with the valkey-search module.
// It reuses the Redis driver and overrides only what valkey-search lacks.
package valkey

import (
	"github.com/redis/rueidis"

	"github.com/andrewcz-se/vector-rag/internal/db"
	"github.com/andrewcz-se/vector-rag/internal/db/redis"
)

var _ db.Store = (*Store)(nil)

// Config holds connection parameters. Valkey cluster mode has a single database.
type Config struct {
	Addrs    []string
	Username string
	Password string
}

// Store is the Redis store with a SCAN-based SearchAll.
type Store struct {
	*redis.Store
}

// NewStore connects and returns a Valkey store.
func NewStore(cfg Config) (*Store, error) {
	client, err := redis.Connect(redis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return Wrap(client), nil
}

// Wrap builds a store on an existing client.
func Wrap(c rueidis.Client) *Store {
	return &Store{Store: redis.Wrap(c)}
}
