package redis

import (
	"context"
	"fmt"

	"github.com/andrewcz-se/vector-rag/internal/db"
)

// Server error fragments that map to sentinel errors.
const (
	errIndexExists  = "index already exists"
	errUnknownIndex = "unknown index name"
	errNoSuchIndex  = "no such index"
	errValkeyIndex  = "index with name" // valkey-search: "Index with name 'x' not found ..."
)

// CreateIndex runs FT.CREATE for schema. A taken name yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, schema *db.IndexSchema) error {
	args, err := schema.CreateArgs()
	if err != nil {
		return fmt.Errorf("index schema: %w", err)
	}

	cmd := s.b().Arbitrary(db.OpCreateIndex).Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, errIndexExists) {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Key: schema.Name, Err: err}
	}
	return nil
}

// DropIndex runs FT.DROPINDEX without DD, so indexed hashes survive.
// A missing index yields db.ErrIndexNotFound.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	cmd := s.b().Arbitrary(db.OpDropIndex).Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, errUnknownIndex) {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropIndex, Key: name, Err: err}
	}
	return nil
}

// IndexExists probes the index with FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary(db.OpIndexInfo).Args(name).Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, errUnknownIndex):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Key: name, Err: err}
	}
}
