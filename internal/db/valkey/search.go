package valkey

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/andrewcz-se/vector-rag/internal/db"
)

// indexSuffix terminates every index name; the rest is the key prefix it covers.
const indexSuffix = "idx"

// SearchAll lists an index by walking its key prefix. valkey-search only
// answers KNN queries, so a plain listing cannot go through FT.SEARCH.
// Entries are ordered by key.
func (s *Store) SearchAll(ctx context.Context, index string, fields []string) (*db.SearchResult, error) {
	if index == "" {
		return nil, errors.New("search all: index name is required")
	}

	keys, err := s.Scan(ctx, scanPattern(index))
	if err != nil {
		return nil, fmt.Errorf("search all %s: %w", index, err)
	}
	slices.Sort(keys)

	hashes, err := s.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("search all %s: %w", index, err)
	}

	res := &db.SearchResult{Entries: make([]db.SearchEntry, 0, len(keys))}
	for i, h := range hashes {
		if len(h) == 0 {
			continue // removed after the scan saw it
		}
		res.Entries = append(res.Entries, db.SearchEntry{Key: keys[i], Fields: pick(h, fields)})
	}
	res.Total = len(res.Entries)
	return res, nil
}

// pick narrows a hash to fields, like FT.SEARCH RETURN. Empty fields keeps all.
func pick(h map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return h
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := h[f]; ok {
			out[f] = v
		}
	}
	return out
}

// scanPattern maps "vrag:businesses:idx" to "vrag:businesses:*".
func scanPattern(index string) string {
	prefix, ok := strings.CutSuffix(index, indexSuffix)
	if !ok || !strings.HasSuffix(prefix, ":") {
		prefix = index + ":"
	}
	return prefix + "*"
}
