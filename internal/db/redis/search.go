package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/andrewcz-se/vector-rag/internal/db"
	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/filter"
)

const (
	// listLimit caps SearchAll; the catalog is loaded in a single page.
	listLimit = 10000
	// scoreField is the pseudo-field FT.SEARCH fills with the KNN distance.
	scoreField = "__vector_score"
)

var (
	errNoIndex  = errors.New("index name is required")
	errNoVector = errors.New("query vector is required")
	errBadK     = errors.New("k must be positive")
)

// SearchKNN returns the q.K nearest hashes, nearest first, with cosine
// similarity as the score.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	args, err := knnArgs(q)
	if err != nil {
		return nil, err
	}
	return s.ftSearch(ctx, q.IndexName, args, true)
}

// SearchAll lists up to listLimit hashes of index.
func (s *Store) SearchAll(ctx context.Context, index string, fields []string) (*db.SearchResult, error) {
	if index == "" {
		return nil, errNoIndex
	}
	args := withReturn([]string{index, "*"}, fields)
	args = append(args, "LIMIT", "0", strconv.Itoa(listLimit))
	return s.ftSearch(ctx, index, args, false)
}

func (s *Store) ftSearch(ctx context.Context, index string, args []string, scored bool) (*db.SearchResult, error) {
	raw, err := s.do(ctx, s.b().Arbitrary(db.OpSearch).Args(args...).Build()).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Key: index, Err: classify(err)}
	}
	return parseReply(raw, scored)
}

// classify tags a failed search with db.ErrIndexNotFound when the server does
// not know the index, and with db.ErrUnavailable when no reply came back.
// Caller cancellation and other server errors pass through unchanged.
func classify(err error) error {
	if _, ok := rueidis.IsRedisErr(err); ok {
		if isRedisErr(err, errUnknownIndex) || isRedisErr(err, errNoSuchIndex) || isRedisErr(err, errValkeyIndex) {
			return fmt.Errorf("%w: %w", db.ErrIndexNotFound, err)
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", db.ErrUnavailable, err)
}

// knnArgs renders
//
//	index "(filter)=>[KNN k @vector $BLOB]" [RETURN n f...] PARAMS 2 BLOB <vec> DIALECT 2
//
// valkey-search accepts the same dialect, so the valkey driver inherits SearchKNN.
func knnArgs(q *db.KNNQuery) ([]string, error) {
	switch {
	case q.IndexName == "":
		return nil, errNoIndex
	case len(q.Vector) == 0:
		return nil, errNoVector
	case q.K <= 0:
		return nil, errBadK
	}

	prefilter := "*"
	if f := buildFilter(q.Filters); f != "" {
		prefilter = "(" + f + ")"
	}
	query := fmt.Sprintf("%s=>[KNN %d @vector $BLOB]", prefilter, q.K)

	args := withReturn([]string{q.IndexName, query}, q.ReturnFields)
	return append(args, "PARAMS", "2", "BLOB", string(db.EncodeVector(q.Vector)), "DIALECT", "2"), nil
}

func withReturn(args, fields []string) []string {
	if len(fields) == 0 {
		return args
	}
	args = append(args, "RETURN", strconv.Itoa(len(fields)))
	return append(args, fields...)
}

// parseReply reads a RESP2 FT.SEARCH reply: [total, key1, [f, v, ...], key2, ...].
// With scored set, the KNN distance is moved out of the fields and turned
// into a similarity clamped to [0, 1].
func parseReply(raw []rueidis.RedisMessage, scored bool) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}

	res := &db.SearchResult{Total: int(total), Entries: make([]db.SearchEntry, 0, (len(raw)-1)/2)}
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{Key: key, Fields: fieldMap(pairs)}
		if scored {
			if d, err := strconv.ParseFloat(entry.Fields[scoreField], 64); err == nil {
				entry.Score = min(1, max(0, 1-d))
			}
			delete(entry.Fields, scoreField)
		}
		res.Entries = append(res.Entries, entry)
	}
	return res, nil
}

func fieldMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		name, err := pairs[i].ToString()
		if err != nil {
			continue
		}
		if v, err := pairs[i+1].ToString(); err == nil {
			m[name] = v
		}
	}
	return m
}

// buildFilter renders the TAG pre-filter; juxtaposed clauses are ANDed.
func buildFilter(expr filter.Expression) string {
	clauses := make([]string, 0, len(expr.Must()))
	for _, c := range expr.Must() {
		clauses = append(clauses, "@"+c.Key()+":{"+escapeTag(c.Match())+"}")
	}
	return strings.Join(clauses, " ")
}

// escapeTag backslash-escapes everything but letters, digits and underscores,
// which is what the query parser treats as separators inside a TAG value.
func escapeTag(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
