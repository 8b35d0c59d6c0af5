package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DistanceMetric is the distance function of a vector field.
type DistanceMetric string

// Distance metrics understood by valkey-search and RediSearch.
const (
	DistanceCosine DistanceMetric = "COSINE"
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
)

// VectorField is an HNSW index over packed FLOAT32 vectors stored in a hash field.
type VectorField struct {
	Field          string // hash field holding the little-endian vector bytes
	Alias          string // name used in KNN queries; empty means Field
	Dim            int
	Metric         DistanceMetric // empty means COSINE
	M              int            // 0 keeps the server default
	EFConstruction int            // 0 keeps the server default
}

func (v VectorField) queryName() string {
	if v.Alias != "" {
		return v.Alias
	}
	return v.Field
}

// IndexSchema describes a HASH-backed FT index over one key prefix:
// TAG fields usable as KNN pre-filters plus a single vector field.
type IndexSchema struct {
	Name   string
	Prefix string
	Tags   []string
	Vector VectorField
}

// Validate reports the first problem that would make FT.CREATE fail.
func (s *IndexSchema) Validate() error {
	if !IsValidIdentifier(s.Name) {
		return fmt.Errorf("invalid index name %q", s.Name)
	}
	if s.Prefix == "" {
		return errors.New("key prefix is required")
	}
	if s.Vector.Field == "" {
		return errors.New("vector field is required")
	}
	if s.Vector.Dim <= 0 {
		return fmt.Errorf("vector dim must be positive, got %d", s.Vector.Dim)
	}

	seen := map[string]bool{s.Vector.queryName(): true}
	for _, tag := range s.Tags {
		if tag == "" {
			return errors.New("tag field name is empty")
		}
		if seen[tag] {
			return fmt.Errorf("duplicate field %q", tag)
		}
		seen[tag] = true
	}
	return nil
}

// CreateArgs renders the FT.CREATE arguments that follow the command name.
func (s *IndexSchema) CreateArgs() ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	args := []string{s.Name, "ON", "HASH", "PREFIX", "1", s.Prefix, "SCHEMA"}
	for _, tag := range s.Tags {
		args = append(args, tag, "TAG")
	}

	v := s.Vector
	metric := v.Metric
	if metric == "" {
		metric = DistanceCosine
	}
	attrs := []string{"TYPE", "FLOAT32", "DIM", strconv.Itoa(v.Dim), "DISTANCE_METRIC", string(metric)}
	if v.M > 0 {
		attrs = append(attrs, "M", strconv.Itoa(v.M))
	}
	if v.EFConstruction > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(v.EFConstruction))
	}

	args = append(args, v.Field)
	if v.Alias != "" {
		args = append(args, "AS", v.Alias)
	}
	args = append(args, "VECTOR", "HNSW", strconv.Itoa(len(attrs)))
	return append(args, attrs...), nil
}

// String renders the schema as the FT.CREATE command line.
func (s *IndexSchema) String() string {
	args, err := s.CreateArgs()
	if err != nil {
		return "FT.CREATE <invalid: " + err.Error() + ">"
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

// IsValidIdentifier reports whether s is a non-empty run of [a-zA-Z0-9_:-].
func IsValidIdentifier(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '_' || r == ':' || r == '-':
			return false
		}
		return true
	}) < 0
}
