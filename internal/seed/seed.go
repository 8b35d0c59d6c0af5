// Package seed provides the business records indexed at startup.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
)

//go:embed businesses.yaml
var builtin []byte

type file struct {
	Businesses []entry `yaml:"businesses"`
}

type entry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Address     string `yaml:"address"`
	Type        string `yaml:"type"`
	Phone       string `yaml:"phone"`
	Hours       string `yaml:"hours"`
}

// Load reads records from path, or the built-in data set when path is empty.
func Load(path string) ([]biz.Fields, error) {
	if path == "" {
		return Parse(builtin)
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Duplicate ids are rejected.
func Parse(data []byte) ([]biz.Fields, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Businesses))
	out := make([]biz.Fields, 0, len(f.Businesses))
	for _, e := range f.Businesses {
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate business id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
		out = append(out, biz.Fields{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Address:     e.Address,
			Category:    e.Type,
			Phone:       e.Phone,
			Hours:       e.Hours,
		})
	}
	return out, nil
}
