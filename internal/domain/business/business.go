// Package business holds the indexed business record and its document form.
package business

import (
	"fmt"
	"regexp"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Fields is the raw input for New.
type Fields struct {
	ID          string
	Name        string
	Description string
	Address     string
	Category    string
	Phone       string
	Hours       string
}

// Record is a local business (immutable value object).
type Record struct {
	id          string
	name        string
	description string
	address     string
	category    string
	phone       string
	hours       string
}

// New validates and creates a Record.
// ID: ^[a-zA-Z0-9_-]+$, max 256 chars. Name and category are required.
func New(f Fields) (Record, error) {
	if f.ID == "" {
		return Record{}, fmt.Errorf("business ID is required")
	}
	if len(f.ID) > 256 {
		return Record{}, fmt.Errorf("business ID too long (max 256)")
	}
	if !idRegex.MatchString(f.ID) {
		return Record{}, fmt.Errorf("business ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(f.Name) == "" {
		return Record{}, fmt.Errorf("business %q: name is required", f.ID)
	}
	if strings.TrimSpace(f.Category) == "" {
		return Record{}, fmt.Errorf("business %q: category is required", f.ID)
	}
	return Reconstruct(f), nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(f Fields) Record {
	return Record{
		id:          f.ID,
		name:        f.Name,
		description: f.Description,
		address:     f.Address,
		category:    f.Category,
		phone:       f.Phone,
		hours:       f.Hours,
	}
}

// ID returns the record identifier.
func (r Record) ID() string { return r.id }

// Name returns the business name.
func (r Record) Name() string { return r.name }

// Description returns the free-text description.
func (r Record) Description() string { return r.description }

// Address returns the street address.
func (r Record) Address() string { return r.address }

// Category returns the business category.
func (r Record) Category() string { return r.category }

// Phone returns the phone number.
func (r Record) Phone() string { return r.phone }

// Hours returns the opening hours.
func (r Record) Hours() string { return r.hours }

// Document composes the text that gets embedded and searched.
// It depends only on record fields, so re-indexing yields identical text.
func (r Record) Document() string {
	return fmt.Sprintf("Name: %s. Type: %s. Description: %s", r.name, r.category, r.description)
}
