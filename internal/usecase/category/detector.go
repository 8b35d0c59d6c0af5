// Package category detects a known business category mentioned in a query.
package category

import "strings"

// DefaultVocabulary is the category list used when configuration provides none.
var DefaultVocabulary = []string{
	"auto repair",
	"restaurant",
	"cafe",
	"bookstore",
	"hardware store",
	"electronics",
}

// Detector matches queries against an ordered category vocabulary.
// Safe for concurrent use: the vocabulary is fixed at construction.
type Detector struct {
	vocab []string
}

// New creates a Detector. Terms are lower-cased and blank terms dropped;
// declaration order decides which term wins when several match.
func New(vocab []string) *Detector {
	terms := make([]string, 0, len(vocab))
	for _, v := range vocab {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			terms = append(terms, v)
		}
	}
	return &Detector{vocab: terms}
}

// Detect returns the first vocabulary term that occurs as a substring of the
// lower-cased query. Plain substring matching: "cafeteria" matches "cafe".
func (d *Detector) Detect(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, term := range d.vocab {
		if strings.Contains(q, term) {
			return term, true
		}
	}
	return "", false
}

// Vocabulary returns a copy of the normalized terms in declaration order.
func (d *Detector) Vocabulary() []string {
	out := make([]string, len(d.vocab))
	copy(out, d.vocab)
	return out
}
