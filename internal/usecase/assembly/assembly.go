// Package assembly turns retrieval matches into display records and LLM context.
package assembly

import (
	"fmt"

	"github.com/andrewcz-se/vector-rag/internal/domain/retrieval/match"
)

// Record is a business as shown to API clients.
type Record struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	Type         string `json:"type"`
	Phone        string `json:"phone"`
	Hours        string `json:"hours"`
	RichDocument string `json:"rich_document"`
}

// Assemble returns one display record and one context entry per match, in match order.
func Assemble(matches []match.Match) ([]Record, []string) {
	records := make([]Record, 0, len(matches))
	entries := make([]string, 0, len(matches))

	for _, m := range matches {
		rec := m.Record()
		records = append(records, Record{
			Name:         rec.Name(),
			Address:      rec.Address(),
			Type:         rec.Category(),
			Phone:        rec.Phone(),
			Hours:        rec.Hours(),
			RichDocument: m.Document(),
		})
		entries = append(entries, ContextEntry(m))
	}

	return records, entries
}

// ContextEntry renders a match as a single line of LLM context.
func ContextEntry(m match.Match) string {
	rec := m.Record()
	return fmt.Sprintf("%s Address: %s. Phone: %s. Hours: %s.",
		m.Document(), rec.Address(), rec.Phone(), rec.Hours())
}
