package business

import (
	"fmt"
	"strings"

	"github.com/andrewcz-se/vector-rag/internal/domain"
	biz "github.com/andrewcz-se/vector-rag/internal/domain/business"
)

// Hash field names. Metadata fields are stored as-is; the document text and
// its vector use reserved names that cannot clash with metadata.
const (
	fieldName        = "name"
	fieldDescription = "description"
	fieldAddress     = "address"
	fieldCategory    = "category"
	fieldPhone       = "phone"
	fieldHours       = "hours"
	fieldContent     = "__content"
	fieldVector      = "__vector"
)

// ReturnFields lists the hash fields needed to rebuild a record and its document.
var ReturnFields = []string{
	fieldName, fieldDescription, fieldAddress, fieldCategory, fieldPhone, fieldHours, fieldContent,
}

// IndexName returns the FT index name for a collection.
func IndexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)
}

// KeyPrefix returns the hash key prefix covered by the collection index.
func KeyPrefix(collection string) string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
}

func recordKey(collection, id string) string {
	return KeyPrefix(collection) + id
}

// recordToHash flattens a record, its document and its vector into HSET fields.
func recordToHash(r biz.Record, vector string) map[string]string {
	return map[string]string{
		fieldName:        r.Name(),
		fieldDescription: r.Description(),
		fieldAddress:     r.Address(),
		fieldCategory:    r.Category(),
		fieldPhone:       r.Phone(),
		fieldHours:       r.Hours(),
		fieldContent:     r.Document(),
		fieldVector:      vector,
	}
}

// Decode hydrates a record and its stored document from a search entry.
// The id is the key with the collection prefix removed.
func Decode(collection, key string, fields map[string]string) (biz.Record, string) {
	rec := biz.Reconstruct(biz.Fields{
		ID:          strings.TrimPrefix(key, KeyPrefix(collection)),
		Name:        fields[fieldName],
		Description: fields[fieldDescription],
		Address:     fields[fieldAddress],
		Category:    fields[fieldCategory],
		Phone:       fields[fieldPhone],
		Hours:       fields[fieldHours],
	})
	return rec, fields[fieldContent]
}
