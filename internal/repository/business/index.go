package business

import "github.com/andrewcz-se/vector-rag/internal/db"

// vectorAlias is the name KNN queries use for the embedding field.
const vectorAlias = "vector"

// indexSchema describes the collection index: category as a TAG for
// pre-filtering and the document embedding as an HNSW/COSINE vector.
// valkey-search has no TEXT fields, so the document itself is stored but not indexed.
func indexSchema(collection string, vectorDim int, hnsw HNSWConfig) *db.IndexSchema {
	return &db.IndexSchema{
		Name:   IndexName(collection),
		Prefix: KeyPrefix(collection),
		Tags:   []string{fieldCategory},
		Vector: db.VectorField{
			Field:          fieldVector,
			Alias:          vectorAlias,
			Dim:            vectorDim,
			Metric:         db.DistanceCosine,
			M:              hnsw.M,
			EFConstruction: hnsw.EFConstruct,
		},
	}
}
