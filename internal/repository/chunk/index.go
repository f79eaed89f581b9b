package chunk

import (
	"github.com/scholarlabs/paperdex/internal/db"
)

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex defines the FT index over chunk hashes: tag fields for
// pre-filtering, a numeric chunk position, and the HNSW vector field.
// The vector field is aliased to "vector" so KNN queries address it as
// @vector and the engine reports distance as __vector_score.
func buildIndex(name, prefix string, vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	def := &db.IndexDefinition{
		Name:     name,
		Prefixes: []string{prefix},
		Fields: []db.IndexField{
			{Name: "paper_id", Type: db.IndexFieldTag},
			{Name: "section", Type: db.IndexFieldTag},
			{Name: "year", Type: db.IndexFieldTag},
			{Name: "chunk_index", Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnsw.M,
				VectorEFConstruct: hnsw.EFConstruct,
			},
		},
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}
