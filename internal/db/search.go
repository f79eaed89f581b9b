package db

// TagFilter restricts a search to documents whose tag field matches any
// of the given values (single value = equality, multiple = membership).
type TagFilter struct {
	Field  string
	Values []string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	Filters      []TagFilter
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. For KNN queries
// Score carries the engine's raw vector distance.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
