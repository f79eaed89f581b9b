package chunk

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/scholarlabs/paperdex/internal/db"
	"github.com/scholarlabs/paperdex/internal/domain"
)

// listPageSize bounds a single FT.SEARCH enumeration page.
const listPageSize = 1000

// store is the consumer interface for chunk persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	DelMulti(ctx context.Context, keys []string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Config holds repository settings.
type Config struct {
	KeyPrefix string
	VectorDim int
	HNSW      HNSWConfig
}

// Repo stores paper chunks as Redis hashes under a single FT index.
type Repo struct {
	store store
	cfg   Config
}

// New creates a chunk repository.
func New(s store, cfg Config) *Repo {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = domain.KeyPrefix
	}
	return &Repo{store: s, cfg: cfg}
}

// EnsureIndex creates the chunk FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.indexName(), r.chunkPrefix(), r.cfg.VectorDim, r.cfg.HNSW)
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Add stores chunks in a single pipelined write. Deterministic chunk IDs
// make re-ingestion of the same paper an idempotent key-for-key overwrite.
func (r *Repo) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(chunks))
	for i := range chunks {
		items[i] = db.HashSetItem{
			Key:    r.chunkKey(chunks[i].ID),
			Fields: buildHashFields(&chunks[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store %d chunks: %w", len(chunks), err)
	}
	return nil
}

// Get returns a single chunk by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Chunk, error) {
	m, err := r.store.HGetAll(ctx, r.chunkKey(id))
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("hgetall %s: %w", id, err)
	}
	if len(m) == 0 {
		return domain.Chunk{}, domain.ErrPaperNotFound
	}
	return parseHashFields(id, m), nil
}

// Query runs KNN retrieval and returns contexts ordered by descending
// relevance. Relevance is 1 minus the engine's cosine distance; near
// duplicates can exceed 1 due to float error and are reported as-is.
func (r *Repo) Query(ctx context.Context, vector []float32, k int, paperIDs []string) ([]domain.Context, error) {
	q := &db.KNNQuery{
		IndexName: r.indexName(),
		Vector:    vector,
		K:         k,
		ReturnFields: []string{
			fieldContent, "paper_id", "title", "authors", "year",
			"section", "page", "chunk_index", "upload_date", "__vector_score",
		},
	}
	if len(paperIDs) > 0 {
		q.Filters = []db.TagFilter{{Field: "paper_id", Values: paperIDs}}
	}

	result, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	contexts := make([]domain.Context, 0, len(result.Entries))
	for _, entry := range result.Entries {
		contexts = append(contexts, domain.Context{
			Text:           entry.Fields[fieldContent],
			Metadata:       parseMetadata(entry.Fields),
			RelevanceScore: 1 - entry.Score,
		})
	}
	return contexts, nil
}

// GetByPaper returns all chunks of a paper ordered by chunk index.
// Vectors are not loaded.
func (r *Repo) GetByPaper(ctx context.Context, paperID string) ([]domain.Chunk, error) {
	if paperID == "" {
		return nil, domain.ErrMissingPaperID
	}

	query := paperQuery(paperID)
	fields := []string{
		fieldContent, "paper_id", "title", "authors", "year",
		"section", "page", "chunk_index", "upload_date",
	}

	var chunks []domain.Chunk
	offset := 0
	for {
		result, err := r.store.SearchList(ctx, r.indexName(), query, offset, listPageSize, fields)
		if err != nil {
			return nil, fmt.Errorf("list chunks for %s: %w", paperID, err)
		}
		for _, entry := range result.Entries {
			chunks = append(chunks, parseHashFields(extractChunkID(entry.Key, r.chunkPrefix()), entry.Fields))
		}
		offset += len(result.Entries)
		if offset >= result.Total || len(result.Entries) == 0 {
			break
		}
	}

	if len(chunks) == 0 {
		return nil, domain.ErrPaperNotFound
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Metadata.ChunkIndex < chunks[j].Metadata.ChunkIndex
	})
	return chunks, nil
}

// DeleteByPaper removes every chunk of a paper. Returns the number of
// chunks deleted; zero means the paper was not present.
func (r *Repo) DeleteByPaper(ctx context.Context, paperID string) (int, error) {
	if paperID == "" {
		return 0, domain.ErrMissingPaperID
	}

	query := paperQuery(paperID)

	var keys []string
	offset := 0
	for {
		result, err := r.store.SearchList(ctx, r.indexName(), query, offset, listPageSize, []string{"paper_id"})
		if err != nil {
			return 0, fmt.Errorf("list chunks for %s: %w", paperID, err)
		}
		for _, entry := range result.Entries {
			keys = append(keys, entry.Key)
		}
		offset += len(result.Entries)
		if offset >= result.Total || len(result.Entries) == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return 0, nil
	}

	deleted, err := r.store.DelMulti(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("delete %d chunks: %w", len(keys), err)
	}
	return deleted, nil
}

// ListPapers enumerates distinct papers via their first chunk
// (chunk_index 0 exists for every ingested paper).
func (r *Repo) ListPapers(ctx context.Context) ([]domain.PaperInfo, error) {
	fields := []string{"paper_id", "title", "authors", "year", "upload_date"}

	var papers []domain.PaperInfo
	seen := make(map[string]bool)
	offset := 0
	for {
		result, err := r.store.SearchList(ctx, r.indexName(), "@chunk_index:[0 0]", offset, listPageSize, fields)
		if err != nil {
			return nil, fmt.Errorf("list papers: %w", err)
		}
		for _, entry := range result.Entries {
			id := entry.Fields["paper_id"]
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			papers = append(papers, domain.PaperInfo{
				PaperID:    id,
				Title:      entry.Fields["title"],
				Authors:    entry.Fields["authors"],
				Year:       entry.Fields["year"],
				UploadDate: entry.Fields["upload_date"],
			})
		}
		offset += len(result.Entries)
		if offset >= result.Total || len(result.Entries) == 0 {
			break
		}
	}

	sort.Slice(papers, func(i, j int) bool {
		return papers[i].UploadDate < papers[j].UploadDate
	})
	return papers, nil
}

// CountChunks returns the total number of stored chunks.
func (r *Repo) CountChunks(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// CountPapers returns the number of distinct papers. Chunk indexes
// restart in every section, so index-0 hits must be deduped by paper_id
// rather than counted raw.
func (r *Repo) CountPapers(ctx context.Context) (int, error) {
	seen := make(map[string]bool)
	offset := 0
	for {
		result, err := r.store.SearchList(ctx, r.indexName(), "@chunk_index:[0 0]", offset, listPageSize, []string{"paper_id"})
		if err != nil {
			return 0, fmt.Errorf("count papers: %w", err)
		}
		for _, entry := range result.Entries {
			if id := entry.Fields["paper_id"]; id != "" {
				seen[id] = true
			}
		}
		offset += len(result.Entries)
		if offset >= result.Total || len(result.Entries) == 0 {
			break
		}
	}
	return len(seen), nil
}

func (r *Repo) chunkPrefix() string {
	return r.cfg.KeyPrefix + "chunks:"
}

func (r *Repo) chunkKey(id string) string {
	return r.chunkPrefix() + id
}

func (r *Repo) indexName() string {
	return r.cfg.KeyPrefix + "chunks:idx"
}

// paperQuery builds an exact-match tag query. Paper IDs are MD5 hex,
// so no tag escaping is needed.
func paperQuery(paperID string) string {
	return fmt.Sprintf("@paper_id:{%s}", paperID)
}

func extractChunkID(key, prefix string) string {
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}
