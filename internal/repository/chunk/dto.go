package chunk

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/scholarlabs/paperdex/internal/domain"
)

// Reserved hash fields that carry chunk payload rather than metadata.
const (
	fieldContent = "__content"
	fieldVector  = "__vector"
)

// buildHashFields converts a domain Chunk into a flat map[string]string for HSET.
func buildHashFields(c *domain.Chunk) map[string]string {
	return map[string]string{
		fieldContent:  c.Text,
		fieldVector:   vectorToBytes(c.Vector),
		"paper_id":    c.Metadata.PaperID,
		"title":       c.Metadata.Title,
		"authors":     c.Metadata.Authors,
		"year":        c.Metadata.Year,
		"section":     c.Metadata.Section,
		"page":        c.Metadata.Page,
		"chunk_index": strconv.Itoa(c.Metadata.ChunkIndex),
		"upload_date": c.Metadata.UploadDate,
	}
}

// parseHashFields converts a flat hash map back into a domain Chunk.
func parseHashFields(id string, m map[string]string) domain.Chunk {
	return domain.Chunk{
		ID:       id,
		Text:     m[fieldContent],
		Vector:   bytesToVector(m[fieldVector]),
		Metadata: parseMetadata(m),
	}
}

func parseMetadata(m map[string]string) domain.ChunkMetadata {
	idx, _ := strconv.Atoi(m["chunk_index"])
	return domain.ChunkMetadata{
		PaperID:    m["paper_id"],
		Title:      m["title"],
		Authors:    m["authors"],
		Year:       m["year"],
		Section:    m["section"],
		Page:       m["page"],
		ChunkIndex: idx,
		UploadDate: m["upload_date"],
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 || len(b) == 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
