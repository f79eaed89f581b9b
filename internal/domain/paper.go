package domain

import "time"

// CollectionName is the single logical namespace all papers share.
// Isolation between papers is achieved through metadata filtering,
// not separate collections.
const CollectionName = "academic_papers"

// KeyPrefix namespaces all paperdex keys in the database.
const KeyPrefix = "paperdex:"

// Section is a titled span of extracted paper text. It is owned by
// its Paper and has no independent lifecycle.
type Section struct {
	Name string
	Text string
	Page string // page reference from extraction, "N/A" when unknown
}

// Paper is the structured form of an uploaded document, as returned by
// the extraction service and consumed by ingestion. Papers are never
// mutated in place; re-ingestion produces a new identity.
type Paper struct {
	ID         string
	Filename   string
	Title      string
	Authors    string
	Year       string
	Abstract   string
	Sections   []Section
	References []string
	UploadedAt time.Time
}

// Extraction is the raw structured output of document extraction,
// before a paper identity or upload time is attached.
type Extraction struct {
	Title      string
	Authors    string
	Year       string
	Abstract   string
	Sections   []Section
	References []string
}

// PaperInfo is the per-paper summary derived from stored chunk metadata.
type PaperInfo struct {
	PaperID    string `json:"paper_id"`
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Year       string `json:"year"`
	UploadDate string `json:"upload_date"`
}
