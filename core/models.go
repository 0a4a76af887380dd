package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a news document fetched from the store.
// It is immutable once fetched and scoped to a single pipeline run.
type Document struct {
	Id           ID
	Title        string
	Date         time.Time // Publication date
	ShortSummary string    // Store-provided abstract, used in judgment prompts
	FullContent  string
	InsertedAt   time.Time // When the document was inserted into the database
	UpdatedAt    time.Time // When the document was last updated
}

// DocumentID derives the canonical content-based ID for a document
// from its title and publication date.
func DocumentID(title string, date time.Time) ID {
	return IDFromContent("(" + title + "," + date.UTC().Format(time.DateOnly) + ")")
}

// Chunk is a fragment of a document's full content carrying the embedding
// vector used for similarity search. Chunks are produced at ingestion time.
type Chunk struct {
	Id         ID
	DocumentId ID
	Seq        int // Position of the chunk within its document, 0-based
	Contents   string
	Vector     []float32
	InsertedAt time.Time
}

// ScoredDocument is a document that survived relevance scoring.
// AverageScore is the arithmetic mean of the judgment samples and is
// always within [0,100] and at or above the configured threshold.
type ScoredDocument struct {
	Id               ID
	Title            string
	Date             time.Time
	AverageScore     float64
	GeneratedSummary string
	FullContent      string
}

// Report is the final output of a pipeline run. References are ordered by
// AverageScore descending; citation indices in the narrative are 1-based
// positions into that ordering.
type Report struct {
	Query      string
	Narrative  string
	References []ScoredDocument
}

// ChunkMatch is a chunk returned from vector similarity search.
type ChunkMatch struct {
	Chunk *Chunk
	Score float32
}
