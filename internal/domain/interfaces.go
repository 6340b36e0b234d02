package domain

import "time"

// ChunkRecord is a fixed-size window of a document's text, the atomic retrieval unit.
// Records are immutable once appended to an index.
type ChunkRecord struct {
	Text       string `json:"text"`
	SourceName string `json:"source_name"`
	// Page is an estimate derived from the word offset, not a real page number.
	Page       int `json:"page"`
	SequenceID int `json:"sequence_id"`
}

// SearchResult pairs a chunk with its cosine similarity to the query.
type SearchResult struct {
	Chunk ChunkRecord `json:"chunk"`
	Score float64     `json:"score"`
}

// Paper is a registry entry for an ingested document.
type Paper struct {
	Name    string    `json:"name"`
	Chunks  int       `json:"chunks"`
	AddedAt time.Time `json:"added_at"`
}

// Chunker splits extracted document text into chunk records.
type Chunker interface {
	Chunk(text, sourceName string) []ChunkRecord
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Answer is a generated reply together with the chunks it was grounded on.
type Answer struct {
	Text    string         `json:"text"`
	Sources []SearchResult `json:"sources"`
}
