// Package snapshot persists an index as three JSON artifacts sharing a path prefix:
// P_chunks.json, P_vectorizer.json and P_embeddings.json. Every save stamps all three
// with the same generation id so a mixed set from an interrupted save is detected on read.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"paperrag/internal/domain"
	"paperrag/internal/embedding"
	"paperrag/internal/embedding/tfidf"
)

// Version is the artifact format version.
const Version = 1

var (
	// ErrNotFound is returned when at least one artifact is missing.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInconsistent is returned when the artifacts do not belong together.
	ErrInconsistent = errors.New("snapshot inconsistent")
)

// Snapshot is the persisted triple of corpus, vocabulary model and vector matrix.
type Snapshot struct {
	Generation string
	Chunks     []domain.ChunkRecord
	Model      tfidf.State
	Vectors    []embedding.SparseVector
}

type chunksFile struct {
	Generation string               `json:"generation"`
	Version    int                  `json:"version"`
	Chunks     []domain.ChunkRecord `json:"chunks"`
}

type vectorizerFile struct {
	Generation string `json:"generation"`
	Version    int    `json:"version"`
	tfidf.State
}

type embeddingsFile struct {
	Generation string                   `json:"generation"`
	Version    int                      `json:"version"`
	Dimension  int                      `json:"dimension"`
	Rows       []embedding.SparseVector `json:"rows"`
}

// Paths returns the artifact paths for prefix.
func Paths(prefix string) (chunks, vectorizer, embeddings string) {
	return prefix + "_chunks.json", prefix + "_vectorizer.json", prefix + "_embeddings.json"
}

// Write saves s under prefix. Each artifact is replaced atomically; a fresh generation
// id is assigned and recorded in s.
func Write(prefix string, s *Snapshot) error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidInput)
	}
	if len(s.Chunks) != len(s.Vectors) {
		return fmt.Errorf("%w: %d chunks but %d vectors", ErrInconsistent, len(s.Chunks), len(s.Vectors))
	}
	gen := uuid.NewString()
	chunksPath, vecPath, embPath := Paths(prefix)

	chunks := s.Chunks
	if chunks == nil {
		chunks = []domain.ChunkRecord{}
	}
	rows := s.Vectors
	if rows == nil {
		rows = []embedding.SparseVector{}
	}

	if err := writeJSON(chunksPath, chunksFile{Generation: gen, Version: Version, Chunks: chunks}); err != nil {
		return fmt.Errorf("writing chunks: %w", err)
	}
	if err := writeJSON(vecPath, vectorizerFile{Generation: gen, Version: Version, State: s.Model}); err != nil {
		return fmt.Errorf("writing vectorizer: %w", err)
	}
	emb := embeddingsFile{Generation: gen, Version: Version, Dimension: len(s.Model.Terms), Rows: rows}
	if err := writeJSON(embPath, emb); err != nil {
		return fmt.Errorf("writing embeddings: %w", err)
	}
	s.Generation = gen
	return nil
}

// Read loads the snapshot stored under prefix.
func Read(prefix string) (*Snapshot, error) {
	chunksPath, vecPath, embPath := Paths(prefix)

	var cf chunksFile
	var vf vectorizerFile
	var ef embeddingsFile
	for _, item := range []struct {
		path string
		out  any
	}{{chunksPath, &cf}, {vecPath, &vf}, {embPath, &ef}} {
		if err := readJSON(item.path, item.out); err != nil {
			return nil, err
		}
	}

	if cf.Generation != vf.Generation || cf.Generation != ef.Generation {
		return nil, fmt.Errorf("%w: generations %q, %q, %q", ErrInconsistent, cf.Generation, vf.Generation, ef.Generation)
	}
	if cf.Version != Version || vf.Version != Version || ef.Version != Version {
		return nil, fmt.Errorf("%w: unsupported format version", ErrInconsistent)
	}
	if vf.Name != tfidf.Name {
		return nil, fmt.Errorf("%w: vectorizer %q", ErrInconsistent, vf.Name)
	}
	if len(cf.Chunks) != len(ef.Rows) {
		return nil, fmt.Errorf("%w: %d chunks but %d rows", ErrInconsistent, len(cf.Chunks), len(ef.Rows))
	}
	dim := len(vf.Terms)
	if ef.Dimension != dim {
		return nil, fmt.Errorf("%w: dimension %d, vocabulary %d", ErrInconsistent, ef.Dimension, dim)
	}
	for i, row := range ef.Rows {
		if !row.Valid(dim) {
			return nil, fmt.Errorf("%w: row %d out of range", ErrInconsistent, i)
		}
	}

	return &Snapshot{
		Generation: cf.Generation,
		Chunks:     cf.Chunks,
		Model:      vf.State,
		Vectors:    ef.Rows,
	}, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
