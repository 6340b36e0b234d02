// Package extract turns document files into plain text for chunking.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"paperrag/internal/domain"
)

// Extractor returns the plain text of a document file.
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(path string) (string, error)

func (f ExtractorFunc) Extract(path string) (string, error) { return f(path) }

var byExtension = map[string]Extractor{
	".pdf":  ExtractorFunc(PDF),
	".txt":  ExtractorFunc(Text),
	".md":   ExtractorFunc(Text),
	".html": ExtractorFunc(HTMLFile),
	".htm":  ExtractorFunc(HTMLFile),
}

// Supported reports whether path has an extension with a registered extractor.
func Supported(path string) bool {
	_, ok := byExtension[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ForPath picks an extractor by file extension.
func ForPath(path string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, ext)
	}
	return e, nil
}

// File extracts the text of path with the extractor matching its extension.
func File(path string) (string, error) {
	e, err := ForPath(path)
	if err != nil {
		return "", err
	}
	return e.Extract(path)
}
