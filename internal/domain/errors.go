package domain

import "errors"

var (
	// ErrInvalidConfig reports a configuration that cannot produce a working component,
	// e.g. a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput reports a malformed argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports a missing paper or entity.
	ErrNotFound = errors.New("not found")

	// ErrPaperExists reports an attempt to register a paper name twice.
	ErrPaperExists = errors.New("paper already exists")

	// ErrNoGenerator reports that an operation needs a generation backend but none is configured.
	ErrNoGenerator = errors.New("no generator configured")
)
