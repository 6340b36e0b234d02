package embedding

// Vectorizer turns free text into sparse vectors over a vocabulary fit on a corpus.
// Fit replaces any previous state; Transform never fails and maps unknown terms to zero.
type Vectorizer interface {
	Name() string
	Fit(corpus []string)
	Fitted() bool
	Dimension() int
	Transform(text string) SparseVector
}
