package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, v bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(v)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestDebug(t *testing.T) {
	buf := capture(t, true)
	Debug("rebuilt %d chunks", 3)
	assert.Equal(t, "[DEBUG] rebuilt 3 chunks\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)
	Debug("hidden")
	Info("hidden")
	Section("hidden")
	assert.Zero(t, buf.Len())
}

func TestWarnAndError_AlwaysPrint(t *testing.T) {
	buf := capture(t, false)
	Warn("index %s discarded", "rag_index")
	Error("boom")
	assert.Equal(t, "[WARN] index rag_index discarded\n[ERROR] boom\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Ingest")
	assert.Equal(t, "\n=== Ingest ===\n", buf.String())
}
