package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperrag/internal/domain"
)

type fakePort struct {
	results  []domain.SearchResult
	answer   domain.Answer
	err      error
	queries  []string
	asked    []string
	lastTopK int
}

func (f *fakePort) Retrieve(query string, topK int) []domain.SearchResult {
	f.queries = append(f.queries, query)
	f.lastTopK = topK
	return f.results
}

func (f *fakePort) Ask(_ context.Context, question string) (domain.Answer, error) {
	f.asked = append(f.asked, question)
	return f.answer, f.err
}

var hits = []domain.SearchResult{
	{Chunk: domain.ChunkRecord{Text: "Pooling reduces resolution. Convolution detects edges.", SourceName: "cnn.pdf", Page: 1}, Score: 0.8},
	{Chunk: domain.ChunkRecord{Text: "Recurrent cells carry state.", SourceName: "rnn.pdf", Page: 2}, Score: 0.4},
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func ready(t *testing.T, port PaperPort) Model {
	t.Helper()
	m := New(context.Background(), port, 4, "2 papers, 10 chunks")
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestView_BeforeWindowSize(t *testing.T) {
	m := New(context.Background(), &fakePort{}, 5, "")
	assert.Equal(t, "Loading...", m.View())
}

func TestSearch_ShowsCitationAndNavigates(t *testing.T) {
	port := &fakePort{results: hits}
	m := ready(t, port)
	assert.Contains(t, m.View(), "2 papers, 10 chunks")

	m = typeText(t, m, "convolution")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"convolution"}, port.queries)
	assert.Equal(t, 4, port.lastTopK)
	assert.Contains(t, m.renderContent(), "[cnn.pdf, Page 1]")
	assert.Contains(t, m.status, "Results for")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.renderContent(), "[rnn.pdf, Page 2]")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.cursor)
}

func TestSearch_NoResults(t *testing.T) {
	port := &fakePort{}
	m := ready(t, port)
	m = typeText(t, m, "zzz")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.status, "No results")
	assert.Equal(t, "No results yet.", m.renderContent())
}

func TestSearch_BlankQueryIgnored(t *testing.T) {
	port := &fakePort{results: hits}
	m := ready(t, port)
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, port.queries)
}

func TestAskMode(t *testing.T) {
	port := &fakePort{answer: domain.Answer{Text: "Convolution detects edges [cnn.pdf, Page 1].", Sources: hits[:1]}}
	m := ready(t, port)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeAsk, m.mode)
	assert.Contains(t, m.View(), "[ask]")

	m = typeText(t, m, "what detects edges?")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	m, _ = send(t, m, cmd())
	assert.False(t, m.busy)
	assert.Equal(t, []string{"what detects edges?"}, port.asked)
	out := m.renderContent()
	assert.Contains(t, out, "Convolution detects edges")
	assert.Contains(t, out, "[Source 1] [cnn.pdf, Page 1]")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeSearch, m.mode)
}

func TestAskMode_NoGeneratorFallsBackToPassages(t *testing.T) {
	port := &fakePort{answer: domain.Answer{Sources: hits}, err: domain.ErrNoGenerator}
	m := ready(t, port)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "edges")
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Nil(t, m.answer)
	assert.Len(t, m.results, 2)
	assert.Contains(t, m.status, "No generator")
}

func TestQuitKeys(t *testing.T) {
	m := ready(t, &fakePort{})
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestHighlightBestSentence(t *testing.T) {
	text := "Pooling reduces resolution. Convolution detects edges. Trailing words without stop"
	out := highlightBestSentence(text, "edges")
	assert.Contains(t, out, "Pooling reduces resolution.")
	assert.Contains(t, out, "Convolution detects edges.")
	assert.True(t, strings.HasSuffix(out, "Trailing words without stop"))

	assert.Equal(t, "", highlightBestSentence("", "edges"))
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One.", " Two!", "three"}, splitSentences("One. Two! three"))
	assert.Equal(t, []string{"no punctuation here"}, splitSentences("no punctuation here"))
}
