// Package generate builds citation prompts from retrieved chunks and defines the
// interface of the language-generation backend.
package generate

import (
	"context"
	"fmt"
	"strings"

	"paperrag/internal/domain"
)

// SummaryChunks is how many leading chunks of a paper feed a summary.
const SummaryChunks = 3

// Generator is a language-generation backend.
type Generator interface {
	Name() string
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Citation formats the reference for a chunk, e.g. "[paper.pdf, Page 3]".
func Citation(c domain.ChunkRecord) string {
	return fmt.Sprintf("[%s, Page %d]", c.SourceName, c.Page)
}

// AnswerPrompt asks for an answer to question grounded in chunks, with citations.
func AnswerPrompt(question string, chunks []domain.ChunkRecord) string {
	var excerpts strings.Builder
	citations := make([]string, 0, len(chunks))
	for i, c := range chunks {
		fmt.Fprintf(&excerpts, "[Source %d] %s\n\n", i+1, c.Text)
		citations = append(citations, fmt.Sprintf("[Source %d] = %s", i+1, Citation(c)))
	}
	return fmt.Sprintf(`Based on the following research paper excerpts, answer the question and include citations.

Context:
%s
Sources:
%s

Question: %s

Instructions:
- Provide a comprehensive answer based on the context
- Include citations in the format [Paper Name, Page X]
- If comparing multiple papers, highlight differences
- Be specific and technical when appropriate

Answer:`, excerpts.String(), strings.Join(citations, "\n"), question)
}

// SummaryPrompt asks for a five point summary of a paper from its leading chunks.
func SummaryPrompt(paper string, chunks []domain.ChunkRecord) string {
	return fmt.Sprintf(`Summarize this research paper in 5 key points:

Paper: %s
Content: %s

Provide a concise 5-point summary covering:
1. Main objective/problem
2. Methodology
3. Key findings
4. Contributions
5. Limitations/Future work

Summary:`, paper, SampleText(chunks))
}

// SampleText joins the text of the first SummaryChunks chunks.
func SampleText(chunks []domain.ChunkRecord) string {
	if len(chunks) > SummaryChunks {
		chunks = chunks[:SummaryChunks]
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, " ")
}
