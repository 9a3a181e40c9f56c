package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ragindex/internal/domain"
	"ragindex/internal/summarizer"
)

// NoContextAnswer is returned when retrieval finds nothing to ground on.
const NoContextAnswer = "I could not find any relevant documents for that question."

const systemPrompt = "You answer questions using only the provided context documents. " +
	"Cite the file names you used. If the context does not contain the answer, say so."

// Answer is the response to a question plus the documents it was built from.
type Answer struct {
	Text    string
	Sources []domain.Result
	// Generated is true when the text came from the language model rather
	// than the extractive summary.
	Generated bool
}

// Options tunes prompt construction and the offline fallback.
type Options struct {
	MaxContextChars int
	MaxSentences    int
}

// RAGService answers questions from retrieved context.
type RAGService struct {
	searcher   domain.Searcher
	completer  domain.Completer
	summarizer *summarizer.FrequencySummarizer
	opts       Options
	logger     *slog.Logger
}

// NewRAGService wires a searcher to an optional completer. With a nil
// completer, answers are extractive summaries of the retrieved documents.
func NewRAGService(searcher domain.Searcher, completer domain.Completer, opts Options, logger *slog.Logger) *RAGService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 4000
	}
	if opts.MaxSentences <= 0 {
		opts.MaxSentences = 5
	}
	return &RAGService{
		searcher:   searcher,
		completer:  completer,
		summarizer: summarizer.NewFrequencySummarizer(),
		opts:       opts,
		logger:     logger,
	}
}

// Query returns the top-k documents for query.
func (s *RAGService) Query(query string, topK int) []domain.Result {
	return s.searcher.Search(query, topK)
}

// Ask retrieves up to k documents and answers question from them.
func (s *RAGService) Ask(ctx context.Context, question string, k int) (Answer, error) {
	sources := s.searcher.Search(question, k)
	if len(sources) == 0 {
		return Answer{Text: NoContextAnswer}, nil
	}
	if s.completer == nil {
		var all strings.Builder
		for _, src := range sources {
			all.WriteString(src.Content)
			all.WriteString("\n")
		}
		text := s.summarizer.Answer(question, all.String(), s.opts.MaxSentences)
		return Answer{Text: text, Sources: sources}, nil
	}

	prompt := BuildPrompt(question, sources, s.opts.MaxContextChars)
	s.logger.Debug("sending prompt", "sources", len(sources), "chars", len(prompt))
	reply, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return Answer{Sources: sources}, fmt.Errorf("complete: %w", err)
	}
	return Answer{Text: strings.TrimSpace(reply), Sources: sources, Generated: true}, nil
}

// BuildPrompt lays out numbered context blocks followed by the question.
// Each document body is cut to maxChars runes.
func BuildPrompt(question string, sources []domain.Result, maxChars int) string {
	var b strings.Builder
	b.WriteString("Context documents:\n\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, src.FileName, truncate(src.Content, maxChars))
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
