package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmptyAndShort(t *testing.T) {
	s := NewFrequencySummarizer()
	assert.Equal(t, "", s.Summarize("   ", 3))
	assert.Equal(t, "no terminator", s.Summarize("no terminator", 3))
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Go builds fast binaries. Cats sleep a lot. Go has goroutines and Go has channels."

	out := s.Summarize(text, 2)
	first := strings.Index(out, "Go builds")
	second := strings.Index(out, "goroutines")
	assert.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.NotContains(t, out, "Cats")
}

func TestAnswerPrefersQuestionTerms(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Indexes store vectors. Indexes answer vector queries. Parsers read tokens."

	out := s.Answer("how do parsers work", text, 1)
	assert.Equal(t, "Parsers read tokens.", out)
}

func TestSummarizeClampsSentenceCount(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "One sentence. Two sentence."
	assert.Equal(t, text, s.Summarize(text, 10))
}
