package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragindex/internal/domain"
)

type stubSearcher struct {
	results []domain.Result
	gotK    int
}

func (s *stubSearcher) Search(_ string, k int) []domain.Result {
	s.gotK = k
	return s.results
}

type stubCompleter struct {
	system, prompt string
	reply          string
	err            error
	calls          int
}

func (c *stubCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	c.calls++
	c.system, c.prompt = system, prompt
	return c.reply, c.err
}

var docs = []domain.Result{
	{FileName: "deploy.md", FilePath: "/d/deploy.md", Content: "Deploys run from the main branch. Rollbacks use the previous tag."},
	{FileName: "oncall.txt", FilePath: "/d/oncall.txt", Content: "The on-call rotation changes every Monday."},
}

func TestAskWithoutContextSkipsModel(t *testing.T) {
	c := &stubCompleter{reply: "unused"}
	svc := NewRAGService(&stubSearcher{}, c, Options{}, nil)

	ans, err := svc.Ask(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Equal(t, NoContextAnswer, ans.Text)
	assert.Zero(t, c.calls)
}

func TestAskUsesCompleter(t *testing.T) {
	s := &stubSearcher{results: docs}
	c := &stubCompleter{reply: "  Deploys come from main.  "}
	svc := NewRAGService(s, c, Options{}, nil)

	ans, err := svc.Ask(context.Background(), "how do deploys work?", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.gotK)
	assert.True(t, ans.Generated)
	assert.Equal(t, "Deploys come from main.", ans.Text)
	assert.Equal(t, docs, ans.Sources)
	assert.Contains(t, c.prompt, "[1] deploy.md")
	assert.Contains(t, c.prompt, "[2] oncall.txt")
	assert.True(t, strings.HasSuffix(c.prompt, "Question: how do deploys work?"))
	assert.NotEmpty(t, c.system)
}

func TestAskPropagatesCompleterError(t *testing.T) {
	c := &stubCompleter{err: errors.New("boom")}
	svc := NewRAGService(&stubSearcher{results: docs}, c, Options{}, nil)

	ans, err := svc.Ask(context.Background(), "q", 2)
	assert.Error(t, err)
	assert.Equal(t, docs, ans.Sources)
}

func TestAskWithoutCompleterSummarizes(t *testing.T) {
	svc := NewRAGService(&stubSearcher{results: docs}, nil, Options{MaxSentences: 1}, nil)

	ans, err := svc.Ask(context.Background(), "when does on-call rotation change", 2)
	require.NoError(t, err)
	assert.False(t, ans.Generated)
	assert.Equal(t, "The on-call rotation changes every Monday.", ans.Text)
}

func TestBuildPromptTruncates(t *testing.T) {
	p := BuildPrompt("q", []domain.Result{{FileName: "long.txt", Content: strings.Repeat("é", 50)}}, 10)
	assert.Contains(t, p, strings.Repeat("é", 10)+"...")
	assert.NotContains(t, p, strings.Repeat("é", 11))
}
