package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragindex/internal/domain"
)

type fakePort struct {
	results []domain.Result
	queries []string
	reloads int
}

func (f *fakePort) Query(q string, _ int) []domain.Result {
	f.queries = append(f.queries, q)
	return f.results
}

func (f *fakePort) Reload() string {
	f.reloads++
	return "reloaded"
}

func typeQuery(t *testing.T, m Model, q string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(q)})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model)
}

func TestEnterRunsQuery(t *testing.T) {
	port := &fakePort{results: []domain.Result{
		{FileName: "a.txt", Content: "first"},
		{FileName: "b.txt", Content: "second"},
	}}
	m := New(port, 3, "ready")

	m = typeQuery(t, m, "needle")
	require.Equal(t, []string{"needle"}, port.queries)
	assert.Len(t, m.results, 2)
	assert.Contains(t, m.status, "2 results")
	assert.Contains(t, m.renderCurrentResult(), "a.txt")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Contains(t, m.renderCurrentResult(), "b.txt")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
}

func TestNoResultsStatus(t *testing.T) {
	m := typeQuery(t, New(&fakePort{}, 3, ""), "missing")
	assert.Contains(t, m.status, "No results")
	assert.Equal(t, "No results yet.", m.renderCurrentResult())
}

func TestCtrlRReloads(t *testing.T) {
	port := &fakePort{}
	next, _ := New(port, 3, "").Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, 1, port.reloads)
	assert.Equal(t, "reloaded", next.(Model).status)
}

func TestViewBeforeResize(t *testing.T) {
	assert.Equal(t, "Loading...", New(&fakePort{}, 3, "").View())
}

func TestHighlightBestSentence(t *testing.T) {
	text := "Cats purr softly. Dogs bark loudly. Birds sing."
	out := highlightBestSentence(text, "why do dogs bark")
	assert.True(t, strings.HasPrefix(out, "Cats purr softly."))
	assert.Contains(t, out, "Birds sing.")
	assert.Contains(t, out, "Dogs bark loudly.")

	assert.Equal(t, text, highlightBestSentence(text, "unrelated words"))
	assert.Equal(t, "no terminator here", highlightBestSentence("no terminator here", "terminator"))
}

func TestHighlightNonASCIISentence(t *testing.T) {
	text := "Собаки лают. Кошки мурлычут."
	out := highlightBestSentence(text, "почему кошки мурлычут")
	assert.True(t, strings.HasPrefix(out, "Собаки лают."))
	assert.Contains(t, out, "Кошки мурлычут.")
	assert.Equal(t, 2, tokenOverlapScore(toTokenSet("кошки мурлычут"), "Кошки мурлычут."))
}
