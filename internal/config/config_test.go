package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3, cfg.Retriever.TopK)
	assert.Equal(t, DefaultExtensions, cfg.Corpus.Extensions)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "corpus:\n  root: /srv/docs\nretriever:\n  top_k: 7\nllm:\n  model: gpt-4o-mini\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", cfg.Corpus.Root)
	assert.Equal(t, 7, cfg.Retriever.TopK)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, "vector_store", cfg.Store.Dir)
	assert.Equal(t, DefaultExtensions, cfg.Corpus.Extensions)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("corpus: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Store.Dir = "/var/lib/rag"
	cfg.Vectorizer.Stopwords = "english"

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	t.Setenv("RAG_TEST_KEY", "")

	cfg := Default()
	assert.Empty(t, cfg.Validate())

	cfg.LLM.Model = "some-model"
	cfg.LLM.APIKeyEnv = "RAG_TEST_KEY"
	cfg.LLM.Temperature = 3
	cfg.Vectorizer.Stopwords = "klingon"
	cfg.Corpus.Extensions = []string{"txt"}

	warnings := strings.Join(cfg.Validate(), "\n")
	assert.Contains(t, warnings, "RAG_TEST_KEY")
	assert.Contains(t, warnings, "temperature")
	assert.Contains(t, warnings, "klingon")
	assert.Contains(t, warnings, `"txt"`)
}
