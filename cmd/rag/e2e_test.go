package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragindex/internal/domain"
)

type env struct {
	corpus string
	store  string
	config string
}

func setupEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		corpus: filepath.Join(dir, "data"),
		store:  filepath.Join(dir, "vector_store"),
		config: filepath.Join(dir, "config.yaml"),
	}
	cfg := fmt.Sprintf("corpus:\n  root: %s\nstore:\n  dir: %s\nlog:\n  level: error\n", e.corpus, e.store)
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
	return e
}

func (e env) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(e.corpus, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.corpus, name), []byte(content), 0o644))
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestE2EIngestAndSearch(t *testing.T) {
	e := setupEnv(t)
	e.write(t, "kubernetes.md", "Pods are scheduled onto nodes by the kubernetes scheduler.")
	e.write(t, "postgres.txt", "Postgres vacuum reclaims storage from dead tuples.")
	e.write(t, "golang.txt", "Goroutines are multiplexed onto operating system threads.")

	out, err := e.run(t, "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 3 documents")

	out, err = e.run(t, "--json", "search", "-k", "2", "postgres", "vacuum")
	require.NoError(t, err)
	var results []domain.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "postgres.txt", results[0].FileName)
	assert.Contains(t, results[0].Content, "dead tuples")
}

func TestE2ESearchBeforeIngest(t *testing.T) {
	e := setupEnv(t)

	out, err := e.run(t, "--json", "search", "anything")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestE2EEmptyIngest(t *testing.T) {
	e := setupEnv(t)

	out, err := e.run(t, "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "index unchanged")
	assert.DirExists(t, e.corpus)
}

func TestE2EAskWithoutModel(t *testing.T) {
	e := setupEnv(t)
	e.write(t, "runbook.txt", "Restart the worker with systemctl. Check logs in journald.")
	_, err := e.run(t, "ingest")
	require.NoError(t, err)

	out, err := e.run(t, "ask", "how", "to", "restart", "the", "worker")
	require.NoError(t, err)
	assert.Contains(t, out, "Restart the worker with systemctl.")
	assert.Contains(t, out, "runbook.txt")
}

func TestE2EStatus(t *testing.T) {
	e := setupEnv(t)
	out, err := e.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "degraded")

	e.write(t, "a.txt", "some words here")
	_, err = e.run(t, "ingest")
	require.NoError(t, err)

	out, err = e.run(t, "--json", "status")
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "ready", st["state"])
	assert.Equal(t, float64(1), st["documents"])
}
