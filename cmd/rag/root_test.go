package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd("1.0.0")
	require.NotNil(t, cmd)
	assert.Equal(t, "rag", cmd.Use)
	assert.Equal(t, "1.0.0", cmd.Version)
}

func TestRootCmdHasFlags(t *testing.T) {
	cmd := NewRootCmd("dev")
	for _, name := range []string{"config", "log-level", "json"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "expected persistent flag %q", name)
	}
}

func TestRootCmdSubcommands(t *testing.T) {
	cmd := NewRootCmd("dev")
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"ingest", "search", "ask", "status", "tui"})
}
