package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandFlags(t *testing.T) {
	cmd := newCommand()
	for _, name := range []string{"workspace", "watch", "http", "config", "metrics-addr", "log-level", "log-format"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestCommand_MissingWorkspace(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"--workspace", filepath.Join(t.TempDir(), "missing")})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

func TestCommand_RejectsBadLevel(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"--log-level", "loud"})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}
