package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandFlags(t *testing.T) {
	cmd := newCommand()
	for _, name := range []string{"tcp", "config", "metrics-addr", "log-file", "log-level", "log-format"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestCommand_RejectsBadLevel(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"--log-level", "loud"})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestServeMetrics_Disabled(t *testing.T) {
	metrics, stop, err := serveMetrics("", nil)
	require.NoError(t, err)
	assert.Nil(t, metrics)
	stop()
}

func TestServeMetrics(t *testing.T) {
	metrics, stop, err := serveMetrics("127.0.0.1:0", nil)
	require.NoError(t, err)
	defer stop()
	assert.NotNil(t, metrics)
}
