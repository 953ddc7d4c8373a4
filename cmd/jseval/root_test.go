package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/jseval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := run(t, "version")
	assert.Equal(t, "jseval version "+strings.TrimSpace(jseval.Version)+"\n", out)
}

func TestEvalCommand(t *testing.T) {
	out := run(t, "eval", "--log-level", "error", "--compact", "[1, 2, 3].length")
	assert.Equal(t, "3\n", out)
}

func TestSharedOptions(t *testing.T) {
	require.NoError(t, rootCmd.PersistentFlags().Parse([]string{
		"--remote", "http://localhost:9000",
		"--timeout", "2s",
		"--debug",
	}))
	t.Cleanup(func() {
		rootCmd.PersistentFlags().Set("remote", "")
		rootCmd.PersistentFlags().Set("timeout", "30s")
		rootCmd.PersistentFlags().Set("debug", "false")
	})

	rootCmd.Flags().AddFlagSet(rootCmd.PersistentFlags())
	opts := sharedOptions(rootCmd)
	assert.Equal(t, "http://localhost:9000", opts.Remote)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.True(t, opts.Debug)
	assert.Equal(t, "jseval.yaml", opts.ConfigPath)
}
