package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommand(t *testing.T) {
	assert.NotNil(t, serveCmd)
	assert.Equal(t, "serve", serveCmd.Use)
	assert.NotEmpty(t, serveCmd.Short)
	assert.NotEmpty(t, serveCmd.Long)
}

func TestServeCommandHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	serveCmd.SetOut(buf)
	serveCmd.SetErr(buf)

	err := serveCmd.Help()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "/extract-bill-data")
	assert.Contains(t, output, "Flags:")
}

func TestServeCommandFlags(t *testing.T) {
	flags := serveCmd.Flags()

	expectedFlags := []string{
		"host", "port", "cors-origin", "timeout", "shutdown-timeout",
		"include-tokens", "api-key",
		"rate-limit-enabled", "requests-per-minute", "requests-per-hour", "requests-per-day",
	}
	for _, name := range expectedFlags {
		assert.NotNil(t, flags.Lookup(name), "missing flag %s", name)
	}
}

func TestServeCommandInvalidPort(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"serve", "--port", "70000"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port number")
}

func TestScanCommand(t *testing.T) {
	assert.NotNil(t, scanCmd)
	assert.True(t, strings.HasPrefix(scanCmd.Use, "scan"))
	assert.NotEmpty(t, scanCmd.Short)
}

func TestScanCommandWithoutURLs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"scan"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no document URLs")
}

func TestScanCommandRequiresAPIKey(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"scan", "https://example.com/bill.png"})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}
