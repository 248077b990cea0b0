package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	return root.Execute()
}

func TestRootCmd_BadConfigFailsWithMessage(t *testing.T) {
	t.Setenv("PORT", "abc")
	err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: invalid")
	assert.Contains(t, err.Error(), "Port")
}

func TestRootCmd_BadDurationFailsWithMessage(t *testing.T) {
	t.Setenv("WRONG_DELAY", "soon")
	err := execute(t, "play")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse env")
}

func TestRootCmd_MissingRegionsFile(t *testing.T) {
	t.Setenv("REGIONS_FILE", t.TempDir()+"/nope.yaml")
	err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regions: read catalog")
}

func TestPlayCmd_BlankTTSCommand(t *testing.T) {
	err := execute(t, "play", "--tts", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty tts command")
}
