package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(args ...string) (string, string, error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCheck(t *testing.T) {
	out, _, err := run("check", "y + c1")
	require.NoError(t, err)
	assert.Contains(t, out, "z + c1\n")
	assert.Contains(t, out, "variable:  y -> z")
	assert.Contains(t, out, "constants: [c1]")
	assert.Contains(t, out, "tree:      {")
	assert.Contains(t, out, `"c1"`)
}

func TestCheck_Rejected(t *testing.T) {
	_, errOut, err := run("check", "sin(x")
	assert.Error(t, err)
	assert.Contains(t, errOut, "invalid syntax")

	_, errOut, err = run("check", "x/0")
	assert.Error(t, err)
	assert.Contains(t, errOut, "divides by zero")

	_, _, err = run("check")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "explorer.yaml")
	dsn := filepath.Join(dir, "explorer.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  dsn: "+dsn+"\n"), 0o600))

	out, _, err := run("migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "schema is up to date")
	_, err = os.Stat(dsn)
	assert.NoError(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "explorer.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("plot:\n  points: 1\n"), 0o600))
	_, err := loadConfig(cfgPath)
	assert.Error(t, err)
}
