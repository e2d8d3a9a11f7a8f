package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// fixtureDir writes a config dir plus run files and returns both paths.
func fixtureDir(t *testing.T) (confDir, runsDir string) {
	t.Helper()
	confDir = t.TempDir()
	runsDir = t.TempDir()

	yaml := "catalog:\n" +
		"  name: test\n" +
		"  paths:\n" +
		"    - " + filepath.Join(runsDir, "*.jsonl") + "\n" +
		"logging:\n" +
		"  file: " + filepath.Join(confDir, "runcat.log") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(confDir, ".runcat.yaml"), []byte(yaml), 0o644))

	writeFile(t, filepath.Join(runsDir, "a.jsonl"),
		"[\"start\", {\"uid\": \"a\", \"plan_name\": \"scan\"}]\n"+
			"[\"stop\", {\"exit_status\": \"success\"}]\n")
	writeFile(t, filepath.Join(runsDir, "b.jsonl"),
		"[\"start\", {\"uid\": \"b\", \"plan_name\": \"count\"}]\n")
	return confDir, runsDir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "version", "--short")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version"`)
	assert.Contains(t, out, `"go_version"`)
}

func TestScanCommand(t *testing.T) {
	confDir, _ := fixtureDir(t)

	out, err := execute(t, "--dir", confDir, "scan")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 2 runs")
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "success")
}

func TestScanCommandQuiet(t *testing.T) {
	confDir, _ := fixtureDir(t)

	out, err := execute(t, "--dir", confDir, "scan", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 2 runs")
	assert.NotContains(t, out, "PLAN")
}

func TestScanCommandPathOverride(t *testing.T) {
	confDir, _ := fixtureDir(t)
	otherDir := t.TempDir()
	writeFile(t, filepath.Join(otherDir, "c.jsonl"), "[\"start\", {\"uid\": \"c\"}]\n")

	out, err := execute(t, "--dir", confDir, "scan",
		"--path", filepath.Join(otherDir, "*.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 1 runs")
}

func TestScanCommandNoPaths(t *testing.T) {
	_, err := execute(t, "--dir", t.TempDir(), "scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog paths")
}

func TestSearchCommand(t *testing.T) {
	confDir, _ := fixtureDir(t)

	out, err := execute(t, "--dir", confDir, "search", `{"plan_name": "scan"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "a")
	assert.NotContains(t, out, "count")
}

func TestSearchCommandNoMatches(t *testing.T) {
	confDir, _ := fixtureDir(t)

	out, err := execute(t, "--dir", confDir, "search", `{"plan_name": "grid_scan"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "no matching runs")
}

func TestSearchCommandRejectsBadJSON(t *testing.T) {
	confDir, _ := fixtureDir(t)

	_, err := execute(t, "--dir", confDir, "search", "{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERR_301_QUERY_INVALID")
}

func TestBrowseCommandPlainFallback(t *testing.T) {
	confDir, _ := fixtureDir(t)

	// Buffer output is not a TTY, so browse falls back to the listing.
	out, err := execute(t, "--dir", confDir, "browse")
	require.NoError(t, err)
	assert.Contains(t, out, "UID")
	assert.Contains(t, out, "a")
}
