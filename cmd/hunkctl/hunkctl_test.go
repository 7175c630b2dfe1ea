package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorkload = `
steps:
  - op: zone-alloc
    name: a
    size: 100
  - op: cache-alloc
    name: model
    size: 2000
  - op: low-alloc
    name: level
    size: 4096
  - op: high-alloc
    name: temp
    size: 512
  - op: check
`

func Test_LoadOptions_FlagsAndConfig(t *testing.T) {
	resetFlags(t)

	opts, err := loadOptions(testCmd())
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Megs)

	configPath = writeFile(t, "opts.yaml", "megs: 2\nzoneMegs: 1\n")
	opts, err = loadOptions(testCmd())
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Megs)
	assert.Equal(t, 1, opts.ZoneMegs)

	// An explicitly set flag beats the file.
	cmd := rootCmd
	require.NoError(t, cmd.PersistentFlags().Set("megs", "4"))
	t.Cleanup(func() { cmd.PersistentFlags().Lookup("megs").Changed = false })
	opts, err = loadOptions(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4, opts.Megs)
	assert.Equal(t, 1, opts.ZoneMegs)

	resetFlags(t)
	megs = 0
	_, err = loadOptions(testCmd())
	require.Error(t, err)
}

func Test_InfoCommand(t *testing.T) {
	resetFlags(t)

	out, err := captureOutput(t, func() error { return runInfo(testCmd()) })
	require.NoError(t, err)
	for _, want := range []string{"Memory System:", "Arena: 1,048,576 bytes", "Zone:", "Entries: 0"} {
		assert.Contains(t, out, want)
	}

	jsonOut = true
	out, err = captureOutput(t, func() error { return runInfo(testCmd()) })
	require.NoError(t, err)
	var info SystemInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, 1<<20, info.Arena)
	assert.Equal(t, info.Arena-info.Low-info.High, info.Free)
}

func Test_RunCommand(t *testing.T) {
	resetFlags(t)
	path := writeFile(t, "w.yaml", testWorkload)

	out, err := captureOutput(t, func() error { return runRun(testCmd(), []string{path}) })
	require.NoError(t, err)
	for _, want := range []string{"Ran 5 steps", "== hunk ==", "level", "temp", "== cache ==", "model: 2048"} {
		assert.Contains(t, out, want)
	}

	jsonOut = true
	out, err = captureOutput(t, func() error { return runRun(testCmd(), []string{path}) })
	require.NoError(t, err)
	var res runResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 5, res.Steps)
	assert.Equal(t, 1, res.System.CacheEntries)
}

func Test_RunCommand_BadWorkload(t *testing.T) {
	resetFlags(t)
	path := writeFile(t, "w.yaml", "steps:\n  - op: explode\n")

	_, err := captureOutput(t, func() error { return runRun(testCmd(), []string{path}) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown op")
}

func Test_CheckCommand(t *testing.T) {
	resetFlags(t)
	path := writeFile(t, "w.yaml", testWorkload)

	out, err := captureOutput(t, func() error { return runCheck(testCmd(), []string{path}) })
	require.NoError(t, err)
	for _, tier := range []string{"hunk", "zone", "cache"} {
		assert.Contains(t, out, "✓ "+tier)
	}

	jsonOut = true
	out, err = captureOutput(t, func() error { return runCheck(testCmd(), nil) })
	require.NoError(t, err)
	var statuses []tierStatus
	require.NoError(t, json.Unmarshal([]byte(out), &statuses))
	require.Len(t, statuses, 3)
	for _, st := range statuses {
		assert.True(t, st.OK, st.Tier)
	}
}

func Test_MetricsCommand(t *testing.T) {
	resetFlags(t)
	path := writeFile(t, "w.yaml", testWorkload)

	out, err := captureOutput(t, func() error { return runMetrics(testCmd(), []string{path}) })
	require.NoError(t, err)
	assert.Contains(t, out, "# TYPE hunkkit_cache_entries gauge")
	assert.Contains(t, out, "hunkkit_cache_entries 1")
	assert.Contains(t, out, "# TYPE hunkkit_cache_evictions_total counter")
	assert.Equal(t, 11, strings.Count(out, "# HELP "))
}

func Test_VersionCommand(t *testing.T) {
	resetFlags(t)
	assert.Equal(t, version, rootCmd.Version)

	out, err := captureOutput(t, func() error { return newVersionCmd().RunE(testCmd(), nil) })
	require.NoError(t, err)
	assert.Contains(t, out, "hunkctl "+version+" (commit "+commit)

	jsonOut = true
	out, err = captureOutput(t, func() error { return newVersionCmd().RunE(testCmd(), nil) })
	require.NoError(t, err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, buildInfo(), info)
}
