package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hunkkit/pkg/memsys"
)

// resetFlags restores every global flag to its default for one test.
func resetFlags(t *testing.T) {
	t.Helper()
	defaults := memsys.DefaultOptions()
	verbose, quiet, jsonOut = false, false, false
	megs = 1
	zmegs = 0
	zoneFraction = defaults.ZoneFraction
	minFrag = defaults.MinFragment
	configPath = ""
	paranoid = false
	runEvery = false
}

// testCmd returns a bare command for run functions that inspect flags.
func testCmd() *cobra.Command {
	return &cobra.Command{Use: "test"}
}

// writeFile writes content under a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}
