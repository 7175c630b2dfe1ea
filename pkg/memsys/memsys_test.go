package memsys

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hunkkit/internal/format"
	"github.com/joshuapare/hunkkit/internal/testutil"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.Megs = 1
	return opts
}

func newTestSystem(t *testing.T) (*System, *bytes.Buffer) {
	t.Helper()
	con, out := testutil.Console(t)
	opts := testOptions()
	return New(testutil.Arena(t, opts.ArenaSize()), opts, con), out
}

func Test_Options_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero megs", func(o *Options) { o.Megs = 0 }, true},
		{"negative zone megs", func(o *Options) { o.ZoneMegs = -1 }, true},
		{"negative zone size", func(o *Options) { o.ZoneSize = -8 }, true},
		{"fraction of one", func(o *Options) { o.ZoneFraction = 1 }, true},
		{"min fragment below default", func(o *Options) { o.MinFragment = -2 }, true},
		{"explicit min fragment", func(o *Options) { o.MinFragment = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_LoadOptions(t *testing.T) {
	dir := t.TempDir()

	t.Run("overrides defaults", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("megs: 4\nzoneMegs: 1\nparanoid: true\n"), 0o644))

		opts, err := LoadOptions(path)
		require.NoError(t, err)
		assert.Equal(t, 4, opts.Megs)
		assert.Equal(t, 1, opts.ZoneMegs)
		assert.True(t, opts.Paranoid)
		assert.Equal(t, format.DefaultZoneFraction, opts.ZoneFraction)
		assert.Equal(t, format.UseDefault, opts.MinFragment)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(dir, "typo.yaml")
		require.NoError(t, os.WriteFile(path, []byte("mgs: 4\n"), 0o644))
		_, err := LoadOptions(path)
		require.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("megs: 0\n"), 0o644))
		_, err := LoadOptions(path)
		require.ErrorContains(t, err, "invalid config")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadOptions(filepath.Join(dir, "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func Test_System_New(t *testing.T) {
	sys, _ := newTestSystem(t)

	arena := sys.Hunk.Size()
	zoneSize := int(float64(arena) * format.DefaultZoneFraction)
	assert.Equal(t, format.AlignDown8(zoneSize), sys.Zone.Size())
	assert.Equal(t, format.HeaderSize+format.Align16(zoneSize), sys.Hunk.LowMark())
	assert.Zero(t, sys.Hunk.HighMark())

	allocs := sys.Hunk.Allocations()
	require.Len(t, allocs, 1)
	assert.Equal(t, "zone", allocs[0].Name)

	require.NoError(t, sys.Validate())
	require.NoError(t, testutil.CatchFatal(sys.Check))
	require.NoError(t, sys.Close())
}

func Test_System_Open(t *testing.T) {
	con, _ := testutil.Console(t)

	t.Run("anonymous", func(t *testing.T) {
		sys, err := Open(testOptions(), con)
		require.NoError(t, err)
		assert.Equal(t, format.Megabyte, sys.Hunk.Size())
		require.NoError(t, sys.Validate())
		require.NoError(t, sys.Close())
		require.NoError(t, sys.Close())
	})

	t.Run("file backed", func(t *testing.T) {
		opts := testOptions()
		opts.ArenaFile = filepath.Join(t.TempDir(), "arena.bin")
		sys, err := Open(opts, con)
		require.NoError(t, err)
		sys.Zone.Alloc(64)
		require.NoError(t, sys.Close())

		fi, err := os.Stat(opts.ArenaFile)
		require.NoError(t, err)
		assert.Equal(t, int64(format.Megabyte), fi.Size())
	})

	t.Run("bad options", func(t *testing.T) {
		opts := testOptions()
		opts.Megs = -1
		_, err := Open(opts, con)
		require.Error(t, err)
	})
}

func Test_System_Print(t *testing.T) {
	sys, out := newTestSystem(t)
	sys.Print(true)

	s := out.String()
	for _, want := range []string{"== hunk ==", "== zone ==", "== cache ==", "low zone:", "cache entries: 0"} {
		assert.Contains(t, s, want)
	}
}

const scenario = `
steps:
  - op: zone-alloc
    name: a
    size: 100
  - op: cache-alloc
    name: c
    size: 1000
  - op: low-mark
    mark: m
  - op: low-alloc
    name: scratch
    size: 64
  - op: high-alloc
    name: top
    size: 32
  - op: low-pop-to-mark
    mark: m
  - op: check
`

func Test_Runner_Scenario(t *testing.T) {
	sys, _ := newTestSystem(t)
	startLow := sys.Hunk.LowMark()

	w, err := ParseWorkload([]byte(scenario))
	require.NoError(t, err)
	require.Len(t, w.Steps, 7)

	r := NewRunner(sys)
	rep, err := r.Run(w)
	require.NoError(t, err)
	assert.Equal(t, 7, rep.Steps)
	assert.Zero(t, rep.ZoneFailures)

	assert.Equal(t, startLow, sys.Hunk.LowMark())
	assert.Equal(t, format.HeaderSize+32, sys.Hunk.HighMark())

	ref, ok := r.ZoneRef("a")
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(sys.Zone.Bytes(ref)), 100)

	id, ok := r.CacheID("c")
	require.True(t, ok)
	data, live := sys.Cache.Data(id)
	require.True(t, live)
	assert.Len(t, data, 1000)

	// Objects stay addressable across runs.
	rep, err = r.Run(&Workload{Steps: []Step{
		{Op: OpZoneFree, Name: "a"},
		{Op: OpCacheFree, Name: "c"},
		{Op: OpHighPop},
	}})
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Steps)
	assert.Zero(t, sys.Hunk.HighMark())
	assert.Zero(t, sys.Cache.Stats().Entries)
	require.NoError(t, sys.Validate())
}

func Test_Runner_EvictedEntry(t *testing.T) {
	sys, _ := newTestSystem(t)
	r := NewRunner(sys)

	// The high allocation leaves too little gap to relocate the entry.
	_, err := r.Run(&Workload{Steps: []Step{
		{Op: OpCacheAlloc, Name: "big", Size: 400000},
		{Op: OpHighAlloc, Name: "top", Size: 500000},
	}})
	require.NoError(t, err)
	id, ok := r.CacheID("big")
	require.True(t, ok)
	assert.True(t, id.IsZero())

	// An evicted name can be allocated again.
	_, err = r.Run(&Workload{Steps: []Step{{Op: OpCacheAlloc, Name: "big", Size: 1000}}})
	require.NoError(t, err)
	id, _ = r.CacheID("big")
	assert.False(t, id.IsZero())

	sys.Cache.Flush()
	rep, err := r.Run(&Workload{Steps: []Step{{Op: OpCacheFree, Name: "big"}}})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.CacheMisses)
}

func Test_Runner_ZoneFailure(t *testing.T) {
	sys, _ := newTestSystem(t)
	rep, err := NewRunner(sys).Run(&Workload{Steps: []Step{
		{Op: OpZoneAlloc, Name: "huge", Size: format.Megabyte},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.ZoneFailures)
	assert.Equal(t, uint64(1), sys.Zone.Stats().FailedAllocs)
}

func Test_Runner_ScriptErrors(t *testing.T) {
	tests := []struct {
		name  string
		steps []Step
		want  error
	}{
		{"unknown op", []Step{{Op: "defrag"}}, ErrUnknownOp},
		{"free unknown zone name", []Step{{Op: OpZoneFree, Name: "x"}}, ErrUnknownName},
		{"free unknown cache name", []Step{{Op: OpCacheFree, Name: "x"}}, ErrUnknownName},
		{"unknown mark", []Step{{Op: OpHighPopToMark, Mark: "m"}}, ErrUnknownName},
		{"missing mark", []Step{{Op: OpLowMark}}, ErrBadStep},
		{"zero size", []Step{{Op: OpZoneAlloc, Name: "a"}}, ErrBadStep},
		{"missing name", []Step{{Op: OpLowAlloc, Size: 8}}, ErrBadStep},
		{"duplicate zone name", []Step{
			{Op: OpZoneAlloc, Name: "a", Size: 8},
			{Op: OpZoneAlloc, Name: "a", Size: 8},
		}, ErrDuplicateName},
		{"duplicate cache name", []Step{
			{Op: OpCacheAlloc, Name: "c", Size: 8},
			{Op: OpCacheAlloc, Name: "c", Size: 8},
		}, ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, _ := newTestSystem(t)
			rep, err := NewRunner(sys).Run(&Workload{Steps: tt.steps})
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.Cause(err))
			assert.Equal(t, len(tt.steps)-1, rep.Steps)
		})
	}
}

func Test_ParseWorkload_RejectsUnknownFields(t *testing.T) {
	_, err := ParseWorkload([]byte("steps:\n  - op: check\n    bytes: 4\n"))
	require.Error(t, err)
}

func Test_LoadWorkload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	w, err := LoadWorkload(path)
	require.NoError(t, err)
	assert.Equal(t, OpZoneAlloc, w.Steps[0].Op)
	assert.Equal(t, "m", w.Steps[2].Mark)
}
