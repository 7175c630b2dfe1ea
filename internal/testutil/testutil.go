// Package testutil holds fixtures shared by the allocator tests.
package testutil

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hunkkit/console"
)

// Console returns a console that prints into the returned buffer and panics
// with the fatal error instead of exiting, so tests can recover it.
func Console(t testing.TB) (*console.Console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	con := console.New(&out)
	con.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	con.OnFatal = func(err error) { panic(err) }
	return con, &out
}

// Arena returns a zeroed arena of size bytes.
func Arena(t testing.TB, size int) []byte {
	t.Helper()
	return make([]byte, size)
}

// CatchFatal runs fn and returns the fatal error it raised, or nil if fn
// returned normally. Panics that are not fatal errors are re-raised.
func CatchFatal(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		if !ok || !errors.Is(e, console.ErrFatal) {
			panic(r)
		}
		err = e
	}()
	fn()
	return nil
}

// RequireFatal requires fn to end in a fatal error matching target.
func RequireFatal(t testing.TB, target error, fn func()) {
	t.Helper()
	err := CatchFatal(fn)
	require.Error(t, err, "expected a fatal error")
	require.ErrorIs(t, err, target)
}
