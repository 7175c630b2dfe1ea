package console

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_WriterPrinter_AppendsNewline(t *testing.T) {
	var out bytes.Buffer
	p := WriterPrinter{W: &out}
	p.Printf("%s: %d", "zone", 314568)
	p.Printf("done\n")
	require.Equal(t, "zone: 314568\ndone\n", out.String())
}

func Test_Console_FatalCallsHandler(t *testing.T) {
	var (
		out  bytes.Buffer
		logs bytes.Buffer
		got  error
	)
	con := New(&out)
	con.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	sentinel := errors.New("boom")
	con.OnFatal = func(err error) {
		got = err
		panic(err)
	}

	require.Panics(t, func() { con.Fatal(sentinel) })

	require.ErrorIs(t, got, sentinel)
	require.ErrorIs(t, got, ErrFatal)
	assert.Equal(t, "fatal: boom\n", out.String())
	assert.Contains(t, logs.String(), "fatal error")
}

func Test_Console_FatalPanicsWhenHandlerReturns(t *testing.T) {
	con := New(&bytes.Buffer{})
	con.OnFatal = func(error) {}

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.ErrorIs(t, err, ErrFatal)
	}()
	con.Fatal(errors.New("ignored handler"))
	t.Fatal("Fatal returned")
}

func Test_Console_NilPrinterAndLogger(t *testing.T) {
	con := &Console{}
	assert.NotPanics(t, func() {
		con.Printf("nothing")
		con.Debug("nothing")
	})
}
