package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCatchFatal(t *testing.T) {
	con, out := Console(t)
	target := errors.New("trashed sentinel")

	RequireFatal(t, target, func() { con.Fatal(target) })
	require.Contains(t, out.String(), "fatal: trashed sentinel")

	require.NoError(t, CatchFatal(func() {}))
	require.PanicsWithValue(t, "other", func() {
		_ = CatchFatal(func() { panic("other") })
	})
}
