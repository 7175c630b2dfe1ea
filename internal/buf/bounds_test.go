package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestSpan(t *testing.T) {
	end, err := Span(64, 16, 48)
	require.NoError(t, err)
	require.Equal(t, 64, end)

	_, err = Span(64, 17, 48)
	require.ErrorContains(t, err, "bounds")

	_, err = Span(64, -1, 1)
	require.ErrorContains(t, err, "negative offset")

	_, err = Span(64, 0, -1)
	require.ErrorContains(t, err, "negative length")

	_, err = Span(math.MaxInt, math.MaxInt, 1)
	require.ErrorContains(t, err, "overflow")
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)
	require.Equal(t, 3, cap(got), "capacity must be clipped to the span")

	_, ok = Slice(data, 4, 2)
	require.False(t, ok, "Slice should fail when extending beyond len")
	require.False(t, Has(data, 2, 4))
	require.True(t, Has(data, 2, 1))

	_, ok = Slice(data, -1, 1)
	require.False(t, ok)
	_, ok = Slice(data, 1, -1)
	require.False(t, ok)
}

func TestOverlaps(t *testing.T) {
	require.True(t, Overlaps(0, 10, 5, 10))
	require.True(t, Overlaps(5, 10, 0, 10))
	require.False(t, Overlaps(0, 10, 10, 10), "touching ranges do not overlap")
	require.False(t, Overlaps(0, 0, 0, 10), "empty range never overlaps")
}
