package rng_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/rng"
)

func TestSameSeedSameSequence(t *testing.T) {
	t.Parallel()

	a := rng.NewTieRng(42)
	b := rng.NewTieRng(42)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestChooseEmpty(t *testing.T) {
	t.Parallel()

	r := rng.NewTieRng(1)
	_, ok := r.Choose(0)
	require.False(t, ok)
	require.False(t, r.Drawn())
}

func TestChooseInRange(t *testing.T) {
	t.Parallel()

	r := rng.NewTieRng(7)
	for i := 0; i < 1000; i++ {
		idx, ok := r.Choose(5)
		require.True(t, ok)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 5)
	}
	require.True(t, r.Drawn())
}

func TestDifferentSeedsDifferentSequences(t *testing.T) {
	t.Parallel()

	a := rng.NewTieRng(1)
	b := rng.NewTieRng(2)
	require.NotEqual(t, a.Uint64(), b.Uint64())
}
