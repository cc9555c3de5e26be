package numeric_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/numeric"
)

func TestNewZeroDenominator(t *testing.T) {
	t.Parallel()

	_, err := numeric.New(1, 0)
	require.ErrorIs(t, err, numeric.ErrZeroDenominator)
}

func TestSimplifyNormalizesSign(t *testing.T) {
	t.Parallel()

	r, err := numeric.New(3, -6)
	require.NoError(t, err)
	require.Equal(t, "-1", r.Num.String())
	require.Equal(t, "2", r.Den.String())
}

func TestCmpTotalOrder(t *testing.T) {
	t.Parallel()

	a, _ := numeric.New(1, 3)
	b, _ := numeric.New(1, 2)
	require.Negative(t, a.Cmp(b))
	require.Positive(t, b.Cmp(a))
	require.Zero(t, a.Cmp(a))
}

func TestGePercentBoundary(t *testing.T) {
	t.Parallel()

	r, _ := numeric.New(55, 100)
	require.True(t, r.GePercent(55))
	require.False(t, r.GePercent(56))
}

func TestRoundNearestEvenInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		num, den int64
		want     int64
	}{
		{1, 2, 0},  // 0.5 -> 0 (even)
		{3, 2, 2},  // 1.5 -> 2 (even)
		{5, 2, 2},  // 2.5 -> 2 (even)
		{7, 2, 4},  // 3.5 -> 4 (even)
		{-1, 2, 0}, // -0.5 -> 0 (even)
		{-3, 2, -2},
		{1, 3, 0},
		{2, 3, 1},
	}
	for _, c := range cases {
		r, err := numeric.New(c.num, c.den)
		require.NoError(t, err)
		got := r.RoundNearestEvenInt()
		require.Equal(t, c.want, got.Int64(), "round(%d/%d)", c.num, c.den)
	}
}

func TestPercentOneDecimalTenths(t *testing.T) {
	t.Parallel()

	r, _ := numeric.New(55, 100)
	require.Equal(t, int64(550), r.PercentOneDecimalTenths())

	r2, _ := numeric.New(1, 3)
	require.Equal(t, int64(333), r2.PercentOneDecimalTenths())
}

func TestOutOfRangeRejected(t *testing.T) {
	t.Parallel()

	huge := new(big.Int).Lsh(big.NewInt(1), 200)
	_, err := numeric.NewFromBig(huge, big.NewInt(1))
	require.ErrorIs(t, err, numeric.ErrOutOfRange)
}
