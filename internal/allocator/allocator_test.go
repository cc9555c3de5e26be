// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/allocator"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

func opt(t *testing.T, id string, idx uint16) types.Option {
	t.Helper()
	o, err := ids.NewOptionId(id)
	require.NoError(t, err)
	return types.Option{OptionId: o, OrderIndex: idx}
}

func optionId(t *testing.T, id string) ids.OptionId {
	t.Helper()
	o, err := ids.NewOptionId(id)
	require.NoError(t, err)
	return o
}

func unitId(t *testing.T, s string) ids.UnitId {
	t.Helper()
	u, err := ids.NewUnitId(s)
	require.NoError(t, err)
	return u
}

func TestAllocateWTA(t *testing.T) {
	options := []types.Option{opt(t, "A", 0), opt(t, "B", 1)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 1}
	scores := types.UnitScores{Scores: map[ids.OptionId]uint64{optionId(t, "A"): 60, optionId(t, "B"): 40}}
	p := params.Default()
	p.AllocationMethod = params.MethodWTA

	alloc, ties, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)
	require.Empty(t, ties)
	require.Equal(t, uint32(100), alloc.SeatsOrPower[optionId(t, "A")])
	require.Equal(t, uint32(0), alloc.SeatsOrPower[optionId(t, "B")])
}

func TestAllocateDHondt(t *testing.T) {
	options := []types.Option{opt(t, "A", 0), opt(t, "B", 1), opt(t, "C", 2)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 10}
	scores := types.UnitScores{Scores: map[ids.OptionId]uint64{
		optionId(t, "A"): 100_000,
		optionId(t, "B"): 80_000,
		optionId(t, "C"): 30_000,
	}}
	p := params.Default()
	p.AllocationMethod = params.MethodDHondt

	alloc, _, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)

	var total uint32
	for _, s := range alloc.SeatsOrPower {
		total += s
	}
	require.Equal(t, uint32(10), total)
	require.GreaterOrEqual(t, alloc.SeatsOrPower[optionId(t, "A")], alloc.SeatsOrPower[optionId(t, "B")])
	require.GreaterOrEqual(t, alloc.SeatsOrPower[optionId(t, "B")], alloc.SeatsOrPower[optionId(t, "C")])
}

func TestAllocateLargestRemainderHareSumsToMagnitude(t *testing.T) {
	options := []types.Option{opt(t, "A", 0), opt(t, "B", 1), opt(t, "C", 2)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 7}
	scores := types.UnitScores{Scores: map[ids.OptionId]uint64{
		optionId(t, "A"): 53,
		optionId(t, "B"): 32,
		optionId(t, "C"): 15,
	}}
	p := params.Default()
	p.AllocationMethod = params.MethodLargestRemainderHare

	alloc, _, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)

	var total uint32
	for _, s := range alloc.SeatsOrPower {
		total += s
	}
	require.Equal(t, uint32(7), total)
}

func TestAllocateMMPCompensateOthersSumsToIntendedTotal(t *testing.T) {
	options := []types.Option{opt(t, "A", 0), opt(t, "B", 1), opt(t, "C", 2)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 6}
	scores := types.UnitScores{
		Scores: map[ids.OptionId]uint64{
			optionId(t, "A"): 613,
			optionId(t, "B"): 307,
			optionId(t, "C"): 107,
		},
		ConstituencySeatsWon: map[ids.OptionId]uint32{
			optionId(t, "A"): 2,
			optionId(t, "B"): 2,
			optionId(t, "C"): 2,
		},
	}
	p := params.Default()
	p.AllocationMethod = params.MethodMMP
	p.OverhangPolicy = params.OverhangCompensateOthers
	p.MMPTopupSharePct = 50 // L=6, s=50 -> T = round(6*100/50) = 12

	alloc, _, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)

	// C's locals (2) exceed its D'Hondt list target (1 of 12), so C keeps
	// its 2 overhang seats and the remaining 10 seats are reapportioned
	// over A and B alone: Sigma finals must still equal T=12 exactly.
	require.Equal(t, uint32(7), alloc.SeatsOrPower[optionId(t, "A")])
	require.Equal(t, uint32(3), alloc.SeatsOrPower[optionId(t, "B")])
	require.Equal(t, uint32(2), alloc.SeatsOrPower[optionId(t, "C")])

	var total uint32
	for _, s := range alloc.SeatsOrPower {
		total += s
	}
	require.Equal(t, uint32(12), total)
}

func TestAllocateMMPAllowOverhangCanExceedIntendedTotal(t *testing.T) {
	options := []types.Option{opt(t, "A", 0), opt(t, "B", 1), opt(t, "C", 2)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 6}
	scores := types.UnitScores{
		Scores: map[ids.OptionId]uint64{
			optionId(t, "A"): 613,
			optionId(t, "B"): 307,
			optionId(t, "C"): 107,
		},
		ConstituencySeatsWon: map[ids.OptionId]uint32{
			optionId(t, "A"): 2,
			optionId(t, "B"): 2,
			optionId(t, "C"): 2,
		},
	}
	p := params.Default()
	p.AllocationMethod = params.MethodMMP
	p.OverhangPolicy = params.OverhangAllow
	p.MMPTopupSharePct = 50

	alloc, _, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)

	// allow_overhang lets C keep its 2 constituency seats on top of the
	// T=12 list apportionment without compensating anyone else, so the
	// total legitimately exceeds T.
	require.Equal(t, uint32(7), alloc.SeatsOrPower[optionId(t, "A")])
	require.Equal(t, uint32(4), alloc.SeatsOrPower[optionId(t, "B")])
	require.Equal(t, uint32(2), alloc.SeatsOrPower[optionId(t, "C")])
}

func TestAllocateMMPAddTotalSeatsGrowsHouse(t *testing.T) {
	options := []types.Option{opt(t, "A", 0), opt(t, "B", 1), opt(t, "C", 2)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 6}
	scores := types.UnitScores{
		Scores: map[ids.OptionId]uint64{
			optionId(t, "A"): 613,
			optionId(t, "B"): 307,
			optionId(t, "C"): 107,
		},
		ConstituencySeatsWon: map[ids.OptionId]uint32{
			optionId(t, "A"): 2,
			optionId(t, "B"): 2,
			optionId(t, "C"): 2,
		},
	}
	p := params.Default()
	p.AllocationMethod = params.MethodMMP
	p.OverhangPolicy = params.OverhangAddTotalSeats
	p.MMPTopupSharePct = 50

	alloc, _, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)

	// add_total_seats enlarges the house past T=12 until every option's
	// list seats cover its constituency seats; the house stops growing at
	// 18, where C's D'Hondt share finally reaches its 2 locals.
	require.Equal(t, uint32(11), alloc.SeatsOrPower[optionId(t, "A")])
	require.Equal(t, uint32(5), alloc.SeatsOrPower[optionId(t, "B")])
	require.Equal(t, uint32(2), alloc.SeatsOrPower[optionId(t, "C")])

	var total uint32
	for _, s := range alloc.SeatsOrPower {
		total += s
	}
	require.Equal(t, uint32(18), total)
}

func TestAllocateLargestRemainderBreaksTieByRawScoreNotCanonicalOrderAlone(t *testing.T) {
	// Canonical order lists C first, then B, then A, then D — but C, B,
	// and A all land on the exact same fractional remainder (.3) under a
	// quota of 10. A canonical-order-only tiebreak would hand the single
	// leftover seat to C (first in order); the correct winner is A, which
	// carries far more raw votes (23 vs 13 vs 3).
	options := []types.Option{opt(t, "C", 0), opt(t, "B", 1), opt(t, "A", 2), opt(t, "D", 3)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 4}
	scores := types.UnitScores{Scores: map[ids.OptionId]uint64{
		optionId(t, "C"): 3,
		optionId(t, "B"): 13,
		optionId(t, "A"): 23,
		optionId(t, "D"): 1,
	}}
	p := params.Default()
	p.AllocationMethod = params.MethodLargestRemainderHare

	alloc, ties, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)
	require.Empty(t, ties)

	require.Equal(t, uint32(3), alloc.SeatsOrPower[optionId(t, "A")])
	require.Equal(t, uint32(1), alloc.SeatsOrPower[optionId(t, "B")])
	require.Equal(t, uint32(0), alloc.SeatsOrPower[optionId(t, "C")])
	require.Equal(t, uint32(0), alloc.SeatsOrPower[optionId(t, "D")])

	var total uint32
	for _, s := range alloc.SeatsOrPower {
		total += s
	}
	require.Equal(t, uint32(4), total)
}

func TestAllocateThresholdExcludesSmallOption(t *testing.T) {
	options := []types.Option{opt(t, "A", 0), opt(t, "B", 1), opt(t, "C", 2)}
	unit := types.Unit{UnitId: unitId(t, "U1"), Magnitude: 5}
	scores := types.UnitScores{Scores: map[ids.OptionId]uint64{
		optionId(t, "A"): 600,
		optionId(t, "B"): 395,
		optionId(t, "C"): 5,
	}}
	p := params.Default()
	p.AllocationMethod = params.MethodDHondt
	p.ThresholdPct = 5

	alloc, _, err := allocator.AllocateUnit(unit, scores, options, p)
	require.NoError(t, err)
	require.Equal(t, uint32(0), alloc.SeatsOrPower[optionId(t, "C")])
}
