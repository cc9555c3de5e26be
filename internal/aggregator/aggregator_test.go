// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package aggregator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/aggregator"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

func mustUnitId(t *testing.T, s string) ids.UnitId {
	t.Helper()
	u, err := ids.NewUnitId(s)
	require.NoError(t, err)
	return u
}

func mustOptionId(t *testing.T, s string) ids.OptionId {
	t.Helper()
	o, err := ids.NewOptionId(s)
	require.NoError(t, err)
	return o
}

func TestAggregateEqualUnit(t *testing.T) {
	a := mustOptionId(t, "A")
	b := mustOptionId(t, "B")
	allocations := []types.UnitAllocation{
		{UnitId: mustUnitId(t, "U1"), SeatsOrPower: map[ids.OptionId]uint32{a: 3, b: 2}},
		{UnitId: mustUnitId(t, "U2"), SeatsOrPower: map[ids.OptionId]uint32{a: 1, b: 4}},
	}
	p := params.Default()
	p.AggregationMode = params.AggregationEqualUnit

	totals, err := aggregator.Aggregate(allocations, types.DivisionRegistry{}, p)
	require.NoError(t, err)
	require.Equal(t, uint32(4), totals[a])
	require.Equal(t, uint32(6), totals[b])
}

func TestAggregatePopulationBaselineWeightsByPopulation(t *testing.T) {
	a := mustOptionId(t, "A")
	registry := types.DivisionRegistry{
		Units: []types.Unit{
			{UnitId: mustUnitId(t, "U1"), PopulationBaseline: 75},
			{UnitId: mustUnitId(t, "U2"), PopulationBaseline: 25},
		},
	}
	allocations := []types.UnitAllocation{
		{UnitId: mustUnitId(t, "U1"), SeatsOrPower: map[ids.OptionId]uint32{a: 100}},
		{UnitId: mustUnitId(t, "U2"), SeatsOrPower: map[ids.OptionId]uint32{a: 0}},
	}
	p := params.Default()
	p.AggregationMode = params.AggregationPopulationBaseline

	totals, err := aggregator.Aggregate(allocations, registry, p)
	require.NoError(t, err)
	require.Equal(t, uint32(75), totals[a])
}
