// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package aggregator implements the AGGREGATE stage (§4.5):
// combining per-unit allocations into national totals, either by
// counting every unit equally or by weighting each unit's contribution
// by its population baseline. Aggregation level is fixed to country in
// v1 (VM-VAR-031); there is no intermediate regional tier to fold
// through.
//
// Grounded on internal/determinism.ReduceDeterministic: the combine is
// associative and the fold order never depends on unit traversal order,
// matching the no-float-no-order-dependence invariant (§8).
package aggregator

import (
	"fmt"

	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/numeric"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// Aggregate combines every unit's allocation into national totals per
// VM-VAR-030.
func Aggregate(allocations []types.UnitAllocation, registry types.DivisionRegistry, p params.Params) (map[ids.OptionId]uint32, error) {
	switch p.AggregationMode {
	case params.AggregationEqualUnit:
		return aggregateEqualUnit(allocations), nil
	case params.AggregationPopulationBaseline:
		return aggregatePopulationBaseline(allocations, registry)
	default:
		return nil, fmt.Errorf("aggregator: unknown aggregation mode %q", p.AggregationMode)
	}
}

// aggregateEqualUnit sums every unit's seats/power per option without
// weighting: each unit's voice counts the same regardless of size.
func aggregateEqualUnit(allocations []types.UnitAllocation) map[ids.OptionId]uint32 {
	totals := map[ids.OptionId]uint32{}
	for _, a := range sortedByUnit(allocations) {
		for _, o := range determinism.SortedKeys(a.SeatsOrPower) {
			totals[o] += a.SeatsOrPower[o]
		}
	}
	return totals
}

// sortedByUnit returns allocations ordered by unit id, so the fold
// below never depends on caller traversal order.
func sortedByUnit(allocations []types.UnitAllocation) []types.UnitAllocation {
	sorted := make([]types.UnitAllocation, len(allocations))
	copy(sorted, allocations)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].UnitId < sorted[j-1].UnitId; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

// aggregatePopulationBaseline weights each unit's contribution by
// population_baseline / sum(population_baseline) before summing,
// rounding each option's final total to the nearest integer
// (round-half-even, §8).
func aggregatePopulationBaseline(allocations []types.UnitAllocation, registry types.DivisionRegistry) (map[ids.OptionId]uint32, error) {
	byUnit := registry.UnitByID()

	var totalPopulation uint64
	for _, u := range registry.Units {
		totalPopulation += u.PopulationBaseline
	}
	if totalPopulation == 0 {
		return nil, fmt.Errorf("aggregator: population_baseline aggregation requires non-zero total population")
	}

	weighted := map[ids.OptionId]numeric.Ratio{}
	for _, a := range sortedByUnit(allocations) {
		unit, ok := byUnit[a.UnitId]
		if !ok {
			return nil, fmt.Errorf("aggregator: allocation references unknown unit %s", a.UnitId)
		}
		weight, err := numeric.New(int64(unit.PopulationBaseline), int64(totalPopulation))
		if err != nil {
			return nil, err
		}
		for _, o := range determinism.SortedKeys(a.SeatsOrPower) {
			contribution, err := numeric.New(int64(a.SeatsOrPower[o]), 1)
			if err != nil {
				return nil, err
			}
			scaled, err := contribution.Mul(weight)
			if err != nil {
				return nil, err
			}
			if existing, ok := weighted[o]; ok {
				sum, err := existing.Add(scaled)
				if err != nil {
					return nil, err
				}
				weighted[o] = sum
			} else {
				weighted[o] = scaled
			}
		}
	}

	totals := map[ids.OptionId]uint32{}
	for o, r := range weighted {
		totals[o] = uint32(r.RoundNearestEvenInt().Int64())
	}
	return totals, nil
}
