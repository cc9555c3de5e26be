// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package allocator implements the ALLOCATE stage (§4.4): per-unit
// dispatch across WTA, highest-averages, largest-remainder, and MMP,
// each producing seats (or WTA power points) plus any pending ties.
//
// A tie at a seat-award or seat-trim decision point is resolved
// provisionally using canonical option order so a single unit's
// allocation always completes without blocking on the global tie
// resolver; the TieContext is still emitted so internal/tie can later
// reassign the contested seat if the configured policy (VM-VAR-050)
// picks a different winner (see tie.ApplyResolutions).
//
// Built as a threshold-variant dispatch (Static vs WeightedStatic vs
// Flat vs Dynamic in spirit), generalized to four allocation methods
// chosen by VM-VAR-010.
package allocator

import (
	"fmt"

	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// AllocateUnit dispatches a unit's tabulated scores onto its
// configured allocation method and returns the seat/power award plus
// any pending ties raised while doing so.
func AllocateUnit(unit types.Unit, scores types.UnitScores, options []types.Option, p params.Params) (types.UnitAllocation, []types.TieContext, error) {
	switch p.AllocationMethod {
	case params.MethodWTA:
		return allocateWTA(unit, scores, options)
	case params.MethodDHondt:
		return allocateHighestAverages(unit, scores, options, p, divisorDHondt)
	case params.MethodSainteLague:
		return allocateHighestAverages(unit, scores, options, p, divisorSainteLague)
	case params.MethodLargestRemainderHare:
		return allocateLargestRemainder(unit, scores, options, quotaHare)
	case params.MethodLargestRemainderDroop:
		return allocateLargestRemainder(unit, scores, options, quotaDroop)
	case params.MethodLargestRemainderImperiali:
		return allocateLargestRemainder(unit, scores, options, quotaImperiali)
	case params.MethodMMP:
		return allocateMMP(unit, scores, options, p)
	default:
		return types.UnitAllocation{}, nil, fmt.Errorf("allocator: unknown allocation method %q", p.AllocationMethod)
	}
}

func canonicalOrder(options []types.Option) []ids.OptionId {
	items := make([]determinism.OptionItem, len(options))
	for i, o := range options {
		items[i] = determinism.OptionItem{OrderIndex: o.OrderIndex, OptionId: o.OptionId}
	}
	determinism.SortOptions(items)
	out := make([]ids.OptionId, len(items))
	for i, it := range items {
		out[i] = it.OptionId
	}
	return out
}

// eligibleByThreshold returns the options whose vote share meets the
// highest-averages threshold filter: 100*vi >= T*V (§4.4).
func eligibleByThreshold(order []ids.OptionId, votes map[ids.OptionId]uint64, thresholdPct int64) []ids.OptionId {
	if thresholdPct <= 0 {
		return order
	}
	total := uint64(0)
	for _, o := range order {
		total += votes[o]
	}
	if total == 0 {
		return order
	}
	var out []ids.OptionId
	for _, o := range order {
		share, err := numericRatio(votes[o], total)
		if err != nil {
			continue
		}
		if share.GePercent(thresholdPct) {
			out = append(out, o)
		}
	}
	return out
}
