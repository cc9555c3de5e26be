// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tie implements the RESOLVE_TIES stage (§4.9): consuming
// the pending_ties emitted by the tabulator and allocator and deciding
// each one per VM-VAR-050 (StatusQuo, DeterministicOrder, Random).
//
// Grounded on confidence's accumulate-then-decide shape: every
// TieContext is an already-accumulated set of candidates; this package
// only adds the final decision step.
package tie

import (
	"fmt"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/rng"
	"github.com/vmengine/core/internal/types"
)

// Resolve decides every pending tie in order and returns the resulting
// TieResolution log (§6, RunRecord.TieLog).
func Resolve(ties []types.TieContext, registry types.DivisionRegistry, p params.Params, tieRng *rng.TieRng) ([]types.TieResolution, error) {
	byOption := map[ids.OptionId]types.Option{}
	for _, o := range registry.Options {
		byOption[o.OptionId] = o
	}

	resolutions := make([]types.TieResolution, 0, len(ties))
	for _, tc := range ties {
		winner, err := pick(tc, p, byOption, tieRng)
		if err != nil {
			return nil, err
		}
		res := types.TieResolution{Context: tc, Policy: string(p.TiePolicy), Winner: winner}
		if p.TiePolicy == params.TieRandom && tieRng != nil {
			seed := tieRng.Seed()
			res.Seed = &seed
		}
		resolutions = append(resolutions, res)
	}
	return resolutions, nil
}

func pick(tc types.TieContext, p params.Params, byOption map[ids.OptionId]types.Option, tieRng *rng.TieRng) (ids.OptionId, error) {
	if len(tc.Candidates) == 0 {
		return "", fmt.Errorf("tie: empty candidate list for unit %s", tc.UnitId)
	}

	switch p.TiePolicy {
	case params.TieStatusQuo:
		for _, c := range tc.Candidates {
			if byOption[c].IsStatusQuo {
				return c, nil
			}
		}
		return tc.Candidates[0], nil
	case params.TieDeterministicOrder:
		return tc.Candidates[0], nil
	case params.TieRandom:
		if tieRng == nil {
			return "", fmt.Errorf("tie: random policy configured but no seeded RNG supplied")
		}
		idx, ok := tieRng.Choose(len(tc.Candidates))
		if !ok {
			return tc.Candidates[0], nil
		}
		return tc.Candidates[idx], nil
	default:
		return "", fmt.Errorf("tie: unknown policy %q", p.TiePolicy)
	}
}

// ApplyResolutions patches each affected UnitAllocation in place: the
// allocator provisionally awards a contested seat to Candidates[0]
// (canonical order); when the resolved winner differs, the contested
// seat moves from the provisional pick to the resolved winner. For a
// WTA tie that is the provisional pick's whole power (all 100 points).
func ApplyResolutions(allocations []types.UnitAllocation, resolutions []types.TieResolution) []types.UnitAllocation {
	byUnit := make(map[ids.UnitId]int, len(allocations))
	for i, a := range allocations {
		byUnit[a.UnitId] = i
	}

	for _, res := range resolutions {
		if res.Context.Reason != types.TieAllocationAward && res.Context.Reason != types.TieWTA {
			continue
		}
		idx, ok := byUnit[res.Context.UnitId]
		if !ok {
			continue
		}
		provisional := res.Context.Candidates[0]
		if provisional == res.Winner {
			continue
		}
		alloc := allocations[idx]
		if alloc.SeatsOrPower[provisional] == 0 {
			continue
		}
		moved := uint32(1)
		if res.Context.Reason == types.TieWTA {
			moved = alloc.SeatsOrPower[provisional]
		}
		alloc.SeatsOrPower[provisional] -= moved
		alloc.SeatsOrPower[res.Winner] += moved
		allocations[idx] = alloc
	}
	return allocations
}
