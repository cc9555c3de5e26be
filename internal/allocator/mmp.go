// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocator

import (
	"fmt"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/numeric"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// intendedTotal computes the MMP house size T (§4.4) from the locals
// already won, L, and the top-up share s, a percent (VM-VAR-015):
//
//	T = round_nearest_even(L*100 / (100-s))
//
// Banker's rounding keeps T reproducible at the exact tie point between
// two integers, matching every other rounded quantity this engine produces.
func intendedTotal(locals uint32, topupSharePct int64) (uint32, error) {
	if topupSharePct < 0 || topupSharePct > 99 {
		return 0, fmt.Errorf("allocator: mmp_topup_share_pct out of range: %d", topupSharePct)
	}
	r, err := numeric.New(int64(locals)*100, 100-topupSharePct)
	if err != nil {
		return 0, err
	}
	t := r.RoundNearestEvenInt()
	if !t.IsInt64() || t.Sign() < 0 {
		return 0, fmt.Errorf("allocator: mmp intended total out of range: %s", t.String())
	}
	return uint32(t.Int64()), nil
}

// allocateMMP computes mixed-member-proportional seats (§4.4, §8). The
// locals already won per option (UnitTally.ConstituencySeatsWon, carried
// onto UnitScores by the tabulator) sum to L; intendedTotal derives the
// house size T from L and the configured top-up share (VM-VAR-015). A
// D'Hondt list allocation over this unit's own Scores apportions T
// seats, and constituency seats already won are reconciled against that
// target per the overhang policy (VM-VAR-014). The vote basis
// (VM-VAR-016, Params.MMPVoteBasis) is not read here: national and
// regional settings give the same allocation.
func allocateMMP(unit types.Unit, scores types.UnitScores, options []types.Option, p params.Params) (types.UnitAllocation, []types.TieContext, error) {
	order := canonicalOrder(options)

	constituency := scores.ConstituencySeatsWon
	if constituency == nil {
		listAlloc, ties, err := allocateHighestAverages(unit, scores, options, p, divisorDHondt)
		if err != nil {
			return types.UnitAllocation{}, nil, err
		}
		return listAlloc, ties, nil
	}

	var locals uint32
	for _, o := range order {
		locals += constituency[o]
	}
	total, err := intendedTotal(locals, p.MMPTopupSharePct)
	if err != nil {
		return types.UnitAllocation{}, nil, err
	}

	listUnit := unit
	listUnit.Magnitude = total
	listAlloc, ties, err := allocateHighestAverages(listUnit, scores, options, p, divisorDHondt)
	if err != nil {
		return types.UnitAllocation{}, nil, err
	}

	award := map[ids.OptionId]uint32{}
	for _, o := range order {
		award[o] = listAlloc.SeatsOrPower[o]
	}

	switch p.OverhangPolicy {
	case params.OverhangAllow:
		for _, o := range order {
			if constituency[o] > award[o] {
				award[o] = constituency[o]
			}
		}
	case params.OverhangAddTotalSeats:
		house := total
		for {
			ok := true
			for _, o := range order {
				if constituency[o] > award[o] {
					ok = false
					break
				}
			}
			if ok {
				break
			}
			house++
			enlarged := unit
			enlarged.Magnitude = house
			listAlloc, _, err = allocateHighestAverages(enlarged, scores, options, p, divisorDHondt)
			if err != nil {
				return types.UnitAllocation{}, nil, err
			}
			for _, o := range order {
				award[o] = listAlloc.SeatsOrPower[o]
			}
		}
	case params.OverhangCompensateOthers:
		// overhangLocalsSum is the FULL local-seat count held by every
		// overhang option (not the excess over its D'Hondt target): the
		// remaining T-overhangLocalsSum seats are reapportioned among the
		// non-overhang options alone, so award sums to exactly T.
		var overhangLocalsSum uint32
		nonOverhang := map[ids.OptionId]bool{}
		for _, o := range order {
			if constituency[o] > award[o] {
				award[o] = constituency[o]
				overhangLocalsSum += constituency[o]
			} else {
				nonOverhang[o] = true
			}
		}
		if overhangLocalsSum > 0 && total > overhangLocalsSum {
			remaining := total - overhangLocalsSum
			restricted := map[ids.OptionId]uint64{}
			var restrictedOptions []types.Option
			for _, o := range options {
				if nonOverhang[o.OptionId] {
					restricted[o.OptionId] = scores.Scores[o.OptionId]
					restrictedOptions = append(restrictedOptions, o)
				}
			}
			sub := types.UnitScores{UnitId: unit.UnitId, Scores: restricted}
			subUnit := unit
			subUnit.Magnitude = remaining
			subAlloc, subTies, err := allocateHighestAverages(subUnit, sub, restrictedOptions, p, divisorDHondt)
			if err != nil {
				return types.UnitAllocation{}, nil, err
			}
			for o, s := range subAlloc.SeatsOrPower {
				award[o] = s
			}
			ties = append(ties, subTies...)
		} else if overhangLocalsSum >= total {
			for _, o := range order {
				if nonOverhang[o] {
					award[o] = 0
				}
			}
		}
	}

	return types.UnitAllocation{UnitId: unit.UnitId, SeatsOrPower: award}, ties, nil
}
