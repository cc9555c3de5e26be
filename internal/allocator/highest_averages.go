// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocator

import (
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/numeric"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// divisorFunc returns the divisor applied to an option's votes after it
// has already been awarded n seats in this round-robin.
type divisorFunc func(seatsAwarded uint32) int64

func divisorDHondt(seatsAwarded uint32) int64 { return int64(seatsAwarded) + 1 }

func divisorSainteLague(seatsAwarded uint32) int64 { return 2*int64(seatsAwarded) + 1 }

// allocateHighestAverages awards magnitude seats one at a time to
// whichever eligible option currently has the highest votes/divisor
// quotient (§4.4). Options below the threshold filter (VM-VAR-012)
// never receive a seat.
func allocateHighestAverages(unit types.Unit, scores types.UnitScores, options []types.Option, p params.Params, divisor divisorFunc) (types.UnitAllocation, []types.TieContext, error) {
	order := canonicalOrder(options)
	eligible := eligibleByThreshold(order, scores.Scores, p.ThresholdPct)
	eligibleSet := make(map[ids.OptionId]bool, len(eligible))
	for _, o := range eligible {
		eligibleSet[o] = true
	}

	award := map[ids.OptionId]uint32{}
	for _, o := range order {
		award[o] = 0
	}

	var ties []types.TieContext
	for seat := uint32(0); seat < unit.Magnitude; seat++ {
		winner, tied, err := highestQuotient(order, eligibleSet, scores.Scores, award, divisor)
		if err != nil {
			return types.UnitAllocation{}, nil, err
		}
		if winner == "" {
			break // no eligible option left to receive further seats
		}
		award[winner]++
		if tied != nil {
			ties = append(ties, types.TieContext{UnitId: unit.UnitId, Reason: types.TieAllocationAward, Candidates: tied})
		}
	}

	return types.UnitAllocation{UnitId: unit.UnitId, SeatsOrPower: award}, ties, nil
}

func highestQuotient(order []ids.OptionId, eligible map[ids.OptionId]bool, votes map[ids.OptionId]uint64, awarded map[ids.OptionId]uint32, divisor divisorFunc) (ids.OptionId, []ids.OptionId, error) {
	var best numeric.Ratio
	var bestSet bool
	var winners []ids.OptionId

	for _, o := range order {
		if !eligible[o] {
			continue
		}
		q, err := numericRatio(votes[o], uint64(divisor(awarded[o])))
		if err != nil {
			return "", nil, err
		}
		if !bestSet {
			best, bestSet = q, true
			winners = []ids.OptionId{o}
			continue
		}
		cmp := q.Cmp(best)
		switch {
		case cmp > 0:
			best = q
			winners = []ids.OptionId{o}
		case cmp == 0:
			winners = append(winners, o)
		}
	}
	if len(winners) == 0 {
		return "", nil, nil
	}
	if len(winners) == 1 {
		return winners[0], nil, nil
	}
	return winners[0], winners, nil
}
