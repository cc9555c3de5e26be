// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocator

import (
	"math/big"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/numeric"
	"github.com/vmengine/core/internal/types"
)

// quotaFunc computes the electoral quota given total votes and seats.
type quotaFunc func(totalVotes uint64, magnitude uint32) numeric.Ratio

func quotaHare(totalVotes uint64, magnitude uint32) numeric.Ratio {
	r, _ := numericRatio(totalVotes, uint64(magnitude))
	return r
}

func quotaDroop(totalVotes uint64, magnitude uint32) numeric.Ratio {
	r, _ := numericRatio(totalVotes, uint64(magnitude)+1)
	one, _ := numeric.New(1, 1)
	sum, _ := r.Add(one)
	return sum
}

func quotaImperiali(totalVotes uint64, magnitude uint32) numeric.Ratio {
	r, _ := numericRatio(totalVotes, uint64(magnitude)+2)
	return r
}

// allocateLargestRemainder awards an initial quota-based seat count to
// every option (votes/quota, floored), then distributes the leftover
// seats to whichever options carry the largest fractional remainders
// until exactly magnitude seats are distributed (§4.4).
func allocateLargestRemainder(unit types.Unit, scores types.UnitScores, options []types.Option, quota quotaFunc) (types.UnitAllocation, []types.TieContext, error) {
	order := canonicalOrder(options)
	var total uint64
	for _, o := range order {
		total += scores.Scores[o]
	}

	award := map[ids.OptionId]uint32{}
	if total == 0 || unit.Magnitude == 0 {
		for _, o := range order {
			award[o] = 0
		}
		return types.UnitAllocation{UnitId: unit.UnitId, SeatsOrPower: award}, nil, nil
	}

	q := quota(total, unit.Magnitude)
	remainder := map[ids.OptionId]numeric.Ratio{}
	awarded := uint32(0)

	for _, o := range order {
		vOverQ, err := votesOverQuota(scores.Scores[o], q)
		if err != nil {
			return types.UnitAllocation{}, nil, err
		}
		floor := floorDiv(vOverQ.Num, vOverQ.Den)
		award[o] = uint32(floor.Int64())
		awarded += award[o]

		fracNum := new(big.Int).Sub(vOverQ.Num, new(big.Int).Mul(floor, vOverQ.Den))
		remainder[o] = numeric.Ratio{Num: fracNum, Den: vOverQ.Den}
	}

	var ties []types.TieContext
	switch {
	case awarded < unit.Magnitude:
		need := unit.Magnitude - awarded
		ranked := rankByRemainderDesc(order, remainder, scores.Scores)
		for i := uint32(0); i < need && i < uint32(len(ranked)); i++ {
			award[ranked[i]]++
		}
		if need > 0 && uint32(len(ranked)) > need {
			boundary := ranked[need-1]
			var tiedAtBoundary []ids.OptionId
			for _, o := range ranked {
				if remainder[o].Equal(remainder[boundary]) && scores.Scores[o] == scores.Scores[boundary] {
					tiedAtBoundary = append(tiedAtBoundary, o)
				}
			}
			if len(tiedAtBoundary) > 1 {
				ties = append(ties, types.TieContext{UnitId: unit.UnitId, Reason: types.TieAllocationAward, Candidates: tiedAtBoundary})
			}
		}
	case awarded > unit.Magnitude:
		excess := awarded - unit.Magnitude
		ranked := rankByRemainderDesc(order, remainder, scores.Scores)
		for i := len(ranked) - 1; excess > 0 && i >= 0; i-- {
			if award[ranked[i]] > 0 {
				award[ranked[i]]--
				excess--
			}
		}
	}

	return types.UnitAllocation{UnitId: unit.UnitId, SeatsOrPower: award}, ties, nil
}

// votesOverQuota returns votes/quota as an exact ratio.
func votesOverQuota(votes uint64, quota numeric.Ratio) (numeric.Ratio, error) {
	v, err := numericRatio(votes, 1)
	if err != nil {
		return numeric.Ratio{}, err
	}
	return v.Mul(numeric.Ratio{Num: quota.Den, Den: quota.Num})
}

// floorDiv computes floor(n/d) for d > 0 via big.Int Euclidean division.
func floorDiv(n, d *big.Int) *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(n, d, m)
	return q
}

// rankByRemainderDesc orders options for leftover-seat distribution by
// (remainder desc, raw score desc, canonical order) (§4.4, §7): a
// remainder tie is broken by which option carries more raw votes before
// falling back to canonical order, so two options splitting an
// identical fractional remainder at wildly different vote counts don't
// get treated as an undifferentiated tie.
func rankByRemainderDesc(order []ids.OptionId, remainder map[ids.OptionId]numeric.Ratio, scores map[ids.OptionId]uint64) []ids.OptionId {
	out := make([]ids.OptionId, len(order))
	copy(out, order)
	less := func(a, b ids.OptionId) bool {
		if c := remainder[a].Cmp(remainder[b]); c != 0 {
			return c > 0
		}
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return false
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			if less(out[j], out[j-1]) {
				out[j], out[j-1] = out[j-1], out[j]
			} else {
				break
			}
		}
	}
	return out
}
