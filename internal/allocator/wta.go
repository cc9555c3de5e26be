// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocator

import (
	"fmt"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/types"
)

// allocateWTA awards all 100 power points to the single highest-scoring
// option. WTA requires magnitude=1 (checked at VALIDATE, §4.4); a
// quorum-like scan over canonical order picks the winner so a score tie
// is reported rather than silently broken by map iteration.
func allocateWTA(unit types.Unit, scores types.UnitScores, options []types.Option) (types.UnitAllocation, []types.TieContext, error) {
	if unit.Magnitude != 1 {
		return types.UnitAllocation{}, nil, fmt.Errorf("allocator: wta requires magnitude=1, unit %s has %d", unit.UnitId, unit.Magnitude)
	}
	order := canonicalOrder(options)

	var max uint64
	var winners []ids.OptionId
	for i, o := range order {
		s := scores.Scores[o]
		if i == 0 || s > max {
			max = s
			winners = []ids.OptionId{o}
		} else if s == max {
			winners = append(winners, o)
		}
	}

	award := map[ids.OptionId]uint32{}
	for _, o := range order {
		award[o] = 0
	}
	if len(winners) == 0 {
		return types.UnitAllocation{UnitId: unit.UnitId, SeatsOrPower: award}, nil, nil
	}

	winner := winners[0]
	award[winner] = 100

	var ties []types.TieContext
	if len(winners) > 1 {
		ties = append(ties, types.TieContext{UnitId: unit.UnitId, Reason: types.TieWTA, Candidates: winners})
	}
	return types.UnitAllocation{UnitId: unit.UnitId, SeatsOrPower: award}, ties, nil
}
