// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package frontier implements the optional MAP_FRONTIER stage (§4.7):
// per-unit status banding driven by a unit's change-option vote
// share, with mediation/enclave/protected/quorum-blocked flags layered
// on afterward. Only runs when VM-VAR-040 selects banded or ladder.
//
// Enclave detection walks the registry's Adjacency edges one hop only
// (no traversal beyond a unit's direct neighbors): units whose computed
// status matches none of their direct neighbors are flagged.
package frontier

import (
	"sort"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/numeric"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
	"github.com/vmengine/core/utils/set"
)

// Inputs bundles what the frontier mapper needs per unit: its vote
// share for the change option(s) and whether it was blocked by the
// per-unit quorum gate.
type Inputs struct {
	Registry          types.DivisionRegistry
	UnitScores        []types.UnitScores
	QuorumBlockedUnits map[ids.UnitId]bool
}

// Compute returns a FrontierMap with one entry per unit in canonical
// order. Callers must only invoke this when p.FrontierMode != none
// (§4.7's own guard).
func Compute(in Inputs, p params.Params) (types.FrontierMap, error) {
	protected := set.Of(p.ProtectedUnits...)

	byUnit := map[ids.UnitId]types.UnitScores{}
	for _, us := range in.UnitScores {
		byUnit[us.UnitId] = us
	}

	bands := map[ids.UnitId]types.FrontierStatus{}
	units := make([]types.FrontierUnit, 0, len(in.Registry.Units))

	sortedUnits := make([]types.Unit, len(in.Registry.Units))
	copy(sortedUnits, in.Registry.Units)
	sort.Slice(sortedUnits, func(i, j int) bool { return sortedUnits[i].UnitId < sortedUnits[j].UnitId })

	for _, u := range sortedUnits {
		us, ok := byUnit[u.UnitId]
		if !ok {
			continue
		}
		changeShare, err := changeOptionShare(us, in.Registry)
		if err != nil {
			return types.FrontierMap{}, err
		}

		status, mediation := bandStatus(changeShare, p)

		blocked := in.QuorumBlockedUnits[u.UnitId]
		protectedBlocked := protected.Contains(u.UnitId)

		if protectedBlocked || blocked {
			status, mediation = applyBackoff(status, mediation, p)
		}

		bands[u.UnitId] = status
		units = append(units, types.FrontierUnit{
			UnitId:           u.UnitId,
			Status:           status,
			Mediation:        mediation,
			ProtectedBlocked: protectedBlocked,
			QuorumBlocked:    blocked,
		})
	}

	markEnclaves(in.Registry, units, bands)

	return types.FrontierMap{Units: units}, nil
}

// changeOptionShare returns the vote share held by every non-status-
// quo option, summed, over the unit's gate-relevant denominator.
func changeOptionShare(us types.UnitScores, registry types.DivisionRegistry) (numeric.Ratio, error) {
	var changeVotes uint64
	for _, o := range registry.Options {
		if !o.IsStatusQuo {
			changeVotes += us.Scores[o.OptionId]
		}
	}
	den := us.Turnout.ValidBallots
	if den == 0 {
		return numeric.Zero(), nil
	}
	return numeric.New(int64(changeVotes), int64(den))
}

// bandStatus maps a change-vote share onto a FrontierStatus using the
// cut (VM-VAR-041) and mediation window (VM-VAR-047); strictness
// (VM-VAR-049) halves the effective window in lenient mode, so only
// shares very close to the cut trigger mediation.
func bandStatus(share numeric.Ratio, p params.Params) (types.FrontierStatus, bool) {
	window := p.FrontierWindow
	if p.FrontierStrictness == params.StrictnessLenient {
		window /= 2
	}

	cut := p.FrontierCut
	lower := cut - window
	upper := cut + window

	switch {
	case !share.GePercent(maxInt(lower, 0)):
		return types.StatusNoChange, false
	case share.GePercent(upper):
		if p.FrontierMode == params.FrontierLadder {
			return ladderStep(share, p), false
		}
		return types.StatusImmediate, false
	default:
		return types.StatusPhased, true
	}
}

// ladderStep assigns progressively stronger statuses the further a
// unit's share clears the cut, rather than banded mode's single jump
// straight to immediate.
func ladderStep(share numeric.Ratio, p params.Params) types.FrontierStatus {
	switch {
	case share.GePercent(p.FrontierCut + 2*p.FrontierWindow):
		return types.StatusImmediate
	case share.GePercent(p.FrontierCut + p.FrontierWindow):
		return types.StatusAutonomy
	default:
		return types.StatusPhased
	}
}

// applyBackoff degrades a computed status when a unit is protected or
// quorum-blocked, per VM-VAR-048: none leaves the computed status
// untouched (the flag is informational only), one_band steps the
// status down one rung, and full_revert forces no_change.
func applyBackoff(status types.FrontierStatus, mediation bool, p params.Params) (types.FrontierStatus, bool) {
	switch p.BackoffPolicy {
	case params.BackoffFullRevert:
		return types.StatusNoChange, false
	case params.BackoffOneBand:
		return stepDown(status), mediation
	default:
		return status, mediation
	}
}

func stepDown(status types.FrontierStatus) types.FrontierStatus {
	switch status {
	case types.StatusImmediate:
		return types.StatusAutonomy
	case types.StatusAutonomy:
		return types.StatusPhased
	case types.StatusPhased:
		return types.StatusNoChange
	default:
		return types.StatusNoChange
	}
}

// markEnclaves flags any unit whose status matches none of its direct
// neighbors (a single-unit pocket of status surrounded by a different
// band), by comparing it with each entry of its own Adjacency list.
func markEnclaves(registry types.DivisionRegistry, units []types.FrontierUnit, bands map[ids.UnitId]types.FrontierStatus) {
	byUnit := registry.UnitByID()
	for i := range units {
		u := units[i]
		neighbor := byUnit[u.UnitId]
		if len(neighbor.Adjacency) == 0 {
			continue
		}
		allDifferent := true
		for _, adj := range neighbor.Adjacency {
			if bands[adj.UnitId] == u.Status {
				allDifferent = false
				break
			}
		}
		units[i].Enclave = allDifferent
	}
}

func maxInt(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
