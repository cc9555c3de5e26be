// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tabulator implements the TABULATE stage (§4.3): per-unit
// dispatch across the five ballot families onto a uniform UnitScores +
// TabulateAudit shape, with ties deferred as TieContext rather than
// broken inline.
//
// Built around accumulate-then-decide vote counting, with the five-way
// dispatch branching on a configured ballot family the same way a
// threshold evaluator branches on a configured strategy.
package tabulator

import (
	"fmt"

	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// TabulateUnit dispatches a single unit's raw tally onto its ballot
// family's counting rule (VM-VAR-001) and returns the resulting scores
// plus any audit trail / pending ties.
func TabulateUnit(tally types.UnitTally, options []types.Option, p params.Params) (types.UnitScores, types.TabulateAudit, error) {
	turnout := types.Turnout{
		BallotsCast:    tally.ValidBallots + tally.InvalidOrBlank,
		ValidBallots:   tally.ValidBallots,
		InvalidOrBlank: tally.InvalidOrBlank,
	}

	var scores types.UnitScores
	var audit types.TabulateAudit
	var err error

	switch p.BallotFamily {
	case types.FamilyPlurality:
		scores, audit, err = tallyDirect(tally.UnitId, turnout, tally.Votes, options)
	case types.FamilyApproval:
		scores, audit, err = tallyDirect(tally.UnitId, turnout, tally.Approvals, options)
	case types.FamilyScore:
		scores, audit, err = tallyDirect(tally.UnitId, turnout, tally.ScoreSum, options)
	case types.FamilyRankedIRV:
		scores, audit, err = tabulateIRV(tally, options, p)
	case types.FamilyCondorcet:
		scores, audit, err = tabulateCondorcet(tally, options, p)
	default:
		return types.UnitScores{}, types.TabulateAudit{}, fmt.Errorf("tabulator: unknown ballot family %q", p.BallotFamily)
	}
	if err != nil {
		return types.UnitScores{}, types.TabulateAudit{}, err
	}
	scores.ConstituencySeatsWon = tally.ConstituencySeatsWon
	return scores, audit, nil
}

// tallyDirect handles the three ballot families whose raw tally is
// already a per-option count (plurality votes, approval marks, score
// sums): no elimination, no pairwise matrix, no pending ties.
func tallyDirect(unitId ids.UnitId, turnout types.Turnout, counts map[ids.OptionId]uint64, options []types.Option) (types.UnitScores, types.TabulateAudit, error) {
	scores := make(map[ids.OptionId]uint64, len(options))
	for _, o := range options {
		scores[o.OptionId] = counts[o.OptionId]
	}
	return types.UnitScores{UnitId: unitId, Turnout: turnout, Scores: scores}, types.TabulateAudit{}, nil
}

// optionOrder returns options in canonical (order_index, option_id)
// order (§3).
func optionOrder(options []types.Option) []ids.OptionId {
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
