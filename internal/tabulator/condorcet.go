// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tabulator

import (
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// tabulateCondorcet builds the full pairwise preference matrix over a
// unit's ranked ballots and looks for a Condorcet winner: an option
// that beats every other option head-to-head. When none exists, the
// completion rule (VM-VAR-005) decides; v1 implements Copeland
// (most pairwise wins) as the only completion rule (§9 open
// question, resolved — see DESIGN.md).
func tabulateCondorcet(tally types.UnitTally, options []types.Option, p params.Params) (types.UnitScores, types.TabulateAudit, error) {
	order := optionOrder(options)
	matrix := make(map[ids.OptionId]map[ids.OptionId]uint64, len(order))
	for _, a := range order {
		matrix[a] = make(map[ids.OptionId]uint64, len(order))
	}

	for _, ballot := range tally.Rankings {
		rank := make(map[ids.OptionId]int, len(ballot.Preferences))
		for i, o := range ballot.Preferences {
			rank[o] = i
		}
		for _, a := range order {
			for _, b := range order {
				if a == b {
					continue
				}
				if preferred(rank, a, b) {
					matrix[a][b] += ballot.Count
				}
			}
		}
	}

	winner, ok := condorcetWinner(order, matrix)
	condLog := types.CondorcetLog{Pairwise: types.Pairwise{Matrix: matrix}}

	scores := copelandScores(order, matrix)
	turnout := types.Turnout{
		BallotsCast:    tally.ValidBallots + tally.InvalidOrBlank,
		ValidBallots:   tally.ValidBallots,
		InvalidOrBlank: tally.InvalidOrBlank,
	}

	if ok {
		condLog.CondorcetWinner = &winner
		return types.UnitScores{UnitId: tally.UnitId, Turnout: turnout, Scores: scores}, types.TabulateAudit{Condorcet: &condLog}, nil
	}

	condLog.CompletionApplied = string(params.CompletionCopeland)
	best, tied := topCopeland(order, scores)
	if tied != nil {
		condLog.CondorcetWinner = nil
		audit := types.TabulateAudit{
			Condorcet: &condLog,
			PendingTies: []types.TieContext{
				{UnitId: tally.UnitId, Reason: types.TieCondorcetCompletion, Candidates: tied},
			},
		}
		return types.UnitScores{UnitId: tally.UnitId, Turnout: turnout, Scores: scores}, audit, nil
	}
	condLog.CondorcetWinner = &best
	return types.UnitScores{UnitId: tally.UnitId, Turnout: turnout, Scores: scores}, types.TabulateAudit{Condorcet: &condLog}, nil
}

// preferred reports whether a ranks strictly ahead of b on this ballot.
// Options absent from the ranking are treated as ranked last (after
// every listed preference), consistent with IRV's exhaustion model.
func preferred(rank map[ids.OptionId]int, a, b ids.OptionId) bool {
	ra, aok := rank[a]
	rb, bok := rank[b]
	switch {
	case aok && bok:
		return ra < rb
	case aok && !bok:
		return true
	default:
		return false
	}
}

func condorcetWinner(order []ids.OptionId, matrix map[ids.OptionId]map[ids.OptionId]uint64) (ids.OptionId, bool) {
	for _, a := range order {
		winsAll := true
		for _, b := range order {
			if a == b {
				continue
			}
			if matrix[a][b] <= matrix[b][a] {
				winsAll = false
				break
			}
		}
		if winsAll {
			return a, true
		}
	}
	return "", false
}

// copelandScores counts, per option, how many other options it beats
// pairwise (ties in a single pairwise contest count for neither side).
func copelandScores(order []ids.OptionId, matrix map[ids.OptionId]map[ids.OptionId]uint64) map[ids.OptionId]uint64 {
	scores := make(map[ids.OptionId]uint64, len(order))
	for _, a := range order {
		var wins uint64
		for _, b := range order {
			if a == b {
				continue
			}
			if matrix[a][b] > matrix[b][a] {
				wins++
			}
		}
		scores[a] = wins
	}
	return scores
}

func topCopeland(order []ids.OptionId, scores map[ids.OptionId]uint64) (ids.OptionId, []ids.OptionId) {
	var max uint64
	var best []ids.OptionId
	for i, o := range order {
		s := scores[o]
		if i == 0 || s > max {
			max = s
			best = []ids.OptionId{o}
		} else if s == max {
			best = append(best, o)
		}
	}
	if len(best) == 1 {
		return best[0], nil
	}
	return "", best
}
