// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tabulator

import (
	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// tabulateIRV runs instant-runoff elimination rounds over a unit's
// ranked ballots (§4.3). Each round tallies first continuing
// preference per ballot; the lowest-count option is eliminated and its
// ballots transfer to their next continuing preference. A ballot with
// no remaining continuing preference becomes exhausted: per
// VM-VAR-006, an exhausted ballot reduces the continuing denominator
// rather than counting toward any option. Elimination rounds stop once
// an option holds a strict majority of the continuing denominator, or
// only one option remains.
func tabulateIRV(tally types.UnitTally, options []types.Option, p params.Params) (types.UnitScores, types.TabulateAudit, error) {
	order := optionOrder(options)
	continuing := make(map[ids.OptionId]bool, len(order))
	for _, o := range order {
		continuing[o] = true
	}

	log := types.IrvLog{}
	var lastCounts map[ids.OptionId]uint64

	for {
		counts := make(map[ids.OptionId]uint64, len(order))
		for _, o := range order {
			if continuing[o] {
				counts[o] = 0
			}
		}
		continuingTotal := uint64(0)
		for _, ballot := range tally.Rankings {
			choice, exhausted := firstContinuingPreference(ballot.Preferences, continuing)
			if exhausted {
				continue
			}
			counts[choice] += ballot.Count
			continuingTotal += ballot.Count
		}
		lastCounts = counts

		round := types.IrvRound{Counts: counts}

		remaining := remainingOptions(order, continuing)
		if len(remaining) == 1 {
			w := remaining[0]
			round.Winner = &w
			log.Rounds = append(log.Rounds, round)
			break
		}

		majorityHolder, hasMajority := checkMajority(counts, continuingTotal)
		if hasMajority {
			round.Winner = &majorityHolder
			log.Rounds = append(log.Rounds, round)
			break
		}

		loser, tied := lowestOption(remaining, counts)
		if tied != nil {
			log.Rounds = append(log.Rounds, round)
			return finishWithPendingTie(tally.UnitId, lastCounts, log, types.TieIrvElimination, tied)
		}
		continuing[loser] = false
		round.Eliminated = &loser
		log.Rounds = append(log.Rounds, round)
	}

	// lastCounts is the final round's redistributed tally: every
	// continuing ballot's transferred vote lands on the elected winner
	// (or, in the majority-round case, on whichever options were still
	// continuing), not the round-1 first-preference snapshot. Downstream
	// consumers (WTA, the national-majority gate, the decisiveness
	// margin) read UnitScores.Scores expecting the actual IRV outcome.
	turnout := types.Turnout{
		BallotsCast:    tally.ValidBallots + tally.InvalidOrBlank,
		ValidBallots:   tally.ValidBallots,
		InvalidOrBlank: tally.InvalidOrBlank,
	}
	return types.UnitScores{UnitId: tally.UnitId, Turnout: turnout, Scores: lastCounts}, types.TabulateAudit{Irv: &log}, nil
}

func firstContinuingPreference(prefs []ids.OptionId, continuing map[ids.OptionId]bool) (ids.OptionId, bool) {
	for _, p := range prefs {
		if continuing[p] {
			return p, false
		}
	}
	return "", true
}

func remainingOptions(order []ids.OptionId, continuing map[ids.OptionId]bool) []ids.OptionId {
	var out []ids.OptionId
	for _, o := range order {
		if continuing[o] {
			out = append(out, o)
		}
	}
	return out
}

func checkMajority(counts map[ids.OptionId]uint64, continuingTotal uint64) (ids.OptionId, bool) {
	if continuingTotal == 0 {
		return "", false
	}
	for _, o := range determinism.SortedKeys(counts) {
		if counts[o]*2 > continuingTotal {
			return o, true
		}
	}
	return "", false
}

// lowestOption returns the option with the smallest count among
// remaining (canonical order breaks nothing; a genuine count tie is
// returned as a non-nil tied slice instead).
func lowestOption(remaining []ids.OptionId, counts map[ids.OptionId]uint64) (ids.OptionId, []ids.OptionId) {
	var min uint64
	var minOpts []ids.OptionId
	for i, o := range remaining {
		c := counts[o]
		if i == 0 || c < min {
			min = c
			minOpts = []ids.OptionId{o}
		} else if c == min {
			minOpts = append(minOpts, o)
		}
	}
	if len(minOpts) == 1 {
		return minOpts[0], nil
	}
	return "", minOpts
}

func finishWithPendingTie(unitId ids.UnitId, scores map[ids.OptionId]uint64, log types.IrvLog, reason types.TieReason, candidates []ids.OptionId) (types.UnitScores, types.TabulateAudit, error) {
	audit := types.TabulateAudit{
		Irv: &log,
		PendingTies: []types.TieContext{
			{UnitId: unitId, Reason: reason, Candidates: candidates},
		},
	}
	return types.UnitScores{UnitId: unitId, Scores: scores}, audit, nil
}
