// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/vmengine/core/internal/ids"

// BallotFamily selects the tabulation algorithm (VM-VAR-001).
type BallotFamily string

const (
	FamilyPlurality BallotFamily = "plurality"
	FamilyApproval  BallotFamily = "approval"
	FamilyScore     BallotFamily = "score"
	FamilyRankedIRV BallotFamily = "ranked_irv"
	FamilyCondorcet BallotFamily = "ranked_condorcet"
)

// RankedBallot is one ballot's ranked preference list (most to least
// preferred). Options not listed are treated as unranked (exhausted once all
// listed preferences are eliminated).
type RankedBallot struct {
	Preferences []ids.OptionId `json:"preferences"`
	Count       uint64         `json:"count"`
}

// UnitTally is the per-unit, per-option raw ballot data for one unit. Exactly
// the fields relevant to the unit's ballot family are populated by the
// loader; the tabulator dispatches on BallotFamily to read them.
type UnitTally struct {
	UnitId ids.UnitId `json:"unit_id"`

	ValidBallots   uint64 `json:"valid_ballots"`
	InvalidOrBlank uint64 `json:"invalid_or_blank"`

	// Plurality
	Votes map[ids.OptionId]uint64 `json:"votes,omitempty"`
	// Approval
	Approvals map[ids.OptionId]uint64 `json:"approvals,omitempty"`
	// Score
	ScoreSum map[ids.OptionId]uint64 `json:"score_sum,omitempty"`
	// Ranked (IRV and Condorcet share the same ballot shape)
	Rankings []RankedBallot `json:"rankings,omitempty"`

	// ConstituencySeatsWon is consumed only by the MMP allocator
	// (VM-VAR-010=mmp): seats each option already won in single-member
	// constituency races within this unit, prior to list-seat top-up.
	ConstituencySeatsWon map[ids.OptionId]uint32 `json:"constituency_seats_won,omitempty"`
}

// BallotTally is the full per-unit tally set submitted to the engine.
type BallotTally struct {
	Units []UnitTally `json:"units"`
}

// ByUnit returns a lookup map from unit id to UnitTally.
func (b BallotTally) ByUnit() map[ids.UnitId]UnitTally {
	m := make(map[ids.UnitId]UnitTally, len(b.Units))
	for _, u := range b.Units {
		m[u.UnitId] = u
	}
	return m
}

// TieReason names the decision point that produced a pending tie.
type TieReason string

const (
	TieAllocationAward    TieReason = "allocation_award"
	TieAllocationTrim     TieReason = "allocation_trim"
	TieIrvElimination     TieReason = "irv_elimination"
	TieCondorcetCompletion TieReason = "condorcet_completion"
	TieWTA                TieReason = "wta"
)

// TieContext describes one pending tie: a decision point where two or more
// candidates are exactly equal under the deciding metric, deferred to the
// resolver instead of being broken inline (§4.9 design note).
type TieContext struct {
	UnitId     ids.UnitId     `json:"unit_id"`
	Reason     TieReason      `json:"reason"`
	Candidates []ids.OptionId `json:"candidates"`
}

// TieResolution is one resolver decision, appended to the RunRecord's
// TieLog.
type TieResolution struct {
	Context  TieContext   `json:"context"`
	Policy   string       `json:"policy"`
	Winner   ids.OptionId `json:"winner"`
	Seed     *uint64      `json:"seed,omitempty"`
}
