// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/vmengine/core/internal/ids"

// Turnout summarizes a unit's participation.
type Turnout struct {
	BallotsCast    uint64 `json:"ballots_cast"`
	ValidBallots   uint64 `json:"valid_ballots"`
	InvalidOrBlank uint64 `json:"invalid_or_blank"`
}

// UnitScores is the tabulator's per-unit output (§3).
type UnitScores struct {
	UnitId  ids.UnitId              `json:"unit_id"`
	Turnout Turnout                 `json:"turnout"`
	Scores  map[ids.OptionId]uint64 `json:"scores"`

	// ConstituencySeatsWon is carried through from the source UnitTally
	// for the MMP allocator only; every other allocation method ignores
	// it.
	ConstituencySeatsWon map[ids.OptionId]uint32 `json:"constituency_seats_won,omitempty"`
}

// IrvRound is one elimination round's first-preference counts.
type IrvRound struct {
	Counts     map[ids.OptionId]uint64 `json:"counts"`
	Eliminated *ids.OptionId            `json:"eliminated,omitempty"`
	Winner     *ids.OptionId            `json:"winner,omitempty"`
}

// IrvLog records every round of an instant-runoff tabulation.
type IrvLog struct {
	Rounds []IrvRound `json:"rounds"`
}

// Pairwise is a Condorcet pairwise preference matrix: Matrix[a][b] is the
// number of ballots preferring a over b.
type Pairwise struct {
	Matrix map[ids.OptionId]map[ids.OptionId]uint64 `json:"matrix"`
}

// CondorcetLog records the pairwise matrix, the winner if one exists, and
// the completion method applied otherwise.
type CondorcetLog struct {
	Pairwise          Pairwise      `json:"pairwise"`
	CondorcetWinner   *ids.OptionId `json:"condorcet_winner,omitempty"`
	CompletionApplied string        `json:"completion_applied,omitempty"`
}

// TabulateAudit carries per-ballot-family diagnostic logs plus any pending
// ties raised during tabulation.
type TabulateAudit struct {
	Irv         *IrvLog       `json:"irv,omitempty"`
	Condorcet   *CondorcetLog `json:"condorcet,omitempty"`
	PendingTies []TieContext  `json:"pending_ties,omitempty"`
}

// UnitAllocation is the allocator's per-unit output: seats (most ballot
// families) or WTA power points summing to 100.
type UnitAllocation struct {
	UnitId        ids.UnitId              `json:"unit_id"`
	SeatsOrPower  map[ids.OptionId]uint32 `json:"seats_or_power"`
}

// GateResult is one legitimacy gate's evaluated outcome (§4.6).
type GateResult struct {
	Name         string `json:"name"`
	ValueNum     int64  `json:"value_num"`
	ValueDen     int64  `json:"value_den"`
	ThresholdPct int64  `json:"threshold_pct"`
	Pass         bool   `json:"pass"`
}

// LegitimacyReport is the gate evaluator's full output.
type LegitimacyReport struct {
	Gates          []GateResult `json:"gates"`
	Pass           bool         `json:"pass"`
	FailureReasons []string     `json:"failure_reasons,omitempty"`
}

// FrontierStatus is a unit's computed frontier status (§4.7).
type FrontierStatus string

const (
	StatusNoChange  FrontierStatus = "no_change"
	StatusAutonomy  FrontierStatus = "autonomy"
	StatusPhased    FrontierStatus = "phased"
	StatusImmediate FrontierStatus = "immediate"
)

// FrontierUnit is one unit's frontier computation result.
type FrontierUnit struct {
	UnitId          ids.UnitId     `json:"unit_id"`
	Status          FrontierStatus `json:"status"`
	Mediation       bool           `json:"mediation"`
	Enclave         bool           `json:"enclave"`
	ProtectedBlocked bool          `json:"protected_blocked"`
	QuorumBlocked   bool           `json:"quorum_blocked"`
}

// FrontierMap is the optional frontier output artifact.
type FrontierMap struct {
	Id    ids.FrontierMapId `json:"id"`
	Units []FrontierUnit    `json:"units"`
}

// Label is the pipeline's overall decisiveness label (§4.9).
type Label string

const (
	LabelDecisive Label = "Decisive"
	LabelMarginal Label = "Marginal"
	LabelInvalid  Label = "Invalid"
)

// Result is the engine's primary canonical output artifact (§6).
type Result struct {
	Id              ids.ResultId               `json:"id"`
	FormulaId       ids.FormulaId              `json:"formula_id"`
	Label           Label                      `json:"label"`
	NationalTotals  map[ids.OptionId]uint32    `json:"national_totals"`
	UnitAllocations []UnitAllocation           `json:"unit_allocations"`
	Gates           LegitimacyReport           `json:"gates"`
	FrontierMapId   *ids.FrontierMapId         `json:"frontier_map_id,omitempty"`
	InputRefs       InputRefs                  `json:"input_refs"`
}

// InputRefs names the hashed inputs a Result was computed from.
type InputRefs struct {
	RegistryHash  ids.Sha256 `json:"registry_hash"`
	TallyHash     ids.Sha256 `json:"tally_hash"`
	ParameterHash ids.Sha256 `json:"parameter_hash"`
}

// RunRecord is the engine's audit-trail output artifact (§6).
type RunRecord struct {
	Id              ids.RunId        `json:"id"`
	FormulaId       ids.FormulaId    `json:"formula_id"`
	EngineVersion   string           `json:"engine_version"`
	ParameterSnapshot map[string]any `json:"parameter_snapshot"`
	InputRefs       InputRefs        `json:"input_refs"`
	TieLog          []TieResolution  `json:"tie_log,omitempty"`
	RngSeed         *uint64          `json:"rng_seed,omitempty"`
	StartedAtUTC    string           `json:"started_at_utc"`
	FinishedAtUTC   string           `json:"finished_at_utc"`
	StageDurationsMS map[string]int64 `json:"stage_durations_ms"`
}
