// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types defines the engine's data model (§3): the frozen
// division registry, ballot tallies, parameter-derived scores and
// allocations, and the three canonical output artifacts.
package types

import (
	"fmt"

	"github.com/vmengine/core/internal/ids"
)

// EdgeType classifies an adjacency link between two units. All three types
// are treated as connections by the frontier mapper; the type is preserved
// for rendering only (§4.7).
type EdgeType string

const (
	EdgeLand   EdgeType = "land"
	EdgeBridge EdgeType = "bridge"
	EdgeWater  EdgeType = "water"
)

// Adjacency is a directed reference from a unit to a neighboring unit.
type Adjacency struct {
	UnitId ids.UnitId `json:"unit_id"`
	Edge   EdgeType   `json:"edge_type"`
}

// Unit is a single division-registry entry.
type Unit struct {
	UnitId            ids.UnitId    `json:"unit_id"`
	Magnitude         uint32        `json:"magnitude"`
	EligibleRoll      uint64        `json:"eligible_roll"`
	BallotsCast       uint64        `json:"ballots_cast"`
	InvalidOrBlank    uint64        `json:"invalid_or_blank"`
	PopulationBaseline uint64       `json:"population_baseline"`
	RegionTags        []string      `json:"region_tags"`
	Parent            *ids.UnitId   `json:"parent,omitempty"`
	Adjacency         []Adjacency   `json:"adjacency"`
}

// Validate checks the per-unit invariants from §3:
// invalid_or_blank <= ballots_cast <= eligible_roll, magnitude >= 1.
func (u Unit) Validate() error {
	if u.Magnitude < 1 {
		return fmt.Errorf("unit %s: magnitude must be >= 1, got %d", u.UnitId, u.Magnitude)
	}
	if u.BallotsCast > u.EligibleRoll {
		return fmt.Errorf("unit %s: ballots_cast (%d) > eligible_roll (%d)", u.UnitId, u.BallotsCast, u.EligibleRoll)
	}
	if u.InvalidOrBlank > u.BallotsCast {
		return fmt.Errorf("unit %s: invalid_or_blank (%d) > ballots_cast (%d)", u.UnitId, u.InvalidOrBlank, u.BallotsCast)
	}
	return nil
}

// ValidBallots returns ballots_cast - invalid_or_blank.
func (u Unit) ValidBallots() uint64 {
	return u.BallotsCast - u.InvalidOrBlank
}

// Option is a ballot option / party / choice.
type Option struct {
	OptionId    ids.OptionId `json:"option_id"`
	OrderIndex  uint16       `json:"order_index"`
	IsStatusQuo bool         `json:"is_status_quo"`
}
