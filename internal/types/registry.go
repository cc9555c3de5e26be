// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import (
	"fmt"
	"sort"

	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/ids"
)

// DivisionRegistry is the frozen set of units and options the engine
// computes over (§6).
type DivisionRegistry struct {
	Id      string   `json:"id"`
	Units   []Unit   `json:"units"`
	Options []Option `json:"options"`
}

// Validate checks cross-field registry invariants: per-unit invariants,
// symmetric adjacency, and unique identifiers.
func (r DivisionRegistry) Validate() []error {
	var errs []error

	seenUnits := map[ids.UnitId]bool{}
	byUnit := map[ids.UnitId]Unit{}
	for _, u := range r.Units {
		if seenUnits[u.UnitId] {
			errs = append(errs, fmt.Errorf("duplicate unit id %s", u.UnitId))
			continue
		}
		seenUnits[u.UnitId] = true
		byUnit[u.UnitId] = u
		if err := u.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	// Adjacency must be symmetric: if A lists B as a neighbor, B must list A.
	for _, u := range r.Units {
		for _, adj := range u.Adjacency {
			neighbor, ok := byUnit[adj.UnitId]
			if !ok {
				errs = append(errs, fmt.Errorf("unit %s: adjacency references unknown unit %s", u.UnitId, adj.UnitId))
				continue
			}
			if !hasAdjacency(neighbor, u.UnitId) {
				errs = append(errs, fmt.Errorf("asymmetric adjacency: %s -> %s not reciprocated", u.UnitId, adj.UnitId))
			}
		}
	}

	seenOptions := map[ids.OptionId]bool{}
	for _, o := range r.Options {
		if seenOptions[o.OptionId] {
			errs = append(errs, fmt.Errorf("duplicate option id %s", o.OptionId))
		}
		seenOptions[o.OptionId] = true
	}

	return errs
}

func hasAdjacency(u Unit, target ids.UnitId) bool {
	for _, adj := range u.Adjacency {
		if adj.UnitId == target {
			return true
		}
	}
	return false
}

// SortedUnitIds returns every unit id in canonical (lexicographic) order.
func (r DivisionRegistry) SortedUnitIds() []ids.UnitId {
	out := make([]ids.UnitId, len(r.Units))
	for i, u := range r.Units {
		out[i] = u.UnitId
	}
	return determinism.SortUnitIds(out)
}

// SortedOptions returns every option in canonical (order_index, option_id)
// order.
func (r DivisionRegistry) SortedOptions() []Option {
	out := make([]Option, len(r.Options))
	copy(out, r.Options)
	sort.Slice(out, func(i, j int) bool {
		return determinism.LessOption(
			determinism.OptionItem{OrderIndex: out[i].OrderIndex, OptionId: out[i].OptionId},
			determinism.OptionItem{OrderIndex: out[j].OrderIndex, OptionId: out[j].OptionId},
		)
	})
	return out
}

// UnitByID returns a lookup map from unit id to Unit.
func (r DivisionRegistry) UnitByID() map[ids.UnitId]Unit {
	m := make(map[ids.UnitId]Unit, len(r.Units))
	for _, u := range r.Units {
		m[u.UnitId] = u
	}
	return m
}
