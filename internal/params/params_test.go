// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

func mustUnitId(t *testing.T, s string) ids.UnitId {
	t.Helper()
	id, err := ids.NewUnitId(s)
	require.NoError(t, err)
	return id
}

func TestDefaultValidates(t *testing.T) {
	reg := types.DivisionRegistry{
		Units: []types.Unit{
			{UnitId: mustUnitId(t, "U1"), Magnitude: 1, EligibleRoll: 100, BallotsCast: 80, InvalidOrBlank: 2},
		},
	}
	p := params.Default()
	require.NoError(t, p.Validate(reg))
}

func TestWTARequiresMagnitudeOne(t *testing.T) {
	reg := types.DivisionRegistry{
		Units: []types.Unit{
			{UnitId: mustUnitId(t, "U1"), Magnitude: 3, EligibleRoll: 100, BallotsCast: 80},
		},
	}
	p := params.Default()
	p.AllocationMethod = params.MethodWTA
	err := p.Validate(reg)
	require.Error(t, err)
	require.ErrorContains(t, err, "VM-VAR-010")
}

func TestRandomTiePolicyRequiresSeed(t *testing.T) {
	p := params.Default()
	p.TiePolicy = params.TieRandom
	err := p.Validate(types.DivisionRegistry{})
	require.Error(t, err)
	require.ErrorContains(t, err, "VM-VAR-052")

	seed := uint64(42)
	p.TieSeed = &seed
	require.NoError(t, p.Validate(types.DivisionRegistry{}))
}

func TestPerUnitQuorumScopeAmbiguousWithNoFrontier(t *testing.T) {
	p := params.Default()
	p.FrontierMode = params.FrontierNone
	p.PerUnitQuorumScope = params.ScopeFrontierOnly
	err := p.Validate(types.DivisionRegistry{})
	require.Error(t, err)
	require.ErrorContains(t, err, "VM-VAR-021")
}

func TestFIDVariablesExcludesPresentationFields(t *testing.T) {
	p := params.Default()
	fid := p.FIDVariables()
	_, hasSortOrder := fid["VM-VAR-032"]
	require.False(t, hasSortOrder, "sort order must not be FID-included")

	snap := p.Snapshot()
	require.Contains(t, snap, "VM-VAR-032")
	require.Contains(t, snap, "VM-VAR-001")
}

func TestPopulationBaselineRequiresNonZero(t *testing.T) {
	reg := types.DivisionRegistry{
		Units: []types.Unit{
			{UnitId: mustUnitId(t, "U1"), Magnitude: 1, PopulationBaseline: 0},
		},
	}
	p := params.Default()
	p.AggregationMode = params.AggregationPopulationBaseline
	err := p.Validate(reg)
	require.Error(t, err)
	require.ErrorContains(t, err, "VM-VAR-030")
}
