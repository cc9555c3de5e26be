// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package frontier_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/frontier"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

func mustUnitId(t *testing.T, s string) ids.UnitId {
	t.Helper()
	u, err := ids.NewUnitId(s)
	require.NoError(t, err)
	return u
}

func mustOptionId(t *testing.T, s string) ids.OptionId {
	t.Helper()
	o, err := ids.NewOptionId(s)
	require.NoError(t, err)
	return o
}

func TestComputeNoChangeBelowCut(t *testing.T) {
	sq := mustOptionId(t, "SQ")
	change := mustOptionId(t, "CHG")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1")}},
		Options: []types.Option{{OptionId: sq, IsStatusQuo: true}, {OptionId: change}},
	}
	unitScores := []types.UnitScores{
		{UnitId: mustUnitId(t, "U1"), Turnout: types.Turnout{ValidBallots: 100}, Scores: map[ids.OptionId]uint64{sq: 90, change: 10}},
	}
	p := params.Default()
	p.FrontierMode = params.FrontierBanded
	p.FrontierCut = 50
	p.FrontierWindow = 5

	fm, err := frontier.Compute(frontier.Inputs{Registry: registry, UnitScores: unitScores}, p)
	require.NoError(t, err)
	require.Len(t, fm.Units, 1)
	require.Equal(t, types.StatusNoChange, fm.Units[0].Status)
}

func TestComputeImmediateAboveCut(t *testing.T) {
	sq := mustOptionId(t, "SQ")
	change := mustOptionId(t, "CHG")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1")}},
		Options: []types.Option{{OptionId: sq, IsStatusQuo: true}, {OptionId: change}},
	}
	unitScores := []types.UnitScores{
		{UnitId: mustUnitId(t, "U1"), Turnout: types.Turnout{ValidBallots: 100}, Scores: map[ids.OptionId]uint64{sq: 10, change: 90}},
	}
	p := params.Default()
	p.FrontierMode = params.FrontierBanded
	p.FrontierCut = 50
	p.FrontierWindow = 5

	fm, err := frontier.Compute(frontier.Inputs{Registry: registry, UnitScores: unitScores}, p)
	require.NoError(t, err)
	require.Equal(t, types.StatusImmediate, fm.Units[0].Status)
}

func TestComputeProtectedUnitForcedNoChange(t *testing.T) {
	sq := mustOptionId(t, "SQ")
	change := mustOptionId(t, "CHG")
	u1 := mustUnitId(t, "U1")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: u1}},
		Options: []types.Option{{OptionId: sq, IsStatusQuo: true}, {OptionId: change}},
	}
	unitScores := []types.UnitScores{
		{UnitId: u1, Turnout: types.Turnout{ValidBallots: 100}, Scores: map[ids.OptionId]uint64{sq: 10, change: 90}},
	}
	p := params.Default()
	p.FrontierMode = params.FrontierBanded
	p.FrontierCut = 50
	p.FrontierWindow = 5
	p.BackoffPolicy = params.BackoffFullRevert
	p.ProtectedUnits = []ids.UnitId{u1}

	fm, err := frontier.Compute(frontier.Inputs{Registry: registry, UnitScores: unitScores}, p)
	require.NoError(t, err)
	require.Equal(t, types.StatusNoChange, fm.Units[0].Status)
	require.True(t, fm.Units[0].ProtectedBlocked)
}
