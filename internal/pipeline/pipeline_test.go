// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pipeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/pipeline"
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

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestRunValidateFailureProducesInvalidLabel(t *testing.T) {
	sq := mustOptionId(t, "SQ")
	chg := mustOptionId(t, "CHG")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1"), Magnitude: 0, EligibleRoll: 100, BallotsCast: 50}},
		Options: []types.Option{{OptionId: sq, IsStatusQuo: true}, {OptionId: chg}},
	}
	tally := types.BallotTally{Units: []types.UnitTally{
		{UnitId: mustUnitId(t, "U1"), ValidBallots: 50, Votes: map[ids.OptionId]uint64{sq: 30, chg: 20}},
	}}
	p := params.Default()

	result, runRecord, err := pipeline.Run(pipeline.Config{
		Registry: registry,
		Tally:    tally,
		Params:   p,
		Clock:    fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	require.Equal(t, types.LabelInvalid, result.Label)
	require.Empty(t, result.UnitAllocations)
	require.NotEmpty(t, result.Gates.FailureReasons)
	require.NotEmpty(t, runRecord.Id)
}

func TestRunGateFailureSkipsFrontierButProducesArtifacts(t *testing.T) {
	sq := mustOptionId(t, "SQ")
	chg := mustOptionId(t, "CHG")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1"), Magnitude: 1, EligibleRoll: 1000, BallotsCast: 50}},
		Options: []types.Option{{OptionId: sq, IsStatusQuo: true}, {OptionId: chg}},
	}
	tally := types.BallotTally{Units: []types.UnitTally{
		{UnitId: mustUnitId(t, "U1"), ValidBallots: 50, Votes: map[ids.OptionId]uint64{sq: 20, chg: 30}},
	}}
	p := params.Default()
	p.AllocationMethod = params.MethodWTA
	p.QuorumGlobalPct = 90 // 50/1000 cast will fail this
	p.FrontierMode = params.FrontierBanded
	p.FrontierCut = 50
	p.FrontierWindow = 5

	result, _, err := pipeline.Run(pipeline.Config{
		Registry: registry,
		Tally:    tally,
		Params:   p,
		Clock:    fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	require.Equal(t, types.LabelInvalid, result.Label)
	require.False(t, result.Gates.Pass)
	require.Nil(t, result.FrontierMapId)
}

func TestRunSuccessProducesDecisiveLabel(t *testing.T) {
	sq := mustOptionId(t, "SQ")
	chg := mustOptionId(t, "CHG")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1"), Magnitude: 1, EligibleRoll: 100, BallotsCast: 100}},
		Options: []types.Option{{OptionId: sq, IsStatusQuo: true}, {OptionId: chg}},
	}
	tally := types.BallotTally{Units: []types.UnitTally{
		{UnitId: mustUnitId(t, "U1"), ValidBallots: 100, Votes: map[ids.OptionId]uint64{sq: 20, chg: 80}},
	}}
	p := params.Default()
	p.AllocationMethod = params.MethodWTA
	p.QuorumGlobalPct = 0
	p.NationalMajorityPct = 0
	p.DecisivenessMarginPct = 5

	result, runRecord, err := pipeline.Run(pipeline.Config{
		Registry:      registry,
		Tally:         tally,
		Params:        p,
		RegistryHash:  "a", // content of these is opaque to the pipeline; any non-hashed string works for this test
		TallyHash:     "b",
		ParameterHash: "c",
		Clock:         fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	require.True(t, result.Gates.Pass)
	require.Equal(t, types.LabelDecisive, result.Label)
	require.Equal(t, uint32(100), result.NationalTotals[chg])
	require.NotEmpty(t, result.Id)
	require.Equal(t, result.FormulaId, runRecord.FormulaId)
}
