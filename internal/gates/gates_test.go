// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gates_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/gates"
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

func TestGlobalQuorumPassAndFail(t *testing.T) {
	a := mustOptionId(t, "A")
	sq := mustOptionId(t, "SQ")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1"), EligibleRoll: 1000}},
		Options: []types.Option{{OptionId: sq, OrderIndex: 0, IsStatusQuo: true}, {OptionId: a, OrderIndex: 1}},
	}
	unitScores := []types.UnitScores{
		{UnitId: mustUnitId(t, "U1"), Turnout: types.Turnout{BallotsCast: 400, ValidBallots: 400}, Scores: map[ids.OptionId]uint64{a: 400}},
	}
	p := params.Default()
	p.QuorumGlobalPct = 50
	p.NationalMajorityPct = 0

	report, err := gates.Evaluate(gates.Inputs{Registry: registry, UnitScores: unitScores, VoteTotals: map[ids.OptionId]uint64{a: 400}}, p)
	require.NoError(t, err)
	require.False(t, report.Pass)

	p.QuorumGlobalPct = 30
	report, err = gates.Evaluate(gates.Inputs{Registry: registry, UnitScores: unitScores, VoteTotals: map[ids.OptionId]uint64{a: 400}}, p)
	require.NoError(t, err)
	require.True(t, report.Pass)
}

func TestNationalMajorityPass(t *testing.T) {
	a := mustOptionId(t, "A")
	b := mustOptionId(t, "B")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1"), EligibleRoll: 100}},
		Options: []types.Option{{OptionId: a, OrderIndex: 0}, {OptionId: b, OrderIndex: 1, IsStatusQuo: true}},
	}
	unitScores := []types.UnitScores{
		{UnitId: mustUnitId(t, "U1"), Turnout: types.Turnout{BallotsCast: 100, ValidBallots: 100}, Scores: map[ids.OptionId]uint64{a: 60, b: 40}},
	}
	p := params.Default()
	p.QuorumGlobalPct = 0
	p.NationalMajorityPct = 50

	report, err := gates.Evaluate(gates.Inputs{Registry: registry, UnitScores: unitScores, VoteTotals: map[ids.OptionId]uint64{a: 60, b: 40}}, p)
	require.NoError(t, err)
	require.True(t, report.Pass)
}

// TestNationalMajorityUsesSupportForChangeNotLeadingOption reproduces a
// case where the status-quo option is the vote leader but support for
// Change (every non-status-quo option summed) still clears the bar:
// national_majority must track the Change aggregate, not whichever
// option happens to have the most votes.
func TestNationalMajorityUsesSupportForChangeNotLeadingOption(t *testing.T) {
	sq := mustOptionId(t, "SQ")
	c1 := mustOptionId(t, "C1")
	c2 := mustOptionId(t, "C2")
	registry := types.DivisionRegistry{
		Units: []types.Unit{{UnitId: mustUnitId(t, "U1"), EligibleRoll: 100}},
		Options: []types.Option{
			{OptionId: sq, OrderIndex: 0, IsStatusQuo: true},
			{OptionId: c1, OrderIndex: 1},
			{OptionId: c2, OrderIndex: 2},
		},
	}
	// SQ alone leads every other single option (45 > 28, 45 > 27), but
	// C1+C2 together hold 55 of 100: support for Change clears a 50% bar.
	unitScores := []types.UnitScores{
		{UnitId: mustUnitId(t, "U1"), Turnout: types.Turnout{BallotsCast: 100, ValidBallots: 100}, Scores: map[ids.OptionId]uint64{sq: 45, c1: 28, c2: 27}},
	}
	p := params.Default()
	p.QuorumGlobalPct = 0
	p.NationalMajorityPct = 50

	report, err := gates.Evaluate(gates.Inputs{Registry: registry, UnitScores: unitScores, VoteTotals: map[ids.OptionId]uint64{sq: 45, c1: 28, c2: 27}}, p)
	require.NoError(t, err)
	require.True(t, report.Pass)
}

func TestSymmetryExceptionExempts(t *testing.T) {
	a := mustOptionId(t, "A")
	sq := mustOptionId(t, "SQ")
	registry := types.DivisionRegistry{
		Units:   []types.Unit{{UnitId: mustUnitId(t, "U1"), EligibleRoll: 100}},
		Options: []types.Option{{OptionId: sq, OrderIndex: 0, IsStatusQuo: true}, {OptionId: a, OrderIndex: 1}},
	}
	unitScores := []types.UnitScores{
		{UnitId: mustUnitId(t, "U1"), Turnout: types.Turnout{BallotsCast: 100, ValidBallots: 100}, Scores: map[ids.OptionId]uint64{a: 10}},
	}
	p := params.Default()
	p.QuorumGlobalPct = 0
	p.NationalMajorityPct = 0
	p.SymmetryEnabled = true
	p.SymmetryExceptions = []ids.OptionId{sq}

	report, err := gates.Evaluate(gates.Inputs{Registry: registry, UnitScores: unitScores, VoteTotals: map[ids.OptionId]uint64{a: 10}}, p)
	require.NoError(t, err)
	require.True(t, report.Pass)
}
