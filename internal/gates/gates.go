// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package gates implements the legitimacy-gate evaluator (§4.6):
// quorum, national majority, regional majority, double majority, and
// symmetry, each compared against a fixed percentage threshold via the
// exact-rational kernel so no float ever enters a pass/fail decision.
//
// Grounded on confidence.binaryThreshold's accumulate-then-compare-to-
// threshold shape, generalized from a repeated-poll counter to a
// single-shot ratio comparison per gate.
package gates

import (
	"fmt"

	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/numeric"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/types"
)

// Inputs bundles everything the gate evaluator needs beyond Params:
// the registry (for eligible_roll/region_tags), per-unit turnout and
// vote scores from tabulation, and the national vote totals derived
// from them.
type Inputs struct {
	Registry    types.DivisionRegistry
	UnitScores  []types.UnitScores
	VoteTotals  map[ids.OptionId]uint64 // national sum of per-unit Scores
}

// Evaluate runs every configured gate in a fixed order (quorum,
// national majority, regional majority, double majority, symmetry) and
// returns the combined report. A gate whose toggle is off is omitted
// from the report entirely rather than reported as a vacuous pass.
func Evaluate(in Inputs, p params.Params) (types.LegitimacyReport, error) {
	report := types.LegitimacyReport{Pass: true}

	globalGate, err := evaluateGlobalQuorum(in, p)
	if err != nil {
		return types.LegitimacyReport{}, err
	}
	report.Gates = append(report.Gates, globalGate)
	if !globalGate.Pass {
		report.Pass = false
		report.FailureReasons = append(report.FailureReasons, "quorum_global")
	}

	if p.PerUnitQuorumScope != params.ScopeNone {
		perUnitGate, blockedUnits, err := evaluatePerUnitQuorum(in, p)
		if err != nil {
			return types.LegitimacyReport{}, err
		}
		report.Gates = append(report.Gates, perUnitGate)
		if !perUnitGate.Pass {
			report.Pass = false
			for _, u := range blockedUnits {
				report.FailureReasons = append(report.FailureReasons, fmt.Sprintf("quorum_per_unit:%s", u))
			}
		}
	}

	changeShare, err := nationalChangeShare(in, p)
	if err != nil {
		return types.LegitimacyReport{}, err
	}

	nationalGate := gateFromShare("national_majority", changeShare, p.NationalMajorityPct)
	report.Gates = append(report.Gates, nationalGate)
	if !nationalGate.Pass {
		report.Pass = false
		report.FailureReasons = append(report.FailureReasons, "national_majority")
	}

	var regionalGate types.GateResult
	regionalApplies := p.DoubleMajorityEnabled
	if regionalApplies {
		regionalShare, err := regionalChangeShare(in, p)
		if err != nil {
			return types.LegitimacyReport{}, err
		}
		regionalGate = gateFromShare("regional_majority", regionalShare, p.RegionalMajorityPct)
		report.Gates = append(report.Gates, regionalGate)
		if !regionalGate.Pass {
			report.Pass = false
			report.FailureReasons = append(report.FailureReasons, "regional_majority")
		}

		doubleGate := types.GateResult{
			Name:         "double_majority",
			Pass:         nationalGate.Pass && regionalGate.Pass,
			ThresholdPct: 0,
		}
		report.Gates = append(report.Gates, doubleGate)
		if !doubleGate.Pass {
			report.Pass = false
			report.FailureReasons = append(report.FailureReasons, "double_majority")
		}
	}

	if p.SymmetryEnabled {
		symGate := evaluateSymmetry(in.Registry, changeShare, p)
		report.Gates = append(report.Gates, symGate)
		if !symGate.Pass {
			report.Pass = false
			report.FailureReasons = append(report.FailureReasons, "symmetry")
		}
	}

	return report, nil
}

func gateDenominator(turnout types.Turnout, p params.Params) uint64 {
	if p.GateDenominatorIncludesBlanks {
		return turnout.BallotsCast
	}
	return turnout.ValidBallots
}

func evaluateGlobalQuorum(in Inputs, p params.Params) (types.GateResult, error) {
	var cast, eligible uint64
	for _, us := range in.UnitScores {
		cast += gateDenominator(us.Turnout, p)
	}
	for _, u := range in.Registry.Units {
		eligible += u.EligibleRoll
	}
	ratio, err := numeric.New(int64(cast), int64(max1(eligible)))
	if err != nil {
		return types.GateResult{}, err
	}
	return types.GateResult{
		Name:         "quorum_global",
		ValueNum:     int64(cast),
		ValueDen:     int64(max1(eligible)),
		ThresholdPct: p.QuorumGlobalPct,
		Pass:         ratio.GePercent(p.QuorumGlobalPct),
	}, nil
}

func evaluatePerUnitQuorum(in Inputs, p params.Params) (types.GateResult, []ids.UnitId, error) {
	var blocked []ids.UnitId
	for _, us := range sortedScores(in.UnitScores) {
		den := max1(us.Turnout.BallotsCast)
		ratio, err := numeric.New(int64(gateDenominator(us.Turnout, p)), int64(den))
		if err != nil {
			return types.GateResult{}, nil, err
		}
		if !ratio.GePercent(p.PerUnitQuorumPct) {
			blocked = append(blocked, us.UnitId)
		}
	}
	return types.GateResult{
		Name:         "quorum_per_unit",
		ThresholdPct: p.PerUnitQuorumPct,
		Pass:         len(blocked) == 0,
	}, blocked, nil
}

func sortedScores(scores []types.UnitScores) []types.UnitScores {
	out := make([]types.UnitScores, len(scores))
	copy(out, scores)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].UnitId < out[j-1].UnitId; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// changeOptionIds returns every option not flagged is_status_quo (§4.6,
// GLOSSARY "support for Change"): the majority gates compare this
// aggregate against threshold, never a single leading option's share.
func changeOptionIds(registry types.DivisionRegistry) map[ids.OptionId]bool {
	change := make(map[ids.OptionId]bool, len(registry.Options))
	for _, o := range registry.Options {
		if !o.IsStatusQuo {
			change[o.OptionId] = true
		}
	}
	return change
}

// nationalChangeShare returns support for Change (the summed vote
// total of every non-status-quo option) over the national gate
// denominator (§4.6).
func nationalChangeShare(in Inputs, p params.Params) (numeric.Ratio, error) {
	change := changeOptionIds(in.Registry)

	var totalDen uint64
	for _, us := range in.UnitScores {
		totalDen += gateDenominator(us.Turnout, p)
	}
	var changeVotes uint64
	for _, o := range determinism.SortedKeys(in.VoteTotals) {
		if change[o] {
			changeVotes += in.VoteTotals[o]
		}
	}
	return numeric.New(int64(changeVotes), int64(max1(totalDen)))
}

// regionalChangeShare returns support for Change restricted to the
// units the configured region covers (§4.6), using the same
// non-status-quo aggregate as nationalChangeShare.
func regionalChangeShare(in Inputs, p params.Params) (numeric.Ratio, error) {
	change := changeOptionIds(in.Registry)
	inRegion := regionMembership(in.Registry, p)

	var regionVotes, regionDen uint64
	for _, us := range in.UnitScores {
		if !inRegion[us.UnitId] {
			continue
		}
		regionDen += gateDenominator(us.Turnout, p)
		for o := range change {
			regionVotes += us.Scores[o]
		}
	}
	return numeric.New(int64(regionVotes), int64(max1(regionDen)))
}

func regionMembership(registry types.DivisionRegistry, p params.Params) map[ids.UnitId]bool {
	members := map[ids.UnitId]bool{}
	switch p.RegionAffectedBy {
	case params.RegionByTag:
		for _, u := range registry.Units {
			for _, tag := range u.RegionTags {
				if tag == p.RegionReference {
					members[u.UnitId] = true
					break
				}
			}
		}
	case params.RegionByList, params.RegionByProposedChange:
		for _, u := range registry.Units {
			if string(u.UnitId) == p.RegionReference {
				members[u.UnitId] = true
			}
		}
	}
	return members
}

func gateFromShare(name string, share numeric.Ratio, thresholdPct int64) types.GateResult {
	return types.GateResult{
		Name:         name,
		ValueNum:     share.Num.Int64(),
		ValueDen:     share.Den.Int64(),
		ThresholdPct: thresholdPct,
		Pass:         share.GePercent(thresholdPct),
	}
}

// evaluateSymmetry checks that the national majority threshold and
// denominator are neutral in option identity (§4.6, §7): with an empty
// VM-VAR-029 exception list, the same support-for-Change ratio already
// computed for national_majority must pass or fail the same bar no
// matter which option the ballots call "Change", so the gate simply
// mirrors the national majority outcome. The status-quo option, if
// listed in SymmetryExceptions, is exempt from the check entirely.
func evaluateSymmetry(registry types.DivisionRegistry, changeShare numeric.Ratio, p params.Params) types.GateResult {
	for _, o := range registry.Options {
		if !o.IsStatusQuo {
			continue
		}
		for _, exempt := range p.SymmetryExceptions {
			if exempt == o.OptionId {
				return types.GateResult{Name: "symmetry", Pass: true}
			}
		}
	}
	return types.GateResult{
		Name:         "symmetry",
		ValueNum:     changeShare.Num.Int64(),
		ValueDen:     changeShare.Den.Int64(),
		ThresholdPct: p.NationalMajorityPct,
		Pass:         changeShare.GePercent(p.NationalMajorityPct),
	}
}

func max1(v uint64) uint64 {
	if v == 0 {
		return 1
	}
	return v
}
