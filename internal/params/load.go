// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params

import (
	"fmt"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/types"
)

// FromVariables builds a Params by overlaying the caller-supplied
// VM-VAR-### map (§6's ParameterSet.variables, already JSON-decoded
// into Go's generic any representation) onto Default(). Unset variables
// keep their default; Validate still runs separately at VALIDATE.
func FromVariables(variables map[string]any) (Params, error) {
	p := Default()

	getString := func(key string, dst *string) error {
		v, ok := variables[key]
		if !ok {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: expected string, got %T", key, v)
		}
		*dst = s
		return nil
	}
	getInt := func(key string, dst *int64) error {
		v, ok := variables[key]
		if !ok {
			return nil
		}
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%s: expected number, got %T", key, v)
		}
		*dst = int64(n)
		return nil
	}
	getBool := func(key string, dst *bool) error {
		v, ok := variables[key]
		if !ok {
			return nil
		}
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%s: expected bool, got %T", key, v)
		}
		*dst = b
		return nil
	}
	getOptionIds := func(key string, dst *[]ids.OptionId) error {
		v, ok := variables[key]
		if !ok {
			return nil
		}
		raw, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", key, v)
		}
		out := make([]ids.OptionId, 0, len(raw))
		for _, e := range raw {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("%s: expected string elements, got %T", key, e)
			}
			oid, err := ids.NewOptionId(s)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out = append(out, oid)
		}
		*dst = out
		return nil
	}
	getUnitIds := func(key string, dst *[]ids.UnitId) error {
		v, ok := variables[key]
		if !ok {
			return nil
		}
		raw, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", key, v)
		}
		out := make([]ids.UnitId, 0, len(raw))
		for _, e := range raw {
			s, ok := e.(string)
			if !ok {
				return fmt.Errorf("%s: expected string elements, got %T", key, e)
			}
			uid, err := ids.NewUnitId(s)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out = append(out, uid)
		}
		*dst = out
		return nil
	}

	var ballotFamily, condorcetCompletion, irvExhaustion string
	var allocationMethod, overhangPolicy, mmpVoteBasis string
	var perUnitQuorumScope, regionAffectedBy string
	var aggregationMode, frontierMode, frontierStrategy string
	var backoffPolicy, frontierStrictness, tiePolicy string

	steps := []func() error{
		func() error { return getString("VM-VAR-001", &ballotFamily) },
		func() error { return getInt("VM-VAR-002", &p.ScoreMin) },
		func() error { return getInt("VM-VAR-003", &p.ScoreMax) },
		func() error { return getInt("VM-VAR-004", &p.SharePrecision) },
		func() error { return getString("VM-VAR-005", &condorcetCompletion) },
		func() error { return getString("VM-VAR-006", &irvExhaustion) },
		func() error { return getBool("VM-VAR-007", &p.GateDenominatorIncludesBlanks) },
		func() error { return getString("VM-VAR-010", &allocationMethod) },
		func() error { return getInt("VM-VAR-012", &p.ThresholdPct) },
		func() error { return getString("VM-VAR-014", &overhangPolicy) },
		func() error { return getInt("VM-VAR-015", &p.MMPTopupSharePct) },
		func() error { return getString("VM-VAR-016", &mmpVoteBasis) },
		func() error { return getInt("VM-VAR-020", &p.QuorumGlobalPct) },
		func() error { return getString("VM-VAR-021", &perUnitQuorumScope) },
		func() error { return getInt("VM-VAR-022", &p.NationalMajorityPct) },
		func() error { return getInt("VM-VAR-023", &p.RegionalMajorityPct) },
		func() error { return getBool("VM-VAR-024", &p.DoubleMajorityEnabled) },
		func() error { return getBool("VM-VAR-025", &p.SymmetryEnabled) },
		func() error { return getString("VM-VAR-026", &regionAffectedBy) },
		func() error { return getString("VM-VAR-027", &p.RegionReference) },
		func() error { return getOptionIds("VM-VAR-029", &p.SymmetryExceptions) },
		func() error { return getString("VM-VAR-030", &aggregationMode) },
		func() error { return getString("VM-VAR-031", &p.AggregationLevel) },
		func() error { return getString("VM-VAR-040", &frontierMode) },
		func() error { return getInt("VM-VAR-041", &p.FrontierCut) },
		func() error { return getString("VM-VAR-042", &frontierStrategy) },
		func() error { return getUnitIds("VM-VAR-045", &p.ProtectedUnits) },
		func() error { return getInt("VM-VAR-047", &p.FrontierWindow) },
		func() error { return getString("VM-VAR-048", &backoffPolicy) },
		func() error { return getString("VM-VAR-049", &frontierStrictness) },
		func() error { return getString("VM-VAR-050", &tiePolicy) },
		func() error { return getInt("VM-VAR-060", &p.DecisivenessMarginPct) },
		func() error { return getString("VM-VAR-073", &p.AlgorithmVariant) },
		func() error { return getString("VM-VAR-032", &p.SortOrder) },
		func() error { return getBool("VM-VAR-033", &p.TiesSectionVisible) },
		func() error { return getBool("VM-VAR-034", &p.FrontierMapEnabled) },
		func() error { return getBool("VM-VAR-035", &p.SensitivityEnabled) },
		func() error { return getString("VM-VAR-061", &p.LabelMarginal) },
		func() error { return getString("VM-VAR-062", &p.LabelInvalid) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Params{}, fmt.Errorf("params: %w", err)
		}
	}

	if v, ok := variables["VM-VAR-052"]; ok {
		n, ok := v.(float64)
		if !ok {
			return Params{}, fmt.Errorf("params: VM-VAR-052: expected number, got %T", v)
		}
		seed := uint64(n)
		p.TieSeed = &seed
	}

	if ballotFamily != "" {
		p.BallotFamily = types.BallotFamily(ballotFamily)
	}
	if condorcetCompletion != "" {
		p.CondorcetCompletion = CondorcetCompletion(condorcetCompletion)
	}
	if irvExhaustion != "" {
		p.IrvExhaustion = IrvExhaustionPolicy(irvExhaustion)
	}
	if allocationMethod != "" {
		p.AllocationMethod = AllocationMethod(allocationMethod)
	}
	if overhangPolicy != "" {
		p.OverhangPolicy = OverhangPolicy(overhangPolicy)
	}
	if mmpVoteBasis != "" {
		p.MMPVoteBasis = MMPVoteBasis(mmpVoteBasis)
	}
	if perUnitQuorumScope != "" {
		p.PerUnitQuorumScope = PerUnitQuorumScope(perUnitQuorumScope)
	}
	if regionAffectedBy != "" {
		p.RegionAffectedBy = RegionAffectedBy(regionAffectedBy)
	}
	if aggregationMode != "" {
		p.AggregationMode = AggregationMode(aggregationMode)
	}
	if frontierMode != "" {
		p.FrontierMode = FrontierMode(frontierMode)
	}
	if frontierStrategy != "" {
		p.FrontierStrategy = FrontierStrategy(frontierStrategy)
	}
	if backoffPolicy != "" {
		p.BackoffPolicy = BackoffPolicy(backoffPolicy)
	}
	if frontierStrictness != "" {
		p.FrontierStrictness = FrontierStrictness(frontierStrictness)
	}
	if tiePolicy != "" {
		p.TiePolicy = TiePolicy(tiePolicy)
	}

	return p, nil
}
