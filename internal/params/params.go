// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package params defines the typed, validated parameter snapshot that
// every other engine stage consumes. Params is built at LOAD and frozen
// at VALIDATE; nothing downstream ever mutates it.
//
// Follows a flat typed struct with a single Validate method that
// gathers every violation through wrappers.Errs instead of stopping at
// the first one: validation errors are collected, not short-circuited.
package params

import (
	"fmt"

	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/types"
	"github.com/vmengine/core/utils/wrappers"
)

// RoundingPolicy names banker's rounding, the only rounding rule
// implemented in v0. Params carries no field of this type, so the rule
// does not appear in the FID.
type RoundingPolicy string

const RoundingHalfEven RoundingPolicy = "half_even"

// DenomRule names a gate denominator rule. The gates do not read
// Params.DenomRule; their denominator follows
// GateDenominatorIncludesBlanks (VM-VAR-007).
type DenomRule string

const (
	DenomValidBallots DenomRule = "valid_ballots"
	DenomBallotsCast  DenomRule = "ballots_cast"
	DenomEligibleRoll DenomRule = "eligible_roll"
)

// CondorcetCompletion selects the fallback used when no Condorcet winner
// exists (VM-VAR-005).
type CondorcetCompletion string

const (
	CompletionCopeland CondorcetCompletion = "copeland"
)

// IrvExhaustionPolicy controls how IRV ballots with no remaining preference
// affect the continuing denominator (VM-VAR-006).
type IrvExhaustionPolicy string

const (
	ExhaustionReduceDenominator IrvExhaustionPolicy = "reduce_continuing_denominator"
)

// AllocationMethod selects the allocator (VM-VAR-010).
type AllocationMethod string

const (
	MethodWTA                   AllocationMethod = "wta"
	MethodDHondt                AllocationMethod = "dhondt"
	MethodSainteLague           AllocationMethod = "sainte_lague"
	MethodLargestRemainderHare  AllocationMethod = "largest_remainder_hare"
	MethodLargestRemainderDroop AllocationMethod = "largest_remainder_droop"
	MethodLargestRemainderImperiali AllocationMethod = "largest_remainder_imperiali"
	MethodMMP                   AllocationMethod = "mmp"
)

// OverhangPolicy selects MMP's overhang handling (VM-VAR-014).
type OverhangPolicy string

const (
	OverhangAllow            OverhangPolicy = "allow_overhang"
	OverhangCompensateOthers OverhangPolicy = "compensate_others"
	OverhangAddTotalSeats    OverhangPolicy = "add_total_seats"
)

// MMPVoteBasis selects which vote totals MMP apportions over (VM-VAR-016).
type MMPVoteBasis string

const (
	MMPBasisNational MMPVoteBasis = "national"
	MMPBasisRegional MMPVoteBasis = "regional"
)

// PerUnitQuorumScope selects which units a per-unit quorum gate restricts
// (VM-VAR-021).
type PerUnitQuorumScope string

const (
	ScopeNone             PerUnitQuorumScope = "none"
	ScopeFrontierOnly     PerUnitQuorumScope = "frontier_only"
	ScopeFrontierAndFamily PerUnitQuorumScope = "frontier_and_family"
)

// RegionAffectedBy selects how the regional-majority gate's region family is
// determined (VM-VAR-026).
type RegionAffectedBy string

const (
	RegionByList           RegionAffectedBy = "by_list"
	RegionByTag            RegionAffectedBy = "by_tag"
	RegionByProposedChange RegionAffectedBy = "by_proposed_change"
)

// AggregationMode selects unit-to-country weighting (VM-VAR-030).
type AggregationMode string

const (
	AggregationEqualUnit         AggregationMode = "equal_unit"
	AggregationPopulationBaseline AggregationMode = "population_baseline"
)

// FrontierMode selects whether/how the frontier mapper runs (VM-VAR-040).
type FrontierMode string

const (
	FrontierNone   FrontierMode = "none"
	FrontierBanded FrontierMode = "banded"
	FrontierLadder FrontierMode = "ladder"
)

// FrontierStrategy selects how a unit's band is chosen relative to the cut
// (VM-VAR-042).
type FrontierStrategy string

const (
	StrategyNearestBand  FrontierStrategy = "nearest_band"
	StrategyInterpolated FrontierStrategy = "interpolated"
)

// BackoffPolicy selects how a blocked frontier change degrades (VM-VAR-048).
type BackoffPolicy string

const (
	BackoffNone      BackoffPolicy = "none"
	BackoffOneBand   BackoffPolicy = "one_band"
	BackoffFullRevert BackoffPolicy = "full_revert"
)

// FrontierStrictness selects how aggressively mediation/enclave flags are
// raised (VM-VAR-049).
type FrontierStrictness string

const (
	StrictnessStrict  FrontierStrictness = "strict"
	StrictnessLenient FrontierStrictness = "lenient"
)

// TiePolicy selects the tie-resolution strategy (VM-VAR-050).
type TiePolicy string

const (
	TieStatusQuo          TiePolicy = "status_quo"
	TieDeterministicOrder TiePolicy = "deterministic_order"
	TieRandom             TiePolicy = "random"
)

// Params is the full VM-VAR-### parameter snapshot (§3).
type Params struct {
	// --- Included in FID ---
	BallotFamily        types.BallotFamily  // VM-VAR-001
	ScoreMin            int64               // VM-VAR-002
	ScoreMax            int64               // VM-VAR-003
	SharePrecision      int64               // VM-VAR-004
	CondorcetCompletion CondorcetCompletion // VM-VAR-005
	IrvExhaustion       IrvExhaustionPolicy // VM-VAR-006
	GateDenominatorIncludesBlanks bool      // VM-VAR-007
	DenomRule           DenomRule           // denominator rule for gates

	AllocationMethod  AllocationMethod // VM-VAR-010
	ThresholdPct      int64            // VM-VAR-012
	OverhangPolicy    OverhangPolicy   // VM-VAR-014
	MMPTopupSharePct  int64            // VM-VAR-015: top-up share s, percent; T = round_nearest_even(L*100/(100-s))
	MMPVoteBasis      MMPVoteBasis     // VM-VAR-016

	QuorumGlobalPct    int64              // VM-VAR-020
	PerUnitQuorumScope PerUnitQuorumScope // VM-VAR-021
	PerUnitQuorumPct   int64              // VM-VAR-021 (threshold component)
	NationalMajorityPct int64             // VM-VAR-022
	RegionalMajorityPct int64             // VM-VAR-023
	DoubleMajorityEnabled bool            // VM-VAR-024
	SymmetryEnabled     bool              // VM-VAR-025
	RegionAffectedBy    RegionAffectedBy  // VM-VAR-026
	RegionReference     string            // VM-VAR-027
	SymmetryExceptions  []ids.OptionId    // VM-VAR-029

	AggregationMode AggregationMode // VM-VAR-030
	AggregationLevel string         // VM-VAR-031, fixed "country" in v1

	FrontierMode       FrontierMode       // VM-VAR-040
	FrontierCut        int64              // VM-VAR-041
	FrontierStrategy   FrontierStrategy   // VM-VAR-042
	ProtectedUnits     []ids.UnitId       // VM-VAR-045
	FrontierWindow     int64              // VM-VAR-047
	BackoffPolicy      BackoffPolicy      // VM-VAR-048
	FrontierStrictness FrontierStrictness // VM-VAR-049

	TiePolicy TiePolicy // VM-VAR-050

	DecisivenessMarginPct int64  // VM-VAR-060
	AlgorithmVariant      string // VM-VAR-073

	// --- Excluded from FID ---
	SortOrder          string  // VM-VAR-032
	TiesSectionVisible bool    // VM-VAR-033
	FrontierMapEnabled bool    // VM-VAR-034
	SensitivityEnabled bool    // VM-VAR-035
	TieSeed            *uint64 // VM-VAR-052
	LabelDecisive      string  // VM-VAR-060 presentation text
	LabelMarginal      string  // VM-VAR-061
	LabelInvalid       string  // VM-VAR-062
}

// Default returns a Params populated with the engine's defaults.
func Default() Params {
	return Params{
		BallotFamily:        types.FamilyPlurality,
		ScoreMin:            0,
		ScoreMax:            10,
		SharePrecision:      1,
		CondorcetCompletion: CompletionCopeland,
		IrvExhaustion:       ExhaustionReduceDenominator,
		DenomRule:           DenomValidBallots,

		AllocationMethod: MethodDHondt,
		ThresholdPct:     0,
		OverhangPolicy:   OverhangAllowOverhangDefault(),
		MMPTopupSharePct: 50,
		MMPVoteBasis:     MMPBasisNational,

		QuorumGlobalPct:       0,
		PerUnitQuorumScope:    ScopeNone,
		NationalMajorityPct:   50,
		RegionalMajorityPct:   50,
		DoubleMajorityEnabled: false,
		SymmetryEnabled:       true,
		RegionAffectedBy:      RegionByList,

		AggregationMode:  AggregationEqualUnit,
		AggregationLevel: "country",

		FrontierMode:       FrontierNone,
		FrontierStrategy:   StrategyNearestBand,
		BackoffPolicy:      BackoffNone,
		FrontierStrictness: StrictnessStrict,

		TiePolicy: TieDeterministicOrder,

		DecisivenessMarginPct: 5,

		SortOrder:          "canonical",
		TiesSectionVisible: true,
		FrontierMapEnabled: false,
		LabelDecisive:      "Decisive",
		LabelMarginal:      "Marginal",
		LabelInvalid:       "Invalid",
	}
}

// OverhangAllowOverhangDefault exists only to keep Default() readable; Go has
// no named-default-const syntax for struct literals referencing other consts
// across long field lists.
func OverhangAllowOverhangDefault() OverhangPolicy { return OverhangAllow }

// Validate collects every domain/cross-field violation instead of stopping
// at the first (§7). The returned error is nil iff there were none.
func (p Params) Validate(registry types.DivisionRegistry) error {
	var errs wrappers.Errs

	switch p.BallotFamily {
	case types.FamilyPlurality, types.FamilyApproval, types.FamilyScore, types.FamilyRankedIRV, types.FamilyCondorcet:
	default:
		errs.Add(fmt.Errorf("VM-VAR-001: unknown ballot family %q", p.BallotFamily))
	}

	if p.AllocationMethod == MethodWTA {
		for _, u := range registry.Units {
			if u.Magnitude != 1 {
				errs.Add(fmt.Errorf("VM-VAR-010: WTA requires magnitude=1, unit %s has magnitude %d", u.UnitId, u.Magnitude))
			}
		}
	}

	if p.AggregationMode == AggregationPopulationBaseline {
		for _, u := range registry.Units {
			if u.PopulationBaseline == 0 {
				errs.Add(fmt.Errorf("VM-VAR-030: population_baseline aggregation requires a non-zero baseline, unit %s has none", u.UnitId))
			}
		}
	}

	if p.DoubleMajorityEnabled && p.RegionAffectedBy == RegionByProposedChange && p.FrontierMode == FrontierNone {
		errs.Add(fmt.Errorf("VM-VAR-026: by_proposed_change requires frontier_mode != none"))
	}

	if p.FrontierMode == FrontierNone && p.PerUnitQuorumScope != ScopeNone {
		errs.Add(fmt.Errorf("VM-VAR-021: per-unit quorum scope %q is ambiguous when frontier_mode=none", p.PerUnitQuorumScope))
	}

	if p.TiePolicy == TieRandom && p.TieSeed == nil {
		errs.Add(fmt.Errorf("VM-VAR-052: random tie policy requires a seed (VM-VAR-050=Random)"))
	}

	if p.ThresholdPct < 0 || p.ThresholdPct > 100 {
		errs.Add(fmt.Errorf("VM-VAR-012: threshold_pct must be within [0,100], got %d", p.ThresholdPct))
	}
	if p.AllocationMethod == MethodMMP && (p.MMPTopupSharePct < 0 || p.MMPTopupSharePct > 99) {
		errs.Add(fmt.Errorf("VM-VAR-015: mmp_topup_share_pct must be within [0,99], got %d", p.MMPTopupSharePct))
	}
	if p.QuorumGlobalPct < 0 || p.QuorumGlobalPct > 100 {
		errs.Add(fmt.Errorf("VM-VAR-020: quorum_global_pct must be within [0,100], got %d", p.QuorumGlobalPct))
	}
	if p.NationalMajorityPct < 0 || p.NationalMajorityPct > 100 {
		errs.Add(fmt.Errorf("VM-VAR-022: national_majority_pct must be within [0,100], got %d", p.NationalMajorityPct))
	}

	return errs.Err()
}

// FIDVariables returns the FID-included variable set as a sorted
// key/value map, ready for canonical-JSON hashing (§3, §6).
func (p Params) FIDVariables() map[string]any {
	return map[string]any{
		"VM-VAR-001": string(p.BallotFamily),
		"VM-VAR-002": p.ScoreMin,
		"VM-VAR-003": p.ScoreMax,
		"VM-VAR-004": p.SharePrecision,
		"VM-VAR-005": string(p.CondorcetCompletion),
		"VM-VAR-006": string(p.IrvExhaustion),
		"VM-VAR-007": p.GateDenominatorIncludesBlanks,
		"VM-VAR-010": string(p.AllocationMethod),
		"VM-VAR-012": p.ThresholdPct,
		"VM-VAR-014": string(p.OverhangPolicy),
		"VM-VAR-015": p.MMPTopupSharePct,
		"VM-VAR-016": string(p.MMPVoteBasis),
		"VM-VAR-020": p.QuorumGlobalPct,
		"VM-VAR-021": string(p.PerUnitQuorumScope),
		"VM-VAR-022": p.NationalMajorityPct,
		"VM-VAR-023": p.RegionalMajorityPct,
		"VM-VAR-024": p.DoubleMajorityEnabled,
		"VM-VAR-025": p.SymmetryEnabled,
		"VM-VAR-026": string(p.RegionAffectedBy),
		"VM-VAR-027": p.RegionReference,
		"VM-VAR-029": p.SymmetryExceptions,
		"VM-VAR-030": string(p.AggregationMode),
		"VM-VAR-031": p.AggregationLevel,
		"VM-VAR-040": string(p.FrontierMode),
		"VM-VAR-041": p.FrontierCut,
		"VM-VAR-042": string(p.FrontierStrategy),
		"VM-VAR-045": p.ProtectedUnits,
		"VM-VAR-047": p.FrontierWindow,
		"VM-VAR-048": string(p.BackoffPolicy),
		"VM-VAR-049": string(p.FrontierStrictness),
		"VM-VAR-050": string(p.TiePolicy),
		"VM-VAR-060": p.DecisivenessMarginPct,
		"VM-VAR-073": p.AlgorithmVariant,
	}
}

// Snapshot returns every variable (FID-included and excluded) for the
// RunRecord's effective parameter snapshot.
func (p Params) Snapshot() map[string]any {
	snap := p.FIDVariables()
	snap["VM-VAR-032"] = p.SortOrder
	snap["VM-VAR-033"] = p.TiesSectionVisible
	snap["VM-VAR-034"] = p.FrontierMapEnabled
	snap["VM-VAR-035"] = p.SensitivityEnabled
	if p.TieSeed != nil {
		snap["VM-VAR-052"] = *p.TieSeed
	}
	snap["VM-VAR-061"] = p.LabelMarginal
	snap["VM-VAR-062"] = p.LabelInvalid
	return snap
}
