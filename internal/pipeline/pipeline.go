// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pipeline implements the fixed-order orchestrator (§2,
// §4.9): Load -> Validate -> Tabulate -> Allocate -> Aggregate ->
// ApplyDecisionRules (gates) -> MapFrontier? -> ResolveTies? -> Label ->
// BuildResult -> BuildRunRecord. Load itself is the caller's job (reading
// and hashing the three JSON inputs belongs to cmd/vmengine, §6);
// Run starts from already-parsed, already-hashed inputs.
//
// Built as a sequence of named stages, each producing state the next
// stage consumes, generalized into this engine's nine-stage state
// machine with its own stop/continue rules.
package pipeline

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	luxlog "github.com/luxfi/log"

	"github.com/vmengine/core/internal/aggregator"
	"github.com/vmengine/core/internal/allocator"
	"github.com/vmengine/core/internal/canon"
	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/frontier"
	"github.com/vmengine/core/internal/gates"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/numeric"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/rng"
	"github.com/vmengine/core/internal/tabulator"
	"github.com/vmengine/core/internal/tie"
	"github.com/vmengine/core/internal/types"
	vmenginelog "github.com/vmengine/core/log"
	"github.com/vmengine/core/metrics"
	safemath "github.com/vmengine/core/utils/math"
)

// EngineVersion is recorded verbatim in every RunRecord.
const EngineVersion = "vmengine/0.1.0"

// Config bundles one run's frozen inputs, their content hashes (computed
// by the caller over the raw bytes it read from disk, per §6's
// InputRefs), and the ambient collaborators every stage may use.
type Config struct {
	Registry      types.DivisionRegistry
	Tally         types.BallotTally
	Params        params.Params
	RegistryHash  ids.Sha256
	TallyHash     ids.Sha256
	ParameterHash ids.Sha256

	// Logger receives stage timing at Debug and gate/label outcomes at
	// Info. A nil Logger falls back to a no-op implementation; no log
	// output ever feeds back into computation.
	Logger luxlog.Logger

	// Clock is injectable so tests can observe fixed RunRecord
	// timestamps/durations; production callers leave it nil (time.Now).
	Clock func() time.Time
}

// Run executes one full pipeline pass and returns the Result and
// RunRecord artifacts (§6). Stop rules (§4.9):
//   - a VALIDATE failure sets Label=Invalid and skips Tabulate..MapFrontier
//     entirely; Result and RunRecord are still built and returned.
//   - a gate failure sets Label=Invalid and skips MapFrontier, but
//     ResolveTies still runs if Tabulate/Allocate raised pending ties.
//   - any other stage error aborts the run: both return values are zero
//     and no artifact is ever written by the caller.
func Run(cfg Config) (types.Result, types.RunRecord, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = vmenginelog.NewNoOpLogger()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	started := clock()
	stageMetrics := metrics.NewRegistry()
	runStage := func(name string, fn func() error) error {
		t0 := clock()
		err := fn()
		ms := int64(clock().Sub(t0) / time.Millisecond)
		stageMetrics.NewGauge(name).Set(float64(ms))
		logger.Debug("pipeline stage completed", "stage", name, "duration_ms", ms)
		return err
	}

	var (
		failureReasons []string
		unitScores     []types.UnitScores
		allocations    []types.UnitAllocation
		pendingTies    []types.TieContext
		nationalTotals map[ids.OptionId]uint32
		report         types.LegitimacyReport
		frontierMapPtr *types.FrontierMap
		resolutions    []types.TieResolution
		voteTotals     map[ids.OptionId]uint64
		label          types.Label
		tieRng         *rng.TieRng
	)

	_ = runStage("validate", func() error {
		for _, e := range cfg.Registry.Validate() {
			failureReasons = append(failureReasons, e.Error())
		}
		if err := cfg.Params.Validate(cfg.Registry); err != nil {
			failureReasons = append(failureReasons, err.Error())
		}
		return nil
	})

	if len(failureReasons) > 0 {
		logger.Info("validation failed, skipping tabulate..map_frontier", "reason_count", len(failureReasons))
		label = types.LabelInvalid
		return buildArtifacts(cfg, started, clock, stageMetrics, label, nil, nil, types.LegitimacyReport{FailureReasons: failureReasons}, nil, nil, logger)
	}

	if err := runStage("tabulate", func() error {
		byTally := cfg.Tally.ByUnit()
		for _, uid := range cfg.Registry.SortedUnitIds() {
			t, ok := byTally[uid]
			if !ok {
				return fmt.Errorf("pipeline: tabulate: no ballot tally for unit %s", uid)
			}
			scores, audit, err := tabulator.TabulateUnit(t, cfg.Registry.Options, cfg.Params)
			if err != nil {
				return fmt.Errorf("pipeline: tabulate unit %s: %w", uid, err)
			}
			unitScores = append(unitScores, scores)
			pendingTies = append(pendingTies, audit.PendingTies...)
		}
		return nil
	}); err != nil {
		return types.Result{}, types.RunRecord{}, err
	}

	if err := runStage("allocate", func() error {
		byUnit := cfg.Registry.UnitByID()
		byScores := make(map[ids.UnitId]types.UnitScores, len(unitScores))
		for _, s := range unitScores {
			byScores[s.UnitId] = s
		}
		for _, uid := range cfg.Registry.SortedUnitIds() {
			unit, ok := byUnit[uid]
			if !ok {
				continue
			}
			scores, ok := byScores[uid]
			if !ok {
				return fmt.Errorf("pipeline: allocate: missing scores for unit %s", uid)
			}
			alloc, ties, err := allocator.AllocateUnit(unit, scores, cfg.Registry.Options, cfg.Params)
			if err != nil {
				return fmt.Errorf("pipeline: allocate unit %s: %w", uid, err)
			}
			allocations = append(allocations, alloc)
			pendingTies = append(pendingTies, ties...)
		}
		return nil
	}); err != nil {
		return types.Result{}, types.RunRecord{}, err
	}

	if err := runStage("aggregate", func() error {
		totals, err := aggregator.Aggregate(allocations, cfg.Registry, cfg.Params)
		nationalTotals = totals
		return err
	}); err != nil {
		return types.Result{}, types.RunRecord{}, err
	}

	voteTotals, err := voteTotalsFromScores(unitScores)
	if err != nil {
		return types.Result{}, types.RunRecord{}, err
	}

	if err := runStage("apply_decision_rules", func() error {
		rep, err := gates.Evaluate(gates.Inputs{Registry: cfg.Registry, UnitScores: unitScores, VoteTotals: voteTotals}, cfg.Params)
		report = rep
		return err
	}); err != nil {
		return types.Result{}, types.RunRecord{}, err
	}

	if !report.Pass {
		logger.Info("gate evaluation failed, skipping map_frontier", "reasons", report.FailureReasons)
		label = types.LabelInvalid
	} else if cfg.Params.FrontierMode != params.FrontierNone {
		if err := runStage("map_frontier", func() error {
			fm, err := frontier.Compute(frontier.Inputs{Registry: cfg.Registry, UnitScores: unitScores}, cfg.Params)
			frontierMapPtr = &fm
			return err
		}); err != nil {
			return types.Result{}, types.RunRecord{}, err
		}
	}

	if cfg.Params.TiePolicy == params.TieRandom && cfg.Params.TieSeed != nil {
		tieRng = rng.NewTieRng(*cfg.Params.TieSeed)
	}

	if len(pendingTies) > 0 {
		if err := runStage("resolve_ties", func() error {
			res, err := tie.Resolve(pendingTies, cfg.Registry, cfg.Params, tieRng)
			if err != nil {
				return err
			}
			resolutions = res
			allocations = tie.ApplyResolutions(allocations, resolutions)
			totals, err := aggregator.Aggregate(allocations, cfg.Registry, cfg.Params)
			nationalTotals = totals
			return err
		}); err != nil {
			return types.Result{}, types.RunRecord{}, err
		}
	}

	if report.Pass {
		decisive, err := marginExceedsPct(voteTotals, cfg.Params.DecisivenessMarginPct)
		if err != nil {
			return types.Result{}, types.RunRecord{}, err
		}
		if decisive {
			label = types.LabelDecisive
		} else {
			label = types.LabelMarginal
		}
	}
	logger.Info("pipeline run complete", "label", label, "gates_pass", report.Pass)

	return buildArtifacts(cfg, started, clock, stageMetrics, label, nationalTotals, allocations, report, frontierMapPtr, resolutions, logger, tieRng)
}

// voteTotalsFromScores sums every unit's per-option scores into a
// national total, the denominator-free vote count the gate evaluator and
// label margin both read.
func voteTotalsFromScores(unitScores []types.UnitScores) (map[ids.OptionId]uint64, error) {
	totals := map[ids.OptionId]uint64{}
	for _, us := range unitScores {
		for _, o := range determinism.SortedKeys(us.Scores) {
			sum, err := safemath.Add64(totals[o], us.Scores[o])
			if err != nil {
				return nil, fmt.Errorf("pipeline: national vote total for %s: %w", o, err)
			}
			totals[o] = sum
		}
	}
	return totals, nil
}

// marginExceedsPct reports whether the leading option's national vote
// share exceeds the runner-up's by strictly more than thresholdPct
// percentage points (§4.9: "Decisive when national margin exceeds
// VM-VAR-060"). Options with equal totals are ordered by option id;
// the margin is the same whichever of them ranks first.
func marginExceedsPct(voteTotals map[ids.OptionId]uint64, thresholdPct int64) (bool, error) {
	var total uint64
	for _, v := range voteTotals {
		sum, err := safemath.Add64(total, v)
		if err != nil {
			return false, fmt.Errorf("pipeline: national vote total overflow: %w", err)
		}
		total = sum
	}
	if total == 0 || len(voteTotals) < 2 {
		return false, nil
	}

	ranked := make([]ids.OptionId, 0, len(voteTotals))
	for o := range voteTotals {
		ranked = append(ranked, o)
	}
	sort.Slice(ranked, func(i, j int) bool {
		vi, vj := voteTotals[ranked[i]], voteTotals[ranked[j]]
		if vi != vj {
			return vi > vj
		}
		return ranked[i] < ranked[j]
	})

	leaderRatio, err := numeric.New(int64(voteTotals[ranked[0]]), int64(total))
	if err != nil {
		return false, err
	}
	runnerRatio, err := numeric.New(int64(voteTotals[ranked[1]]), int64(total))
	if err != nil {
		return false, err
	}
	negRunner := numeric.Ratio{Num: new(big.Int).Neg(runnerRatio.Num), Den: runnerRatio.Den}
	margin, err := leaderRatio.Add(negRunner)
	if err != nil {
		return false, err
	}
	threshold, err := numeric.New(thresholdPct, 100)
	if err != nil {
		return false, err
	}
	return margin.Cmp(threshold) > 0, nil
}

// buildArtifacts assembles the Result and RunRecord from whatever state
// the run accumulated before stopping (§6): both are always
// produced on a VALIDATE or gate-failure stop, never on an aborting
// error (callers of Run never reach this function in that case).
func buildArtifacts(
	cfg Config,
	started time.Time,
	clock func() time.Time,
	stageMetrics metrics.Registry,
	label types.Label,
	nationalTotals map[ids.OptionId]uint32,
	allocations []types.UnitAllocation,
	report types.LegitimacyReport,
	frontierMapPtr *types.FrontierMap,
	resolutions []types.TieResolution,
	logger luxlog.Logger,
	tieRng ...*rng.TieRng,
) (types.Result, types.RunRecord, error) {
	formulaId, err := canon.FormulaId(cfg.Params.FIDVariables())
	if err != nil {
		return types.Result{}, types.RunRecord{}, fmt.Errorf("pipeline: compute formula id: %w", err)
	}

	if frontierMapPtr != nil {
		enc, err := canon.Marshal(*frontierMapPtr)
		if err != nil {
			return types.Result{}, types.RunRecord{}, fmt.Errorf("pipeline: hash frontier map: %w", err)
		}
		frontierMapPtr.Id = ids.NewFrontierMapId(ids.HashBytes(enc))
	}

	result := types.Result{
		FormulaId:       formulaId,
		Label:           label,
		NationalTotals:  nationalTotals,
		UnitAllocations: allocations,
		Gates:           report,
		InputRefs: types.InputRefs{
			RegistryHash:  cfg.RegistryHash,
			TallyHash:     cfg.TallyHash,
			ParameterHash: cfg.ParameterHash,
		},
	}
	if frontierMapPtr != nil {
		result.FrontierMapId = &frontierMapPtr.Id
	}

	resultEnc, err := canon.Marshal(result)
	if err != nil {
		return types.Result{}, types.RunRecord{}, fmt.Errorf("pipeline: hash result: %w", err)
	}
	result.Id = ids.NewResultId(ids.HashBytes(resultEnc))

	finished := clock()
	startedCompact := started.UTC().Format("20060102T150405Z")

	runRecord := types.RunRecord{
		FormulaId:         formulaId,
		EngineVersion:     EngineVersion,
		ParameterSnapshot: cfg.Params.Snapshot(),
		InputRefs:         result.InputRefs,
		TieLog:            resolutions,
		StartedAtUTC:      startedCompact,
		FinishedAtUTC:     finished.UTC().Format("20060102T150405Z"),
		StageDurationsMS:  durationsFromMetrics(stageMetrics),
	}
	if len(tieRng) > 0 && tieRng[0] != nil && tieRng[0].Drawn() {
		seed := tieRng[0].Seed()
		runRecord.RngSeed = &seed
	}

	runRecordEnc, err := canon.Marshal(runRecord)
	if err != nil {
		return types.Result{}, types.RunRecord{}, fmt.Errorf("pipeline: hash run record: %w", err)
	}
	runRecord.Id = ids.NewRunId(startedCompact, ids.HashBytes(runRecordEnc))

	logger.Debug("artifacts built", "result_id", result.Id, "run_id", runRecord.Id)
	return result, runRecord, nil
}

// durationsFromMetrics flattens the run's stage-timing gauges into the
// plain map RunRecord.StageDurationsMS serializes as JSON.
func durationsFromMetrics(reg metrics.Registry) map[string]int64 {
	snapshot := reg.GaugeSnapshot()
	out := make(map[string]int64, len(snapshot))
	for name, ms := range snapshot {
		out[name] = int64(ms)
	}
	return out
}
