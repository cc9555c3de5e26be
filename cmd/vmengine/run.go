// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vmengine/core/internal/canon"
	"github.com/vmengine/core/internal/ids"
	"github.com/vmengine/core/internal/params"
	"github.com/vmengine/core/internal/pipeline"
	"github.com/vmengine/core/internal/schemaver"
	"github.com/vmengine/core/internal/types"
	vmenginelog "github.com/vmengine/core/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Run the pipeline over a registry, tally, and parameter set",
	Long: `Run loads the three canonical JSON inputs (division registry, ballot
tally, parameter set), executes the fixed-order pipeline, and writes
result.json and run_record.json as canonical JSON to the output directory.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("registry", "", "path to the division registry JSON input")
	runCmd.Flags().String("tally", "", "path to the ballot tally JSON input")
	runCmd.Flags().String("params", "", "path to the parameter set JSON input")
	_ = runCmd.MarkFlagRequired("registry")
	_ = runCmd.MarkFlagRequired("tally")
	_ = runCmd.MarkFlagRequired("params")
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	registryPath, _ := cmd.Flags().GetString("registry")
	tallyPath, _ := cmd.Flags().GetString("tally")
	paramsPath, _ := cmd.Flags().GetString("params")

	driverCfg, err := loadDriverConfig(cfgFile)
	if err != nil {
		return err
	}

	registryBytes, err := os.ReadFile(registryPath)
	if err != nil {
		return fmt.Errorf("read registry: %w", err)
	}
	tallyBytes, err := os.ReadFile(tallyPath)
	if err != nil {
		return fmt.Errorf("read tally: %w", err)
	}
	paramsBytes, err := os.ReadFile(paramsPath)
	if err != nil {
		return fmt.Errorf("read params: %w", err)
	}

	var registry types.DivisionRegistry
	if err := json.Unmarshal(registryBytes, &registry); err != nil {
		return fmt.Errorf("parse registry: %w", err)
	}
	var tally types.BallotTally
	if err := json.Unmarshal(tallyBytes, &tally); err != nil {
		return fmt.Errorf("parse tally: %w", err)
	}
	var parameterSet types.ParameterSet
	if err := json.Unmarshal(paramsBytes, &parameterSet); err != nil {
		return fmt.Errorf("parse params: %w", err)
	}

	declared, err := schemaver.Parse(parameterSet.SchemaVersion)
	if err != nil {
		return fmt.Errorf("parameter set schema_version: %w", err)
	}
	if !declared.Compatible(schemaver.Current()) {
		return fmt.Errorf("parameter set schema_version %s is incompatible with engine schema %s", declared, schemaver.Current())
	}

	p, err := params.FromVariables(parameterSet.Variables)
	if err != nil {
		return fmt.Errorf("build parameter snapshot: %w", err)
	}

	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := vmenginelog.NewZapLogger(level)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	result, runRecord, err := pipeline.Run(pipeline.Config{
		Registry:      registry,
		Tally:         tally,
		Params:        p,
		RegistryHash:  ids.HashBytes(registryBytes),
		TallyHash:     ids.HashBytes(tallyBytes),
		ParameterHash: ids.HashBytes(paramsBytes),
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	if err := os.MkdirAll(driverCfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	writeArtifact := canon.WriteFile
	if driverCfg.Pretty {
		writeArtifact = canon.WriteFilePretty
	}
	resultPath := filepath.Join(driverCfg.OutputDir, "result.json")
	if err := writeArtifact(resultPath, result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	runRecordPath := filepath.Join(driverCfg.OutputDir, "run_record.json")
	if err := writeArtifact(runRecordPath, runRecord); err != nil {
		return fmt.Errorf("write run record: %w", err)
	}

	logger.Info("run complete", "result_id", result.Id, "run_id", runRecord.Id, "label", result.Label)
	return nil
}
