// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// driverConfig holds operator-facing defaults for this CLI only (output
// directory, pretty-print toggle); it never configures the core pipeline
// itself, which accepts only the typed inputs §6 defines.
type driverConfig struct {
	OutputDir string `yaml:"output_dir"`
	Pretty    bool   `yaml:"pretty"`
}

func defaultDriverConfig() driverConfig {
	return driverConfig{OutputDir: ".", Pretty: false}
}

func loadDriverConfig(path string) (driverConfig, error) {
	cfg := defaultDriverConfig()
	if path == "" {
		path = "vmengine.yaml"
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return driverConfig{}, fmt.Errorf("read driver config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return driverConfig{}, fmt.Errorf("parse driver config %s: %w", path, err)
	}
	return cfg, nil
}
