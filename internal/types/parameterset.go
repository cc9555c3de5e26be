// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

// ParameterSet is the external, wire-level shape of a parameter input
// (§6): an opaque bag of "VM-VAR-###" values, not yet validated or
// defaulted. internal/params.FromVariables turns this into a typed
// Params.
type ParameterSet struct {
	Id            string         `json:"id"`
	SchemaVersion string         `json:"schema_version"`
	Variables     map[string]any `json:"variables"`
}
