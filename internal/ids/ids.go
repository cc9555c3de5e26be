// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ids defines the identifier newtypes used across the engine: unit
// and option identifiers supplied by the caller, and the hash-derived
// artifact identifiers the engine produces for itself.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidId    = errors.New("invalid id")
)

var tokenRe = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

// UnitId identifies a division-registry unit.
type UnitId string

// OptionId identifies a ballot option.
type OptionId string

// NewUnitId validates and constructs a UnitId.
func NewUnitId(s string) (UnitId, error) {
	if !tokenRe.MatchString(s) {
		return "", fmt.Errorf("%w: unit id %q", ErrInvalidToken, s)
	}
	return UnitId(s), nil
}

// NewOptionId validates and constructs an OptionId.
func NewOptionId(s string) (OptionId, error) {
	if !tokenRe.MatchString(s) {
		return "", fmt.Errorf("%w: option id %q", ErrInvalidToken, s)
	}
	return OptionId(s), nil
}

// Sha256 is a lowercase hex-encoded SHA-256 digest.
type Sha256 string

var hex64Re = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewSha256 validates a 64-hex-character digest string.
func NewSha256(s string) (Sha256, error) {
	if !hex64Re.MatchString(s) {
		return "", fmt.Errorf("%w: sha256 %q", ErrInvalidId, s)
	}
	return Sha256(s), nil
}

// HashBytes computes the Sha256 digest of b.
func HashBytes(b []byte) Sha256 {
	sum := sha256.Sum256(b)
	return Sha256(hex.EncodeToString(sum[:]))
}

// ResultId is "RES:" followed by 64 hex characters.
type ResultId string

var resultRe = regexp.MustCompile(`^RES:[0-9a-f]{64}$`)

// NewResultId builds a ResultId from a content digest.
func NewResultId(digest Sha256) ResultId {
	return ResultId("RES:" + string(digest))
}

// Validate reports whether r conforms to the RES:<64hex> grammar.
func (r ResultId) Validate() error {
	if !resultRe.MatchString(string(r)) {
		return fmt.Errorf("%w: result id %q", ErrInvalidId, r)
	}
	return nil
}

// RunId is "RUN:" followed by a UTC-compact timestamp, "-", and 64 hex characters.
type RunId string

var runRe = regexp.MustCompile(`^RUN:[0-9]{8}T[0-9]{6}Z-[0-9a-f]{64}$`)

// NewRunId builds a RunId from a UTC-compact timestamp ("20060102T150405Z") and a digest.
func NewRunId(utcCompact string, digest Sha256) RunId {
	return RunId("RUN:" + utcCompact + "-" + string(digest))
}

// Validate reports whether r conforms to the RUN:<UTC-compact>-<64hex> grammar.
func (r RunId) Validate() error {
	if !runRe.MatchString(string(r)) {
		return fmt.Errorf("%w: run id %q", ErrInvalidId, r)
	}
	return nil
}

// FrontierMapId is "FR:" followed by 64 hex characters.
type FrontierMapId string

var frontierRe = regexp.MustCompile(`^FR:[0-9a-f]{64}$`)

// NewFrontierMapId builds a FrontierMapId from a content digest.
func NewFrontierMapId(digest Sha256) FrontierMapId {
	return FrontierMapId("FR:" + string(digest))
}

// Validate reports whether f conforms to the FR:<64hex> grammar.
func (f FrontierMapId) Validate() error {
	if !frontierRe.MatchString(string(f)) {
		return fmt.Errorf("%w: frontier map id %q", ErrInvalidId, f)
	}
	return nil
}

// FormulaId is the 64-hex-character SHA-256 digest over the FID-included
// variable subset (bare hex, no prefix).
type FormulaId string

// NewFormulaId validates a FormulaId string.
func NewFormulaId(s string) (FormulaId, error) {
	if !hex64Re.MatchString(s) {
		return "", fmt.Errorf("%w: formula id %q", ErrInvalidId, s)
	}
	return FormulaId(s), nil
}
