// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package schemaver checks a ParameterSet's schema_version (§6)
// against the version this build of the engine understands, so an
// operator feeding a parameter set built for a newer/older schema
// gets a clear LOAD-time error instead of a VM-VAR validation failure
// that doesn't point at the real cause.
//
// Grounded on version/version.go's Application Major/Minor/Patch
// compare-and-compatible logic, narrowed from peer-handshake
// compatibility to schema compatibility: same field-by-field
// comparison, same "compatible iff Major matches" rule.
package schemaver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a three-part schema_version, e.g. "1.0.0".
type Version struct {
	Major int
	Minor int
	Patch int
}

// Current is the schema version this build of the engine accepts.
// A ParameterSet declaring a different Major is rejected at LOAD;
// DivisionRegistry and BallotTally carry no schema_version and are not
// checked.
func Current() Version {
	return Version{Major: 1, Minor: 0, Patch: 0}
}

// Parse accepts "MAJOR", "MAJOR.MINOR", or "MAJOR.MINOR.PATCH".
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("schemaver: invalid version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("schemaver: invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String renders "Major.Minor.Patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is before, equal to, or after other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// Compatible reports whether v and other share a Major version. Minor
// and Patch differences are assumed additive and non-breaking.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}
