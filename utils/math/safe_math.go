// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package math holds the overflow-checked arithmetic the aggregation
// stage needs when summing vote totals that are read off the
// wire as untrusted uint64s (§5).
package math

import (
	"errors"
	"math"
)

// ErrOverflow is returned when a uint64 addition would wrap.
var ErrOverflow = errors.New("overflow")

// Add64 returns a + b, or ErrOverflow if the sum would exceed
// math.MaxUint64. Used where per-unit vote counts are folded into a
// national total (internal/pipeline): a malformed input large enough to wrap would
// otherwise silently corrupt the aggregate rather than failing loudly.
func Add64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}
