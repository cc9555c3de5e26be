// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package allocator

import "github.com/vmengine/core/internal/numeric"

// numericRatio builds an exact-rational num/den, routed through the
// shared numeric kernel so every allocator comparison uses the same
// arithmetic as the gate evaluator (§8 determinism invariant).
func numericRatio(num, den uint64) (numeric.Ratio, error) {
	if den == 0 {
		return numeric.Zero(), numeric.ErrZeroDenominator
	}
	return numeric.New(int64(num), int64(den))
}
