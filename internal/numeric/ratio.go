// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package numeric implements the engine's exact-rational numeric kernel.
// All allocation and gate comparisons route through this package so that
// results never depend on floating-point rounding, operand width, or the
// host's CPU/OS.
//
// Numerators and denominators are modelled as arbitrary-precision integers
// (math/big.Int) but are bounds-checked at construction time to this engine's
// declared i128 domain ([-2^127, 2^127-1]), so the kernel's observable
// behavior matches a fixed-width 128-bit implementation exactly while never
// risking silent wraparound.
package numeric

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrZeroDenominator is returned whenever a Ratio is constructed with a zero
// denominator.
var ErrZeroDenominator = errors.New("zero denominator")

// ErrOutOfRange is returned when a numerator or denominator falls outside
// the declared i128 domain.
var ErrOutOfRange = errors.New("value out of i128 range")

var (
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

func checkRange(v *big.Int) error {
	if v.Cmp(maxI128) > 0 || v.Cmp(minI128) < 0 {
		return fmt.Errorf("%w: %s", ErrOutOfRange, v.String())
	}
	return nil
}

// Ratio is an exact, normalized rational number: Den > 0 and
// gcd(|Num|, Den) == 1.
type Ratio struct {
	Num *big.Int
	Den *big.Int
}

// New constructs a normalized Ratio from int64 numerator/denominator.
func New(num, den int64) (Ratio, error) {
	return NewFromBig(big.NewInt(num), big.NewInt(den))
}

// NewFromBig constructs a normalized Ratio from big.Int values. The inputs
// are copied; callers retain ownership of num and den.
func NewFromBig(num, den *big.Int) (Ratio, error) {
	if den.Sign() == 0 {
		return Ratio{}, ErrZeroDenominator
	}
	if err := checkRange(num); err != nil {
		return Ratio{}, err
	}
	if err := checkRange(den); err != nil {
		return Ratio{}, err
	}
	return simplify(new(big.Int).Set(num), new(big.Int).Set(den))
}

// simplify normalizes sign (denominator positive) and reduces by GCD.
func simplify(n, d *big.Int) (Ratio, error) {
	if d.Sign() == 0 {
		return Ratio{}, ErrZeroDenominator
	}
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	if n.Sign() == 0 {
		return Ratio{Num: big.NewInt(0), Den: big.NewInt(1)}, nil
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(n), new(big.Int).Abs(d))
	if g.Sign() != 0 && g.Cmp(big.NewInt(1)) != 0 {
		n = new(big.Int).Quo(n, g)
		d = new(big.Int).Quo(d, g)
	}
	return Ratio{Num: n, Den: d}, nil
}

// Zero is the additive identity 0/1.
func Zero() Ratio { return Ratio{Num: big.NewInt(0), Den: big.NewInt(1)} }

// String renders the ratio as "num/den".
func (r Ratio) String() string {
	return fmt.Sprintf("%s/%s", r.Num.String(), r.Den.String())
}

// Cmp is a total order over ratios: -1, 0, or 1 as r <, =, > other.
//
// Cross-multiplication is performed via big.Int, which never overflows, but
// the comparison strategy still follows this engine's cross-cancel-then-compare
// shape so identical decisions would be reached under a fixed-width 128-bit
// kernel too: common factors are divided out before the cross products are
// formed.
func (r Ratio) Cmp(o Ratio) int {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(r.Den), new(big.Int).Abs(o.Den))
	if g.Sign() == 0 {
		g = big.NewInt(1)
	}
	rd := new(big.Int).Quo(r.Den, g)
	od := new(big.Int).Quo(o.Den, g)

	lhs := new(big.Int).Mul(r.Num, od)
	rhs := new(big.Int).Mul(o.Num, rd)
	return lhs.Cmp(rhs)
}

// Equal reports whether r and o denote the same value.
func (r Ratio) Equal(o Ratio) bool { return r.Cmp(o) == 0 }

// Add returns r + o, normalized.
func (r Ratio) Add(o Ratio) (Ratio, error) {
	n := new(big.Int).Add(new(big.Int).Mul(r.Num, o.Den), new(big.Int).Mul(o.Num, r.Den))
	d := new(big.Int).Mul(r.Den, o.Den)
	return simplify(n, d)
}

// Mul returns r * o, normalized.
func (r Ratio) Mul(o Ratio) (Ratio, error) {
	n := new(big.Int).Mul(r.Num, o.Num)
	d := new(big.Int).Mul(r.Den, o.Den)
	return simplify(n, d)
}

// GePercent reports whether r >= p/100, without floating point.
func (r Ratio) GePercent(p int64) bool {
	threshold := Ratio{Num: big.NewInt(p), Den: big.NewInt(100)}
	return r.Cmp(threshold) >= 0
}

// RoundNearestEvenInt computes round-half-to-even of Num/Den: the unique
// integer q such that |Num/Den - q| is minimized, ties broken to the even q.
func (r Ratio) RoundNearestEvenInt() *big.Int {
	return roundNearestEven(r.Num, r.Den)
}

// roundNearestEven implements banker's rounding of n/d (d > 0 required by
// caller discipline; Ratio always normalizes Den positive).
func roundNearestEven(n, d *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(n, d, new(big.Int))
	// QuoRem truncates toward zero; r has the same sign as n (or zero).
	twiceR := new(big.Int).Mul(r, big.NewInt(2))
	absTwiceR := new(big.Int).Abs(twiceR)
	absD := new(big.Int).Abs(d)

	cmp := absTwiceR.Cmp(absD)
	sign := int64(1)
	if n.Sign() < 0 {
		sign = -1
	}
	switch {
	case cmp < 0:
		return q
	case cmp > 0:
		return new(big.Int).Add(q, big.NewInt(sign))
	default:
		// Exact half: round to even of {q, q+sign}.
		if new(big.Int).Mod(q, big.NewInt(2)).Sign() == 0 {
			return q
		}
		return new(big.Int).Add(q, big.NewInt(sign))
	}
}

// PercentOneDecimalTenths returns round-half-even(Num*1000/Den) as an
// integer in 0..=1000, representing a percentage to one decimal place in
// tenths (e.g. 552 means 55.2%). Used only for reporting, never for gate
// comparisons.
func (r Ratio) PercentOneDecimalTenths() int64 {
	scaledNum := new(big.Int).Mul(r.Num, big.NewInt(1000))
	v := roundNearestEven(scaledNum, r.Den)
	return v.Int64()
}
