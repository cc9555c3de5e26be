// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rng implements the engine's seeded random source for tie
// resolution. It is the only source of non-determinism the engine ever
// touches, and it is built so that an identical u64 seed produces an
// identical draw sequence regardless of operating system or processor
// architecture.
//
// Follows a Source/Uniform interface shape, but the underlying
// generator is built over golang.org/x/crypto/chacha20 rather than
// math/rand: math/rand's algorithm is not specified to be stable across
// Go versions or platforms, while a stream cipher keyed by a fixed
// key/nonce is.
package rng

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/chacha20"
)

// ErrEmpty is returned by Choose when the candidate slice is empty.
var ErrEmpty = errors.New("cannot choose from empty set")

// TieRng is a ChaCha20-keyed stream of pseudo-random u64 words, deterministic
// given its seed.
type TieRng struct {
	cipher *chacha20.Cipher
	seed   uint64
	drawn  bool
}

// NewTieRng constructs a TieRng from a 64-bit seed. The seed is expanded into
// a 32-byte ChaCha20 key by repeating its 8 bytes four times; the nonce is
// fixed at all-zero since a single TieRng instance never reuses its
// keystream across independent seeds.
func NewTieRng(seed uint64) *TieRng {
	var key [32]byte
	var seedBytes [8]byte
	binary.LittleEndian.PutUint64(seedBytes[:], seed)
	for i := 0; i < 4; i++ {
		copy(key[i*8:(i+1)*8], seedBytes[:])
	}
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		// Key/nonce are fixed-length local constants; construction cannot fail.
		panic(err)
	}
	return &TieRng{cipher: c, seed: seed}
}

// Seed returns the seed this TieRng was constructed from.
func (t *TieRng) Seed() uint64 { return t.seed }

// Drawn reports whether Uint64/Choose has been called at least once. The
// pipeline orchestrator uses this to decide whether the seed belongs in the
// RunRecord (only recorded when a random tie actually occurred).
func (t *TieRng) Drawn() bool { return t.drawn }

// Uint64 returns the next pseudo-random word in the keystream.
func (t *TieRng) Uint64() uint64 {
	t.drawn = true
	var buf [8]byte
	t.cipher.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// uniform draws a uniform value in [0, n) via rejection sampling, avoiding
// modulo bias.
func (t *TieRng) uniform(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	// Largest multiple of n that fits in a u64; values drawn at or above it
	// are rejected and redrawn so every remainder class in [0,n) has equal
	// probability.
	limit := (^uint64(0) / n) * n
	for {
		v := t.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// Choose returns the index of a uniformly selected element of a slice of
// length n, or (0, false) if n == 0.
func (t *TieRng) Choose(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	return int(t.uniform(uint64(n))), true
}
