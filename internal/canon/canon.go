// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package canon implements the engine's canonical JSON encoding (§6,
// §8): UTF-8, LF-only, keys sorted lexicographically at every
// object level, and the Formula Identifier hash over the FID-included
// variable subset. Every on-disk artifact this engine writes goes
// through Marshal and WriteFile so two runs over identical inputs
// produce byte-identical output.
//
// Grounded on codec.JSONCodec's marshal-then-hash pattern, generalized
// with a recursive key-sort pass encoding/json does not provide.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmengine/core/internal/ids"
)

// Marshal encodes v as canonical JSON: compact, LF-only, with every
// object's keys sorted lexicographically.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canon: marshal: %w", err)
	}
	generic, err := decodePreservingNumbers(raw)
	if err != nil {
		return nil, fmt.Errorf("canon: reparse: %w", err)
	}
	var buf bytes.Buffer
	if err := encode(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodePreservingNumbers parses raw the same way json.Unmarshal into
// `any` would, except every JSON number decodes to a json.Number (its
// exact decimal text) instead of float64. A u64 field like
// eligible_roll or a vote total can exceed 2^53, the largest integer a
// float64 still represents exactly; decoding through float64 would
// silently corrupt it on the very next round-trip.
func decodePreservingNumbers(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// encode writes v to buf in canonical form: object keys sorted, no
// extraneous whitespace, and numbers round-tripped through
// encoding/json's own shortest-representation float/int formatting.
func encode(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encode(buf, x[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encode(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

// MarshalIndent encodes v as canonical JSON with a 2-space indent for
// human operators (§6's "pretty mode"): same sorted-key, LF-only
// canonical form as Marshal, re-indented rather than reformatted, so
// the content hash of the equivalent compact form is unaffected.
func MarshalIndent(v any) ([]byte, error) {
	compact, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	generic, err := decodePreservingNumbers(compact)
	if err != nil {
		return nil, fmt.Errorf("canon: reparse: %w", err)
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(generic); err != nil {
		return nil, fmt.Errorf("canon: indent: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FormulaId computes the Formula Identifier: the SHA-256 digest of the
// canonical JSON encoding of the FID-included variable map (§6).
func FormulaId(fidVariables map[string]any) (ids.FormulaId, error) {
	enc, err := Marshal(fidVariables)
	if err != nil {
		return "", err
	}
	digest := ids.HashBytes(enc)
	return ids.FormulaId(digest), nil
}

// WriteFile writes canonical JSON to path atomically: encode, write to
// a sibling .tmp file, fsync, then rename over the destination. A
// reader never observes a partially-written artifact (§6).
func WriteFile(path string, v any) error {
	return writeFile(path, v, false)
}

// WriteFilePretty is WriteFile with 2-space-indented output (§6's
// pretty mode), for operators reading artifacts by hand.
func WriteFilePretty(path string, v any) error {
	return writeFile(path, v, true)
}

func writeFile(path string, v any, pretty bool) error {
	var enc []byte
	var err error
	if pretty {
		enc, err = MarshalIndent(v)
	} else {
		enc, err = Marshal(v)
	}
	if err != nil {
		return err
	}
	enc = append(enc, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("canon: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(enc); err != nil {
		tmp.Close()
		return fmt.Errorf("canon: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("canon: fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("canon: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("canon: rename into place: %w", err)
	}
	return nil
}
