// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package schemaver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/schemaver"
)

func TestParseRoundTrip(t *testing.T) {
	v, err := schemaver.Parse("1.2.3")
	require.NoError(t, err)
	require.Equal(t, schemaver.Version{Major: 1, Minor: 2, Patch: 3}, v)
	require.Equal(t, "1.2.3", v.String())
}

func TestParseShortForms(t *testing.T) {
	v, err := schemaver.Parse("1")
	require.NoError(t, err)
	require.Equal(t, schemaver.Version{Major: 1}, v)

	v, err = schemaver.Parse("1.5")
	require.NoError(t, err)
	require.Equal(t, schemaver.Version{Major: 1, Minor: 5}, v)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := schemaver.Parse("not-a-version")
	require.Error(t, err)
	_, err = schemaver.Parse("1.2.3.4")
	require.Error(t, err)
}

func TestCompatibleRequiresSameMajor(t *testing.T) {
	a := schemaver.Version{Major: 1, Minor: 0, Patch: 0}
	b := schemaver.Version{Major: 1, Minor: 4, Patch: 2}
	c := schemaver.Version{Major: 2, Minor: 0, Patch: 0}

	require.True(t, a.Compatible(b))
	require.False(t, a.Compatible(c))
}

func TestCompare(t *testing.T) {
	a := schemaver.Version{Major: 1, Minor: 0, Patch: 0}
	b := schemaver.Version{Major: 1, Minor: 1, Patch: 0}
	require.Equal(t, -1, a.Compare(b))
	require.Equal(t, 1, b.Compare(a))
	require.Equal(t, 0, a.Compare(a))
}
