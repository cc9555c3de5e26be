package ids_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/ids"
)

func TestNewUnitId(t *testing.T) {
	t.Parallel()

	_, err := ids.NewUnitId("unit-01:A.b_C")
	require.NoError(t, err)

	_, err = ids.NewUnitId("bad unit id")
	require.ErrorIs(t, err, ids.ErrInvalidToken)

	_, err = ids.NewUnitId(strings.Repeat("a", 65))
	require.Error(t, err)
}

func TestResultIdRoundTrip(t *testing.T) {
	t.Parallel()

	digest := ids.HashBytes([]byte("hello"))
	rid := ids.NewResultId(digest)
	require.NoError(t, rid.Validate())
	require.True(t, strings.HasPrefix(string(rid), "RES:"))
}

func TestRunIdValidate(t *testing.T) {
	t.Parallel()

	digest := ids.HashBytes([]byte("hello"))
	rid := ids.NewRunId("20260731T120000Z", digest)
	require.NoError(t, rid.Validate())

	bad := ids.RunId("RUN:not-a-timestamp-" + string(digest))
	require.Error(t, bad.Validate())
}
