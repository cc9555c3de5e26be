package determinism_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmengine/core/internal/determinism"
	"github.com/vmengine/core/internal/ids"
)

func TestSortOptionsCanonicalOrder(t *testing.T) {
	t.Parallel()

	items := []determinism.OptionItem{
		{OrderIndex: 1, OptionId: "B"},
		{OrderIndex: 0, OptionId: "D"},
		{OrderIndex: 0, OptionId: "A"},
	}
	determinism.SortOptions(items)
	require.Equal(t, []determinism.OptionItem{
		{OrderIndex: 0, OptionId: "A"},
		{OrderIndex: 0, OptionId: "D"},
		{OrderIndex: 1, OptionId: "B"},
	}, items)
}

func TestReduceDeterministicIndependentOfOrder(t *testing.T) {
	t.Parallel()

	type kv struct {
		key   ids.UnitId
		count int
	}
	items := []kv{
		{"u3", 3}, {"u1", 1}, {"u2", 2}, {"u4", 4},
	}

	keyOf := func(x kv) ids.UnitId { return x.key }
	combine := func(acc, x kv) kv { return kv{key: "", count: acc.count + x.count} }

	base := determinism.ReduceDeterministic(items, keyOf, kv{}, combine)

	shuffled := make([]kv, len(items))
	copy(shuffled, items)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	got := determinism.ReduceDeterministic(shuffled, keyOf, kv{}, combine)
	require.Equal(t, base.count, got.count)
	require.Equal(t, 10, got.count)
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	m := map[ids.UnitId]int{"b": 1, "a": 2, "c": 3}
	require.Equal(t, []ids.UnitId{"a", "b", "c"}, determinism.SortedKeys(m))
}
