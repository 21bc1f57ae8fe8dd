package uevloop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryInsertRemoveOrder(t *testing.T) {
	var r registry
	a, b, c := &watcherBase{}, &watcherBase{}, &watcherBase{}

	r.insert(a)
	r.insert(b)
	r.insert(c)
	require.Equal(t, 3, r.count)

	var order []*watcherBase
	r.each(func(w *watcherBase) { order = append(order, w) })
	require.Equal(t, []*watcherBase{a, b, c}, order)

	r.remove(b)
	require.Equal(t, 2, r.count)

	order = nil
	r.each(func(w *watcherBase) { order = append(order, w) })
	require.Equal(t, []*watcherBase{a, c}, order)
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	var r registry
	a := &watcherBase{}
	r.insert(a)
	r.remove(a)
	r.remove(a) // must not panic or corrupt state
	require.Equal(t, 0, r.count)
}

func TestRegistryEachToleratesNeighbourRemovalDuringSweep(t *testing.T) {
	var r registry
	a, b, c := &watcherBase{}, &watcherBase{}, &watcherBase{}
	r.insert(a)
	r.insert(b)
	r.insert(c)

	var seen []*watcherBase
	r.each(func(w *watcherBase) {
		seen = append(seen, w)
		if w == a {
			r.remove(b) // remove the not-yet-visited neighbour
		}
	})

	// a and c must both have been visited; b's removal mid-sweep must not
	// corrupt the walk (each resumes from a's current successor once the
	// callback has unlinked the captured next node).
	require.Contains(t, seen, a)
	require.Contains(t, seen, c)
}
