package hlir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterNewRejectsDuplicateNsName(t *testing.T) {
	r := NewRegistry()
	id1, res1 := r.RegisterNew(NsTile, "shim0", &Tile{Name: "shim0"})
	require.True(t, res1.Ok)

	_, res2 := r.RegisterNew(NsTile, "shim0", &Tile{Name: "shim0"})
	assert.False(t, res2.Ok)
	assert.Equal(t, DuplicateName, res2.ErrorCode)
	assert.Equal(t, id1, res2.ID)
}

func TestRegisterWithIDUpdatesInPlace(t *testing.T) {
	r := NewRegistry()
	id, _ := r.RegisterNew(NsTile, "shim0", &Tile{Name: "shim0", X: 0})

	newTile := &Tile{Name: "shim0", X: 5}
	res := r.RegisterWithID(id, NsTile, "shim0", newTile)
	assert.True(t, res.Ok)

	ns, name, entity, ok := r.LookupByID(id)
	require.True(t, ok)
	assert.Equal(t, NsTile, ns)
	assert.Equal(t, "shim0", name)
	assert.Same(t, newTile, entity.(*Tile))

	// still exactly one name binding
	lookedUp, ok := r.LookupByName(NsTile, "shim0")
	require.True(t, ok)
	assert.Equal(t, id, lookedUp)
}

func TestRegisterWithIDRenameDropsOldBinding(t *testing.T) {
	r := NewRegistry()
	id, _ := r.RegisterNew(NsFifo, "of_a", &ObjectFifo{Name: "of_a"})

	res := r.RegisterWithID(id, NsFifo, "of_b", &ObjectFifo{Name: "of_b"})
	require.True(t, res.Ok)

	_, ok := r.LookupByName(NsFifo, "of_a")
	assert.False(t, ok)
	lookedUp, ok := r.LookupByName(NsFifo, "of_b")
	require.True(t, ok)
	assert.Equal(t, id, lookedUp)
}

func TestRemoveThenLookupFails(t *testing.T) {
	r := NewRegistry()
	id, _ := r.RegisterNew(NsWorker, "w0", &Worker{Name: "w0"})

	ns, name, _, ok := r.Remove(id)
	require.True(t, ok)
	assert.Equal(t, NsWorker, ns)
	assert.Equal(t, "w0", name)

	_, _, _, ok = r.LookupByID(id)
	assert.False(t, ok)
}

func TestLookupByIdentity(t *testing.T) {
	r := NewRegistry()
	tile := &Tile{Name: "mem0"}
	id, _ := r.RegisterNew(NsTile, "mem0", tile)

	found, ok := r.LookupByIdentity(tile)
	require.True(t, ok)
	assert.Equal(t, id, found)
}
