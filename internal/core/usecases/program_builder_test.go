package usecases

import (
	"testing"

	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTensorTypeDuplicateName(t *testing.T) {
	b := NewProgramBuilder("p")
	r1 := b.AddTensorType("chunk_ty", types.NewTensorType(types.Int32, "1024"), nil)
	require.True(t, r1.Ok)

	r2 := b.AddTensorType("chunk_ty", types.NewTensorType(types.Int32, "2048"), nil)
	assert.False(t, r2.Ok)
	assert.Equal(t, hlir.DuplicateName, r2.ErrorCode)
}

// Re-adding under the same id updates the entry in place.
func TestAddTensorTypeProvidedIDUpdatesInPlace(t *testing.T) {
	b := NewProgramBuilder("p")
	r1 := b.AddTensorType("chunk_ty", types.NewTensorType(types.Int32, "1024"), nil)
	require.True(t, r1.Ok)
	id := r1.ID

	r2 := b.AddTensorType("chunk_ty", types.NewTensorType(types.Int32, "2048"), WithID(id))
	require.True(t, r2.Ok)
	assert.Equal(t, id, r2.ID)

	ns, name, entity, ok := b.LookupByID(id)
	require.True(t, ok)
	assert.Equal(t, hlir.NsTensorType, ns)
	assert.Equal(t, "chunk_ty", name)
	sym := entity.(*hlir.Symbol)
	tt := sym.Value.(types.TensorType)
	assert.Equal(t, "2048", tt.Dims[0].String())

	// Name index still contains exactly one binding for the namespace/name pair.
	lookupID, ok := b.LookupByName(hlir.NsTensorType, "chunk_ty")
	require.True(t, ok)
	assert.Equal(t, id, lookupID)
}

// Removing a type still referenced by a FIFO is blocked.
func TestRemoveTensorTypeBlockedByFifoDependency(t *testing.T) {
	b := NewProgramBuilder("p")
	r1 := b.AddTensorType("chunk_ty", types.NewTensorType(types.Int32, "1024"), nil)
	require.True(t, r1.Ok)

	r2 := b.AddObjectFifo("f0", types.RefName("chunk_ty"), 2, "", nil, nil)
	require.True(t, r2.Ok)

	result := b.Remove(r1.ID)
	assert.False(t, result.Ok)
	assert.Equal(t, hlir.DependencyExists, result.ErrorCode)
	assert.Equal(t, []string{"FIFO 'f0'"}, result.Dependencies)

	_, stillThere := b.Program().Symbols["chunk_ty"]
	assert.True(t, stillThere)
}

func TestRemoveSucceedsWhenNoDependents(t *testing.T) {
	b := NewProgramBuilder("p")
	r1 := b.AddTile("shim0", hlir.TileShim, 0, 0, nil)
	require.True(t, r1.Ok)

	result := b.Remove(r1.ID)
	assert.True(t, result.Ok)
	_, ok := b.Program().Tiles["shim0"]
	assert.False(t, ok)
}

func TestSplitRejectsMismatchedLengths(t *testing.T) {
	b := NewProgramBuilder("p")
	result := b.AddSplit(hlir.SplitOperation{
		Name:        "split0",
		Source:      "of_in",
		NumOutputs:  2,
		OutputNames: []string{"only_one"},
		Offsets:     []types.DimExpr{types.IntDim(0)},
	}, nil)
	assert.False(t, result.Ok)
	assert.Equal(t, hlir.InvalidParameter, result.ErrorCode)
}

func TestBuildAggregatesValidationIssues(t *testing.T) {
	b := NewProgramBuilder("p")
	require.True(t, b.AddWorker(hlir.Worker{Name: "w0", CoreFn: "missing_fn", Placement: "missing_tile"}, nil).Ok)

	_, err := b.Build()
	require.Error(t, err)
	issues, ok := err.(hlir.ValidationIssues)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(issues), 2)
}
