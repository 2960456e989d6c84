package guixml

import (
	"testing"

	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/types"
	"github.com/aie-tools/aiec/internal/core/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPassthrough constructs a minimal passthrough program: one shim
// tile, one input FIFO, one forward (passthrough) op, and a two-tensor
// runtime.
func buildPassthrough(t *testing.T) *hlir.Program {
	t.Helper()
	b := usecases.NewProgramBuilder("passthrough")
	require.True(t, b.AddTile("shim0", hlir.TileShim, 0, 0, nil).Ok)
	require.True(t, b.AddTensorType("vector_ty", types.NewTensorType(types.Int32, "N"), nil).Ok)
	require.True(t, b.AddTensorType("line_ty", types.NewTensorType(types.Int32, "N / 4"), nil).Ok)
	require.True(t, b.AddObjectFifo("of_in", types.RefName("line_ty"), 2, "shim0", nil, nil).Ok)
	require.True(t, b.AddForward(hlir.ForwardOperation{Name: "of_out", Source: "of_in"}, nil).Ok)

	rt := b.Runtime("main_sequence")
	rt.SetSignature(
		[]types.TypeRef{types.RefName("vector_ty")},
		[]types.TypeRef{types.RefName("vector_ty")},
		[]string{"inputA", "outputC"},
	)
	rt.Fill("shim0", "of_in", "inputA", nil)
	rt.Drain("shim0", "of_out", "outputC", nil, true)

	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func TestRoundTripPreservesTileCoordsFifoDepthsShapesAndRuntimeOps(t *testing.T) {
	original := buildPassthrough(t)

	xml := Serialize(original).Write()
	reloaded, err := LoadString(xml)
	require.NoError(t, err)

	assert.Equal(t, original.Tiles["shim0"].X, reloaded.Tiles["shim0"].X)
	assert.Equal(t, original.Tiles["shim0"].Y, reloaded.Tiles["shim0"].Y)
	assert.Equal(t, original.Fifos["of_in"].Depth, reloaded.Fifos["of_in"].Depth)

	origTT := original.Symbols["line_ty"].Value.(types.TensorType)
	reloadedTT := reloaded.Symbols["line_ty"].Value.(types.TensorType)
	assert.Equal(t, origTT.Dims[0].String(), reloadedTT.Dims[0].String())

	assert.Equal(t, original.Runtime.Ops[0].Kind, reloaded.Runtime.Ops[0].Kind)
	assert.Equal(t, original.Runtime.Ops[1].Kind, reloaded.Runtime.Ops[1].Kind)
	assert.Equal(t, original.Runtime.Ops[1].Wait, reloaded.Runtime.Ops[1].Wait)
}

func TestSerializeIsDeterministic(t *testing.T) {
	p := buildPassthrough(t)
	assert.Equal(t, Serialize(p).Write(), Serialize(p).Write())
}
