package usecases

import (
	"testing"

	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeBuilderPreservesAppendOrder(t *testing.T) {
	b := NewProgramBuilder("passthrough")
	rt := b.Runtime("main_sequence")

	vectorTy := types.RefName("vector_ty")
	rt.SetSignature([]types.TypeRef{vectorTy, vectorTy}, nil, []string{"inputA", "outputC"})
	rt.StartWorker("w0")
	rt.StartWorker("w1")
	rt.Fill("shim0", "of_in", "inputA", nil)
	rt.Drain("shim0", "of_out", "outputC", nil, true)

	seq := rt.Build()
	require.Len(t, seq.Workers, 2)
	assert.Equal(t, []string{"w0", "w1"}, seq.Workers)
	require.Len(t, seq.Ops, 2)
	assert.Equal(t, hlir.RuntimeFillKind, seq.Ops[0].Kind)
	assert.Equal(t, hlir.RuntimeDrainKind, seq.Ops[1].Kind)
	assert.True(t, seq.Ops[1].Wait)
}
