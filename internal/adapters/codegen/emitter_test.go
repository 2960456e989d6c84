package codegen

import (
	"strings"
	"testing"

	"github.com/aie-tools/aiec/internal/adapters/guixml"
	"github.com/aie-tools/aiec/internal/adapters/xmlexpand"
	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/semgraph"
	"github.com/aie-tools/aiec/internal/core/types"
	"github.com/aie-tools/aiec/internal/core/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPassthroughProgram(t *testing.T) *hlir.Program {
	t.Helper()
	b := usecases.NewProgramBuilder("passthrough")
	require.True(t, b.AddTile("shim0", hlir.TileShim, 0, 0, nil).Ok)
	require.True(t, b.AddTensorType("vector_ty", types.NewTensorType(types.Int32, "4096"), nil).Ok)
	require.True(t, b.AddObjectFifo("of_in", types.RefName("vector_ty"), 2, "shim0", nil, nil).Ok)
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

func TestPipelineFromHLIRToGeneratedSourceProducesValidPython(t *testing.T) {
	p := buildPassthroughProgram(t)

	guiTree := guixml.Serialize(p)
	completeTree := xmlexpand.Expand(guiTree, nil)
	graph := semgraph.Build(completeTree, nil)
	source := Generate(graph, nil)

	assert.Contains(t, source, "import numpy as np")
	assert.NotContains(t, source, "\t")
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		indentLen := len(line) - len(trimmed)
		assert.Equal(t, 0, indentLen%4, "line %q must use 4-space indent steps", line)
	}
}

func TestDivisionShapeRendersAsBareTupleNotQuotedString(t *testing.T) {
	b := usecases.NewProgramBuilder("divshape")
	require.True(t, b.AddTensorType("line_ty", types.NewTensorType(types.Int32, "N / 4"), nil).Ok)
	require.True(t, b.AddTile("shim0", hlir.TileShim, 0, 0, nil).Ok)
	require.True(t, b.AddObjectFifo("of_in", types.RefName("line_ty"), 2, "shim0", nil, nil).Ok)

	rt := b.Runtime("main_sequence")
	rt.SetSignature(
		[]types.TypeRef{types.RefName("line_ty")},
		[]types.TypeRef{types.RefName("line_ty")},
		[]string{"inputA", "outputC"},
	)

	p, err := b.Build()
	require.NoError(t, err)

	guiTree := guixml.Serialize(p)
	completeTree := xmlexpand.Expand(guiTree, nil)
	graph := semgraph.Build(completeTree, nil)
	source := Generate(graph, nil)

	assert.Contains(t, source, "line_ty = np.ndarray[(inputA.numel() // 4,), np.dtype[int32]]")
	assert.NotContains(t, source, `"((inputA.numel()) // 4)"`, "a division shape must never be emitted as a quoted string literal")
}

func TestQuoteIfNeededKeepsNumericAndDtypeBare(t *testing.T) {
	assert.Equal(t, "42", quoteIfNeeded("42"))
	assert.Equal(t, "np.int32", quoteIfNeeded("np.int32"))
	assert.Equal(t, `"hello"`, quoteIfNeeded("hello"))
}
