package graphviz

import (
	"testing"

	"github.com/aie-tools/aiec/internal/core/semgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmptySourceIsValid(t *testing.T) {
	c := NewCompiler()
	assert.NoError(t, c.Validate(""))
	assert.NoError(t, c.Validate("   \n\t"))
}

func TestValidateWellFormedSource(t *testing.T) {
	c := NewCompiler()
	err := c.Validate(`a: "Kernel: relu"
b: "Buffer: x"
a -> b: reads
`)
	require.NoError(t, err)
}

func TestValidateMalformedSource(t *testing.T) {
	c := NewCompiler()
	err := c.Validate(`a: {
  this is not closed
`)
	assert.Error(t, err)
}

func TestFromSemanticGraphProducesShapesAndArrows(t *testing.T) {
	g := semgraph.New()
	g.Nodes["n1"] = &semgraph.Node{ID: "n1", Kind: "Kernel", Label: "relu"}
	g.Nodes["n2"] = &semgraph.Node{ID: "n2", Kind: "Buffer", Label: "x"}
	g.Edges = append(g.Edges, semgraph.Edge{From: "n1", To: "n2", Type: semgraph.EdgeHasArg})

	out := FromSemanticGraph(g)
	assert.Contains(t, out, `n1: "Kernel: relu"`)
	assert.Contains(t, out, `n2: "Buffer: x"`)
	assert.Contains(t, out, "n1 -> n2: "+string(semgraph.EdgeHasArg))

	c := NewCompiler()
	assert.NoError(t, c.Validate(out))
}
