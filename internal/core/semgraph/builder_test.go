package semgraph

import (
	"testing"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProducesModuleRootWithContainsEdges(t *testing.T) {
	src := `<Module name="m">
		<Symbols>
			<Const name="N" type="int">4096</Const>
		</Symbols>
		<Function name="my_worker" decorator="iron.jit">
			<parameters><param name="inputA"/></parameters>
			<body><UseType/><UseDataFlow/><Return>my_program</Return></body>
		</Function>
	</Module>`
	root, err := xmlnode.ParseString(src)
	require.NoError(t, err)

	g := Build(root, nil)
	rootNode := g.Nodes[g.RootID]
	assert.Equal(t, KindModule, rootNode.Kind)

	contained := g.ChildrenOf(g.RootID, EdgeContains)
	require.Len(t, contained, 2)
	assert.Equal(t, KindSymbols, g.Nodes[contained[0]].Kind)
	assert.Equal(t, KindFunction, g.Nodes[contained[1]].Kind)
}

func TestIfStatementRelabelsThenElseEdges(t *testing.T) {
	src := `<body>
		<If condition="x &gt; 0">
			<then><Assign name="y" value="1"/></then>
			<else><Assign name="y" value="2"/></else>
		</If>
	</body>`
	body, err := xmlnode.ParseString(src)
	require.NoError(t, err)

	b := NewBuilder(nil)
	parent := b.g.AddNode(KindBody, "")
	b.processBody(body, parent)

	ifID := g0(t, b.g, parent)
	thenChildren := b.g.ChildrenOf(ifID, EdgeThen)
	elseChildren := b.g.ChildrenOf(ifID, EdgeElse)
	assert.Len(t, thenChildren, 1)
	assert.Len(t, elseChildren, 1)
	assert.Empty(t, b.g.ChildrenOf(ifID, EdgeContains))
}

func g0(t *testing.T, g *Graph, parent string) string {
	t.Helper()
	children := g.ChildrenOf(parent, EdgeContains)
	require.Len(t, children, 1)
	return children[0]
}

func TestMethodChainCreatesOrderedHasCallEdges(t *testing.T) {
	src := `<method_chain><base>of_in</base><call method="cons"/><call method="split"><kwarg name="offsets"><item>0</item><item>4</item></kwarg></call></method_chain>`
	el, err := xmlnode.ParseString(src)
	require.NoError(t, err)

	b := NewBuilder(nil)
	chainID := b.walkMethodChain(el)
	calls := b.g.ChildrenOf(chainID, EdgeHasCall)
	require.Len(t, calls, 2)
	assert.Equal(t, "cons", b.g.Nodes[calls[0]].Label)
	assert.Equal(t, "split", b.g.Nodes[calls[1]].Label)
}

func TestWriteGraphMLProducesWellFormedDocument(t *testing.T) {
	root, err := xmlnode.ParseString(`<Module name="m"><Symbols/></Module>`)
	require.NoError(t, err)
	g := Build(root, nil)
	out := WriteGraphML(g)
	assert.Contains(t, out, "<graphml")
	assert.Contains(t, out, "</graphml>")
}
