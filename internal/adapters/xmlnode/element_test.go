package xmlnode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTripsAttributesAndChildren(t *testing.T) {
	src := `<Module name="m"><Symbols><Const name="N" type="int">4096</Const></Symbols></Module>`
	root, err := ParseString(src)
	require.NoError(t, err)

	assert.Equal(t, "Module", root.Tag)
	name, ok := root.Attr("name")
	require.True(t, ok)
	assert.Equal(t, "m", name)

	symbols := root.Find("Symbols")
	require.NotNil(t, symbols)
	consts := symbols.FindAll("Const")
	require.Len(t, consts, 1)
	assert.Equal(t, "4096", consts[0].Text)
	assert.Equal(t, "N", consts[0].AttrOr("name", ""))
}

func TestWriteThenParseIsStable(t *testing.T) {
	root := New("Module", "name", "m")
	sym := root.AddChild("Symbols")
	sym.AddChild("Const", "name", "N", "type", "int").SetText("4096")

	out := root.Write()
	reparsed, err := ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, "Module", reparsed.Tag)
	assert.Equal(t, "4096", reparsed.Find("Symbols").Find("Const").Text)
}
