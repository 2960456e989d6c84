package hlir

import (
	"testing"

	"github.com/aie-tools/aiec/internal/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanProgramHasNoIssues(t *testing.T) {
	p := NewProgram("passthrough")
	p.Tiles["shim0"] = &Tile{Name: "shim0", Kind: TileShim}
	p.Fifos["of_in"] = &ObjectFifo{Name: "of_in", ObjType: types.RefName("line_ty"), Depth: 2, Producer: "shim0"}
	p.Symbols["of_out"] = &Symbol{Name: "of_out", Value: &ForwardOperation{Name: "of_out", Source: "of_in"}}
	p.CoreFunctions["core0"] = &CoreFunction{Name: "core0", Parameters: []string{"k"}}
	p.Workers["w0"] = &Worker{Name: "w0", CoreFn: "core0", Placement: "shim0"}

	issues := p.Validate()
	assert.Empty(t, issues)
}

func TestValidateCatchesUnresolvedWorkerReferences(t *testing.T) {
	p := NewProgram("bad")
	p.Workers["w0"] = &Worker{Name: "w0", CoreFn: "missing", Placement: "missing_tile"}

	issues := p.Validate()
	require.Len(t, issues, 2)
}

func TestValidateCatchesSplitLengthMismatch(t *testing.T) {
	p := NewProgram("bad")
	p.Fifos["of_in"] = &ObjectFifo{Name: "of_in"}
	p.Symbols["split0"] = &Symbol{Name: "split0", Value: &SplitOperation{
		Name: "split0", Source: "of_in", NumOutputs: 2,
		OutputNames: []string{"only_one"},
		Offsets:     []types.DimExpr{types.IntDim(0)},
	}}

	issues := p.Validate()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "must agree")
}
