package xmlexpand

import (
	"testing"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteExprHandlesDivisionOfKnownTensorSymbol(t *testing.T) {
	st := newState(nil)
	st.TensorRefs["A"] = "inputA"
	st.Symbols["N_A"] = "4096"

	assert.Equal(t, "((inputA.numel()) // 4)", st.rewriteExpr("N_A / 4"))
	assert.Equal(t, "(inputA.numel())", st.rewriteExpr("N_A"))
	assert.Equal(t, "42", st.rewriteExpr("42"))
	assert.Equal(t, "unrelated_token", st.rewriteExpr("unrelated_token"))
}

func TestCanonicalNameFollowsNamingAlgebra(t *testing.T) {
	name := canonicalName(fifoContext{Context: "L3_L2", Data: "in", Column: 0}, 2)
	assert.Equal(t, "SHIM_L3_L2_in0in1_col0", name)

	name = canonicalName(fifoContext{Context: "L1_L1", Stage: "relu", Worker: "w0"}, 2)
	assert.Equal(t, "L1_L1_relu_w0", name)
}

func TestExpandRewritesSymbolsAndPreservesConsts(t *testing.T) {
	src := `<Module name="m">
		<Symbols>
			<Const name="N_A" type="int">4096</Const>
			<TypeAbstraction name="line_ty"><ndarray><shape>N_A / 4</shape><dtype>int32</dtype></ndarray></TypeAbstraction>
		</Symbols>
		<Function name="my_worker" decorator="iron.jit">
			<parameters><param name="inputA"/><param name="outputC"/></parameters>
			<body></body>
		</Function>
	</Module>`
	module, err := xmlnode.ParseString(src)
	require.NoError(t, err)

	expanded := Expand(module, nil)
	symbols := expanded.Find("Symbols")
	require.NotNil(t, symbols)

	consts := symbols.FindAll("Const")
	require.Len(t, consts, 1)
	assert.Equal(t, "4096", consts[0].Text)

	tas := symbols.FindAll("TypeAbstraction")
	require.NotEmpty(t, tas)
	lineTy := tas[0]
	shape := lineTy.Find("ndarray").Find("shape")
	tuple := shape.Find("tuple")
	require.NotNil(t, tuple, "shape must carry a structured <tuple>, not flat text")
	bop := tuple.Find("expr").Find("binary_op")
	require.NotNil(t, bop)
	assert.Equal(t, "//", bop.AttrOr("op", ""))
	method := bop.Find("method")
	require.NotNil(t, method)
	assert.Equal(t, "inputA", method.AttrOr("ref", ""))
	assert.Equal(t, "numel", method.AttrOr("name", ""))
	assert.Equal(t, "4", bop.Find("const").Text)

	imports := expanded.Find("Imports")
	require.NotNil(t, imports)
	assert.NotEmpty(t, imports.FindAll("Import"))
}

func TestExpandObjectFifoRecordsCanonicalName(t *testing.T) {
	src := `<Module name="m">
		<Symbols></Symbols>
		<DataFlow>
			<ObjectFifo name="of_in" obj_type="line_ty" depth="2" producer="shim0" context="L3_L2" data="in" column="0" worker_count="2"/>
		</DataFlow>
	</Module>`
	module, err := xmlnode.ParseString(src)
	require.NoError(t, err)

	expanded := Expand(module, nil)
	fifo := expanded.Find("DataFlow").Find("ObjectFifo")
	require.NotNil(t, fifo)
	assert.Equal(t, "SHIM_L3_L2_in0in1_col0", fifo.AttrOr("name", ""))
}
