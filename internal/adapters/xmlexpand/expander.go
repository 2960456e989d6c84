package xmlexpand

import (
	"strconv"
	"strings"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/aie-tools/aiec/internal/diagnostics"
)

// ironRuntimeNames are the identifiers naming the opaque downstream JIT
// runtime surface; the expander always imports them.
var ironRuntimeNames = []string{
	"Program", "Runtime", "Worker", "ObjectFifo", "Tile",
	"ExternalFunction", "TensorAccessPattern", "SequentialPlacer",
}

// Expand maps a GUI-XML <Module> tree to its Complete XML form: the
// output tree carries canonical FIFO names, fully rewritten shape and
// offset expressions, synthesized per-tensor type variants, and a fixed
// import bundle. sink receives WARN diagnostics raised for recoverable
// inconsistencies (an unrecognized DataFlow tag, an unresolved FIFO
// reference); a nil sink drops them.
func Expand(module *xmlnode.Element, sink diagnostics.Sink) *xmlnode.Element {
	st := newState(sink)
	st.harvestSymbols(module)
	st.harvestFuncParams(module)

	out := xmlnode.New("Module", "name", module.AttrOr("name", "program"))

	symbolsOut := xmlnode.New("Symbols")
	if symbols := module.Find("Symbols"); symbols != nil {
		expandSymbols(st, symbols, symbolsOut)
	}
	synthesizeTypeVariations(st, symbolsOut)
	out.Append(symbolsOut)

	if dataflow := module.Find("DataFlow"); dataflow != nil {
		out.Append(expandDataFlow(st, dataflow))
	}

	for _, fn := range module.FindAll("Function") {
		out.Append(expandFunction(st, fn))
	}

	if entry := module.Find("EntryPoint"); entry != nil {
		out.Append(entry)
	}

	out.Children = append([]*xmlnode.Element{buildImports(st)}, out.Children...)
	return out
}

// expandSymbols copies Const symbols verbatim and rewrites
// TypeAbstraction shape expressions through the expander's rewrite rule.
func expandSymbols(st *State, symbols, out *xmlnode.Element) {
	for _, c := range symbols.FindAll("Const") {
		out.Append(c)
	}
	for _, ta := range symbols.FindAll("TypeAbstraction") {
		name := ta.AttrOr("name", "")
		nd := ta.Find("ndarray")
		expanded := xmlnode.New("TypeAbstraction", "name", name)
		expNd := expanded.AddChild("ndarray")
		if nd != nil {
			if shapeEl := nd.Find("shape"); shapeEl != nil {
				expNd.AddChild("shape").Append(st.shapeTree(shapeEl.Text))
			}
			if dtypeEl := nd.Find("dtype"); dtypeEl != nil {
				expNd.AddChild("dtype").SetText(dtypeEl.Text)
			}
		}
		out.Append(expanded)
	}
}

// synthesizeTypeVariations implements type variation synthesis: when
// the input only declares generic type names
// (data_ty, chunk_ty, worker_chunk_ty) without tensor-specific variants
// (data_a_ty, chunk_a, chunk_a_worker), one variant is generated per
// tensor reference using the fixed divisors {1, 4, 8}. If any
// tensor-specific variant already exists the whole synthesis step is
// suppressed.
func synthesizeTypeVariations(st *State, symbolsOut *xmlnode.Element) {
	generic := []string{"data_ty", "chunk_ty", "worker_chunk_ty"}
	present := map[string]bool{}
	for _, ta := range symbolsOut.FindAll("TypeAbstraction") {
		present[ta.AttrOr("name", "")] = true
	}

	anySpecificExists := false
	for letter := range st.TensorRefs {
		l := strings.ToLower(letter)
		for _, g := range generic {
			if present[strings.TrimSuffix(g, "_ty")+"_"+l+"_ty"] {
				anySpecificExists = true
			}
		}
		if present["chunk_"+l] || present["chunk_"+l+"_worker"] {
			anySpecificExists = true
		}
	}
	if anySpecificExists || len(st.TensorRefs) == 0 {
		return
	}

	for _, g := range generic {
		if !present[g] {
			continue
		}
		base := strings.TrimSuffix(g, "_ty")
		for letter, param := range st.TensorRefs {
			l := strings.ToLower(letter)
			for _, divisor := range typeVariationDivisors {
				variantName := base + "_" + l + "_ty"
				if divisor > 1 {
					variantName = base + "_" + l + "_d" + strconv.Itoa(divisor) + "_ty"
				}
				if present[variantName] {
					continue
				}
				ta := xmlnode.New("TypeAbstraction", "name", variantName)
				nd := ta.AddChild("ndarray")
				shapeOut := nd.AddChild("shape")
				tuple := xmlnode.New("tuple")
				ex := tuple.AddChild("expr")
				if divisor > 1 {
					bop := ex.AddChild("binary_op", "op", "//")
					bop.AddChild("method", "ref", param, "name", "numel")
					bop.AddChild("const").SetText(strconv.Itoa(divisor))
				} else {
					ex.AddChild("method", "ref", param, "name", "numel")
				}
				shapeOut.Append(tuple)
				nd.AddChild("dtype").SetText("np.int32")
				symbolsOut.Append(ta)
				present[variantName] = true
				st.TypeDivisors[variantName] = divisor
			}
		}
	}
}

// expandFunction rewrites a <Function>'s parameter types and leaves its
// body untouched; body expansion (UseDataFlow, tensor inits) is the
// concern of the code generator stage, operating on the semantic graph
// rather than this XML pass.
func expandFunction(st *State, fn *xmlnode.Element) *xmlnode.Element {
	out := xmlnode.New(fn.Tag, attrPairs(fn)...)
	if params := fn.Find("parameters"); params != nil {
		outParams := out.AddChild("parameters")
		for _, p := range params.FindAll("param") {
			outParams.Append(p)
		}
	}
	if body := fn.Find("body"); body != nil {
		out.Append(body)
	}
	return out
}

func attrPairs(e *xmlnode.Element) []string {
	var pairs []string
	for _, a := range e.Attrs {
		pairs = append(pairs, a.Name.Local, a.Value)
	}
	return pairs
}

// buildImports constructs the fixed import bundle: numpy,
// ml_dtypes.bfloat16, the IRON runtime names, TensorAccessPattern, and a
// conditional range_ import.
func buildImports(st *State) *xmlnode.Element {
	imports := xmlnode.New("Imports")
	imports.AddChild("Import", "module", "numpy", "alias", "np")
	imports.AddChild("Import", "module", "ml_dtypes", "name", "bfloat16")
	for _, name := range ironRuntimeNames {
		imports.AddChild("Import", "module", "iron", "name", name)
	}
	if st.NeedsControlflowImport {
		imports.AddChild("Import", "module", "iron.controlflow", "name", "range_")
	}
	return imports
}
