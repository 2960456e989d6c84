// Package guixml implements the GUI XML serializer: a deterministic,
// lossy-for-readability mapping from an hlir.Program to the
// authoring-format XML tree, plus the inverse loader used by the
// round-trip law ("HLIR -> GUI-XML -> HLIR preserves tile coordinates,
// FIFO depths, worker placements, type shape expressions, and
// RuntimeSequence worker order").
package guixml

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/types"
)

// Serialize maps a Program to its GUI-XML tree.
func Serialize(p *hlir.Program) *xmlnode.Element {
	root := xmlnode.New("Module", "name", p.Name)
	if p.Device != hlir.DeviceNone {
		root.SetAttr("device", string(p.Device))
	}

	root.Append(serializeTiles(p))
	root.Append(serializeSymbols(p))
	root.Append(serializeDataFlow(p))
	root.Append(serializeJITFunction(p))
	if p.Runtime != nil {
		root.Append(serializeMainFunction(p))
		root.Append(serializeEntryPoint())
	}
	return root
}

// serializeTiles emits a <Tiles> section carrying every declared Tile's
// name, kind, and (x, y) coordinate. This is not part of the abridged
// authoring schema (which inlines tile coordinates as part of a
// placement constructor) but is required for the round-trip law to hold
// for interactively-edited HLIR programs built through the fluent API
// rather than authored by hand.
func serializeTiles(p *hlir.Program) *xmlnode.Element {
	el := xmlnode.New("Tiles")
	for _, name := range sortedKeys(p.Tiles) {
		t := p.Tiles[name]
		tileEl := el.AddChild("Tile", "name", t.Name, "kind", string(t.Kind), "x", strconv.Itoa(t.X), "y", strconv.Itoa(t.Y))
		for _, mk := range sortedStringKeys(t.Metadata) {
			tileEl.AddChild("meta", "key", mk, "value", t.Metadata[mk])
		}
	}
	return el
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func serializeSymbols(p *hlir.Program) *xmlnode.Element {
	el := xmlnode.New("Symbols")
	names := sortedKeys(p.Symbols)
	for _, name := range names {
		sym := p.Symbols[name]
		switch v := sym.Value.(type) {
		case types.TensorType:
			el.Append(serializeTypeAbstraction(name, v))
		case *hlir.SplitOperation, *hlir.JoinOperation, *hlir.ForwardOperation:
			// serialized under DataFlow, not Symbols.
		default:
			if sym.IsConstant {
				c := el.AddChild("Const", "name", name, "type", constTypeTag(v))
				c.SetText(fmt.Sprint(v))
			}
		}
	}
	return el
}

func constTypeTag(v any) string {
	switch v.(type) {
	case int, int64, int32:
		return "int"
	case float32, float64:
		return "float"
	default:
		return "string"
	}
}

func serializeTypeAbstraction(name string, t types.TensorType) *xmlnode.Element {
	el := xmlnode.New("TypeAbstraction", "name", name)
	nd := el.AddChild("ndarray")
	shapeText := ""
	for i, d := range t.Dims {
		if i > 0 {
			shapeText += " * "
		}
		shapeText += d.String()
	}
	nd.AddChild("shape").SetText(shapeText)
	nd.AddChild("dtype").SetText(string(t.Kind))
	return el
}

func serializeDataFlow(p *hlir.Program) *xmlnode.Element {
	el := xmlnode.New("DataFlow")

	for _, name := range sortedKeys(p.ExternalKernels) {
		k := p.ExternalKernels[name]
		ek := el.AddChild("ExternalFunction", "name", k.Name, "source_file", k.SourceFile)
		for _, t := range k.ArgTypes {
			ek.AddChild("arg_type").SetText(t.String())
		}
		for _, inc := range k.IncludeDirs {
			ek.AddChild("include_dir").SetText(inc)
		}
	}

	for _, name := range sortedKeys(p.CoreFunctions) {
		el.Append(serializeCoreFunction(p.CoreFunctions[name]))
	}

	for _, name := range sortedKeys(p.Fifos) {
		el.Append(serializeObjectFifo(p.Fifos[name]))
	}

	for _, name := range sortedKeys(p.Symbols) {
		switch op := p.Symbols[name].Value.(type) {
		case *hlir.SplitOperation:
			el.Append(serializeSplit(op))
		case *hlir.JoinOperation:
			el.Append(serializeJoin(op))
		case *hlir.ForwardOperation:
			el.Append(serializeForward(op))
		}
	}

	for _, name := range sortedKeys(p.Workers) {
		el.Append(serializeWorker(p.Workers[name]))
	}

	if p.Runtime != nil {
		el.Append(serializeRuntime(p.Runtime))
	}

	return el
}

func serializeCoreFunction(fn *hlir.CoreFunction) *xmlnode.Element {
	el := xmlnode.New("CoreFunction", "name", fn.Name)
	if fn.LoopCount != "" {
		el.SetAttr("loop_count", fn.LoopCount)
	}
	params := el.AddChild("parameters")
	for _, p := range fn.Parameters {
		params.AddChild("param", "name", p)
	}
	body := el.AddChild("body")
	serializeStatements(body, fn.Body)
	return el
}

func serializeStatements(parent *xmlnode.Element, stmts []hlir.Statement) {
	for _, s := range stmts {
		switch s.Kind {
		case hlir.StmtAcquire:
			parent.AddChild("Acquire", "target", s.Target, "index", strconv.Itoa(s.Index))
		case hlir.StmtRelease:
			parent.AddChild("Release", "target", s.Target, "index", strconv.Itoa(s.Index))
		case hlir.StmtKernelCall:
			call := parent.AddChild("KernelCall", "name", s.KernelName)
			for _, a := range s.Args {
				call.AddChild("arg").SetText(a)
			}
		case hlir.StmtFor, hlir.StmtZeroInitLoop:
			tag := "For"
			if s.Kind == hlir.StmtZeroInitLoop {
				tag = "ZeroInitLoop"
			}
			forEl := parent.AddChild(tag, "var", s.LoopVar, "range", s.RangeExpr)
			serializeStatements(forEl, s.Body)
		case hlir.StmtAssign:
			parent.AddChild("Assign", "name", s.AssignVar, "value", s.AssignExpr)
		}
	}
}

func serializeObjectFifo(f *hlir.ObjectFifo) *xmlnode.Element {
	el := xmlnode.New("ObjectFifo", "name", f.Name, "obj_type", f.ObjType.String(), "depth", strconv.Itoa(f.Depth))
	if f.Producer != "" {
		el.SetAttr("producer", f.Producer)
	}
	for _, c := range f.Consumers {
		el.AddChild("consumer", "tile", c)
	}
	return el
}

func serializeSplit(op *hlir.SplitOperation) *xmlnode.Element {
	el := xmlnode.New("ObjectFifoSplit", "name", op.Name, "source", op.Source, "placement", op.Placement)
	for i := range op.OutputNames {
		out := el.AddChild("output", "name", op.OutputNames[i], "offset", op.Offsets[i].String())
		if i < len(op.OutputTypes) {
			out.SetAttr("type", op.OutputTypes[i].String())
		}
	}
	return el
}

func serializeJoin(op *hlir.JoinOperation) *xmlnode.Element {
	el := xmlnode.New("ObjectFifoJoin", "name", op.Name, "dest", op.Dest, "placement", op.Placement)
	for i := range op.InputNames {
		in := el.AddChild("input", "name", op.InputNames[i], "offset", op.Offsets[i].String())
		if i < len(op.InputTypes) {
			in.SetAttr("type", op.InputTypes[i].String())
		}
	}
	return el
}

func serializeForward(op *hlir.ForwardOperation) *xmlnode.Element {
	el := xmlnode.New("ObjectFifoForward", "name", op.Name, "source", op.Source)
	if op.Placement != "" {
		el.SetAttr("placement", op.Placement)
	}
	return el
}

func serializeWorker(w *hlir.Worker) *xmlnode.Element {
	el := xmlnode.New("Worker", "name", w.Name, "core_fn", w.CoreFn, "placement", w.Placement)
	for _, arg := range w.FnArgs {
		if arg.Binding != nil {
			attrs := []string{"fifo", arg.Binding.Fifo, "mode", string(arg.Binding.Mode)}
			if arg.Binding.Index != nil {
				attrs = append(attrs, "index", strconv.Itoa(*arg.Binding.Index))
			}
			el.AddChild("fn_arg", attrs...)
		} else {
			el.AddChild("fn_arg", "symbol", arg.SymbolRef)
		}
	}
	return el
}

func serializeRuntime(rt *hlir.RuntimeSequence) *xmlnode.Element {
	el := xmlnode.New("Runtime", "name", rt.Name)
	if rt.Verify != hlir.VerifyNone {
		el.SetAttr("verify", string(rt.Verify))
	}
	seq := el.AddChild("Sequence")
	for i, t := range rt.Inputs {
		seq.AddChild("input", "index", strconv.Itoa(i), "type", t.String())
	}
	for i, t := range rt.Outputs {
		seq.AddChild("output", "index", strconv.Itoa(i), "type", t.String())
	}
	for _, p := range rt.ParamNames {
		seq.AddChild("param", "name", p)
	}

	start := seq.AddChild("Start")
	for _, w := range rt.Workers {
		start.AddChild("worker", "name", w)
	}

	for _, op := range rt.Ops {
		tag := "Fill"
		if op.Kind == hlir.RuntimeDrainKind {
			tag = "Drain"
		}
		opEl := seq.AddChild(tag, "placement", op.Placement, "fifo", op.Fifo, "host_param", op.HostParam)
		if op.Kind == hlir.RuntimeDrainKind {
			opEl.SetAttr("wait", strconv.FormatBool(op.Wait))
		}
		if op.Tap != nil {
			opEl.SetAttr("use_tap", "true")
			tapEl := opEl.AddChild("TensorAccessPattern")
			appendDimList(tapEl, "tensor_dims", op.Tap.TensorDims)
			tapEl.AddChild("offset").SetText(op.Tap.Offset.String())
			appendDimList(tapEl, "sizes", op.Tap.Sizes)
			appendDimList(tapEl, "strides", op.Tap.Strides)
		}
	}
	return el
}

func appendDimList(parent *xmlnode.Element, tag string, dims []types.DimExpr) {
	list := parent.AddChild(tag)
	for _, d := range dims {
		list.AddChild("dim").SetText(d.String())
	}
}

// serializeJITFunction emits the <Function decorator="iron.jit"> wrapper
// whose body is generated fully by the expander/codegen stages; the GUI
// form only needs to record that a JIT entry point exists.
func serializeJITFunction(p *hlir.Program) *xmlnode.Element {
	el := xmlnode.New("Function", "name", "my_worker", "decorator", "iron.jit")
	params := el.AddChild("parameters")
	if p.Runtime != nil {
		for _, name := range p.Runtime.ParamNames {
			params.AddChild("param", "name", name)
		}
	}
	body := el.AddChild("body")
	body.AddChild("UseType")
	body.AddChild("UseDataFlow")
	body.AddChild("Return")
	return el
}

// jitFunctionName is the fixed name given to the JIT-decorated function,
// referenced both by its own <Function> element and by main's call to it.
const jitFunctionName = "my_worker"

// deviceConstructors maps a Device selection to the iron.device
// constructor main() invokes to pin execution to that target.
var deviceConstructors = map[hlir.Device]string{
	hlir.DeviceNPU1: "NPU1Col1",
	hlir.DeviceNPU2: "NPU2Col1",
	hlir.DeviceXCVC: "XCVC1902",
}

// serializeMainFunction emits the host-side <Function name="main"> that
// selects a device, builds input/output tensors sized from the runtime
// sequence's declared types, invokes the JIT function, and (when the
// runtime carries a verification policy) checks the result before
// exiting. This is the main() a user would write by hand around a
// @iron.jit function; see passthroughjit.py for the shape it follows.
func serializeMainFunction(p *hlir.Program) *xmlnode.Element {
	fn := xmlnode.New("Function", "name", "main")
	fn.AddChild("parameters")
	body := fn.AddChild("body")

	rt := p.Runtime
	if p.Device != hlir.DeviceNone {
		body.Append(deviceSelectionCall(p.Device))
	}

	nIn := len(rt.Inputs)
	for i, ref := range rt.Inputs {
		body.Append(tensorInitStatement(p, paramNameAt(rt, i), ref, "iron.arange"))
	}
	for i, ref := range rt.Outputs {
		body.Append(tensorInitStatement(p, paramNameAt(rt, nIn+i), ref, "iron.zeros"))
	}

	call := body.AddChild("Call", "function", jitFunctionName)
	for i := range rt.ParamNames {
		call.AddChild("arg").SetText(paramNameAt(rt, i))
	}

	if rt.Verify == hlir.VerifyPassthroughEqual {
		appendVerifyScaffold(body, rt)
	}
	return fn
}

// paramNameAt returns the runtime's i'th host parameter name, falling
// back to a positional placeholder if the signature is incomplete.
func paramNameAt(rt *hlir.RuntimeSequence, i int) string {
	if i >= 0 && i < len(rt.ParamNames) {
		return rt.ParamNames[i]
	}
	return fmt.Sprintf("arg%d", i)
}

func deviceSelectionCall(d hlir.Device) *xmlnode.Element {
	ctor := deviceConstructors[d]
	if ctor == "" {
		ctor = "NPU1Col1"
	}
	call := xmlnode.New("Call", "function", "iron.set_current_device")
	call.AddChild("arg").SetText(ctor + "()")
	return call
}

// tensorInitStatement builds the `<name> = iron.arange(...)` or
// `iron.zeros(...)` host tensor declaration for one runtime input or
// output, sized and typed from the declared TypeRef.
func tensorInitStatement(p *hlir.Program, name string, ref types.TypeRef, fn string) *xmlnode.Element {
	tensorEl := xmlnode.New("Tensor", "name", name)
	init := tensorEl.AddChild("init")
	call := init.AddChild("Call", "function", fn)
	call.AddChild("arg").SetText(tensorCountExpr(p, ref))
	call.AddChild("kwarg", "name", "dtype").AddChild("var", "name", tensorDtype(p, ref))
	call.AddChild("kwarg", "name", "device").SetText("npu")
	return tensorEl
}

func resolveTensorRef(p *hlir.Program, ref types.TypeRef) (types.TensorType, bool) {
	if ref.Tensor != nil {
		return *ref.Tensor, true
	}
	if ref.Name != "" {
		if sym, ok := p.Symbols[ref.Name]; ok {
			if t, ok := sym.Value.(types.TensorType); ok {
				return t, true
			}
		}
	}
	return types.TensorType{}, false
}

func tensorCountExpr(p *hlir.Program, ref types.TypeRef) string {
	t, ok := resolveTensorRef(p, ref)
	if !ok || len(t.Dims) == 0 {
		return "1"
	}
	return strings.Join(t.ShapeStrings(), " * ")
}

func tensorDtype(p *hlir.Program, ref types.TypeRef) string {
	t, ok := resolveTensorRef(p, ref)
	if !ok {
		return "np.int32"
	}
	return t.Kind.NumpyDtype()
}

// appendVerifyScaffold emits the host-side passthrough-equality check:
// pull both tensors back with .numpy(), count mismatches, and exit with
// a PASS/FAIL status, grounded on passthroughjit.py's verification tail.
func appendVerifyScaffold(body *xmlnode.Element, rt *hlir.RuntimeSequence) {
	outputName := paramNameAt(rt, len(rt.Inputs))
	inputName := paramNameAt(rt, 0)

	outputHost := xmlnode.New("Tensor", "name", "output_host")
	outChain := outputHost.AddChild("init").AddChild("method_chain")
	outChain.AddChild("base").SetText(outputName)
	outChain.AddChild("call", "method", "numpy")
	body.Append(outputHost)

	inputHost := xmlnode.New("Tensor", "name", "input_host")
	inChain := inputHost.AddChild("init").AddChild("method_chain")
	inChain.AddChild("base").SetText(inputName)
	inChain.AddChild("call", "method", "numpy")
	body.Append(inputHost)

	errorsEl := xmlnode.New("Tensor", "name", "errors")
	errCall := errorsEl.AddChild("init").AddChild("Call", "function", "np.count_nonzero")
	errCall.AddChild("arg").SetText("input_host != output_host")
	body.Append(errorsEl)

	ifEl := body.AddChild("If", "condition", "errors == 0")
	then := ifEl.AddChild("then")
	then.AddChild("Call", "function", "print").AddChild("arg").SetText(`f"\nPASS! all elements match.\n"`)
	then.AddChild("Call", "function", "sys.exit").AddChild("arg").SetText("0")
	elseEl := ifEl.AddChild("else")
	elseEl.AddChild("Call", "function", "print").AddChild("arg").SetText(`f"\nFAIL! {errors} mismatches.\n"`)
	elseEl.AddChild("Call", "function", "sys.exit").AddChild("arg").SetText("1")
}

func serializeEntryPoint() *xmlnode.Element {
	el := xmlnode.New("EntryPoint")
	ifEl := el.AddChild("If", "condition", `__name__ == "__main__"`)
	ifEl.AddChild("Call", "function", "main")
	return el
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
