package xmlexpand

import (
	"regexp"
	"strconv"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/aie-tools/aiec/internal/diagnostics"
)

// colSuffixRe recovers the column index the naming algebra always
// appends to L3_L2/L2_L3/L2_L1/L1_L2 canonical FIFO names ("..._col<N>").
var colSuffixRe = regexp.MustCompile(`_col(\d+)$`)

func columnFromCanonicalName(name string) int {
	m := colSuffixRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// expandDataFlow applies the expansion dispatch table to every
// top-level DataFlow element, in document order, tracking expanded FIFO
// names in State.FifoNames as it goes.
func expandDataFlow(st *State, dataflow *xmlnode.Element) *xmlnode.Element {
	out := xmlnode.New("DataFlow")
	for _, c := range dataflow.Children {
		switch c.Tag {
		case "ExternalFunction":
			out.Append(expandExternalFunction(c))
		case "CoreFunction":
			out.Append(expandCoreFunction(st, c))
		case "ObjectFifo":
			out.Append(expandObjectFifo(st, c))
		case "ObjectFifoSplit":
			out.Append(expandSplit(st, c))
		case "ObjectFifoJoin":
			out.Append(expandJoin(st, c))
		case "ObjectFifoForward":
			out.Append(expandForward(st, c))
		case "Worker":
			out.Append(expandWorker(st, c))
		case "Runtime":
			out.Append(expandRuntime(st, dataflow, c))
		default:
			st.warn(diagnostics.XMLNoHandlerForTag, diagnostics.Fields{Tag: c.Tag, Parent: "DataFlow"})
		}
	}
	return out
}

// expandExternalFunction produces <ExternalFunction> with a nested
// <attributes> block holding name, source_file, arg_types, include_dirs.
func expandExternalFunction(el *xmlnode.Element) *xmlnode.Element {
	out := xmlnode.New("ExternalFunction")
	attrs := out.AddChild("attributes")
	attrs.AddChild("name").SetText(el.AttrOr("name", ""))
	attrs.AddChild("source_file").SetText(el.AttrOr("source_file", ""))
	argTypes := attrs.AddChild("arg_types")
	for _, at := range el.FindAll("arg_type") {
		argTypes.AddChild("arg_type").SetText(at.Text)
	}
	if includes := el.FindAll("include_dir"); len(includes) > 0 {
		incl := attrs.AddChild("include_dirs")
		for _, inc := range includes {
			incl.AddChild("include_dir").SetText(inc.Text)
		}
	}
	return out
}

// expandCoreFunction copies parameters verbatim and, when loop_count is
// present, wraps the body in a <For var="_" range="range_(<expanded>)">
// node, flagging State.NeedsControlflowImport.
func expandCoreFunction(st *State, el *xmlnode.Element) *xmlnode.Element {
	out := xmlnode.New("CoreFunction", "name", el.AttrOr("name", ""))
	if params := el.Find("parameters"); params != nil {
		out.Append(params)
	}

	bodyIn := el.Find("body")
	var innerStmts []*xmlnode.Element
	if bodyIn != nil {
		innerStmts = bodyIn.Children
	}

	bodyOut := xmlnode.New("body")
	if loopCount, ok := el.Attr("loop_count"); ok && loopCount != "" {
		st.NeedsControlflowImport = true
		forEl := bodyOut.AddChild("For", "var", "_", "range", "range_("+st.rewriteExpr(loopCount)+")")
		forEl.Children = append(forEl.Children, innerStmts...)
	} else {
		bodyOut.Children = append(bodyOut.Children, innerStmts...)
	}
	out.Append(bodyOut)
	return out
}

// expandObjectFifo produces <ObjectFifo> with a resolved <obj_type> and
// a <kwarg> block carrying depth and the FIFO's canonical name, and
// records the simple->canonical mapping.
func expandObjectFifo(st *State, el *xmlnode.Element) *xmlnode.Element {
	name := el.AttrOr("name", "")
	canonical := resolveCanonicalFifoName(st, el, name)
	st.FifoNames[name] = canonical

	out := xmlnode.New("ObjectFifo", "name", canonical)
	objType := out.AddChild("obj_type")
	objType.AddChild("type_ref", "name", el.AttrOr("obj_type", ""))

	kwarg := out.AddChild("kwarg")
	kwarg.AddChild("depth").SetText(el.AttrOr("depth", "1"))
	kwarg.AddChild("name").SetText(canonical)
	if producer := el.AttrOr("producer", ""); producer != "" {
		kwarg.AddChild("producer").SetText(producer)
	}
	for _, c := range el.FindAll("consumer") {
		kwarg.AddChild("consumer", "tile", c.AttrOr("tile", ""))
	}
	return out
}

// resolveCanonicalFifoName reads the naming-algebra metadata
// (context/data/column[/stage/worker]) off an authoring-time element,
// if present, and renders the canonical name; absent metadata falls
// back to the authored name unchanged.
func resolveCanonicalFifoName(st *State, el *xmlnode.Element, fallback string) string {
	ctxStr, hasCtx := el.Attr("context")
	if !hasCtx {
		return fallback
	}
	col, _ := strconv.Atoi(el.AttrOr("column", "0"))
	fc := fifoContext{
		Context: ctxStr,
		Data:    el.AttrOr("data", fallback),
		Column:  col,
		Stage:   el.AttrOr("stage", ""),
		Worker:  el.AttrOr("worker", ""),
	}
	n, _ := strconv.Atoi(el.AttrOr("worker_count", "0"))
	return canonicalName(fc, n)
}

// expandSplit produces a producing <ObjectFifo> whose <source> is a
// <method_chain>: base=<source FIFO>, cons(), split(obj_types, offsets,
// names, placement).
func expandSplit(st *State, el *xmlnode.Element) *xmlnode.Element {
	source := el.AttrOr("source", "")
	sourceCanonical := st.FifoNames[source]
	if sourceCanonical == "" {
		st.warn(diagnostics.XMLUnknownSymbol, diagnostics.Fields{Symbol: source, Reason: "ObjectFifoSplit source has no expanded FIFO; falling back to pass-through name"})
		sourceCanonical = source
	}

	outputs := el.FindAll("output")
	n := len(outputs)
	out := xmlnode.New("ObjectFifo", "name", el.AttrOr("name", source))

	chain := out.AddChild("source").AddChild("method_chain")
	chain.AddChild("base").SetText(sourceCanonical)
	chain.AddChild("call", "method", "cons")

	splitCall := chain.AddChild("call", "method", "split")
	objTypes := splitCall.AddChild("kwarg", "name", "obj_types")
	offsets := splitCall.AddChild("kwarg", "name", "offsets")
	names := splitCall.AddChild("kwarg", "name", "names")

	sourceType := el.AttrOr("source_type", "")
	for i, o := range outputs {
		outName := o.AttrOr("name", "")
		col, _ := strconv.Atoi(el.AttrOr("column", "0"))
		canonical := splitJoinChildName("2_L1", outName, i, col)
		st.FifoNames[outName] = canonical

		names.AddChild("item").SetText(canonical)
		if t, ok := o.Attr("type"); ok {
			objTypes.AddChild("item").SetText(t)
		}
		if offsetText, ok := o.Attr("offset"); ok {
			offsets.AddChild("item").SetText(st.rewriteExpr(offsetText))
		} else {
			offsets.AddChild("item").SetText(st.splitOffset(sourceType, n, i))
		}
	}
	if placement := el.AttrOr("placement", ""); placement != "" {
		splitCall.AddChild("kwarg", "name", "placement").SetText(placement)
	}
	return out
}

// expandJoin is the symmetric counterpart of expandSplit: prod(), join(...).
func expandJoin(st *State, el *xmlnode.Element) *xmlnode.Element {
	dest := el.AttrOr("dest", "")
	destCanonical := st.FifoNames[dest]
	if destCanonical == "" {
		st.warn(diagnostics.XMLUnknownSymbol, diagnostics.Fields{Symbol: dest, Reason: "ObjectFifoJoin dest has no expanded FIFO; falling back to pass-through name"})
		destCanonical = dest
	}

	inputs := el.FindAll("input")
	n := len(inputs)
	out := xmlnode.New("ObjectFifo", "name", el.AttrOr("name", dest))

	chain := out.AddChild("dest").AddChild("method_chain")
	chain.AddChild("base").SetText(destCanonical)
	chain.AddChild("call", "method", "prod")

	joinCall := chain.AddChild("call", "method", "join")
	objTypes := joinCall.AddChild("kwarg", "name", "obj_types")
	offsets := joinCall.AddChild("kwarg", "name", "offsets")
	names := joinCall.AddChild("kwarg", "name", "names")

	destType := el.AttrOr("dest_type", "")
	for i, in := range inputs {
		inName := in.AttrOr("name", "")
		col, _ := strconv.Atoi(el.AttrOr("column", "0"))
		canonical := splitJoinChildName("1_L2", inName, i, col)
		st.FifoNames[inName] = canonical

		names.AddChild("item").SetText(canonical)
		if t, ok := in.Attr("type"); ok {
			objTypes.AddChild("item").SetText(t)
		}
		if offsetText, ok := in.Attr("offset"); ok {
			offsets.AddChild("item").SetText(st.rewriteExpr(offsetText))
		} else {
			offsets.AddChild("item").SetText(st.splitOffset(destType, n, i))
		}
	}
	if placement := el.AttrOr("placement", ""); placement != "" {
		joinCall.AddChild("kwarg", "name", "placement").SetText(placement)
	}
	return out
}

// expandForward produces <ObjectFifo> with a <method_chain> of
// cons(), forward([placement]).
func expandForward(st *State, el *xmlnode.Element) *xmlnode.Element {
	source := el.AttrOr("source", "")
	sourceCanonical := st.FifoNames[source]
	if sourceCanonical == "" {
		st.warn(diagnostics.XMLUnknownSymbol, diagnostics.Fields{Symbol: source, Reason: "ObjectFifoForward source has no expanded FIFO; falling back to pass-through name"})
		sourceCanonical = source
	}
	outName := el.AttrOr("name", source)
	st.FifoNames[el.AttrOr("name", "")] = outName

	out := xmlnode.New("ObjectFifo", "name", outName)
	chain := out.AddChild("method_chain")
	chain.AddChild("base").SetText(sourceCanonical)
	chain.AddChild("call", "method", "cons")
	fwdCall := chain.AddChild("call", "method", "forward")
	if placement := el.AttrOr("placement", ""); placement != "" {
		fwdCall.AddChild("arg").SetText(placement)
	}
	return out
}

// expandWorker produces <Worker> with resolved core_fn, fn_args (each a
// method_chain or var, possibly subscript-then-method), and a placement
// constructor.
func expandWorker(st *State, el *xmlnode.Element) *xmlnode.Element {
	out := xmlnode.New("Worker", "name", el.AttrOr("name", ""), "core_fn", el.AttrOr("core_fn", ""))
	if placement := el.AttrOr("placement", ""); placement != "" {
		out.SetAttr("placement", "Tile("+placement+")")
	}
	for _, arg := range el.FindAll("fn_arg") {
		if fifo, ok := arg.Attr("fifo"); ok {
			canonical := st.FifoNames[fifo]
			if canonical == "" {
				st.warn(diagnostics.XMLUnknownSymbol, diagnostics.Fields{Symbol: fifo, Reason: "Worker fn_arg references a FIFO with no expanded canonical name; falling back to pass-through name"})
				canonical = fifo
			}
			fnArg := out.AddChild("fn_arg")
			chain := fnArg.AddChild("method_chain")
			chain.AddChild("base").SetText(canonical)
			mode := arg.AttrOr("mode", "consumer")
			method := "cons"
			if mode == "producer" {
				method = "prod"
			}
			chain.AddChild("call", "method", method)
			if idxStr, ok := arg.Attr("index"); ok {
				chain.SetAttr("index", idxStr)
			}
		} else {
			out.AddChild("fn_arg", "var", arg.AttrOr("symbol", ""))
		}
	}
	return out
}

// expandRuntime produces <Runtime>, a <List name="Workers"> materialized
// from the DataFlow worker set, and a <SequenceBlock> carrying the
// rt.sequence(types...) context, bindings, and in-order operations.
func expandRuntime(st *State, dataflow, el *xmlnode.Element) *xmlnode.Element {
	out := xmlnode.New("Runtime", "name", el.AttrOr("name", ""))
	if verify, ok := el.Attr("verify"); ok && verify != "" {
		out.SetAttr("verify", verify)
	}

	workersList := out.AddChild("List", "name", "Workers")
	for _, w := range dataflow.FindAll("Worker") {
		workersList.AddChild("item").SetText(w.AttrOr("name", ""))
	}

	seqIn := el.Find("Sequence")
	seqOut := out.AddChild("SequenceBlock")
	if seqIn == nil {
		return out
	}

	types := seqOut.AddChild("types")
	for _, in := range seqIn.FindAll("input") {
		types.AddChild("type").SetText(in.AttrOr("type", ""))
	}
	for _, o := range seqIn.FindAll("output") {
		types.AddChild("type").SetText(o.AttrOr("type", ""))
	}

	if start := seqIn.Find("Start"); start != nil {
		startOut := seqOut.AddChild("Start")
		for _, w := range start.FindAll("worker") {
			startOut.AddChild("worker", "name", w.AttrOr("name", ""))
		}
	}

	for _, c := range seqIn.Children {
		switch c.Tag {
		case "Fill", "Drain":
			seqOut.Append(expandFillDrain(st, c))
		}
	}
	return out
}

// expandFillDrain emits a TensorAccessPattern(...) constructor when
// use_tap="true": the column this FIFO was placed on (recovered from
// its canonical name's "_col<N>" suffix) selects which tensor_dims
// slice this column's Fill/Drain sees, using the fixed tiling factors
// {4, 8}. Otherwise a simple positional-argument form.
func expandFillDrain(st *State, el *xmlnode.Element) *xmlnode.Element {
	fifo := el.AttrOr("fifo", "")
	canonical := st.FifoNames[fifo]
	if canonical == "" {
		st.warn(diagnostics.XMLUnknownSymbol, diagnostics.Fields{Symbol: fifo, Reason: el.Tag + " references a FIFO with no expanded canonical name; falling back to pass-through name"})
		canonical = fifo
	}
	out := xmlnode.New(el.Tag, "placement", el.AttrOr("placement", ""), "fifo", canonical, "host_param", el.AttrOr("host_param", ""))
	if el.Tag == "Drain" {
		out.SetAttr("wait", el.AttrOr("wait", "false"))
	}

	if el.AttrOr("use_tap", "false") != "true" {
		return out
	}

	tensor, _ := st.resolveTypeTensor(el.AttrOr("host_param", ""))
	if tensor == "" {
		tensor = el.AttrOr("host_param", "")
	}
	col := columnFromCanonicalName(canonical)
	chunk0 := "(" + tensor + ".numel() // " + strconv.Itoa(tilingFactors[0]) + ")"
	chunk1 := "(" + tensor + ".numel() // " + strconv.Itoa(tilingFactors[1]) + ")"

	ctor := out.AddChild("Constructor", "type", "TensorAccessPattern")
	dims := ctor.AddChild("tensor_dims")
	dims.AddChild("dim").SetText(tensor + ".numel()")

	offset := ctor.AddChild("offset")
	offset.SetText(chunk0 + " * " + strconv.Itoa(col))

	sizes := ctor.AddChild("sizes")
	sizes.AddChild("dim").SetText(chunk0 + " // " + chunk1)
	sizes.AddChild("dim").SetText(chunk1)

	strides := ctor.AddChild("strides")
	strides.AddChild("dim").SetText(chunk1)
	strides.AddChild("dim").SetText("1")
	return out
}
