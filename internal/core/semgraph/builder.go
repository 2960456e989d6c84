package semgraph

import (
	"strconv"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/aie-tools/aiec/internal/diagnostics"
)

// Extension processes one top-level DataFlow element kind, in the same
// spirit as the four built-in extensions (Worker, ExternalFunction,
// CoreFunction, List). Registering a new Extension lets callers extend
// dataflow expansion without touching Builder.
type Extension func(b *Builder, el *xmlnode.Element, parent string) string

// Builder walks a Complete XML tree and produces a Graph. It owns a
// scope stack for symbol resolution and a pluggable extension registry
// keyed by lower-cased tag name.
type Builder struct {
	g          *Graph
	scope      *scopeStack
	extensions map[string]Extension
	diag       diagnostics.Sink
}

// NewBuilder creates a Builder with the four built-in extensions
// registered. sink may be nil, in which case diagnostics raised during
// the walk are dropped.
func NewBuilder(sink diagnostics.Sink) *Builder {
	b := &Builder{g: New(), scope: newScopeStack(), extensions: map[string]Extension{}, diag: sink}
	b.RegisterExtension("worker", extWorker)
	b.RegisterExtension("externalfunction", extExternalFunction)
	b.RegisterExtension("corefunction", extCoreFunction)
	b.RegisterExtension("list", extList)
	return b
}

// RegisterExtension binds an Extension under a lower-cased tag name,
// overriding any built-in with the same key.
func (b *Builder) RegisterExtension(tag string, ext Extension) {
	b.extensions[tag] = ext
}

// warn emits a diagnostic at the given severity if a sink is configured.
func (b *Builder) warn(code diagnostics.Code, severity diagnostics.Severity, fields diagnostics.Fields) {
	if b.diag == nil {
		return
	}
	b.diag.Emit(diagnostics.New(code, severity, fields))
}

// Build walks root (a Complete-XML <Module>) and returns the graph.
// sink receives WARN/ERROR diagnostics raised while walking (a
// duplicate symbol declaration, an unresolved type reference); a nil
// sink drops them.
func Build(root *xmlnode.Element, sink diagnostics.Sink) *Graph {
	b := NewBuilder(sink)
	b.g.RootID = b.g.AddNode(KindModule, root.AttrOr("name", ""))
	for _, c := range root.Children {
		b.process(c, b.g.RootID)
	}
	return b.g
}

// process is the dispatch loop's single step: it invokes the matching
// _process_<tag> equivalent, falling through to a registered extension
// for unrecognized tags, and finally to a generic passthrough node.
func (b *Builder) process(el *xmlnode.Element, parent string) {
	var childID string
	switch el.Tag {
	case "Symbols":
		childID = b.processSymbols(el)
	case "DataFlow":
		childID = b.processDataFlow(el)
	case "Function":
		childID = b.processFunction(el)
	case "EntryPoint":
		childID = b.processEntryPoint(el)
	case "ObjectFifo":
		childID = b.processObjectFifo(el)
	case "Runtime":
		childID = b.processRuntime(el)
	case "SequenceBlock":
		childID = b.processSequenceBlock(el)
	case "Imports":
		return // imports are consumed directly by the code generator's header stage.
	default:
		if ext, ok := b.extensions[lower(el.Tag)]; ok {
			childID = ext(b, el, parent)
		} else {
			childID = b.processExt(el, parent)
		}
	}
	if childID != "" {
		b.g.Link(parent, childID, EdgeContains)
	}
}

// processExt is the fallback for any tag without a dedicated handler or
// registered extension: it becomes a generic node carrying its tag as
// Kind and recurses into its children.
func (b *Builder) processExt(el *xmlnode.Element, parent string) string {
	id := b.g.AddNode(Kind(el.Tag), el.AttrOr("name", el.Text))
	for _, c := range el.Children {
		b.process(c, id)
	}
	return id
}

func (b *Builder) processSymbols(el *xmlnode.Element) string {
	id := b.g.AddNode(KindSymbols, "")
	for _, c := range el.FindAll("Const") {
		name := c.AttrOr("name", "")
		if _, exists := b.scope.lookup(name); exists {
			b.warn(diagnostics.SymDuplicate, diagnostics.Warn, diagnostics.Fields{Symbol: name})
		}
		constID := b.g.AddNode(KindConst, name)
		valID := b.g.AddNode(KindConstExpr, c.Text)
		b.g.Link(constID, valID, EdgeHas)
		b.g.Link(id, constID, EdgeContains)
		b.scope.declare(name, constID)
	}
	for _, ta := range el.FindAll("TypeAbstraction") {
		if name := ta.AttrOr("name", ""); name != "" {
			if _, exists := b.scope.lookup(name); exists {
				b.warn(diagnostics.SymDuplicate, diagnostics.Warn, diagnostics.Fields{Symbol: name})
			}
		}
		taID := b.g.AddNode(KindTypeAbstraction, ta.AttrOr("name", ""))
		if nd := ta.Find("ndarray"); nd != nil {
			ndID := b.g.AddNode("ndarray", "")
			if shape := nd.Find("shape"); shape != nil {
				var shapeID string
				if len(shape.Children) > 0 {
					shapeID = b.walkExpr(shape.Children[0])
				} else {
					shapeID = b.walkShapeText(shape.Text)
				}
				b.g.Link(ndID, shapeID, EdgeHas)
			}
			if dtype := nd.Find("dtype"); dtype != nil {
				dtypeID := b.g.AddNode(KindDtypeToken, dtype.Text)
				b.g.Link(ndID, dtypeID, EdgeHas)
			}
			b.g.Link(taID, ndID, EdgeHas)
		}
		b.g.Link(id, taID, EdgeContains)
		b.scope.declare(ta.AttrOr("name", ""), taID)
	}
	return id
}

func (b *Builder) processDataFlow(el *xmlnode.Element) string {
	id := b.g.AddNode(KindDataFlow, "")
	for _, c := range el.Children {
		b.process(c, id)
	}
	return id
}

func (b *Builder) processFunction(el *xmlnode.Element) string {
	id := b.g.AddNode(KindFunction, el.AttrOr("name", ""))
	b.scope.push()
	defer b.scope.pop()

	if params := el.Find("parameters"); params != nil {
		paramsID := b.g.AddNode(KindParameters, "")
		for _, p := range params.FindAll("param") {
			pID := b.g.AddNode(KindParam, p.AttrOr("name", ""))
			b.g.Link(paramsID, pID, EdgeContains)
			b.scope.declare(p.AttrOr("name", ""), pID)
		}
		b.g.Link(id, paramsID, EdgeContains)
	}
	if decorator := el.AttrOr("decorator", ""); decorator != "" {
		b.g.Nodes[id].Attrs["decorator"] = decorator
	}

	if body := el.Find("body"); body != nil {
		bodyID := b.g.AddNode(KindBody, "")
		b.processBody(body, bodyID)
		b.g.Link(id, bodyID, EdgeContains)
	}
	return id
}

// processBody walks a <body>/<then>/<else>/<For> block's direct
// statement children, implementing the If-statement branch-relabeling
// rule.
func (b *Builder) processBody(body *xmlnode.Element, parent string) {
	for _, s := range body.Children {
		b.processStatement(s, parent)
	}
}

func (b *Builder) processStatement(s *xmlnode.Element, parent string) {
	switch s.Tag {
	case "UseType":
		id := b.g.AddNode(KindUseType, "")
		b.g.Link(parent, id, EdgeContains)
	case "UseDataFlow":
		id := b.g.AddNode(KindUseDataFlow, "")
		b.g.Link(parent, id, EdgeContains)
	case "Return":
		id := b.g.AddNode(KindReturn, s.Text)
		b.g.Link(parent, id, EdgeContains)
	case "Assign":
		id := b.g.AddNode(KindAssign, s.AttrOr("name", ""))
		if val := s.AttrOr("value", ""); val != "" {
			valID := b.g.AddNode(KindConstExpr, val)
			b.g.Link(id, valID, EdgeHas)
		}
		b.g.Link(parent, id, EdgeContains)
		b.scope.declare(s.AttrOr("name", ""), id)
	case "Tensor":
		id := b.g.AddNode(KindTensor, s.AttrOr("name", ""))
		if init := s.Find("init"); init != nil {
			var initID string
			if len(init.Children) > 0 {
				initID = b.walkExpr(init.Children[0])
			} else {
				initID = b.g.AddNode(KindConstExpr, init.Text)
			}
			b.g.Link(id, initID, EdgeHas)
		}
		b.g.Link(parent, id, EdgeContains)
		b.scope.declare(s.AttrOr("name", ""), id)
	case "Call":
		id := b.walkCall(s)
		b.g.Link(parent, id, EdgeContains)
	case "If":
		b.processIf(s, parent)
	case "For":
		b.processFor(s, parent)
	default:
		id := b.processExt(s, parent)
		_ = id
	}
}

// processIf implements then/else relabeling: contains edges added while
// processing a branch are retargeted to then/else once the branch is
// complete.
func (b *Builder) processIf(s *xmlnode.Element, parent string) string {
	id := b.g.AddNode(KindIf, s.AttrOr("condition", ""))
	b.g.Link(parent, id, EdgeContains)

	if then := s.Find("then"); then != nil {
		before := len(b.g.Edges)
		b.processBody(then, id)
		relabelNewContains(b.g, id, before, EdgeThen)
	}
	if elseEl := s.Find("else"); elseEl != nil {
		before := len(b.g.Edges)
		b.processBody(elseEl, id)
		relabelNewContains(b.g, id, before, EdgeElse)
	}
	return id
}

func relabelNewContains(g *Graph, parent string, fromIndex int, newType Label) {
	for i := fromIndex; i < len(g.Edges); i++ {
		if g.Edges[i].From == parent && g.Edges[i].Type == EdgeContains {
			g.Edges[i].Type = newType
		}
	}
}

func (b *Builder) processFor(s *xmlnode.Element, parent string) string {
	id := b.g.AddNode(KindFor, s.AttrOr("range", ""))
	b.g.Nodes[id].Attrs["var"] = s.AttrOr("var", "_")
	b.g.Link(parent, id, EdgeContains)
	b.scope.push()
	defer b.scope.pop()
	b.scope.declare(s.AttrOr("var", "_"), id)
	b.processBody(s, id)
	return id
}

func (b *Builder) processEntryPoint(el *xmlnode.Element) string {
	id := b.g.AddNode(KindEntryPoint, "")
	if ifEl := el.Find("If"); ifEl != nil {
		ifID := b.g.AddNode(KindIf, ifEl.AttrOr("condition", ""))
		if call := ifEl.Find("Call"); call != nil {
			callID := b.g.AddNode(KindCall, call.AttrOr("function", ""))
			b.g.Link(ifID, callID, EdgeThen)
		}
		b.g.Link(id, ifID, EdgeContains)
	}
	return id
}

// processObjectFifo handles both shapes an expanded <ObjectFifo> may
// take: a plain declaration (obj_type + kwarg) or a split/join/forward
// derivation (a nested <source>/<dest> method_chain).
func (b *Builder) processObjectFifo(el *xmlnode.Element) string {
	id := b.g.AddNode(KindObjectFifo, el.AttrOr("name", ""))
	b.scope.declare(el.AttrOr("name", ""), id)

	if objType := el.Find("obj_type"); objType != nil {
		if ref := objType.Find("type_ref"); ref != nil {
			refName := ref.AttrOr("name", "")
			if _, declared := b.scope.lookup(refName); !declared {
				b.warn(diagnostics.GraphInvariantViolated, diagnostics.Warn, diagnostics.Fields{
					Node: el.AttrOr("name", ""), Reason: "ObjectFifo references undeclared type " + refName,
				})
			}
			refID := b.walkVarRef(refName)
			b.g.Link(id, refID, EdgeHas)
		}
	}
	if kwarg := el.Find("kwarg"); kwarg != nil {
		kwID := b.g.AddNode(KindKwarg, "")
		b.walkKwargValue(kwarg, kwID)
		b.g.Link(id, kwID, EdgeHasKwarg)
	}
	for _, tag := range []string{"source", "dest"} {
		if wrap := el.Find(tag); wrap != nil {
			if mc := wrap.Find("method_chain"); mc != nil {
				chainID := b.walkMethodChain(mc)
				b.g.Link(id, chainID, EdgeHas)
			}
		}
	}
	if mc := el.Find("method_chain"); mc != nil {
		chainID := b.walkMethodChain(mc)
		b.g.Link(id, chainID, EdgeHas)
	}
	return id
}

// processRuntime builds the Runtime node, its materialized Workers
// List, and its SequenceBlock.
func (b *Builder) processRuntime(el *xmlnode.Element) string {
	id := b.g.AddNode(KindRuntime, el.AttrOr("name", ""))
	for _, c := range el.Children {
		b.process(c, id)
	}
	return id
}

// processSequenceBlock walks a <SequenceBlock>'s types/Start/Fill/Drain
// children, producing a statement sequence the code generator replays
// inside the `with rt.sequence(...)` block.
func (b *Builder) processSequenceBlock(el *xmlnode.Element) string {
	id := b.g.AddNode("SequenceBlock", "")
	for _, c := range el.Children {
		switch c.Tag {
		case "types":
			typesID := b.g.AddNode(KindListExpr, "types")
			for _, t := range c.FindAll("type") {
				typeID := b.walkVarRef(t.Text)
				b.g.Link(typesID, typeID, EdgeItem)
			}
			b.g.Link(id, typesID, EdgeContains)
		case "Start":
			startID := b.g.AddNode("Start", "")
			for _, w := range c.FindAll("worker") {
				wID := b.walkVarRef(w.AttrOr("name", ""))
				b.g.Link(startID, wID, EdgeItem)
			}
			b.g.Link(id, startID, EdgeContains)
		case "Fill", "Drain":
			b.g.Link(id, b.processFillDrain(c), EdgeContains)
		}
	}
	return id
}

// processFillDrain builds a Fill/Drain node carrying placement, fifo,
// and host_param as attributes, plus an optional Constructor child for
// a TensorAccessPattern.
func (b *Builder) processFillDrain(c *xmlnode.Element) string {
	id := b.g.AddNode(Kind(c.Tag), c.AttrOr("fifo", ""))
	b.g.Nodes[id].Attrs["placement"] = c.AttrOr("placement", "")
	b.g.Nodes[id].Attrs["host_param"] = c.AttrOr("host_param", "")
	if c.Tag == "Drain" {
		b.g.Nodes[id].Attrs["wait"] = c.AttrOr("wait", "false")
	}
	if ctor := c.Find("Constructor"); ctor != nil {
		ctorID := b.walkConstructor(ctor)
		b.g.Link(id, ctorID, EdgeHasArg)
	}
	return id
}

// --- built-in extensions (Worker, ExternalFunction, CoreFunction, List) ---

func extWorker(b *Builder, el *xmlnode.Element, parent string) string {
	id := b.g.AddNode(KindWorker, el.AttrOr("name", ""))
	b.g.Nodes[id].Attrs["core_fn"] = el.AttrOr("core_fn", "")
	b.g.Nodes[id].Attrs["placement"] = el.AttrOr("placement", "")
	for _, arg := range el.FindAll("fn_arg") {
		var argID string
		if mc := arg.Find("method_chain"); mc != nil {
			argID = b.walkMethodChain(mc)
		} else {
			argID = b.walkVarRef(arg.AttrOr("var", ""))
		}
		b.g.Link(id, argID, EdgeHasArg)
	}
	return id
}

func extExternalFunction(b *Builder, el *xmlnode.Element, parent string) string {
	id := b.g.AddNode(KindExternalFunction, "")
	attrs := el.Find("attributes")
	if attrs == nil {
		return id
	}
	if name := attrs.Find("name"); name != nil {
		b.g.Nodes[id].Label = name.Text
	}
	if src := attrs.Find("source_file"); src != nil {
		b.g.Nodes[id].Attrs["source_file"] = src.Text
	}
	if argTypes := attrs.Find("arg_types"); argTypes != nil {
		listID := b.g.AddNode(KindListExpr, "arg_types")
		for _, at := range argTypes.FindAll("arg_type") {
			itemID := b.g.AddNode(KindDtypeToken, at.Text)
			b.g.Link(listID, itemID, EdgeItem)
		}
		b.g.Link(id, listID, EdgeHas)
	}
	return id
}

func extCoreFunction(b *Builder, el *xmlnode.Element, parent string) string {
	id := b.g.AddNode(KindCoreFunction, el.AttrOr("name", ""))
	b.scope.push()
	defer b.scope.pop()
	if params := el.Find("parameters"); params != nil {
		for _, p := range params.FindAll("param") {
			pID := b.g.AddNode(KindParam, p.AttrOr("name", ""))
			b.g.Link(id, pID, EdgeContains)
			b.scope.declare(p.AttrOr("name", ""), pID)
		}
	}
	if body := el.Find("body"); body != nil {
		bodyID := b.g.AddNode(KindBody, "")
		b.processCoreBody(body, bodyID)
		b.g.Link(id, bodyID, EdgeContains)
	}
	return id
}

// processCoreBody handles the CoreFunction-specific statement shapes
// (Acquire/Release/KernelCall/For/ZeroInitLoop/Assign) produced by
// guixml and the expander.
func (b *Builder) processCoreBody(body *xmlnode.Element, parent string) {
	for _, c := range body.Children {
		switch c.Tag {
		case "Acquire", "Release":
			id := b.g.AddNode(Kind(c.Tag), c.AttrOr("target", ""))
			if idx := c.AttrOr("index", ""); idx != "" {
				b.g.Nodes[id].Attrs["index"] = idx
			}
			b.g.Link(parent, id, EdgeContains)
		case "KernelCall":
			id := b.g.AddNode(KindMethodCall, c.AttrOr("name", ""))
			for _, a := range c.FindAll("arg") {
				argID := b.walkVarRef(a.Text)
				b.g.Link(id, argID, EdgeHasArg)
			}
			b.g.Link(parent, id, EdgeContains)
		case "For", "ZeroInitLoop":
			id := b.g.AddNode(KindFor, c.AttrOr("range", ""))
			b.g.Nodes[id].Attrs["var"] = c.AttrOr("var", "_")
			b.g.Nodes[id].Attrs["zero_init"] = strconv.FormatBool(c.Tag == "ZeroInitLoop")
			b.g.Link(parent, id, EdgeContains)
			b.scope.push()
			b.scope.declare(c.AttrOr("var", "_"), id)
			b.processCoreBody(c, id)
			b.scope.pop()
		case "Assign":
			id := b.g.AddNode(KindAssign, c.AttrOr("name", ""))
			valID := b.g.AddNode(KindConstExpr, c.AttrOr("value", ""))
			b.g.Link(id, valID, EdgeHas)
			b.g.Link(parent, id, EdgeContains)
		}
	}
}

func extList(b *Builder, el *xmlnode.Element, parent string) string {
	id := b.g.AddNode(KindListExpr, el.AttrOr("name", ""))
	for _, item := range el.FindAll("item") {
		itemID := b.walkLeaf(item)
		b.g.Link(id, itemID, EdgeItem)
	}
	return id
}

func lower(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
