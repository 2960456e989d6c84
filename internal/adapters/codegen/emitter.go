// Package codegen is the code generator: a stateful emitter that walks
// a semgraph.Graph and reconstructs Python surface syntax — method
// chains, fluent pipelines, control flow — with strict 4-space
// indentation.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aie-tools/aiec/internal/core/semgraph"
	"github.com/aie-tools/aiec/internal/diagnostics"
)

// GenExtension emits one DataFlow element, in the same spirit as the
// semgraph builder's Extension type: a registry keyed by node kind lets
// callers extend what emitDataFlowElement dispatches on without
// touching the hot path's switch statement.
type GenExtension func(e *Emitter, id string)

// Emitter accumulates output lines with an indent-level counter and
// tracks whether the DataFlow block has already been generated once.
type Emitter struct {
	g                 *semgraph.Graph
	lines             []string
	indent            int
	dataflowGenerated bool
	needsControlflow  bool
	needsSys          bool
	needsDevice       bool
	extensions        map[semgraph.Kind]GenExtension
	diag              diagnostics.Sink
}

// NewEmitter creates an Emitter bound to g with the five built-in
// DataFlow-element extensions registered (ExternalFunction,
// CoreFunction, ObjectFifo, Worker, Runtime). sink may be nil, in which
// case diagnostics raised while rendering are dropped.
func NewEmitter(g *semgraph.Graph, sink diagnostics.Sink) *Emitter {
	e := &Emitter{g: g, extensions: map[semgraph.Kind]GenExtension{}, diag: sink}
	e.RegisterExtension(semgraph.KindExternalFunction, func(e *Emitter, id string) { e.emitExternalFunction(id) })
	e.RegisterExtension(semgraph.KindCoreFunction, func(e *Emitter, id string) { e.emitCoreFunction(id) })
	e.RegisterExtension(semgraph.KindObjectFifo, func(e *Emitter, id string) {
		e.emit("%s = %s", e.g.Nodes[id].Label, e.renderObjectFifo(id))
	})
	e.RegisterExtension(semgraph.KindWorker, func(e *Emitter, id string) { e.emitWorker(id) })
	e.RegisterExtension(semgraph.KindRuntime, func(e *Emitter, id string) { e.emitRuntime(id) })
	return e
}

// RegisterExtension binds a GenExtension under a node kind, overriding
// any previously registered handler for that kind.
func (e *Emitter) RegisterExtension(kind semgraph.Kind, ext GenExtension) {
	e.extensions[kind] = ext
}

// warn emits a diagnostic at the given severity if a sink is configured.
func (e *Emitter) warn(code diagnostics.Code, severity diagnostics.Severity, fields diagnostics.Fields) {
	if e.diag == nil {
		return
	}
	e.diag.Emit(diagnostics.New(code, severity, fields))
}

func (e *Emitter) emit(format string, args ...any) {
	prefix := strings.Repeat("    ", e.indent)
	e.lines = append(e.lines, prefix+fmt.Sprintf(format, args...))
}

func (e *Emitter) blank() {
	e.lines = append(e.lines, "")
}

// Generate walks the Module node's contains children in order and
// returns the full generated source text. sink receives a WARN
// diagnostic whenever the generator falls back to a raw node label for
// a graph node kind it has no rendering rule for; a nil sink drops them.
func Generate(g *semgraph.Graph, sink diagnostics.Sink) string {
	e := NewEmitter(g, sink)
	e.detectImportNeeds()
	e.emitHeader()

	for _, childID := range g.ChildrenOf(g.RootID, semgraph.EdgeContains) {
		node := g.Nodes[childID]
		switch node.Kind {
		case semgraph.KindSymbols:
			e.emitSymbolsSection(childID)
		case semgraph.KindFunction:
			e.emitFunction(childID)
		case semgraph.KindEntryPoint:
			e.emitEntryPoint(childID)
		}
	}
	return strings.Join(e.lines, "\n") + "\n"
}

func (e *Emitter) emitHeader() {
	e.emit("# Generated by the AIE dataflow compiler. Do not edit by hand.")
	e.blank()
}

// detectImportNeeds scans the graph once for every conditional import
// line emitSymbolsSection may need: a For node (controlflow.range_,
// matching the expander's NeedsControlflowImport flag), a sys.exit call
// (the verify scaffold), or a device constructor reference (main's
// device-selection call).
func (e *Emitter) detectImportNeeds() {
	for _, n := range e.g.Nodes {
		switch n.Kind {
		case semgraph.KindFor:
			e.needsControlflow = true
		case semgraph.KindFunctionCallExpr, semgraph.KindCall:
			if n.Label == "sys.exit" {
				e.needsSys = true
			}
		case semgraph.KindVarRef:
			if strings.Contains(n.Label, "NPU1Col1") || strings.Contains(n.Label, "NPU2Col1") || strings.Contains(n.Label, "XCVC1902") {
				e.needsDevice = true
			}
		}
	}
}

// emitSymbolsSection emits the fixed import bundle plus one
// `<name> = np.ndarray[shape, np.dtype[dtype]]` line per TypeAbstraction.
func (e *Emitter) emitSymbolsSection(symbolsID string) {
	e.emit("import numpy as np")
	e.emit("import ml_dtypes")
	if e.needsSys {
		e.emit("import sys")
	}
	e.emit("import iron")
	for _, name := range []string{"Program", "Runtime", "Worker", "ObjectFifo", "Tile", "ExternalFunction", "TensorAccessPattern", "SequentialPlacer"} {
		e.emit("from iron import %s", name)
	}
	e.emit("from iron import ObjectFifo as _ObjectFifo")
	if e.needsDevice {
		e.emit("from iron.device import NPU1Col1, NPU2Col1, XCVC1902")
	}
	if e.needsControlflow {
		e.emit("from iron.controlflow import range_")
	}
	e.blank()

	for _, childID := range e.g.ChildrenOf(symbolsID, semgraph.EdgeContains) {
		node := e.g.Nodes[childID]
		switch node.Kind {
		case semgraph.KindConst:
			valID := firstChild(e.g, childID, semgraph.EdgeHas)
			e.emit("%s = %s", node.Label, e.renderExpr(valID))
		case semgraph.KindTypeAbstraction:
			e.emitTypeAbstractionAssignment(node.Label, childID)
		}
	}
	e.blank()
}

func (e *Emitter) emitTypeAbstractionAssignment(name, taID string) {
	ndID := firstChild(e.g, taID, semgraph.EdgeHas)
	if ndID == "" {
		return
	}
	shapeID := firstChild(e.g, ndID, semgraph.EdgeHas)
	dtypeID := secondChild(e.g, ndID, semgraph.EdgeHas)
	shape := e.renderExpr(shapeID)
	dtype := e.renderExpr(dtypeID)
	e.emit("%s = np.ndarray[%s, np.dtype[%s]]", name, shape, dtype)
}

func firstChild(g *semgraph.Graph, parent string, label semgraph.Label) string {
	c := g.ChildrenOf(parent, label)
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

func secondChild(g *semgraph.Graph, parent string, label semgraph.Label) string {
	c := g.ChildrenOf(parent, label)
	if len(c) < 2 {
		return ""
	}
	return c[1]
}

// emitFunction emits the optional decorator line, a comma-joined
// signature, and an indented body.
func (e *Emitter) emitFunction(fnID string) {
	node := e.g.Nodes[fnID]
	if decorator := node.Attrs["decorator"]; decorator != "" {
		e.emit("@%s", decorator)
	}

	var params []string
	for _, childID := range e.g.ChildrenOf(fnID, semgraph.EdgeContains) {
		if e.g.Nodes[childID].Kind == semgraph.KindParameters {
			for _, pID := range e.g.ChildrenOf(childID, semgraph.EdgeContains) {
				params = append(params, e.g.Nodes[pID].Label)
			}
		}
	}
	e.emit("def %s(%s):", node.Label, strings.Join(params, ", "))

	e.indent++
	for _, childID := range e.g.ChildrenOf(fnID, semgraph.EdgeContains) {
		if e.g.Nodes[childID].Kind == semgraph.KindBody {
			e.emitBody(childID)
		}
	}
	e.indent--
	e.blank()
}

func (e *Emitter) emitBody(bodyID string) {
	children := e.g.ChildrenOf(bodyID, semgraph.EdgeContains)
	if len(children) == 0 {
		e.emit("pass")
		return
	}
	for _, stmtID := range children {
		e.emitStatement(stmtID)
	}
}

func (e *Emitter) emitStatement(id string) {
	node := e.g.Nodes[id]
	switch node.Kind {
	case semgraph.KindUseType:
		e.emitUseType()
	case semgraph.KindUseDataFlow:
		e.emitUseDataFlow()
	case semgraph.KindReturn:
		e.emit("return my_program.resolve_program(SequentialPlacer())")
	case semgraph.KindAssign:
		valID := firstChild(e.g, id, semgraph.EdgeHas)
		e.emit("%s = %s", node.Label, e.renderExpr(valID))
	case semgraph.KindTensor:
		valID := firstChild(e.g, id, semgraph.EdgeHas)
		e.emit("%s = %s", node.Label, e.renderExpr(valID))
	case semgraph.KindIf:
		e.emitIf(id)
	case semgraph.KindFor:
		e.emitFor(id)
	case semgraph.KindFunctionCallExpr, semgraph.KindCall, semgraph.KindMethodCall:
		e.emit("%s", e.renderExpr(id))
	default:
		e.emit("%s", e.renderExpr(id))
	}
}

// emitUseType produces the "# Define tensor types" block: one
// assignment per TypeAbstraction reachable from the Module's Symbols
// section.
func (e *Emitter) emitUseType() {
	e.emit("# Define tensor types")
	for _, childID := range e.g.ChildrenOf(e.g.RootID, semgraph.EdgeContains) {
		if e.g.Nodes[childID].Kind != semgraph.KindSymbols {
			continue
		}
		for _, taID := range e.g.ChildrenOf(childID, semgraph.EdgeContains) {
			if e.g.Nodes[taID].Kind == semgraph.KindTypeAbstraction {
				e.emitTypeAbstractionAssignment(e.g.Nodes[taID].Label, taID)
			}
		}
	}
}

// emitUseDataFlow emits the full DataFlow generation: FIFOs,
// split/join/forward chains, external kernels, core functions, workers,
// the Workers list, the Runtime instance, the sequencer block, and the
// `my_program = Program()` assignment. The placer call is emitted later,
// by the Return statement.
func (e *Emitter) emitUseDataFlow() {
	if e.dataflowGenerated {
		return
	}
	e.dataflowGenerated = true
	e.emit("# Define dataflow")

	for _, childID := range e.g.ChildrenOf(e.g.RootID, semgraph.EdgeContains) {
		if e.g.Nodes[childID].Kind != semgraph.KindDataFlow {
			continue
		}
		for _, elID := range e.g.ChildrenOf(childID, semgraph.EdgeContains) {
			e.emitDataFlowElement(elID)
		}
	}
	e.blank()
	e.emit("my_program = Program()")
}

func (e *Emitter) emitDataFlowElement(id string) {
	node := e.g.Nodes[id]
	if ext, ok := e.extensions[node.Kind]; ok {
		ext(e, id)
		return
	}
	if node.Kind == semgraph.KindListExpr {
		e.emit("%s = %s", node.Label, e.renderExpr(id))
	}
}

func (e *Emitter) emitExternalFunction(id string) {
	node := e.g.Nodes[id]
	srcFile := node.Attrs["source_file"]
	var argTypes []string
	for _, listID := range e.g.ChildrenOf(id, semgraph.EdgeHas) {
		for _, itemID := range e.g.ChildrenOf(listID, semgraph.EdgeItem) {
			argTypes = append(argTypes, e.g.Nodes[itemID].Label)
		}
	}
	e.emit("%s = ExternalFunction(%q, arg_types=[%s])", node.Label, srcFile, strings.Join(argTypes, ", "))
}

func (e *Emitter) emitCoreFunction(id string) {
	node := e.g.Nodes[id]
	var params []string
	var bodyID string
	for _, childID := range e.g.ChildrenOf(id, semgraph.EdgeContains) {
		if e.g.Nodes[childID].Kind == semgraph.KindParam {
			params = append(params, e.g.Nodes[childID].Label)
		}
		if e.g.Nodes[childID].Kind == semgraph.KindBody {
			bodyID = childID
		}
	}
	e.emit("def %s(%s):", node.Label, strings.Join(params, ", "))
	e.indent++
	if bodyID != "" {
		e.emitBody(bodyID)
	} else {
		e.emit("pass")
	}
	e.indent--
}

func (e *Emitter) emitWorker(id string) {
	node := e.g.Nodes[id]
	var args []string
	for _, argID := range e.g.ChildrenOf(id, semgraph.EdgeHasArg) {
		args = append(args, e.renderExpr(argID))
	}
	fnArgs := strings.Join(args, ", ")
	placement := node.Attrs["placement"]
	e.emit("%s = Worker(%s, [%s], placement=Tile(%s))", node.Label, node.Attrs["core_fn"], fnArgs, placement)
}

func (e *Emitter) emitRuntime(id string) {
	node := e.g.Nodes[id]
	e.emit("%s = Runtime()", node.Label)
	for _, childID := range e.g.ChildrenOf(id, semgraph.EdgeContains) {
		switch e.g.Nodes[childID].Kind {
		case semgraph.KindListExpr:
			e.emit("%s = %s", e.g.Nodes[childID].Label, e.renderExpr(childID))
		case "SequenceBlock":
			e.emitSequenceBlock(childID)
		default:
			e.emitStatement(childID)
		}
	}
}

// emitSequenceBlock reconstructs the `with rt.sequence(types…) as
// (…):` block. The binding tuple is the host parameter names Fill ops
// feed (suffixed "_in") followed by the ones Drain ops feed (suffixed
// "_out"), each named once in first-seen order — matching
// passthroughjit.py's `as (a_in, c_out)` and generalizing to a program
// with more than one Fill/Drain pair sharing a host parameter.
func (e *Emitter) emitSequenceBlock(id string) {
	var types []string
	var fillIDs, drainIDs []string
	for _, childID := range e.g.ChildrenOf(id, semgraph.EdgeContains) {
		node := e.g.Nodes[childID]
		switch {
		case node.Kind == semgraph.KindListExpr && node.Label == "types":
			for _, tID := range e.g.ChildrenOf(childID, semgraph.EdgeItem) {
				types = append(types, e.g.Nodes[tID].Label)
			}
		case node.Kind == semgraph.Kind("Fill"):
			fillIDs = append(fillIDs, childID)
		case node.Kind == semgraph.Kind("Drain"):
			drainIDs = append(drainIDs, childID)
		}
	}

	bound := map[string]string{}
	seen := map[string]bool{}
	var tuple []string
	for _, fID := range fillIDs {
		name := strings.ToLower(e.g.Nodes[fID].Attrs["host_param"]) + "_in"
		bound[fID] = name
		if !seen[name] {
			seen[name] = true
			tuple = append(tuple, name)
		}
	}
	for _, dID := range drainIDs {
		name := strings.ToLower(e.g.Nodes[dID].Attrs["host_param"]) + "_out"
		bound[dID] = name
		if !seen[name] {
			seen[name] = true
			tuple = append(tuple, name)
		}
	}

	e.emit("with rt.sequence(%s) as (%s):", strings.Join(types, ", "), strings.Join(tuple, ", "))
	e.indent++
	for _, childID := range e.g.ChildrenOf(id, semgraph.EdgeContains) {
		node := e.g.Nodes[childID]
		switch node.Kind {
		case "Start":
			if len(e.g.ChildrenOf(childID, semgraph.EdgeItem)) > 0 {
				e.emit("rt.start(*Workers)")
			}
		case semgraph.Kind("Fill"), semgraph.Kind("Drain"):
			e.emitFillDrain(childID, node, bound[childID])
		}
	}
	e.indent--
}

func (e *Emitter) emitFillDrain(id string, node *semgraph.Node, boundName string) {
	method, accessor := "fill", "prod"
	if node.Kind == semgraph.Kind("Drain") {
		method, accessor = "drain", "cons"
	}
	var tapArg string
	if ctorID := firstChild(e.g, id, semgraph.EdgeHasArg); ctorID != "" {
		tapArg = ", " + e.renderExpr(ctorID)
	}
	extra := ""
	if wait, ok := node.Attrs["wait"]; ok && wait == "true" {
		extra = ", wait=True"
	}
	e.emit("rt.%s(%s.%s(), %s%s%s)", method, node.Label, accessor, boundName, tapArg, extra)
}

func (e *Emitter) emitIf(id string) {
	node := e.g.Nodes[id]
	e.emit("if %s:", node.Label)
	e.indent++
	for _, childID := range e.g.ChildrenOf(id, semgraph.EdgeThen) {
		e.emitStatement(childID)
	}
	e.indent--
	if elseChildren := e.g.ChildrenOf(id, semgraph.EdgeElse); len(elseChildren) > 0 {
		e.emit("else:")
		e.indent++
		for _, childID := range elseChildren {
			e.emitStatement(childID)
		}
		e.indent--
	}
}

func (e *Emitter) emitFor(id string) {
	node := e.g.Nodes[id]
	e.emit("for %s in %s:", node.Attrs["var"], node.Label)
	e.indent++
	children := e.g.ChildrenOf(id, semgraph.EdgeContains)
	if len(children) == 0 {
		e.emit("pass")
	}
	for _, childID := range children {
		e.emitStatement(childID)
	}
	e.indent--
}

func (e *Emitter) emitEntryPoint(id string) {
	for _, ifID := range e.g.ChildrenOf(id, semgraph.EdgeContains) {
		node := e.g.Nodes[ifID]
		if node.Kind != semgraph.KindIf {
			continue
		}
		e.emit("if %s:", node.Label)
		e.indent++
		for _, callID := range e.g.ChildrenOf(ifID, semgraph.EdgeThen) {
			e.emit("%s()", e.g.Nodes[callID].Label)
		}
		e.indent--
	}
}

// renderObjectFifo reconstructs an ObjectFifo declaration: either a
// plain ObjectFifo(type, depth=.., name="..") constructor, or (for
// split/join/forward derivations) the reconstructed method chain.
func (e *Emitter) renderObjectFifo(id string) string {
	if chainID := firstOfKind(e.g, id, semgraph.EdgeHas, semgraph.KindMethodChain); chainID != "" {
		return e.renderExpr(chainID)
	}
	typeRefID := firstOfKind(e.g, id, semgraph.EdgeHas, semgraph.KindVarRef)
	if typeRefID == "" {
		typeRefID = firstOfKind(e.g, id, semgraph.EdgeHas, semgraph.KindTypeAbstraction)
	}
	typeRef := ""
	if typeRefID != "" {
		typeRef = e.g.Nodes[typeRefID].Label
	}
	depth, name := "1", e.g.Nodes[id].Label
	if kwID := firstChild(e.g, id, semgraph.EdgeHasKwarg); kwID != "" {
		args := e.g.ChildrenOf(kwID, semgraph.EdgeHasArg)
		if len(args) > 0 {
			depth = e.renderExpr(args[0])
		}
		if len(args) > 1 {
			name = e.g.Nodes[args[1]].Label
		}
	}
	return fmt.Sprintf("ObjectFifo(%s, depth=%s, name=%q)", typeRef, depth, name)
}

func firstOfKind(g *semgraph.Graph, parent string, label semgraph.Label, kind semgraph.Kind) string {
	for _, id := range g.ChildrenOf(parent, label) {
		if g.Nodes[id].Kind == kind {
			return id
		}
	}
	return ""
}

// renderExpr is the dual of semgraph's expression walker: it produces
// surface syntax from a graph fragment.
func (e *Emitter) renderExpr(id string) string {
	if id == "" {
		return ""
	}
	node := e.g.Nodes[id]
	switch node.Kind {
	case semgraph.KindConstExpr:
		return quoteIfNeeded(node.Label)
	case semgraph.KindVarRef, semgraph.KindVariable, semgraph.KindBinding, semgraph.KindDtypeToken:
		return node.Label
	case semgraph.KindBinaryOp, semgraph.KindComparisonOp:
		lhs := firstChild(e.g, id, semgraph.EdgeLhs)
		rhs := firstChild(e.g, id, semgraph.EdgeRhs)
		return fmt.Sprintf("(%s %s %s)", e.renderExpr(lhs), node.Label, e.renderExpr(rhs))
	case semgraph.KindUnaryOp:
		operand := firstChild(e.g, id, semgraph.EdgeOperand)
		return fmt.Sprintf("%s%s", node.Label, e.renderExpr(operand))
	case semgraph.KindIndexExpr:
		base := firstChild(e.g, id, semgraph.EdgeIndexBase)
		idx := firstChild(e.g, id, semgraph.EdgeIndexValue)
		return fmt.Sprintf("%s[%s]", e.renderExpr(base), e.renderExpr(idx))
	case semgraph.KindMethodCall, semgraph.KindMethodCallExpr:
		return e.renderCall(id, node.Label, true)
	case semgraph.KindFunctionCallExpr, semgraph.KindCall:
		return e.renderCall(id, node.Label, false)
	case semgraph.KindConstructorExpr, semgraph.KindConstructor:
		return e.renderCall(id, node.Label, false)
	case semgraph.KindMethodChain:
		return e.renderMethodChain(id)
	case semgraph.KindListExpr:
		var items []string
		for _, itemID := range e.g.ChildrenOf(id, semgraph.EdgeItem) {
			items = append(items, e.renderListItem(itemID))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case semgraph.KindTupleExpr:
		var items []string
		for _, itemID := range e.g.ChildrenOf(id, semgraph.EdgeItem) {
			items = append(items, e.renderListItem(itemID))
		}
		if len(items) == 1 {
			return "(" + items[0] + ",)"
		}
		return "(" + strings.Join(items, ", ") + ")"
	default:
		e.warn(diagnostics.CodegenRuleFailed, diagnostics.Warn, diagnostics.Fields{
			Node: id, Reason: "no rendering rule for node kind " + string(node.Kind),
		})
		return node.Label
	}
}

// renderListItem renders one List/Tuple element, dropping the outer
// parens a bare BinaryOp/ComparisonOp otherwise gets — per §4.7's
// reconstruction table, "parentheses dropped when the context is a
// list/tuple element".
func (e *Emitter) renderListItem(id string) string {
	node := e.g.Nodes[id]
	if node.Kind == semgraph.KindBinaryOp || node.Kind == semgraph.KindComparisonOp {
		lhs := firstChild(e.g, id, semgraph.EdgeLhs)
		rhs := firstChild(e.g, id, semgraph.EdgeRhs)
		return fmt.Sprintf("%s %s %s", e.renderExpr(lhs), node.Label, e.renderExpr(rhs))
	}
	return e.renderExpr(id)
}

func (e *Emitter) renderCall(id, name string, methodForm bool) string {
	var parts []string
	for _, argID := range e.g.ChildrenOf(id, semgraph.EdgeHasArg) {
		parts = append(parts, e.renderExpr(argID))
	}
	for _, kwID := range e.g.ChildrenOf(id, semgraph.EdgeHasKwarg) {
		parts = append(parts, e.renderKwarg(kwID))
	}
	call := fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
	if objID := firstChild(e.g, id, semgraph.EdgeObjectRef); objID != "" {
		return e.renderExpr(objID) + "." + call
	}
	return call
}

func (e *Emitter) renderKwarg(kwID string) string {
	node := e.g.Nodes[kwID]
	var items []string
	for _, itemID := range e.g.ChildrenOf(kwID, semgraph.EdgeItem) {
		items = append(items, e.renderExpr(itemID))
	}
	if len(items) > 0 {
		return fmt.Sprintf("%s=[%s]", node.Label, strings.Join(items, ", "))
	}
	if args := e.g.ChildrenOf(kwID, semgraph.EdgeHasArg); len(args) > 0 {
		return fmt.Sprintf("%s=%s", node.Label, e.renderExpr(args[0]))
	}
	return node.Label + "=None"
}

// renderMethodChain reconstructs base.method(kwargs…).method(kwargs…)
// by walking base, then appending each has_call in order.
func (e *Emitter) renderMethodChain(id string) string {
	base := firstChild(e.g, id, semgraph.EdgeBase)
	out := e.renderExpr(base)
	for _, callID := range e.g.ChildrenOf(id, semgraph.EdgeHasCall) {
		call := e.g.Nodes[callID]
		var parts []string
		for _, argID := range e.g.ChildrenOf(callID, semgraph.EdgeHasArg) {
			parts = append(parts, e.renderExpr(argID))
		}
		for _, kwID := range e.g.ChildrenOf(callID, semgraph.EdgeHasKwarg) {
			parts = append(parts, e.renderKwarg(kwID))
		}
		out += fmt.Sprintf(".%s(%s)", call.Label, strings.Join(parts, ", "))
	}
	return out
}

// quoteIfNeeded implements the ConstExpr quoting rule: numeric-looking
// and np.*-prefixed tokens stay bare, everything else is quoted.
func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	if strings.HasPrefix(s, "np.") {
		return s
	}
	return strconv.Quote(s)
}
