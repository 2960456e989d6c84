package semgraph

import (
	"strconv"
	"strings"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
)

// walkExpr maps one Complete-XML expression subtree to a graph fragment
// and returns the id of the node representing it. This is the dual of
// the code generator's expression reconstruction table.
func (b *Builder) walkExpr(el *xmlnode.Element) string {
	switch el.Tag {
	case "method_chain":
		return b.walkMethodChain(el)
	case "Constructor":
		return b.walkConstructor(el)
	case "Call":
		return b.walkCall(el)
	case "var":
		return b.walkVarRef(el.AttrOr("name", el.Text))
	case "BinaryOp", "binary_op":
		return b.walkBinaryOp(el)
	case "ComparisonOp":
		return b.walkComparisonOp(el)
	case "UnaryOp":
		return b.walkUnaryOp(el)
	case "IndexExpr", "index":
		return b.walkIndexExpr(el)
	case "List", "item":
		return b.walkList(el)
	case "tuple":
		return b.walkTuple(el)
	case "expr":
		if len(el.Children) > 0 {
			return b.walkExpr(el.Children[0])
		}
		return b.g.AddNode(KindVarRef, el.Text)
	case "method":
		return b.walkMethod(el)
	case "const":
		return b.g.AddNode(KindConstExpr, el.Text)
	case "raw":
		return b.g.AddNode(KindVarRef, el.Text)
	default:
		return b.walkLeaf(el)
	}
}

// walkLeaf handles plain text-carrying elements: numpy dtype tokens,
// string literals, and bare constant/variable references.
func (b *Builder) walkLeaf(el *xmlnode.Element) string {
	text := strings.TrimSpace(el.Text)
	if text == "" {
		text = el.AttrOr("value", "")
	}
	if strings.HasPrefix(text, "np.") {
		return b.g.AddNode(KindDtypeToken, text)
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return b.g.AddNode(KindConstExpr, text)
	}
	if id, ok := b.scope.lookup(text); ok {
		return id
	}
	return b.walkVarRef(text)
}

func (b *Builder) walkVarRef(name string) string {
	if id, ok := b.scope.lookup(name); ok {
		return id
	}
	id := b.g.AddNode(KindVarRef, name)
	b.scope.declare(name, id)
	return id
}

// walkMethodChain creates a MethodChain node: one base edge and an
// ordered has_call edge per <call> child.
func (b *Builder) walkMethodChain(el *xmlnode.Element) string {
	chainID := b.g.AddNode(KindMethodChain, "")
	if base := el.Find("base"); base != nil {
		baseID := b.walkVarRef(strings.TrimSpace(base.Text))
		b.g.Link(chainID, baseID, EdgeBase)
	}
	for _, call := range el.FindAll("call") {
		callID := b.g.AddNode(KindMethodCall, call.AttrOr("method", ""))
		b.walkKwargsAndArgs(call, callID)
		b.g.Link(chainID, callID, EdgeHasCall)
	}
	return chainID
}

// walkKwargsAndArgs attaches has_kwarg/has_arg edges from parent to
// every <kwarg>/<arg> child of el, recursively walking each value.
func (b *Builder) walkKwargsAndArgs(el *xmlnode.Element, parent string) {
	for _, kw := range el.FindAll("kwarg") {
		kwID := b.g.AddNode(KindKwarg, kw.AttrOr("name", ""))
		b.walkKwargValue(kw, kwID)
		b.g.Link(parent, kwID, EdgeHasKwarg)
	}
	for _, a := range el.FindAll("arg") {
		argID := b.walkLeaf(a)
		b.g.Link(parent, argID, EdgeHasArg)
	}
}

func (b *Builder) walkKwargValue(kw *xmlnode.Element, kwID string) {
	items := kw.FindAll("item")
	if len(items) > 0 {
		for _, it := range items {
			itemID := b.walkLeaf(it)
			b.g.Link(kwID, itemID, EdgeItem)
		}
		return
	}
	if len(kw.Children) == 0 {
		valID := b.g.AddNode(KindConstExpr, kw.Text)
		b.g.Link(kwID, valID, EdgeHasArg)
		return
	}
	for _, c := range kw.Children {
		childID := b.walkExpr(c)
		b.g.Link(kwID, childID, EdgeHasArg)
	}
}

// walkConstructor builds a ConstructorExpr node from a <Constructor
// type="...">, its named sub-blocks (tensor_dims, offset, sizes,
// strides, or generic children) becoming has_arg edges.
func (b *Builder) walkConstructor(el *xmlnode.Element) string {
	id := b.g.AddNode(KindConstructorExpr, el.AttrOr("type", ""))
	for _, c := range el.Children {
		switch {
		case len(c.FindAll("dim")) > 0:
			listID := b.g.AddNode(KindListExpr, c.Tag)
			for _, d := range c.FindAll("dim") {
				dimID := b.walkLeaf(d)
				b.g.Link(listID, dimID, EdgeItem)
			}
			b.g.Link(id, listID, EdgeHasArg)
		default:
			childID := b.walkLeaf(c)
			b.g.Link(id, childID, EdgeHasArg)
		}
	}
	return id
}

// walkCall builds a FunctionCallExpr/Call node, resolving calls/has_arg/
// has_kwarg edges.
func (b *Builder) walkCall(el *xmlnode.Element) string {
	id := b.g.AddNode(KindFunctionCallExpr, el.AttrOr("function", el.AttrOr("name", "")))
	b.walkKwargsAndArgs(el, id)
	return id
}

// walkBinaryOp handles both operand shapes the spec names: explicit
// <lhs>/<rhs> wrappers, falling back to the first two positional
// children (e.g. a <binary_op op="//"><method .../><const>4</const>
// </binary_op> produced by the shape rewriter).
func (b *Builder) walkBinaryOp(el *xmlnode.Element) string {
	id := b.g.AddNode(KindBinaryOp, el.AttrOr("op", ""))
	lhs, rhs := el.Find("lhs"), el.Find("rhs")
	if lhs != nil || rhs != nil {
		if lhs != nil && len(lhs.Children) > 0 {
			b.g.Link(id, b.walkExpr(lhs.Children[0]), EdgeLhs)
		}
		if rhs != nil && len(rhs.Children) > 0 {
			b.g.Link(id, b.walkExpr(rhs.Children[0]), EdgeRhs)
		}
		return id
	}
	if len(el.Children) > 0 {
		b.g.Link(id, b.walkExpr(el.Children[0]), EdgeLhs)
	}
	if len(el.Children) > 1 {
		b.g.Link(id, b.walkExpr(el.Children[1]), EdgeRhs)
	}
	return id
}

// walkMethod builds a MethodCallExpr node for a <method ref name/> leaf
// — a bare, argument-less attribute access such as the "inputA.numel()"
// a shape's division expression resolves to.
func (b *Builder) walkMethod(el *xmlnode.Element) string {
	id := b.g.AddNode(KindMethodCallExpr, el.AttrOr("name", ""))
	refID := b.walkVarRef(el.AttrOr("ref", ""))
	b.g.Link(id, refID, EdgeObjectRef)
	return id
}

// walkTuple builds a TupleExpr node from a <tuple> element's <expr>
// children, one item edge per dimension — the structured form a
// TypeAbstraction's <shape> carries after expansion.
func (b *Builder) walkTuple(el *xmlnode.Element) string {
	id := b.g.AddNode(KindTupleExpr, "")
	for _, ex := range el.FindAll("expr") {
		var itemID string
		if len(ex.Children) > 0 {
			itemID = b.walkExpr(ex.Children[0])
		} else {
			itemID = b.g.AddNode(KindVarRef, ex.Text)
		}
		b.g.Link(id, itemID, EdgeItem)
	}
	return id
}

// walkShapeText is the fallback for a <shape> that still carries flat
// text rather than a structured <tuple>/<expr> tree — a Complete XML
// document authored, or generated before shape expressions were parsed
// into graph nodes, by hand. Numeric text becomes a bare ConstExpr;
// anything else is carried as a bare code fragment rather than a quoted
// string literal, since a dimension expression is always a symbol
// reference or an arithmetic expression over one, never string data.
func (b *Builder) walkShapeText(text string) string {
	text = strings.TrimSpace(text)
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return b.g.AddNode(KindConstExpr, text)
	}
	return b.g.AddNode(KindVarRef, text)
}

func (b *Builder) walkComparisonOp(el *xmlnode.Element) string {
	id := b.g.AddNode(KindComparisonOp, el.AttrOr("op", ""))
	if lhs := el.Find("lhs"); lhs != nil && len(lhs.Children) > 0 {
		b.g.Link(id, b.walkExpr(lhs.Children[0]), EdgeLhs)
	}
	if rhs := el.Find("rhs"); rhs != nil && len(rhs.Children) > 0 {
		b.g.Link(id, b.walkExpr(rhs.Children[0]), EdgeRhs)
	}
	return id
}

func (b *Builder) walkUnaryOp(el *xmlnode.Element) string {
	id := b.g.AddNode(KindUnaryOp, el.AttrOr("op", ""))
	if len(el.Children) > 0 {
		b.g.Link(id, b.walkExpr(el.Children[0]), EdgeOperand)
	}
	return id
}

func (b *Builder) walkIndexExpr(el *xmlnode.Element) string {
	id := b.g.AddNode(KindIndexExpr, "")
	if base := el.Find("base"); base != nil && len(base.Children) > 0 {
		b.g.Link(id, b.walkExpr(base.Children[0]), EdgeIndexBase)
	}
	if idx := el.Find("index_value"); idx != nil && len(idx.Children) > 0 {
		b.g.Link(id, b.walkExpr(idx.Children[0]), EdgeIndexValue)
	}
	return id
}

func (b *Builder) walkList(el *xmlnode.Element) string {
	id := b.g.AddNode(KindListExpr, el.AttrOr("name", ""))
	for _, c := range el.FindAll("item") {
		b.g.Link(id, b.walkLeaf(c), EdgeItem)
	}
	return id
}
