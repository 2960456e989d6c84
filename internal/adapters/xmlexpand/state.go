// Package xmlexpand turns a terse GUI-XML authoring tree into a
// self-contained Complete XML document: canonical FIFO names, fully
// rewritten shape/offset expressions, synthesized per-tensor type
// variations, and a fixed import bundle.
package xmlexpand

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/aie-tools/aiec/internal/adapters/xmlnode"
	"github.com/aie-tools/aiec/internal/diagnostics"
)

// workerGroupSize is the default per-column worker count (N in the
// worker_tokens algebra) used when a column's worker count cannot be
// inferred from the DataFlow tree.
const workerGroupSize = 2

// tilingFactors are the fixed tiling divisors the Fill/Drain TAP
// expansion applies when use_tap="true".
var tilingFactors = []int{4, 8}

// typeVariationDivisors are the fixed divisors used to synthesize
// per-tensor type variants from a generic type name.
var typeVariationDivisors = []int{1, 4, 8}

// State is the derived, mutable bookkeeping the expander accumulates
// while walking the GUI-XML tree.
type State struct {
	// Symbols maps a <Const name> to its raw text value.
	Symbols map[string]string

	// FuncParams maps a <Function name> to its ordered parameter names.
	FuncParams map[string][]string

	// TensorRefs maps a single uppercase letter (e.g. "A") to the JIT
	// function parameter name it was derived from (e.g. "inputA").
	TensorRefs map[string]string

	// FifoNames maps a simple authoring-time FIFO name to its expanded
	// canonical name.
	FifoNames map[string]string

	// TypeDivisors maps a TypeAbstraction name to the integer divisor k
	// in its shape expression "X / k" (1 if the shape carries none).
	TypeDivisors map[string]int

	// NeedsControlflowImport is set when any CoreFunction's loop_count
	// attribute causes a <For> wrapper to be synthesized.
	NeedsControlflowImport bool

	// Diagnostics receives WARN/ERROR events raised during expansion; a
	// nil sink silently drops them.
	Diagnostics diagnostics.Sink
}

func newState(sink diagnostics.Sink) *State {
	return &State{
		Symbols:      map[string]string{},
		FuncParams:   map[string][]string{},
		TensorRefs:   map[string]string{},
		FifoNames:    map[string]string{},
		TypeDivisors: map[string]int{},
		Diagnostics:  sink,
	}
}

// warn emits a WARN diagnostic if a sink is configured.
func (s *State) warn(code diagnostics.Code, fields diagnostics.Fields) {
	if s.Diagnostics == nil {
		return
	}
	s.Diagnostics.Emit(diagnostics.New(code, diagnostics.Warn, fields))
}

var divisionExpr = regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*/\s*(\d+)\s*$`)

// harvestSymbols populates State.Symbols from <Symbols><Const/></Symbols>.
func (s *State) harvestSymbols(module *xmlnode.Element) {
	symbols := module.Find("Symbols")
	if symbols == nil {
		return
	}
	for _, c := range symbols.FindAll("Const") {
		s.Symbols[c.AttrOr("name", "")] = c.Text
	}
	for _, ta := range symbols.FindAll("TypeAbstraction") {
		name := ta.AttrOr("name", "")
		nd := ta.Find("ndarray")
		if nd == nil {
			continue
		}
		shapeEl := nd.Find("shape")
		if shapeEl == nil {
			s.TypeDivisors[name] = 1
			continue
		}
		if m := divisionExpr.FindStringSubmatch(shapeEl.Text); m != nil {
			k, _ := strconv.Atoi(m[2])
			s.TypeDivisors[name] = k
		} else {
			s.TypeDivisors[name] = 1
		}
	}
}

// harvestFuncParams populates State.FuncParams from every <Function>'s
// <parameters> block, and State.TensorRefs from the JIT function's
// (decorator="iron.jit") parameters whose names end in an uppercase
// letter.
func (s *State) harvestFuncParams(module *xmlnode.Element) {
	for _, fn := range module.FindAll("Function") {
		name := fn.AttrOr("name", "")
		params := fn.Find("parameters")
		if params == nil {
			continue
		}
		var names []string
		for _, p := range params.FindAll("param") {
			names = append(names, p.AttrOr("name", ""))
		}
		s.FuncParams[name] = names

		if fn.AttrOr("decorator", "") == "iron.jit" {
			for _, pname := range names {
				if pname == "" {
					continue
				}
				last := rune(pname[len(pname)-1])
				if last >= 'A' && last <= 'Z' {
					s.TensorRefs[string(last)] = pname
				}
			}
		}
	}
}

// rewriteExpr implements the expression-rewriting rules: a bare symbol
// resolving to a known tensor reference becomes
// "(<tensor>.numel())"; "X / k" becomes the integer-division form;
// literal integers and anything unrecognized pass through verbatim.
func (s *State) rewriteExpr(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return expr
	}
	if _, err := strconv.ParseInt(expr, 10, 64); err == nil {
		return expr
	}
	if m := divisionExpr.FindStringSubmatch(expr); m != nil {
		name, k := m[1], m[2]
		if tensor, ok := s.tensorForSymbol(name); ok {
			return "((" + tensor + ".numel()) // " + k + ")"
		}
		return expr
	}
	if tensor, ok := s.tensorForSymbol(expr); ok {
		return "(" + tensor + ".numel())"
	}
	return expr
}

// shapeTree builds the structured Complete-XML shape representation for
// a GUI-XML dimension expression: a <tuple> wrapping one <expr> per
// dimension, matching the round-trip schema ("<shape><tuple><expr>
// <binary_op op="//">...</binary_op></expr></tuple></shape>") instead of
// rewriteExpr's flat pre-formatted text. The three branches mirror
// rewriteExpr's exactly — division of a resolved tensor symbol, a bare
// resolved tensor symbol, and the literal/unresolved passthrough — so a
// shape still canonicalizes the same value, but as graph-walkable nodes
// the generator can reconstruct as bare code rather than a quoted
// string literal.
func (s *State) shapeTree(expr string) *xmlnode.Element {
	expr = strings.TrimSpace(expr)
	tuple := xmlnode.New("tuple")
	ex := tuple.AddChild("expr")

	switch {
	case expr == "":
		ex.AddChild("raw").SetText(expr)
	case isIntLiteral(expr):
		ex.AddChild("const").SetText(expr)
	default:
		if m := divisionExpr.FindStringSubmatch(expr); m != nil {
			name, k := m[1], m[2]
			if tensor, ok := s.tensorForSymbol(name); ok {
				bop := ex.AddChild("binary_op", "op", "//")
				bop.AddChild("method", "ref", tensor, "name", "numel")
				bop.AddChild("const").SetText(k)
			} else {
				ex.AddChild("raw").SetText(expr)
			}
		} else if tensor, ok := s.tensorForSymbol(expr); ok {
			ex.AddChild("method", "ref", tensor, "name", "numel")
		} else {
			ex.AddChild("raw").SetText(expr)
		}
	}
	return tuple
}

func isIntLiteral(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// tensorForSymbol resolves a bare constant name to its tensor-reference
// host parameter: a name that is itself a letter in TensorRefs resolves
// directly; otherwise a declared symbol whose name ends in such a letter
// (the per-tensor convention N_A, N_B) resolves to that letter's tensor.
// The constant's value is not consulted.
func (s *State) tensorForSymbol(name string) (string, bool) {
	if t, ok := s.TensorRefs[name]; ok {
		return t, true
	}
	if _, isSymbol := s.Symbols[name]; isSymbol {
		for letter, param := range s.TensorRefs {
			if strings.HasSuffix(name, letter) {
				return param, true
			}
		}
	}
	return "", false
}

// splitOffset computes the expanded offset expression for the i-th
// (0-indexed) child FIFO of a split/join operation, per the "total
// divisor" rule: total = source_divisor * numChildren.
func (s *State) splitOffset(sourceType string, numChildren, i int) string {
	divisor := s.TypeDivisors[sourceType]
	if divisor == 0 {
		divisor = 1
	}
	total := divisor * numChildren
	tensor, ok := s.resolveTypeTensor(sourceType)
	if !ok {
		return strconv.Itoa(i)
	}
	return "(" + tensor + ".numel() // " + strconv.Itoa(total) + ") * " + strconv.Itoa(i)
}

// resolveTypeTensor finds the tensor-reference host parameter a given
// TensorAbstraction name was synthesized for, by looking for a trailing
// "_a"/"_b"/... suffix or a bare uppercase-letter suffix on the type
// name and mapping it through TensorRefs.
func (s *State) resolveTypeTensor(typeName string) (string, bool) {
	lower := strings.ToLower(typeName)
	for letter, param := range s.TensorRefs {
		if strings.HasSuffix(lower, "_"+strings.ToLower(letter)) || strings.HasSuffix(typeName, letter) {
			return param, true
		}
	}
	if len(s.TensorRefs) == 1 {
		for _, param := range s.TensorRefs {
			return param, true
		}
	}
	return "", false
}
