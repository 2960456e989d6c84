package types

import (
	"strconv"
	"strings"
)

// DimExpr is a single tensor dimension: either a concrete non-negative
// integer or a free-form textual expression such as "N" or "N / 16".
// Exactly one of the two is meaningful, selected by Symbolic.
type DimExpr struct {
	Int      int64
	Text     string
	Symbolic bool
}

// IntDim builds a concrete dimension expression.
func IntDim(n int64) DimExpr { return DimExpr{Int: n} }

// TextDim builds a symbolic (textual) dimension expression.
func TextDim(expr string) DimExpr { return DimExpr{Text: expr, Symbolic: true} }

// String renders the dimension the way it was authored.
func (d DimExpr) String() string {
	if d.Symbolic {
		return d.Text
	}
	return strconv.FormatInt(d.Int, 10)
}

// ParseDimExpr classifies a raw XML/builder token into a DimExpr: a bare
// decimal integer is concrete, anything else is carried verbatim as text.
func ParseDimExpr(raw string) DimExpr {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntDim(n)
	}
	return TextDim(raw)
}

// TensorType is an ordered sequence of dimension expressions plus a
// ScalarKind and an optional layout tag (e.g. "row-major").
type TensorType struct {
	Dims   []DimExpr
	Kind   ScalarKind
	Layout string
}

// NewTensorType builds a TensorType from raw dimension tokens.
func NewTensorType(kind ScalarKind, dims ...string) TensorType {
	t := TensorType{Kind: kind}
	for _, d := range dims {
		t.Dims = append(t.Dims, ParseDimExpr(d))
	}
	return t
}

// IsSymbolic reports whether any dimension is a free-form expression
// rather than a concrete integer.
func (t TensorType) IsSymbolic() bool {
	for _, d := range t.Dims {
		if d.Symbolic {
			return true
		}
	}
	return false
}

// ShapeStrings returns each dimension rendered as authored text, in order.
func (t TensorType) ShapeStrings() []string {
	out := make([]string, len(t.Dims))
	for i, d := range t.Dims {
		out[i] = d.String()
	}
	return out
}

// TypeRef is either an embedded TensorType, a bare ScalarKind, or a name
// resolved against the program's symbol table. Resolution happens lazily:
// a TypeRef carrying only Name is valid until something needs its shape.
type TypeRef struct {
	Tensor *TensorType
	Scalar ScalarKind
	Name   string
}

// RefTensor wraps a TensorType as a TypeRef.
func RefTensor(t TensorType) TypeRef { return TypeRef{Tensor: &t} }

// RefScalar wraps a bare ScalarKind as a TypeRef.
func RefScalar(k ScalarKind) TypeRef { return TypeRef{Scalar: k} }

// RefName builds a TypeRef that resolves against the symbol table by name.
func RefName(name string) TypeRef { return TypeRef{Name: name} }

// IsNamed reports whether this TypeRef defers to a symbol-table lookup.
func (r TypeRef) IsNamed() bool { return r.Name != "" && r.Tensor == nil && r.Scalar == "" }

// String renders the TypeRef's authoring-time identity: the name if named,
// otherwise the scalar kind, otherwise the tensor's shape/dtype pair.
func (r TypeRef) String() string {
	switch {
	case r.Name != "":
		return r.Name
	case r.Scalar != "":
		return string(r.Scalar)
	case r.Tensor != nil:
		return strings.Join(r.Tensor.ShapeStrings(), ",") + ":" + string(r.Tensor.Kind)
	default:
		return ""
	}
}
