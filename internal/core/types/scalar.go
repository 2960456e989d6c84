// Package types defines the scalar and tensor type descriptors used by the
// HLIR entities, the program builders, and the GUI-XML loader and
// serializer. The XML expander and the code generator work on XML text
// and do not import this package.
package types

import "fmt"

// ScalarKind is the closed set of element types a TensorType may carry.
type ScalarKind string

const (
	Int8    ScalarKind = "int8"
	Int16   ScalarKind = "int16"
	Int32   ScalarKind = "int32"
	Int64   ScalarKind = "int64"
	Uint8   ScalarKind = "uint8"
	Uint16  ScalarKind = "uint16"
	Uint32  ScalarKind = "uint32"
	Uint64  ScalarKind = "uint64"
	Float16 ScalarKind = "float16"
	Float32 ScalarKind = "float32"
	Float64 ScalarKind = "float64"
	Bfloat16 ScalarKind = "bfloat16"
)

var validScalarKinds = map[ScalarKind]bool{
	Int8: true, Int16: true, Int32: true, Int64: true,
	Uint8: true, Uint16: true, Uint32: true, Uint64: true,
	Float16: true, Float32: true, Float64: true, Bfloat16: true,
}

// ParseScalarKind validates a textual scalar kind against the closed set.
func ParseScalarKind(s string) (ScalarKind, error) {
	k := ScalarKind(s)
	if !validScalarKinds[k] {
		return "", fmt.Errorf("unknown scalar kind %q", s)
	}
	return k, nil
}

// NumpyDtype returns the numpy dtype token the code generator emits for
// this scalar kind (e.g. "np.int32", "ml_dtypes.bfloat16").
func (k ScalarKind) NumpyDtype() string {
	if k == Bfloat16 {
		return "ml_dtypes.bfloat16"
	}
	return "np." + string(k)
}
