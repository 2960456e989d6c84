// Package hlir is the High-Level IR: a typed in-memory program model with
// cross-referenced entities (tiles, FIFOs, split/join/forward operations,
// kernels, core functions, workers, and a runtime sequence). It is the
// canonical representation both the builder API and the GUI-XML loader
// converge on.
package hlir

import "github.com/aie-tools/aiec/internal/core/types"

// TileKind is the position of a Tile in the AIE array topology.
type TileKind string

const (
	TileShim    TileKind = "shim"
	TileMem     TileKind = "mem"
	TileCompute TileKind = "compute"
)

// Symbol is a named value in the program's symbol table: a constant, a
// tensor-type abstraction, or any other value a later stage needs to
// resolve by name.
type Symbol struct {
	Name       string
	Value      any
	TypeHint   *types.TypeRef
	IsConstant bool
}

// Tile is one coordinate in the AIE array.
type Tile struct {
	Name     string
	Kind     TileKind
	X, Y     int
	Metadata map[string]string
}

// ObjectFifo is a typed ring buffer connecting a producer tile to zero or
// more consumer tiles.
type ObjectFifo struct {
	Name         string
	ObjType      types.TypeRef
	Depth        int
	Producer     string // Tile name; may be an unresolved opaque name
	Consumers    []string
	Metadata     map[string]string
}

// SplitOperation fans a parent FIFO out into n child FIFOs by byte-offset
// partition.
type SplitOperation struct {
	Name        string
	Source      string // FIFO reference
	NumOutputs  int
	OutputTypes []types.TypeRef
	OutputNames []string
	Offsets     []types.DimExpr
	Placement   string // Tile reference
}

// JoinOperation mirrors SplitOperation on the destination side.
type JoinOperation struct {
	Name       string
	Dest       string // FIFO reference
	NumInputs  int
	InputTypes []types.TypeRef
	InputNames []string
	Offsets    []types.DimExpr
	Placement  string
}

// ForwardOperation is a pass-through consumer-to-producer conversion.
type ForwardOperation struct {
	Name      string
	Source    string // FIFO reference
	Placement string // optional Tile reference
}

// ExternalKernel is a compiled C/C++ function, opaque to the compiler
// beyond its declared symbol, source path, and argument types.
type ExternalKernel struct {
	Name       string
	Symbol     string
	SourceFile string
	ArgTypes   []types.TypeRef
	IncludeDirs []string
}

// StatementKind discriminates the handful of statement shapes a
// CoreFunction body may contain.
type StatementKind string

const (
	StmtAcquire      StatementKind = "acquire"
	StmtRelease      StatementKind = "release"
	StmtKernelCall   StatementKind = "kernel_call"
	StmtFor          StatementKind = "for"
	StmtAssign       StatementKind = "assign"
	StmtZeroInitLoop StatementKind = "zero_init_range"
)

// Statement is one nested statement in a CoreFunction body. Only the
// fields relevant to Kind are meaningful; For/ZeroInitLoop statements
// nest a Body of child statements.
type Statement struct {
	Kind       StatementKind
	Target     string   // acquire/release/assign target parameter
	Index      int      // fifo binding index, when relevant
	KernelName string   // kernel_call: referenced ExternalKernel/CoreFunction
	Args       []string // kernel_call arguments
	LoopVar    string    // for/zero_init_range: induction variable
	RangeExpr  string    // for/zero_init_range: expanded range expression
	AssignVar  string    // assign: LHS
	AssignExpr string    // assign: RHS
	Body       []Statement
}

// CoreFunction is the surface-language function body run on a compute
// tile: conventionally it acquires one element per input FIFO, calls an
// external kernel, and releases. An optional LoopCount wraps the whole
// body in a counted for loop.
type CoreFunction struct {
	Name       string
	Parameters []string
	Body       []Statement
	LoopCount  string // expression; empty means no wrapping loop
}

// FifoMode is the direction a Worker or Runtime op binds a FIFO under.
type FifoMode string

const (
	FifoProducer FifoMode = "producer"
	FifoConsumer FifoMode = "consumer"
)

// FifoBinding is one fn_args slot of a Worker: a FIFO reference bound as
// producer or consumer, with an optional positional index.
type FifoBinding struct {
	Fifo  string
	Mode  FifoMode
	Index *int
}

// WorkerArg is one ordered fn_args entry: either a FifoBinding or a plain
// symbol reference (e.g. a scalar parameter passed through to the core
// function).
type WorkerArg struct {
	Binding *FifoBinding
	SymbolRef string
}

// Worker pins a CoreFunction to a compute Tile with concrete fn_args.
type Worker struct {
	Name      string
	CoreFn    string // CoreFunction reference
	FnArgs    []WorkerArg
	Placement string // Tile reference
}

// TensorAccessPattern is a multi-dimensional DMA access descriptor.
type TensorAccessPattern struct {
	TensorDims []types.DimExpr
	Offset     types.DimExpr
	Sizes      []types.DimExpr
	Strides    []types.DimExpr
}

// TensorTiler2DSpec is a compact specification of a family of 2D TAPs
// over a tiled tensor.
type TensorTiler2DSpec struct {
	Name          string
	TensorDims    []types.DimExpr
	TileDims      []types.DimExpr
	TileCounts    []types.DimExpr
	PatternRepeat []types.DimExpr
	PruneStep     bool
	Index         int
}

// RuntimeOpKind discriminates Fill vs Drain runtime sequence operations.
type RuntimeOpKind string

const (
	RuntimeFillKind  RuntimeOpKind = "fill"
	RuntimeDrainKind RuntimeOpKind = "drain"
)

// RuntimeFillOrDrain is one host-side DMA operation issued against a shim
// tile inside the runtime sequencer context.
type RuntimeFillOrDrain struct {
	Kind      RuntimeOpKind
	Placement string // Tile reference
	Fifo      string // FIFO reference
	HostParam string
	Tap       *TensorAccessPattern
	Wait      bool // drain only
}

// VerifyPolicy names the supplemental host-side verification scaffold the
// code generator may emit in main(). "" means no verification scaffold.
type VerifyPolicy string

const (
	VerifyNone              VerifyPolicy = ""
	VerifyPassthroughEqual  VerifyPolicy = "passthrough-equal"
)

// RuntimeSequence is the host-side control-flow block that starts workers
// and issues Fill/Drain operations against shim tiles.
type RuntimeSequence struct {
	Name       string
	Inputs     []types.TypeRef
	Outputs    []types.TypeRef
	ParamNames []string
	Workers    []string // Worker references, append order
	Ops        []RuntimeFillOrDrain
	Verify     VerifyPolicy
}

// Device is the optional target-device selection emitted ahead of the JIT
// function call. "" means no device selection is emitted.
type Device string

const (
	DeviceNone    Device = ""
	DeviceNPU1    Device = "npu"
	DeviceNPU2    Device = "npu2"
	DeviceXCVC    Device = "xcvc1902"
)

// Program is the root owner of every HLIR entity.
type Program struct {
	Name            string
	Symbols         map[string]*Symbol
	Tiles           map[string]*Tile
	Fifos           map[string]*ObjectFifo
	ExternalKernels map[string]*ExternalKernel
	CoreFunctions   map[string]*CoreFunction
	Workers         map[string]*Worker
	TensorTilers    map[string]*TensorTiler2DSpec
	Runtime         *RuntimeSequence
	Device          Device
	Metadata        map[string]string
}

// NewProgram creates an empty Program ready for a ProgramBuilder.
func NewProgram(name string) *Program {
	return &Program{
		Name:            name,
		Symbols:         make(map[string]*Symbol),
		Tiles:           make(map[string]*Tile),
		Fifos:           make(map[string]*ObjectFifo),
		ExternalKernels: make(map[string]*ExternalKernel),
		CoreFunctions:   make(map[string]*CoreFunction),
		Workers:         make(map[string]*Worker),
		TensorTilers:    make(map[string]*TensorTiler2DSpec),
		Metadata:        make(map[string]string),
	}
}
