package usecases

import (
	"fmt"

	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/types"
)

// ProgramBuilder is the fluent construction surface over hlir.Program.
// It owns an hlir.Registry scoped to its own lifetime and resolves name
// references transparently, preserving forward references for
// validation at Build().
type ProgramBuilder struct {
	program  *hlir.Program
	registry *hlir.Registry
}

// NewProgramBuilder starts a new build for a Program named name.
func NewProgramBuilder(name string) *ProgramBuilder {
	return &ProgramBuilder{
		program:  hlir.NewProgram(name),
		registry: hlir.NewRegistry(),
	}
}

// providedID is the optional caller-specified id threading through every
// add_* method's three-way branch: absent (register new), present and
// known (update in place), present and unknown (register under that id).
type providedID = *string

// WithID wraps an id for passing as the optional providedID argument.
func WithID(id string) providedID { return &id }

func (b *ProgramBuilder) register(ns hlir.Namespace, name string, entity any, id providedID) hlir.BuilderResult {
	if id != nil {
		return b.registry.RegisterWithID(*id, ns, name, entity)
	}
	newID, result := b.registry.RegisterNew(ns, name, entity)
	_ = newID
	return result
}

// AddTensorType registers a named TensorType symbol.
func (b *ProgramBuilder) AddTensorType(name string, t types.TensorType, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	ref := types.RefTensor(t)
	sym := &hlir.Symbol{Name: name, Value: t, TypeHint: &ref, IsConstant: false}
	result := b.register(hlir.NsTensorType, name, sym, id)
	if result.Ok {
		b.removeOldName(oldName, name)
		b.program.Symbols[name] = sym
	}
	return result
}

// AddConstant registers a named constant symbol (Symbol.IsConstant=true).
func (b *ProgramBuilder) AddConstant(name string, value any, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	sym := &hlir.Symbol{Name: name, Value: value, IsConstant: true}
	result := b.register(hlir.NsConstant, name, sym, id)
	if result.Ok {
		b.removeOldName(oldName, name)
		b.program.Symbols[name] = sym
	}
	return result
}

// AddTile registers a Tile.
func (b *ProgramBuilder) AddTile(name string, kind hlir.TileKind, x, y int, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	t := &hlir.Tile{Name: name, Kind: kind, X: x, Y: y, Metadata: map[string]string{}}
	result := b.register(hlir.NsTile, name, t, id)
	if result.Ok {
		b.renameMapEntry(b.program.Tiles, name, oldName, t)
	}
	return result
}

// AddObjectFifo registers an ObjectFifo. producer/consumers are resolved
// against the Tiles namespace; unresolved names fall through as opaque
// strings, to be caught by Validate() later.
func (b *ProgramBuilder) AddObjectFifo(name string, objType types.TypeRef, depth int, producer string, consumers []string, id providedID) hlir.BuilderResult {
	if depth < 1 {
		return hlir.ResultError(hlir.InvalidParameter, "depth must be >= 1")
	}
	oldName := b.previousName(id)
	f := &hlir.ObjectFifo{Name: name, ObjType: objType, Depth: depth, Producer: producer, Consumers: consumers, Metadata: map[string]string{}}
	result := b.register(hlir.NsFifo, name, f, id)
	if result.Ok {
		b.renameMapEntry(b.program.Fifos, name, oldName, f)
	}
	return result
}

// AddSplit registers a SplitOperation, stored as a Symbol wrapping the
// operation.
func (b *ProgramBuilder) AddSplit(op hlir.SplitOperation, id providedID) hlir.BuilderResult {
	if len(op.OutputNames) != op.NumOutputs || len(op.Offsets) != op.NumOutputs {
		return hlir.ResultError(hlir.InvalidParameter, "output_names/offsets length must equal num_outputs")
	}
	oldName := b.previousName(id)
	opCopy := op
	sym := &hlir.Symbol{Name: op.Name, Value: &opCopy}
	result := b.register(hlir.NsFifoSplit, op.Name, sym, id)
	if result.Ok {
		b.removeOldName(oldName, op.Name)
		b.program.Symbols[op.Name] = sym
	}
	return result
}

// AddJoin registers a JoinOperation.
func (b *ProgramBuilder) AddJoin(op hlir.JoinOperation, id providedID) hlir.BuilderResult {
	if len(op.InputNames) != op.NumInputs || len(op.Offsets) != op.NumInputs {
		return hlir.ResultError(hlir.InvalidParameter, "input_names/offsets length must equal num_inputs")
	}
	oldName := b.previousName(id)
	opCopy := op
	sym := &hlir.Symbol{Name: op.Name, Value: &opCopy}
	result := b.register(hlir.NsFifoJoin, op.Name, sym, id)
	if result.Ok {
		b.removeOldName(oldName, op.Name)
		b.program.Symbols[op.Name] = sym
	}
	return result
}

// AddForward registers a ForwardOperation.
func (b *ProgramBuilder) AddForward(op hlir.ForwardOperation, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	opCopy := op
	sym := &hlir.Symbol{Name: op.Name, Value: &opCopy}
	result := b.register(hlir.NsFifoForward, op.Name, sym, id)
	if result.Ok {
		b.removeOldName(oldName, op.Name)
		b.program.Symbols[op.Name] = sym
	}
	return result
}

// AddExternalKernel registers an ExternalKernel declaration.
func (b *ProgramBuilder) AddExternalKernel(k hlir.ExternalKernel, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	kCopy := k
	result := b.register(hlir.NsExternalKernel, k.Name, &kCopy, id)
	if result.Ok {
		b.renameMapEntry(b.program.ExternalKernels, k.Name, oldName, &kCopy)
	}
	return result
}

// AddCoreFunction registers a CoreFunction.
func (b *ProgramBuilder) AddCoreFunction(fn hlir.CoreFunction, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	fnCopy := fn
	result := b.register(hlir.NsCoreFunction, fn.Name, &fnCopy, id)
	if result.Ok {
		b.renameMapEntry(b.program.CoreFunctions, fn.Name, oldName, &fnCopy)
	}
	return result
}

// AddWorker registers a Worker.
func (b *ProgramBuilder) AddWorker(w hlir.Worker, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	wCopy := w
	result := b.register(hlir.NsWorker, w.Name, &wCopy, id)
	if result.Ok {
		b.renameMapEntry(b.program.Workers, w.Name, oldName, &wCopy)
	}
	return result
}

// AddTensorTiler2D registers a TensorTiler2DSpec.
func (b *ProgramBuilder) AddTensorTiler2D(spec hlir.TensorTiler2DSpec, id providedID) hlir.BuilderResult {
	oldName := b.previousName(id)
	specCopy := spec
	result := b.register(hlir.NsTensorTiler, spec.Name, &specCopy, id)
	if result.Ok {
		b.renameMapEntry(b.program.TensorTilers, spec.Name, oldName, &specCopy)
	}
	return result
}

// previousName returns the name currently bound to id in the registry,
// before the pending rename takes effect; "" if id is nil or unknown.
func (b *ProgramBuilder) previousName(id providedID) string {
	if id == nil {
		return ""
	}
	_, name, _, ok := b.registry.LookupByID(*id)
	if !ok {
		return ""
	}
	return name
}

// renameMapEntry applies the "remove old name, insert new" update-in-place
// semantics to one of Program's name-keyed maps: when oldName differs from
// the entity's current name, the stale binding is dropped first.
func (b *ProgramBuilder) renameMapEntry(m any, name, oldName string, value any) {
	if oldName != "" && oldName != name {
		b.dropFromMap(m, oldName)
	}
	switch mm := m.(type) {
	case map[string]*hlir.Tile:
		mm[name] = value.(*hlir.Tile)
	case map[string]*hlir.ObjectFifo:
		mm[name] = value.(*hlir.ObjectFifo)
	case map[string]*hlir.ExternalKernel:
		mm[name] = value.(*hlir.ExternalKernel)
	case map[string]*hlir.CoreFunction:
		mm[name] = value.(*hlir.CoreFunction)
	case map[string]*hlir.Worker:
		mm[name] = value.(*hlir.Worker)
	case map[string]*hlir.TensorTiler2DSpec:
		mm[name] = value.(*hlir.TensorTiler2DSpec)
	default:
		panic(fmt.Sprintf("renameMapEntry: unsupported map type %T", m))
	}
}

func (b *ProgramBuilder) dropFromMap(m any, name string) {
	switch mm := m.(type) {
	case map[string]*hlir.Tile:
		delete(mm, name)
	case map[string]*hlir.ObjectFifo:
		delete(mm, name)
	case map[string]*hlir.ExternalKernel:
		delete(mm, name)
	case map[string]*hlir.CoreFunction:
		delete(mm, name)
	case map[string]*hlir.Worker:
		delete(mm, name)
	case map[string]*hlir.TensorTiler2DSpec:
		delete(mm, name)
	}
}

// removeOldName drops the previous name binding from Program.Symbols when
// an update-in-place rename occurs (tensor types, constants, and the
// split/join/forward operations all share the Symbols map).
func (b *ProgramBuilder) removeOldName(oldName, newName string) {
	if oldName != "" && oldName != newName {
		delete(b.program.Symbols, oldName)
	}
}

// dependents implements the per-namespace dependency analysis table,
// used by Remove to block unsafe removals.
func (b *ProgramBuilder) dependents(ns hlir.Namespace, name string) []string {
	var deps []string
	switch ns {
	case hlir.NsTensorType:
		for fname, f := range b.program.Fifos {
			if f.ObjType.Name == name {
				deps = append(deps, "FIFO '"+fname+"'")
			}
		}
	case hlir.NsTile:
		for wname, w := range b.program.Workers {
			if w.Placement == name {
				deps = append(deps, "Worker '"+wname+"'")
			}
		}
	case hlir.NsFifo:
		for wname, w := range b.program.Workers {
			for _, arg := range w.FnArgs {
				if arg.Binding != nil && arg.Binding.Fifo == name {
					deps = append(deps, "Worker '"+wname+"'")
					break
				}
			}
		}
	case hlir.NsExternalKernel:
		for wname, w := range b.program.Workers {
			if fn, ok := b.program.CoreFunctions[w.CoreFn]; ok {
				if len(fn.Parameters) > 0 && fn.Parameters[0] == name {
					deps = append(deps, "Worker '"+wname+"'")
				}
			}
		}
	case hlir.NsCoreFunction:
		for wname, w := range b.program.Workers {
			if w.CoreFn == name {
				deps = append(deps, "Worker '"+wname+"'")
			}
		}
	case hlir.NsWorker:
		if b.program.Runtime != nil {
			for _, wname := range b.program.Runtime.Workers {
				if wname == name {
					deps = append(deps, "RuntimeSequence '"+b.program.Runtime.Name+"'")
					break
				}
			}
		}
	}
	return deps
}

// Remove deletes the entity registered under id after checking that no
// other entity depends on it. On success the entity is also dropped from
// the Program's name-keyed maps.
func (b *ProgramBuilder) Remove(id string) hlir.BuilderResult {
	ns, name, entity, ok := b.registry.LookupByID(id)
	if !ok {
		return hlir.ResultNotFound("entity with id " + id)
	}
	if deps := b.dependents(ns, name); len(deps) > 0 {
		return hlir.ResultHasDependencies(id, string(ns), deps)
	}
	b.registry.Remove(id)
	b.dropFromProgram(ns, name)
	return hlir.ResultOK(id, entity)
}

func (b *ProgramBuilder) dropFromProgram(ns hlir.Namespace, name string) {
	switch ns {
	case hlir.NsTensorType, hlir.NsConstant:
		delete(b.program.Symbols, name)
	case hlir.NsTile:
		delete(b.program.Tiles, name)
	case hlir.NsFifo:
		delete(b.program.Fifos, name)
	case hlir.NsExternalKernel:
		delete(b.program.ExternalKernels, name)
	case hlir.NsCoreFunction:
		delete(b.program.CoreFunctions, name)
	case hlir.NsWorker:
		delete(b.program.Workers, name)
	case hlir.NsFifoSplit, hlir.NsFifoJoin, hlir.NsFifoForward:
		delete(b.program.Symbols, name)
	case hlir.NsTensorTiler:
		delete(b.program.TensorTilers, name)
	}
}

// LookupByID exposes the registry lookup for callers (GUI round-trip,
// interactive editors) that hold an id rather than a name.
func (b *ProgramBuilder) LookupByID(id string) (hlir.Namespace, string, any, bool) {
	return b.registry.LookupByID(id)
}

// LookupByName exposes the registry's (namespace, name) -> id lookup.
func (b *ProgramBuilder) LookupByName(ns hlir.Namespace, name string) (string, bool) {
	return b.registry.LookupByName(ns, name)
}

// Runtime returns a RuntimeBuilder attached to this ProgramBuilder's
// Program, creating the RuntimeSequence lazily on first use.
func (b *ProgramBuilder) Runtime(name string) *RuntimeBuilder {
	if b.program.Runtime == nil {
		b.program.Runtime = &hlir.RuntimeSequence{Name: name}
	}
	return &RuntimeBuilder{program: b.program}
}

// Build finalizes the Program, running Validate() and aggregating every
// violation into a single error rather than failing on the first one.
func (b *ProgramBuilder) Build() (*hlir.Program, error) {
	if issues := b.program.Validate(); issues.HasIssues() {
		return nil, issues
	}
	return b.program, nil
}

// Program exposes the in-progress Program for read-only inspection
// (serializers, interactive editors) without requiring Build() first.
func (b *ProgramBuilder) Program() *hlir.Program {
	return b.program
}
