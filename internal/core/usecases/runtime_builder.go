package usecases

import (
	"github.com/aie-tools/aiec/internal/core/hlir"
	"github.com/aie-tools/aiec/internal/core/types"
)

// RuntimeBuilder is the fluent surface building the RuntimeSequence
// attached to the enclosing Program. Each add_* method appends to an
// ordered field; ordering is preserved end-to-end by every later stage.
type RuntimeBuilder struct {
	program *hlir.Program
}

// SetSignature sets the runtime's input/output type refs and host
// parameter names in one call.
func (r *RuntimeBuilder) SetSignature(inputs, outputs []types.TypeRef, params []string) *RuntimeBuilder {
	r.program.Runtime.Inputs = inputs
	r.program.Runtime.Outputs = outputs
	r.program.Runtime.ParamNames = params
	return r
}

// StartWorker appends a worker name to the start set, in append order.
func (r *RuntimeBuilder) StartWorker(name string) *RuntimeBuilder {
	r.program.Runtime.Workers = append(r.program.Runtime.Workers, name)
	return r
}

// Fill appends a RuntimeFill op, in append order.
func (r *RuntimeBuilder) Fill(placement, fifo, hostParam string, tap *hlir.TensorAccessPattern) *RuntimeBuilder {
	r.program.Runtime.Ops = append(r.program.Runtime.Ops, hlir.RuntimeFillOrDrain{
		Kind: hlir.RuntimeFillKind, Placement: placement, Fifo: fifo, HostParam: hostParam, Tap: tap,
	})
	return r
}

// Drain appends a RuntimeDrain op, in append order.
func (r *RuntimeBuilder) Drain(placement, fifo, hostParam string, tap *hlir.TensorAccessPattern, wait bool) *RuntimeBuilder {
	r.program.Runtime.Ops = append(r.program.Runtime.Ops, hlir.RuntimeFillOrDrain{
		Kind: hlir.RuntimeDrainKind, Placement: placement, Fifo: fifo, HostParam: hostParam, Tap: tap, Wait: wait,
	})
	return r
}

// SetVerify sets the supplemental verification policy.
func (r *RuntimeBuilder) SetVerify(policy hlir.VerifyPolicy) *RuntimeBuilder {
	r.program.Runtime.Verify = policy
	return r
}

// SetDevice sets the optional target-device selection.
func (r *RuntimeBuilder) SetDevice(device hlir.Device) *RuntimeBuilder {
	r.program.Device = device
	return r
}

// Build returns the accumulated RuntimeSequence; it is already attached
// to the Program in place, so this is primarily a chain terminator.
func (r *RuntimeBuilder) Build() *hlir.RuntimeSequence {
	return r.program.Runtime
}
