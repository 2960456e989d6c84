package hlir

import "fmt"

// ValidationIssue is one violation found while checking a built Program
// against its cross-entity invariants.
type ValidationIssue struct {
	Entity  string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Entity, v.Message)
}

// ValidationIssues collects every violation found by Program.Validate;
// build() fails with the full list rather than the first error.
type ValidationIssues []ValidationIssue

func (vs ValidationIssues) Error() string {
	if len(vs) == 0 {
		return "no validation issues"
	}
	msg := fmt.Sprintf("%d validation issue(s):\n", len(vs))
	for _, v := range vs {
		msg += "  - " + v.String() + "\n"
	}
	return msg
}

func (vs ValidationIssues) HasIssues() bool { return len(vs) > 0 }

// Validate checks every cross-entity invariant: FIFO references
// resolve, tile references resolve, split/join list lengths agree, and
// worker core-function references resolve.
func (p *Program) Validate() ValidationIssues {
	var issues ValidationIssues

	resolvesFifoLike := func(name string) bool {
		if _, ok := p.Fifos[name]; ok {
			return true
		}
		if sym, ok := p.Symbols[name]; ok {
			switch sym.Value.(type) {
			case *SplitOperation, *JoinOperation, *ForwardOperation:
				return true
			}
		}
		return false
	}

	for name, w := range p.Workers {
		if _, ok := p.CoreFunctions[w.CoreFn]; !ok {
			issues = append(issues, ValidationIssue{
				Entity:  "Worker " + name,
				Message: fmt.Sprintf("core_fn %q does not resolve to a declared CoreFunction", w.CoreFn),
			})
		}
		if w.Placement != "" {
			if _, ok := p.Tiles[w.Placement]; !ok {
				issues = append(issues, ValidationIssue{
					Entity:  "Worker " + name,
					Message: fmt.Sprintf("placement tile %q does not resolve", w.Placement),
				})
			}
		}
		for i, arg := range w.FnArgs {
			if arg.Binding == nil {
				continue
			}
			if !resolvesFifoLike(arg.Binding.Fifo) {
				issues = append(issues, ValidationIssue{
					Entity:  "Worker " + name,
					Message: fmt.Sprintf("fn_args[%d] references unresolved fifo %q", i, arg.Binding.Fifo),
				})
			}
		}
	}

	for name, f := range p.Fifos {
		if f.Producer != "" {
			if _, ok := p.Tiles[f.Producer]; !ok {
				issues = append(issues, ValidationIssue{
					Entity:  "ObjectFifo " + name,
					Message: fmt.Sprintf("producer tile %q does not resolve", f.Producer),
				})
			}
		}
		for _, c := range f.Consumers {
			if _, ok := p.Tiles[c]; !ok {
				issues = append(issues, ValidationIssue{
					Entity:  "ObjectFifo " + name,
					Message: fmt.Sprintf("consumer tile %q does not resolve", c),
				})
			}
		}
	}

	for _, sym := range p.Symbols {
		switch op := sym.Value.(type) {
		case *SplitOperation:
			if len(op.OutputNames) != op.NumOutputs || len(op.Offsets) != op.NumOutputs {
				issues = append(issues, ValidationIssue{
					Entity:  "SplitOperation " + op.Name,
					Message: fmt.Sprintf("len(output_names)=%d, num_outputs=%d, len(offsets)=%d must agree", len(op.OutputNames), op.NumOutputs, len(op.Offsets)),
				})
			}
			if len(op.OutputTypes) > 1 && len(op.OutputTypes) != op.NumOutputs {
				issues = append(issues, ValidationIssue{
					Entity:  "SplitOperation " + op.Name,
					Message: "output_type list length must equal num_outputs",
				})
			}
			if !resolvesFifoLike(op.Source) {
				issues = append(issues, ValidationIssue{
					Entity:  "SplitOperation " + op.Name,
					Message: fmt.Sprintf("source %q does not resolve", op.Source),
				})
			}
		case *JoinOperation:
			if len(op.InputNames) != op.NumInputs || len(op.Offsets) != op.NumInputs {
				issues = append(issues, ValidationIssue{
					Entity:  "JoinOperation " + op.Name,
					Message: fmt.Sprintf("len(input_names)=%d, num_inputs=%d, len(offsets)=%d must agree", len(op.InputNames), op.NumInputs, len(op.Offsets)),
				})
			}
			if !resolvesFifoLike(op.Dest) {
				issues = append(issues, ValidationIssue{
					Entity:  "JoinOperation " + op.Name,
					Message: fmt.Sprintf("dest %q does not resolve", op.Dest),
				})
			}
		case *ForwardOperation:
			if !resolvesFifoLike(op.Source) {
				issues = append(issues, ValidationIssue{
					Entity:  "ForwardOperation " + op.Name,
					Message: fmt.Sprintf("source %q does not resolve", op.Source),
				})
			}
		}
	}

	if p.Runtime != nil {
		for _, wname := range p.Runtime.Workers {
			if _, ok := p.Workers[wname]; !ok {
				issues = append(issues, ValidationIssue{
					Entity:  "RuntimeSequence " + p.Runtime.Name,
					Message: fmt.Sprintf("start worker %q does not resolve", wname),
				})
			}
		}
		for i, op := range p.Runtime.Ops {
			if op.Placement != "" {
				if _, ok := p.Tiles[op.Placement]; !ok {
					issues = append(issues, ValidationIssue{
						Entity:  "RuntimeSequence " + p.Runtime.Name,
						Message: fmt.Sprintf("op[%d] placement tile %q does not resolve", i, op.Placement),
					})
				}
			}
			if !resolvesFifoLike(op.Fifo) {
				issues = append(issues, ValidationIssue{
					Entity:  "RuntimeSequence " + p.Runtime.Name,
					Message: fmt.Sprintf("op[%d] fifo %q does not resolve", i, op.Fifo),
				})
			}
		}
	}

	return issues
}
