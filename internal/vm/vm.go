package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// VM is the interpreter: a dispatcher loop over a program's instructions,
// executing each opcode's kernel against an array engine.
type VM struct {
	engine tensor.Backend
}

// New creates a VM backed by the given array engine.
func New(engine tensor.Backend) *VM {
	return &VM{engine: engine}
}

// kernelFunc executes one instruction. inputs holds the resolved register
// values in instruction order, with nil for optional inputs encoded as
// variable id -1. It returns one value per output id, except for
// register-file side-effect ops (Out, Free, jumps) which return nothing.
type kernelFunc func(vm *VM, st *State, inst *Instruction, inputs []*tensor.RawTensor) ([]*tensor.RawTensor, error)

// Run executes the program. Each declared input name must be bound in
// inputs; the returned map holds every value recorded by an Out instruction.
//
// Dispatch: fetch Insts[pc], resolve inputs, invoke the kernel, store
// outputs into fresh slots, then increment pc. The increment is
// unconditional, so a control-flow kernel that wants to land on instruction
// target calls SetPC(target-1) and lets the increment finish the job. That
// off-by-one compensation lives only here and in the jump kernels;
// everything else reasons about absolute indices.
//
// Any error aborts the run immediately with no partial-result contract.
// Panics out of the array engine (shape mismatches and the like) are
// recovered into the returned error.
func (vm *VM) Run(p *Program, inputs map[string]*tensor.RawTensor) (outputs map[string]*tensor.RawTensor, err error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program: %w", err)
	}

	st := newState(p.NumVars(), inputs)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal error at pc=%d: %v", st.PC(), r)
			outputs = nil
		}
	}()

	resolved := make([]*tensor.RawTensor, 0, 8)
	for st.PC() >= 0 && st.PC() < len(p.Insts) {
		inst := &p.Insts[st.PC()]

		resolved = resolved[:0]
		for _, id := range inst.Inputs {
			if id < 0 {
				resolved = append(resolved, nil)
				continue
			}
			v, err := st.Get(id)
			if err != nil {
				return nil, fmt.Errorf("pc=%d %s: %w", st.PC(), inst.Op, err)
			}
			resolved = append(resolved, v)
		}

		results, err := kernels[inst.Op](vm, st, inst, resolved)
		if err != nil {
			return nil, fmt.Errorf("pc=%d %s: %w", st.PC(), inst.Op, err)
		}

		if len(results) != len(inst.Outputs) {
			return nil, fmt.Errorf("pc=%d %s: kernel produced %d values for %d outputs",
				st.PC(), inst.Op, len(results), len(inst.Outputs))
		}
		for i, id := range inst.Outputs {
			if err := st.Set(id, results[i]); err != nil {
				return nil, fmt.Errorf("pc=%d %s: %w", st.PC(), inst.Op, err)
			}
		}

		st.SetPC(st.PC() + 1)
	}

	return st.outputs, nil
}
