package vm

import (
	"fmt"
	"strings"
)

// Program is a compiled instruction sequence plus the names of its external
// inputs and outputs. Inputs are bound before a run and read by In
// instructions; Out instructions record the values the caller reads back.
type Program struct {
	Insts       []Instruction
	InputNames  []string
	OutputNames []string
}

// NumVars returns the number of register slots the program needs: one past
// the highest variable id referenced anywhere.
func (p *Program) NumVars() int {
	maxID := -1
	for i := range p.Insts {
		inst := &p.Insts[i]
		for _, id := range inst.Inputs {
			if id > maxID {
				maxID = id
			}
		}
		for _, id := range inst.Outputs {
			if id > maxID {
				maxID = id
			}
		}
		if inst.Op == OpFree && inst.Attr.Var > maxID {
			maxID = inst.Attr.Var
		}
	}
	return maxID + 1
}

// Validate checks the static well-formedness of the program: known opcodes,
// arity within the opcode's bounds, non-negative output ids, and in-bounds
// jump targets. Value-level checks (use of freed variables, shape errors)
// happen at run time.
func (p *Program) Validate() error {
	for i := range p.Insts {
		inst := &p.Insts[i]
		if !inst.Op.Valid() {
			return fmt.Errorf("instruction %d: unknown opcode %d", i, int(inst.Op))
		}
		ar := opcodeArity[inst.Op]
		nIn := inst.requiredInputs()
		if nIn < ar.minIn {
			return fmt.Errorf("instruction %d: %s needs at least %d inputs, got %d", i, inst.Op, ar.minIn, nIn)
		}
		if ar.maxIn >= 0 && len(inst.Inputs) > ar.maxIn {
			return fmt.Errorf("instruction %d: %s takes at most %d inputs, got %d", i, inst.Op, ar.maxIn, len(inst.Inputs))
		}
		if ar.out >= 0 && len(inst.Outputs) != ar.out {
			return fmt.Errorf("instruction %d: %s produces %d outputs, got %d", i, inst.Op, ar.out, len(inst.Outputs))
		}
		if ar.out < 0 && len(inst.Outputs) == 0 {
			return fmt.Errorf("instruction %d: %s needs at least one output", i, inst.Op)
		}
		for _, id := range inst.Outputs {
			if id < 0 {
				return fmt.Errorf("instruction %d: negative output id %d", i, id)
			}
		}
		switch inst.Op {
		case OpJmp, OpJmpTrue, OpJmpFalse:
			if inst.Attr.Jump < 0 || inst.Attr.Jump >= len(p.Insts) {
				return fmt.Errorf("instruction %d: jump target %d out of bounds [0, %d)", i, inst.Attr.Jump, len(p.Insts))
			}
		case OpFree:
			if inst.Attr.Var < 0 {
				return fmt.Errorf("instruction %d: free of negative variable id %d", i, inst.Attr.Var)
			}
		}
	}
	return nil
}

// Dump renders the program as a readable disassembly listing.
func (p *Program) Dump() string {
	var sb strings.Builder
	if len(p.InputNames) > 0 {
		fmt.Fprintf(&sb, "inputs: %s\n", strings.Join(p.InputNames, ", "))
	}
	if len(p.OutputNames) > 0 {
		fmt.Fprintf(&sb, "outputs: %s\n", strings.Join(p.OutputNames, ", "))
	}
	for i := range p.Insts {
		fmt.Fprintf(&sb, "%4d: %s\n", i, p.Insts[i].String())
	}
	return sb.String()
}
