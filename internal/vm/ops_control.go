package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// opIn binds the external input named Attr.Name to the output variable.
// Inputs are shared; reading one is never destructive.
func opIn(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	v, err := st.Input(inst.Attr.Name)
	if err != nil {
		return nil, err
	}
	return one(v)
}

// opOut records the input value as the program output named Attr.Name.
func opOut(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	st.Output(inst.Attr.Name, in[0])
	return nil, nil
}

// opFree releases the register slot for Attr.Var. Double frees and frees of
// unproduced variables are fatal.
func opFree(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if err := st.FreeVar(inst.Attr.Var); err != nil {
		return nil, err
	}
	return nil, nil
}

// Jump kernels set pc to target-1; the dispatcher's unconditional increment
// then lands on the target. See VM.Run.

func opJmp(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	st.SetPC(inst.Attr.Jump - 1)
	return nil, nil
}

func jumpCondition(v *tensor.RawTensor) (bool, error) {
	if v.NumElements() != 1 {
		return false, fmt.Errorf("condition must be a single element, got shape %v", v.Shape())
	}
	return v.ScalarBool(), nil
}

func opJmpTrue(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	cond, err := jumpCondition(in[0])
	if err != nil {
		return nil, err
	}
	if cond {
		st.SetPC(inst.Attr.Jump - 1)
	}
	return nil, nil
}

func opJmpFalse(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	cond, err := jumpCondition(in[0])
	if err != nil {
		return nil, err
	}
	if !cond {
		st.SetPC(inst.Attr.Jump - 1)
	}
	return nil, nil
}
