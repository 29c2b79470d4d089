package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// opArgMax finds the index of the maximum along Attr.Axis; Keepdims retains
// the axis as size 1.
func opArgMax(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine
	x := in[0]
	axis, err := normalizeAxis(inst.Attr.Axis, len(x.Shape()))
	if err != nil {
		return nil, fmt.Errorf("argmax: %w", err)
	}
	r := eng.ArgMax(x, axis)
	if inst.Attr.Keepdims {
		kept := make(tensor.Shape, 0, len(x.Shape()))
		kept = append(kept, x.Shape()[:axis]...)
		kept = append(kept, 1)
		kept = append(kept, x.Shape()[axis+1:]...)
		r = eng.Reshape(r, kept)
	}
	return one(r)
}

// opHardmax one-hot encodes the maximum. Dimensions before the axis flatten
// into rows, dimensions from the axis on flatten into columns; each row's
// argmax picks a row of the identity matrix, and the gathered rows reshape
// back to the input shape.
func opHardmax(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine
	x := in[0]
	axis, err := normalizeAxis(inst.Attr.Axis, len(x.Shape()))
	if err != nil {
		return nil, fmt.Errorf("hardmax: %w", err)
	}

	rows, cols := 1, 1
	for _, d := range x.Shape()[:axis] {
		rows *= d
	}
	for _, d := range x.Shape()[axis:] {
		cols *= d
	}

	flat := eng.Reshape(x, tensor.Shape{rows, cols})
	best := eng.ArgMax(flat, 1)
	onehot := eng.Take(tensor.Eye(cols, x.DType(), x.Device()), best, 0)
	return one(eng.Reshape(onehot, x.Shape()))
}

func opReduceMax(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.ReduceMax(in[0], inst.Attr.Axes, inst.Attr.Keepdims))
}

func opReduceSum(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.ReduceSum(in[0], inst.Attr.Axes, inst.Attr.Keepdims))
}

func opReduceSumSquare(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine
	return one(eng.ReduceSum(eng.Mul(in[0], in[0]), inst.Attr.Axes, inst.Attr.Keepdims))
}

func opReduceMean(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.ReduceMean(in[0], inst.Attr.Axes, inst.Attr.Keepdims))
}

// opReduceSumTo sums off leading axes of data until its shape matches the
// target shape exactly. The target's dims must equal data's trailing dims.
func opReduceSumTo(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	data := in[0]
	target, err := intList(in[1])
	if err != nil {
		return nil, fmt.Errorf("reducesumto: %w", err)
	}

	shape := data.Shape()
	lead := len(shape) - len(target)
	if lead < 0 {
		return nil, fmt.Errorf("reducesumto: target %v has more dims than data %v", target, shape)
	}
	for i, d := range target {
		if shape[lead+i] != d {
			return nil, fmt.Errorf("reducesumto: trailing dims of %v do not match target %v", shape, target)
		}
	}
	if lead == 0 {
		return one(data.Clone())
	}

	axes := make([]int, lead)
	for i := range axes {
		axes[i] = i
	}
	return one(vm.engine.ReduceSum(data, axes, false))
}

func opLogSoftmax(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	axis, err := normalizeAxis(inst.Attr.Axis, len(in[0].Shape()))
	if err != nil {
		return nil, fmt.Errorf("logsoftmax: %w", err)
	}
	return one(vm.engine.LogSoftmax(in[0], axis))
}

func opSoftmax(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	axis, err := normalizeAxis(inst.Attr.Axis, len(in[0].Shape()))
	if err != nil {
		return nil, fmt.Errorf("softmax: %w", err)
	}
	eng := vm.engine
	return one(eng.Exp(eng.LogSoftmax(in[0], axis)))
}

// normalizeAxis maps a possibly negative axis into [0, ndim).
func normalizeAxis(axis, ndim int) (int, error) {
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		return 0, fmt.Errorf("axis %d out of range for %dD tensor", axis, ndim)
	}
	return axis, nil
}
