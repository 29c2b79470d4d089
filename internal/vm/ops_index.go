package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// opGather takes elements along Attr.Axis, indexed by the second input.
func opGather(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	axis, err := normalizeAxis(inst.Attr.Axis, len(in[0].Shape()))
	if err != nil {
		return nil, fmt.Errorf("gather: %w", err)
	}
	return one(vm.engine.Take(in[0], in[1], axis))
}

// flatRowIndices turns per-row class indices for an (n, classes) matrix
// into offsets index + row*classes over the flattened data.
func (vm *VM) flatRowIndices(indices *tensor.RawTensor, n, classes int) *tensor.RawTensor {
	eng := vm.engine
	idx := indices
	if idx.DType() != tensor.Int64 {
		idx = eng.Cast(idx, tensor.Int64)
	}
	offsets := tensor.Arange(0, int64(n*classes), int64(classes), idx.Device())
	return eng.Add(idx, offsets)
}

// opSelectItem picks data[row, indices[row]] for each row of strictly 2-D
// data by flattening to 1-D and taking at per-row offsets.
func opSelectItem(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	data, indices := in[0], in[1]
	shape := data.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("selectitem: data must be 2D, got %v", shape)
	}
	n, classes := shape[0], shape[1]
	if indices.NumElements() != n {
		return nil, fmt.Errorf("selectitem: %d indices for %d rows", indices.NumElements(), n)
	}

	eng := vm.engine
	flat := eng.Reshape(data, tensor.Shape{n * classes})
	return one(eng.Take(flat, vm.flatRowIndices(indices, n, classes), 0))
}

// opSelectItemGrad scatters gy back into a zero tensor of the original 2-D
// shape at the same flattened offsets SelectItem read from.
func opSelectItemGrad(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	gy, indices := in[0], in[1]
	dims, err := intList(in[2])
	if err != nil {
		return nil, fmt.Errorf("selectitemgrad: %w", err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("selectitemgrad: original shape must be 2D, got %v", dims)
	}
	n, classes := dims[0], dims[1]
	if gy.NumElements() != n {
		return nil, fmt.Errorf("selectitemgrad: %d gradients for %d rows", gy.NumElements(), n)
	}

	eng := vm.engine
	zeros := tensor.Zeros(tensor.Shape{n * classes}, gy.DType(), gy.Device())
	gyFlat := gy
	if len(gy.Shape()) != 1 {
		gyFlat = eng.Reshape(gy, tensor.Shape{n})
	}
	scattered := eng.ScatterAdd(zeros, vm.flatRowIndices(indices, n, classes), 0, gyFlat)
	return one(eng.Reshape(scattered, tensor.Shape{n, classes}))
}
