package vm

import (
	"fmt"
	"sort"

	"github.com/axonvm/axon/internal/tensor"
)

// opShape returns the input's shape as a 1-D Int64 array on the host
// device, where later shape-consuming instructions expect it.
func opShape(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	shape := in[0].Shape()
	if len(shape) == 0 {
		return nil, fmt.Errorf("shape: 0-d input has no representable shape array")
	}
	dims := make([]int64, len(shape))
	for i, d := range shape {
		dims[i] = int64(d)
	}
	r, err := tensor.FromInt64s(dims, tensor.Shape{len(dims)}, tensor.Host)
	if err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	return one(r)
}

// opSize returns the total element count as a 0-d Int64 scalar on the host.
func opSize(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	r := tensor.Zeros(tensor.Shape{}, tensor.Int64, tensor.Host)
	r.AsInt64()[0] = int64(in[0].NumElements())
	return one(r)
}

// opReshape reshapes data to a runtime shape array. At most one dimension
// may be -1; it is solved so the element count matches.
func opReshape(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	data := in[0]
	dims, err := intList(in[1])
	if err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}

	shape, err := solveReshape(dims, data.NumElements())
	if err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}
	return one(vm.engine.Reshape(data, shape))
}

func solveReshape(dims []int, total int) (tensor.Shape, error) {
	shape := make(tensor.Shape, len(dims))
	wildcard := -1
	known := 1
	for i, d := range dims {
		switch {
		case d == -1:
			if wildcard >= 0 {
				return nil, fmt.Errorf("more than one -1 in target shape %v", dims)
			}
			wildcard = i
		case d <= 0:
			return nil, fmt.Errorf("invalid dimension %d in target shape %v", d, dims)
		default:
			known *= d
		}
		shape[i] = d
	}
	if wildcard >= 0 {
		if total%known != 0 {
			return nil, fmt.Errorf("cannot solve -1: %d elements not divisible by %d", total, known)
		}
		shape[wildcard] = total / known
	} else if known != total {
		return nil, fmt.Errorf("target shape %v has %d elements, data has %d", dims, known, total)
	}
	return shape, nil
}

// opExpand broadcasts data to a runtime target shape.
func opExpand(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	dims, err := intList(in[1])
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	return one(vm.engine.BroadcastTo(in[0], tensor.Shape(dims)))
}

// opSqueeze removes the listed axes, which must all have size 1. With no
// axes listed it is the identity; the compiler always names the axes.
func opSqueeze(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := in[0]
	shape := x.Shape()

	drop := make([]bool, len(shape))
	for _, a := range inst.Attr.Axes {
		axis, err := normalizeAxis(a, len(shape))
		if err != nil {
			return nil, fmt.Errorf("squeeze: %w", err)
		}
		if shape[axis] != 1 {
			return nil, fmt.Errorf("squeeze: axis %d has size %d, not 1", axis, shape[axis])
		}
		drop[axis] = true
	}

	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return one(vm.engine.Reshape(x, out))
}

// opUnsqueeze inserts size-1 axes at the listed output positions.
func opUnsqueeze(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := in[0]
	outRank := len(x.Shape()) + len(inst.Attr.Axes)

	inserted := make([]bool, outRank)
	axes := append([]int(nil), inst.Attr.Axes...)
	sort.Ints(axes)
	for _, a := range axes {
		if a < 0 {
			a += outRank
		}
		if a < 0 || a >= outRank || inserted[a] {
			return nil, fmt.Errorf("unsqueeze: invalid axis %d for output rank %d", a, outRank)
		}
		inserted[a] = true
	}

	out := make(tensor.Shape, 0, outRank)
	next := 0
	for i := 0; i < outRank; i++ {
		if inserted[i] {
			out = append(out, 1)
		} else {
			out = append(out, x.Shape()[next])
			next++
		}
	}
	return one(vm.engine.Reshape(x, out))
}

// opSlice applies static per-axis [start, end) ranges with stride 1. Axes
// not named in Attr.Axes keep their full extent.
func opSlice(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a := &inst.Attr
	return vm.sliceWith(in[0], a.Starts, a.Ends, a.Axes)
}

// opDynamicSlice is Slice with starts/ends (and optionally axes) read from
// runtime integer arrays instead of static attributes.
func opDynamicSlice(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	starts, err := intList(in[1])
	if err != nil {
		return nil, fmt.Errorf("dynamicslice: %w", err)
	}
	ends, err := intList(in[2])
	if err != nil {
		return nil, fmt.Errorf("dynamicslice: %w", err)
	}
	var axes []int
	if len(in) > 3 && in[3] != nil {
		if axes, err = intList(in[3]); err != nil {
			return nil, fmt.Errorf("dynamicslice: %w", err)
		}
	}
	return vm.sliceWith(in[0], starts, ends, axes)
}

func (vm *VM) sliceWith(x *tensor.RawTensor, starts, ends, axes []int) ([]*tensor.RawTensor, error) {
	shape := x.Shape()
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("slice: %d starts but %d ends", len(starts), len(ends))
	}
	if axes == nil {
		axes = make([]int, len(starts))
		for i := range axes {
			axes[i] = i
		}
	}
	if len(axes) != len(starts) {
		return nil, fmt.Errorf("slice: %d axes but %d starts", len(axes), len(starts))
	}

	fullStarts := make([]int, len(shape))
	fullEnds := make([]int, len(shape))
	copy(fullEnds, shape)
	for i, a := range axes {
		axis, err := normalizeAxis(a, len(shape))
		if err != nil {
			return nil, fmt.Errorf("slice: %w", err)
		}
		fullStarts[axis] = starts[i]
		fullEnds[axis] = ends[i]
	}
	return one(vm.engine.Slice(x, fullStarts, fullEnds))
}

func opConcat(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	axis, err := normalizeAxis(inst.Attr.Axis, len(in[0].Shape()))
	if err != nil {
		return nil, fmt.Errorf("concat: %w", err)
	}
	return one(vm.engine.Concat(in, axis))
}

// opSplit divides the input along an axis, using explicit segment lengths
// when given and an even division by the output count otherwise.
func opSplit(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := in[0]
	axis, err := normalizeAxis(inst.Attr.Axis, len(x.Shape()))
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}

	lens := inst.Attr.SplitLens
	if len(lens) == 0 {
		n := len(inst.Outputs)
		size := x.Shape()[axis]
		if size%n != 0 {
			return nil, fmt.Errorf("split: axis size %d not divisible into %d outputs", size, n)
		}
		lens = make([]int, n)
		for i := range lens {
			lens[i] = size / n
		}
	}
	return vm.engine.Split(x, lens, axis), nil
}

func opTranspose(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Transpose(in[0], inst.Attr.Perm))
}

// opPad allocates a value-filled buffer of the padded shape and copies the
// data into the interior. Attr.Pads carries per-axis before amounts followed
// by per-axis after amounts.
func opPad(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := in[0]
	ndim := len(x.Shape())
	pads := inst.Attr.Pads
	if len(pads) != 2*ndim {
		return nil, fmt.Errorf("pad: expected %d pad amounts for %dD tensor, got %d", 2*ndim, ndim, len(pads))
	}
	return one(vm.engine.Pad(x, pads[:ndim], pads[ndim:], inst.Attr.PadValue))
}
