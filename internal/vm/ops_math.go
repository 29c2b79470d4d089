package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

func opAdd(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Add(in[0], in[1]))
}

func opSub(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Sub(in[0], in[1]))
}

func opMul(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Mul(in[0], in[1]))
}

// opDiv divides with broadcasting. When the divisor lives on a different
// device and holds a single element, the scalar is extracted and re-created
// on the dividend's device, so no illegal cross-device call reaches the
// engine.
func opDiv(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	a, b := in[0], in[1]
	if a.Device() != b.Device() {
		if b.NumElements() != 1 {
			return nil, fmt.Errorf("div: operands on different devices (%s vs %s)", a.Device(), b.Device())
		}
		b = scalarLike(a, b.ScalarFloat())
	}
	return one(vm.engine.Div(a, b))
}

// opPow computes exp(log(a)*b). Zero or negative bases produce -Inf/NaN;
// that matches the contract, not a bug.
func opPow(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine
	return one(eng.Exp(eng.Mul(eng.Log(in[0]), in[1])))
}

func opNeg(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Neg(in[0]))
}

func opReciprocal(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Reciprocal(in[0]))
}

func opExp(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Exp(in[0]))
}

func opLog(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Log(in[0]))
}

func opSqrt(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Sqrt(in[0]))
}

func opTanh(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.tanhOf(in[0]))
}

func opSigmoid(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if in[0].DType() != tensor.Float32 {
		return nil, fmt.Errorf("sigmoid: only float32 is supported, got %s", in[0].DType())
	}
	return one(vm.sigmoidOf(in[0]))
}

// opClip clamps to [min, max] as -max(-max(x, min), -max).
func opClip(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine
	a := &inst.Attr
	lo := eng.MaximumScalar(in[0], a.Min)
	return one(eng.Neg(eng.MaximumScalar(eng.Neg(lo), -a.Max)))
}

// opMax folds elementwise maximum left-to-right over one or more inputs.
// Single-element operands take a scalar fast path; equal-size operands with
// mismatched shapes fall back to a flattened elementwise pass that does not
// broadcast. The fallback is quadratic in spirit and warns once.
func opMax(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	result := in[0]
	if len(in) == 1 {
		return one(result.Clone())
	}
	for _, b := range in[1:] {
		var err error
		result, err = vm.maxPair(result, b)
		if err != nil {
			return nil, err
		}
	}
	return one(result)
}

func (vm *VM) maxPair(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	eng := vm.engine
	switch {
	case b.NumElements() == 1:
		return eng.MaximumScalar(a, b.ScalarFloat()), nil
	case a.NumElements() == 1:
		return eng.MaximumScalar(b, a.ScalarFloat()), nil
	case a.Shape().Equal(b.Shape()):
		return eng.Maximum(a, b), nil
	case a.NumElements() == b.NumElements():
		warnOnce("max-slow", "elementwise Max over equal-size mismatched shapes uses the flattened slow path")
		n := a.NumElements()
		fa, err := a.WithShape(tensor.Shape{n})
		if err != nil {
			return nil, fmt.Errorf("max: %w", err)
		}
		fb, err := b.WithShape(tensor.Shape{n})
		if err != nil {
			return nil, fmt.Errorf("max: %w", err)
		}
		return eng.Reshape(eng.Maximum(fa, fb), a.Shape()), nil
	default:
		return nil, fmt.Errorf("max: cannot combine shapes %v and %v", a.Shape(), b.Shape())
	}
}

func opIdentity(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(in[0].Clone())
}

func opRelu(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.MaximumScalar(in[0], 0))
}

// opReluGrad selects gy where x > 0, else 0.
func opReluGrad(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine
	x, gy := in[0], in[1]
	mask := eng.Cast(eng.Greater(x, scalarLike(x, 0)), gy.DType())
	return one(eng.Mul(gy, mask))
}

// opFloor rounds toward negative infinity through an integer round trip:
// truncate via int64, then subtract one wherever truncation moved the value
// up. Magnitudes beyond int64 precision come back wrong, hence the warning.
func opFloor(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := in[0]
	if !x.DType().IsFloat() {
		return one(x.Clone())
	}
	warnOnce("floor-roundtrip", "Floor uses an int64 round trip and is unreliable for very large magnitudes")
	eng := vm.engine
	y := eng.Cast(eng.Cast(x, tensor.Int64), x.DType())
	over := eng.Cast(eng.Greater(y, x), x.DType())
	return one(eng.Sub(y, over))
}

// opCeil mirrors opFloor, adding one wherever truncation moved the value
// down.
func opCeil(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	x := in[0]
	if !x.DType().IsFloat() {
		return one(x.Clone())
	}
	warnOnce("ceil-roundtrip", "Ceil uses an int64 round trip and is unreliable for very large magnitudes")
	eng := vm.engine
	y := eng.Cast(eng.Cast(x, tensor.Int64), x.DType())
	under := eng.Cast(eng.Greater(x, y), x.DType())
	return one(eng.Add(y, under))
}

func opEqual(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Equal(in[0], in[1]))
}

func opGreater(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Greater(in[0], in[1]))
}

// opGreaterEqual computes not(b > a), which mishandles NaN operands. The
// approximation is part of the contract and only warned about.
func opGreaterEqual(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	warnOnce("greater-equal-nan", "GreaterEqual is computed as not(Greater(b, a)) and mishandles NaN")
	eng := vm.engine
	return one(eng.LogicalNot(eng.Greater(in[1], in[0])))
}

func opNot(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.LogicalNot(in[0]))
}

func opCast(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Cast(in[0], inst.Attr.To))
}

func opMatMul(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return one(vm.engine.Dot(in[0], in[1]))
}

// opGemm computes alpha*A.B + beta*C with optional transposes. Transposes
// apply first, as a full axis reversal; operands still above rank 2 are then
// flattened to (d0, rest). This is a compatibility shim inherited from the
// compiler, not general broadcasting, and its exact order is load-bearing
// downstream.
func opGemm(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine
	a := &inst.Attr

	flatten := func(x *tensor.RawTensor) *tensor.RawTensor {
		shape := x.Shape()
		if len(shape) <= 2 {
			return x
		}
		rest := 1
		for _, d := range shape[1:] {
			rest *= d
		}
		return eng.Reshape(x, tensor.Shape{shape[0], rest})
	}

	ma, mb := in[0], in[1]
	if a.TransA {
		ma = eng.Transpose(ma, nil)
	}
	if a.TransB {
		mb = eng.Transpose(mb, nil)
	}
	ma, mb = flatten(ma), flatten(mb)

	r := eng.Dot(ma, mb)
	if a.Alpha != 1 {
		r = eng.Mul(r, scalarLike(r, a.Alpha))
	}
	if a.Beta != 0 {
		// Bias is skipped entirely when beta == 0; C is not even touched.
		c := in[2]
		if a.Beta != 1 {
			c = eng.Mul(c, scalarLike(c, a.Beta))
		}
		r = eng.Add(r, c)
	}
	return one(r)
}
