package vm

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// opLSTM runs a single-direction LSTM over a time-major input.
//
// Inputs, in order: x [T, batch, input], W [1, 4H, input], R [1, 4H, H],
// then optional B [1, 8H], sequence_lens, initial_h [1, batch, H],
// initial_c [1, batch, H], P [1, 3H]. The 4H gate axis is laid out in the
// order input, output, forget, cell. B holds two stacked bias halves that
// are summed. P holds peephole weights for the input, output and forget
// gates, applied to the gate pre-activations from the previous cell state.
// sequence_lens is accepted but not honored.
//
// Outputs: Y [T, batch, H], final hidden [1, batch, H], final cell
// [1, batch, H].
func opLSTM(vm *VM, st *State, inst *Instruction, in []*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	eng := vm.engine

	x, w, r := in[0], in[1], in[2]
	var b, seqLens, initH, initC, p *tensor.RawTensor
	if len(in) > 3 {
		b = in[3]
	}
	if len(in) > 4 {
		seqLens = in[4]
	}
	if len(in) > 5 {
		initH = in[5]
	}
	if len(in) > 6 {
		initC = in[6]
	}
	if len(in) > 7 {
		p = in[7]
	}

	if len(x.Shape()) != 3 || len(w.Shape()) != 3 || len(r.Shape()) != 3 {
		return nil, fmt.Errorf("lstm: x, W and R must be 3D, got %v, %v, %v", x.Shape(), w.Shape(), r.Shape())
	}
	if w.Shape()[0] != 1 {
		return nil, fmt.Errorf("lstm: only a single direction is supported, got %d", w.Shape()[0])
	}
	if seqLens != nil {
		warnOnce("lstm-seqlens", "LSTM sequence_lens input is ignored")
	}

	steps, batch, inputSize := x.Shape()[0], x.Shape()[1], x.Shape()[2]
	hidden := r.Shape()[2]
	if w.Shape()[1] != 4*hidden || r.Shape()[1] != 4*hidden {
		return nil, fmt.Errorf("lstm: gate axis must be 4*%d, got W %v and R %v", hidden, w.Shape(), r.Shape())
	}

	// Weights transpose once up front so each step is a plain matmul.
	wt := eng.Transpose(eng.Reshape(w, tensor.Shape{4 * hidden, inputSize}), nil)
	rt := eng.Transpose(eng.Reshape(r, tensor.Shape{4 * hidden, hidden}), nil)

	var bias *tensor.RawTensor
	if b != nil {
		halves := eng.Split(eng.Reshape(b, tensor.Shape{8 * hidden}), []int{4 * hidden, 4 * hidden}, 0)
		bias = eng.Add(halves[0], halves[1])
	}

	var pi, po, pf *tensor.RawTensor
	if p != nil {
		peep := eng.Split(eng.Reshape(p, tensor.Shape{3 * hidden}), []int{hidden, hidden, hidden}, 0)
		pi, po, pf = peep[0], peep[1], peep[2]
	}

	h := tensor.Zeros(tensor.Shape{batch, hidden}, x.DType(), x.Device())
	c := tensor.Zeros(tensor.Shape{batch, hidden}, x.DType(), x.Device())
	if initH != nil {
		h = eng.Reshape(initH, tensor.Shape{batch, hidden})
	}
	if initC != nil {
		c = eng.Reshape(initC, tensor.Shape{batch, hidden})
	}

	gateLens := []int{hidden, hidden, hidden, hidden}
	outs := make([]*tensor.RawTensor, steps)
	for t := 0; t < steps; t++ {
		xt := eng.Reshape(
			eng.Slice(x, []int{t, 0, 0}, []int{t + 1, batch, inputSize}),
			tensor.Shape{batch, inputSize})

		gates := eng.Add(eng.Dot(xt, wt), eng.Dot(h, rt))
		if bias != nil {
			gates = eng.Add(gates, bias)
		}
		split := eng.Split(gates, gateLens, 1)
		gi, gout, gf, gc := split[0], split[1], split[2], split[3]

		// All three peephole terms read the previous cell state.
		if p != nil {
			gi = eng.Add(gi, eng.Mul(pi, c))
			gf = eng.Add(gf, eng.Mul(pf, c))
			gout = eng.Add(gout, eng.Mul(po, c))
		}
		i := vm.sigmoidOf(gi)
		f := vm.sigmoidOf(gf)
		c = eng.Add(eng.Mul(f, c), eng.Mul(i, vm.tanhOf(gc)))
		o := vm.sigmoidOf(gout)
		h = eng.Mul(o, vm.tanhOf(c))

		outs[t] = eng.Reshape(h, tensor.Shape{1, batch, hidden})
	}

	y := outs[0]
	if steps > 1 {
		y = eng.Concat(outs, 0)
	}
	finalH := eng.Reshape(h, tensor.Shape{1, batch, hidden})
	finalC := eng.Reshape(c, tensor.Shape{1, batch, hidden})
	return []*tensor.RawTensor{y, finalH, finalC}, nil
}
