package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonvm/axon/internal/tensor"
)

func sigmoidF(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// TestLSTM_SingleStep checks that one timestep with zero bias, no peephole
// and zero initial states reduces to the standard gated update:
// c = sigmoid(gi)*tanh(gc), h = sigmoid(go)*tanh(c).
func TestLSTM_SingleStep(t *testing.T) {
	const (
		inputSize = 2
		hidden    = 2
	)

	xData := []float32{0.5, -0.3}
	x := f32(t, xData, tensor.Shape{1, 1, inputSize})

	// W rows are the 4*hidden gate weights in i,o,f,c order.
	wData := make([]float32, 4*hidden*inputSize)
	for i := range wData {
		wData[i] = 0.1 * float32(i%3)
	}
	w := f32(t, wData, tensor.Shape{1, 4 * hidden, inputSize})

	rData := make([]float32, 4*hidden*hidden)
	r := f32(t, rData, tensor.Shape{1, 4 * hidden, hidden}) // zero recurrence

	outs, err := evalOp(t, OpLSTM, Attr{}, 3, x, w, r)
	require.NoError(t, err)
	y, finalH, finalC := outs[0], outs[1], outs[2]

	assert.Equal(t, tensor.Shape{1, 1, hidden}, y.Shape())
	assert.Equal(t, tensor.Shape{1, 1, hidden}, finalH.Shape())
	assert.Equal(t, tensor.Shape{1, 1, hidden}, finalC.Shape())

	// Reference computation with the plain formula.
	pre := make([]float64, 4*hidden)
	for g := 0; g < 4*hidden; g++ {
		for k := 0; k < inputSize; k++ {
			pre[g] += float64(wData[g*inputSize+k]) * float64(xData[k])
		}
	}
	for j := 0; j < hidden; j++ {
		gi := pre[j]            // input gate
		gout := pre[hidden+j]   // output gate
		gc := pre[3*hidden+j]   // cell candidate
		c := sigmoidF(gi) * math.Tanh(gc)
		h := sigmoidF(gout) * math.Tanh(c)
		assert.InDelta(t, c, float64(finalC.AsFloat32()[j]), 1e-5, "cell %d", j)
		assert.InDelta(t, h, float64(finalH.AsFloat32()[j]), 1e-5, "hidden %d", j)
		assert.InDelta(t, h, float64(y.AsFloat32()[j]), 1e-5, "output %d", j)
	}
}

// TestLSTM_Bias checks that B's two stacked halves are summed into the gate
// pre-activations.
func TestLSTM_Bias(t *testing.T) {
	const hidden = 1
	x := f32(t, []float32{0}, tensor.Shape{1, 1, 1}) // zero input
	w := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	r := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	// First half biases every gate by 0.3, second by 0.2: total 0.5.
	bData := []float32{0.3, 0.3, 0.3, 0.3, 0.2, 0.2, 0.2, 0.2}
	b := f32(t, bData, tensor.Shape{1, 8 * hidden})

	outs, err := evalOp(t, OpLSTM, Attr{}, 3, x, w, r, b)
	require.NoError(t, err)
	finalC := outs[2]

	want := sigmoidF(0.5) * math.Tanh(0.5)
	assert.InDelta(t, want, float64(finalC.AsFloat32()[0]), 1e-5)
}

// TestLSTM_MultiStep runs two timesteps with an identity-free recurrence
// and checks the recurrent term feeds the second step.
func TestLSTM_MultiStep(t *testing.T) {
	const hidden = 1
	x := f32(t, []float32{1, 1}, tensor.Shape{2, 1, 1})
	w := f32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 4, 1})
	r := f32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 4, 1})

	outs, err := evalOp(t, OpLSTM, Attr{}, 3, x, w, r)
	require.NoError(t, err)
	y := outs[0]
	require.Equal(t, tensor.Shape{2, 1, hidden}, y.Shape())

	// Step 1: plain formula from x alone.
	c1 := sigmoidF(1) * math.Tanh(1)
	h1 := sigmoidF(1) * math.Tanh(c1)
	// Step 2: pre-activations are x + r*h1 = 1 + h1 for every gate.
	g2 := 1 + h1
	c2 := sigmoidF(g2)*c1 + sigmoidF(g2)*math.Tanh(g2)
	h2 := sigmoidF(g2) * math.Tanh(c2)

	assert.InDelta(t, h1, float64(y.AsFloat32()[0]), 1e-5)
	assert.InDelta(t, h2, float64(y.AsFloat32()[1]), 1e-5)
	assert.InDelta(t, h2, float64(outs[1].AsFloat32()[0]), 1e-5)
	assert.InDelta(t, c2, float64(outs[2].AsFloat32()[0]), 1e-5)
}

// TestLSTM_InitialStates checks that provided h0/c0 seed the recurrence.
func TestLSTM_InitialStates(t *testing.T) {
	const hidden = 1
	x := f32(t, []float32{0}, tensor.Shape{1, 1, 1})
	w := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	r := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	h0 := f32(t, []float32{0.5}, tensor.Shape{1, 1, hidden})
	c0 := f32(t, []float32{2}, tensor.Shape{1, 1, hidden})

	outs, err := evalOp(t, OpLSTM, Attr{}, 3, x, w, r, nil, nil, h0, c0)
	require.NoError(t, err)

	// All gate pre-activations are 0: f = i = o = 0.5.
	c := 0.5*2 + 0.5*math.Tanh(0)
	h := 0.5 * math.Tanh(c)
	assert.InDelta(t, c, float64(outs[2].AsFloat32()[0]), 1e-5)
	assert.InDelta(t, h, float64(outs[1].AsFloat32()[0]), 1e-5)
}

// TestLSTM_Peephole checks that all three peephole terms read the previous
// cell state, the output gate included: with zero weights, c0=2 and
// P=[1,10,2], the output gate sees 10*2=20 before the cell update.
func TestLSTM_Peephole(t *testing.T) {
	const hidden = 1
	x := f32(t, []float32{0}, tensor.Shape{1, 1, 1})
	w := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	r := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	c0 := f32(t, []float32{2}, tensor.Shape{1, 1, hidden})
	p := f32(t, []float32{1, 10, 2}, tensor.Shape{1, 3 * hidden})

	outs, err := evalOp(t, OpLSTM, Attr{}, 3, x, w, r, nil, nil, nil, c0, p)
	require.NoError(t, err)

	// gi = 1*2, gf = 2*2, go = 10*2, all from the previous cell state.
	c := sigmoidF(4)*2 + sigmoidF(2)*math.Tanh(0)
	h := sigmoidF(20) * math.Tanh(c)
	assert.InDelta(t, c, float64(outs[2].AsFloat32()[0]), 1e-5)
	assert.InDelta(t, h, float64(outs[1].AsFloat32()[0]), 1e-5)
	assert.InDelta(t, h, float64(outs[0].AsFloat32()[0]), 1e-5)
}

func TestLSTM_SequenceLensIgnored(t *testing.T) {
	x := f32(t, []float32{1}, tensor.Shape{1, 1, 1})
	w := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	r := f32(t, make([]float32, 4), tensor.Shape{1, 4, 1})
	lens := i64(t, []int64{1}, tensor.Shape{1})

	_, err := evalOp(t, OpLSTM, Attr{}, 3, x, w, r, nil, lens)
	require.NoError(t, err)
}

func TestLSTM_MultiDirectionFatal(t *testing.T) {
	x := f32(t, []float32{1}, tensor.Shape{1, 1, 1})
	w := f32(t, make([]float32, 8), tensor.Shape{2, 4, 1})
	r := f32(t, make([]float32, 8), tensor.Shape{2, 4, 1})

	_, err := evalOp(t, OpLSTM, Attr{}, 3, x, w, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single direction")
}
