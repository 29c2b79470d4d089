package cpu

import (
	"testing"

	"github.com/axonvm/axon/internal/tensor"
)

// TestCPUBackend_Conv tests 2-D convolution.
func TestCPUBackend_Conv(t *testing.T) {
	backend := newTestBackend()

	t.Run("Basic2x2Kernel", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
		w := mustFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

		result := backend.Conv(x, w, nil, []int{1, 1}, []int{0, 0})
		if !result.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
			t.Fatalf("Expected shape [1, 1, 2, 2], got %v", result.Shape())
		}
		expected := []float32{12, 16, 24, 28}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Conv failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("WithBias", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
		w := mustFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})
		b := mustFloat32(t, []float32{10}, tensor.Shape{1})

		result := backend.Conv(x, w, b, []int{1, 1}, []int{0, 0})
		expected := []float32{22, 26, 34, 38}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Conv with bias failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Padded", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
		w := mustFloat32(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})

		result := backend.Conv(x, w, nil, []int{1, 1}, []int{1, 1})
		if !result.Shape().Equal(tensor.Shape{1, 1, 3, 3}) {
			t.Fatalf("Expected shape [1, 1, 3, 3], got %v", result.Shape())
		}
		// Center position covers the whole input.
		if result.AsFloat32()[4] != 45 {
			t.Errorf("Padded conv center = %v, expected 45", result.AsFloat32()[4])
		}
	})

	t.Run("Strided", func(t *testing.T) {
		x := mustFloat32(t, []float32{
			1, 2, 3, 4,
			5, 6, 7, 8,
			9, 10, 11, 12,
			13, 14, 15, 16,
		}, tensor.Shape{1, 1, 4, 4})
		w := mustFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

		result := backend.Conv(x, w, nil, []int{2, 2}, []int{0, 0})
		if !result.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
			t.Fatalf("Expected shape [1, 1, 2, 2], got %v", result.Shape())
		}
		expected := []float32{14, 22, 46, 54}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Strided conv failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("MultiChannel", func(t *testing.T) {
		// Two input channels, two filters of ones: each output channel
		// sums both input channels over its window.
		x := mustFloat32(t, []float32{
			1, 2, 3, 4, // channel 0
			10, 20, 30, 40, // channel 1
		}, tensor.Shape{1, 2, 2, 2})
		w := mustFloat32(t, []float32{
			1, 1, 1, 1, 1, 1, 1, 1,
			1, 1, 1, 1, 1, 1, 1, 1,
		}, tensor.Shape{2, 2, 2, 2})

		result := backend.Conv(x, w, nil, []int{1, 1}, []int{0, 0})
		if !result.Shape().Equal(tensor.Shape{1, 2, 1, 1}) {
			t.Fatalf("Expected shape [1, 2, 1, 1], got %v", result.Shape())
		}
		if !float32SliceEqual(result.AsFloat32(), []float32{110, 110}) {
			t.Errorf("Multi-channel conv failed: got %v", result.AsFloat32())
		}
	})
}

// TestCPUBackend_ConvTranspose tests transposed convolution.
func TestCPUBackend_ConvTranspose(t *testing.T) {
	backend := newTestBackend()

	t.Run("Basic", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
		w := mustFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

		result := backend.ConvTranspose(x, w, nil, []int{1, 1}, []int{0, 0}, nil)
		if !result.Shape().Equal(tensor.Shape{1, 1, 3, 3}) {
			t.Fatalf("Expected shape [1, 1, 3, 3], got %v", result.Shape())
		}
		expected := []float32{
			1, 3, 2,
			4, 10, 6,
			3, 7, 4,
		}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("ConvTranspose failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Stride2", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
		w := mustFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

		result := backend.ConvTranspose(x, w, nil, []int{2, 2}, []int{0, 0}, nil)
		if !result.Shape().Equal(tensor.Shape{1, 1, 4, 4}) {
			t.Fatalf("Expected shape [1, 1, 4, 4], got %v", result.Shape())
		}
		// Non-overlapping 2x2 blocks, one per input element.
		expected := []float32{
			1, 1, 2, 2,
			1, 1, 2, 2,
			3, 3, 4, 4,
			3, 3, 4, 4,
		}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Stride-2 ConvTranspose failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("ExplicitOutputSize", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
		w := mustFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

		result := backend.ConvTranspose(x, w, nil, []int{2, 2}, []int{0, 0}, []int{3, 3})
		if !result.Shape().Equal(tensor.Shape{1, 1, 3, 3}) {
			t.Fatalf("Expected shape [1, 1, 3, 3], got %v", result.Shape())
		}
		// Same as stride-2 output with the last row and column dropped.
		expected := []float32{
			1, 1, 2,
			1, 1, 2,
			3, 3, 4,
		}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("ConvTranspose with output size failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})
}

// TestCPUBackend_ConvGradWeight tests the convolution weight gradient.
func TestCPUBackend_ConvGradWeight(t *testing.T) {
	backend := newTestBackend()

	t.Run("SingleOutput", func(t *testing.T) {
		// With a 1x1 output gradient of 1, the weight gradient is the
		// input window itself.
		x := mustFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
		gy := mustFloat32(t, []float32{1}, tensor.Shape{1, 1, 1, 1})

		result := backend.ConvGradWeight(tensor.Shape{1, 1, 2, 2}, tensor.Float32, x, gy, []int{1, 1}, []int{0, 0})
		if !result.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
			t.Fatalf("Expected shape [1, 1, 2, 2], got %v", result.Shape())
		}
		if !float32SliceEqual(result.AsFloat32(), []float32{1, 2, 3, 4}) {
			t.Errorf("ConvGradWeight failed: got %v", result.AsFloat32())
		}
	})

	t.Run("SumsOverPositions", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
		gy := mustFloat32(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

		result := backend.ConvGradWeight(tensor.Shape{1, 1, 2, 2}, tensor.Float32, x, gy, []int{1, 1}, []int{0, 0})
		// gw[i,j] = sum over the four output positions of x[oh+i, ow+j].
		expected := []float32{12, 16, 24, 28}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("ConvGradWeight failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})
}
