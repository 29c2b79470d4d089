package cpu

import (
	"math"
	"testing"

	"github.com/axonvm/axon/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-5
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

func mustFloat32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromFloat32s(data, shape, tensor.CPU)
	if err != nil {
		t.Fatalf("FromFloat32s failed: %v", err)
	}
	return r
}

func mustInt64(t *testing.T, data []int64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromInt64s(data, shape, tensor.CPU)
	if err != nil {
		t.Fatalf("FromInt64s failed: %v", err)
	}
	return r
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

// TestCPUBackend_Add tests element-wise addition.
func TestCPUBackend_Add(t *testing.T) {
	backend := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		a := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := mustFloat32(t, []float32{10, 11, 12, 13, 14, 15}, tensor.Shape{2, 3})

		result := backend.Add(a, b)

		expected := []float32{11, 13, 15, 17, 19, 21}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Broadcast_3x1_plus_4", func(t *testing.T) {
		a := mustFloat32(t, []float32{1, 2, 3}, tensor.Shape{3, 1})
		b := mustFloat32(t, []float32{10, 20, 30, 40}, tensor.Shape{4})

		result := backend.Add(a, b)

		if !result.Shape().Equal(tensor.Shape{3, 4}) {
			t.Fatalf("Expected shape [3, 4], got %v", result.Shape())
		}
		expected := []float32{11, 21, 31, 41, 12, 22, 32, 42, 13, 23, 33, 43}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Broadcast add failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Int64", func(t *testing.T) {
		a := mustInt64(t, []int64{1, 2, 3}, tensor.Shape{3})
		b := mustInt64(t, []int64{10, 20, 30}, tensor.Shape{3})

		result := backend.Add(a, b)

		got := result.AsInt64()
		expected := []int64{11, 22, 33}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("Int64 add failed at %d: got %d, expected %d", i, got[i], expected[i])
			}
		}
	})

	t.Run("DeviceMismatchPanics", func(t *testing.T) {
		a := tensor.Full(tensor.Shape{2}, 1, tensor.Float32, tensor.CPU)
		b := tensor.Full(tensor.Shape{2}, 1, tensor.Float32, tensor.Host)
		defer func() {
			if recover() == nil {
				t.Error("Expected panic on device mismatch")
			}
		}()
		backend.Add(a, b)
	})
}

// TestCPUBackend_Div tests division, including integer truncation.
func TestCPUBackend_Div(t *testing.T) {
	backend := newTestBackend()

	t.Run("Float32", func(t *testing.T) {
		a := mustFloat32(t, []float32{1, 4, 9}, tensor.Shape{3})
		b := mustFloat32(t, []float32{2, 4, 3}, tensor.Shape{3})
		result := backend.Div(a, b)
		expected := []float32{0.5, 1, 3}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Div failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Int64Truncates", func(t *testing.T) {
		a := mustInt64(t, []int64{7, -7, 9}, tensor.Shape{3})
		b := mustInt64(t, []int64{2, 2, 3}, tensor.Shape{3})
		result := backend.Div(a, b)
		got := result.AsInt64()
		expected := []int64{3, -3, 3}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("Int64 div failed at %d: got %d, expected %d", i, got[i], expected[i])
			}
		}
	})
}

// TestCPUBackend_Maximum tests element-wise and scalar maximum.
func TestCPUBackend_Maximum(t *testing.T) {
	backend := newTestBackend()

	a := mustFloat32(t, []float32{1, 5, 3}, tensor.Shape{3})
	b := mustFloat32(t, []float32{4, 2, 3}, tensor.Shape{3})
	result := backend.Maximum(a, b)
	if !float32SliceEqual(result.AsFloat32(), []float32{4, 5, 3}) {
		t.Errorf("Maximum failed: got %v", result.AsFloat32())
	}

	result = backend.MaximumScalar(a, 2.5)
	if !float32SliceEqual(result.AsFloat32(), []float32{2.5, 5, 3}) {
		t.Errorf("MaximumScalar failed: got %v", result.AsFloat32())
	}
}

// TestCPUBackend_UnaryMath tests Neg, Exp, Log, Sqrt and Reciprocal.
func TestCPUBackend_UnaryMath(t *testing.T) {
	backend := newTestBackend()

	x := mustFloat32(t, []float32{1, 4, 9}, tensor.Shape{3})

	if !float32SliceEqual(backend.Neg(x).AsFloat32(), []float32{-1, -4, -9}) {
		t.Error("Neg failed")
	}
	if !float32SliceEqual(backend.Sqrt(x).AsFloat32(), []float32{1, 2, 3}) {
		t.Error("Sqrt failed")
	}
	if !float32SliceEqual(backend.Reciprocal(x).AsFloat32(), []float32{1, 0.25, 1.0 / 9.0}) {
		t.Error("Reciprocal failed")
	}

	e := backend.Exp(mustFloat32(t, []float32{0, 1}, tensor.Shape{2}))
	if !float32SliceEqual(e.AsFloat32(), []float32{1, float32(math.E)}) {
		t.Errorf("Exp failed: got %v", e.AsFloat32())
	}

	// Log at zero must produce -Inf rather than panic, since composed
	// kernels rely on exp(log(a)*b) round-tripping a == 0.
	l := backend.Log(mustFloat32(t, []float32{1, 0}, tensor.Shape{2}))
	got := l.AsFloat32()
	if got[0] != 0 {
		t.Errorf("Log(1) = %v, expected 0", got[0])
	}
	if !math.IsInf(float64(got[1]), -1) {
		t.Errorf("Log(0) = %v, expected -Inf", got[1])
	}
}

// TestCPUBackend_Comparisons tests Equal, Greater and LogicalNot.
func TestCPUBackend_Comparisons(t *testing.T) {
	backend := newTestBackend()

	a := mustFloat32(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := mustFloat32(t, []float32{1, 3, 2}, tensor.Shape{3})

	eq := backend.Equal(a, b)
	if eq.DType() != tensor.Bool {
		t.Fatalf("Equal result dtype = %v, expected Bool", eq.DType())
	}
	wantEq := []bool{true, false, false}
	for i, v := range eq.AsBool() {
		if v != wantEq[i] {
			t.Errorf("Equal[%d] = %v, expected %v", i, v, wantEq[i])
		}
	}

	gt := backend.Greater(a, b)
	wantGt := []bool{false, false, true}
	for i, v := range gt.AsBool() {
		if v != wantGt[i] {
			t.Errorf("Greater[%d] = %v, expected %v", i, v, wantGt[i])
		}
	}

	not := backend.LogicalNot(gt)
	for i, v := range not.AsBool() {
		if v != !wantGt[i] {
			t.Errorf("LogicalNot[%d] = %v, expected %v", i, v, !wantGt[i])
		}
	}
}

// TestCPUBackend_Cast tests dtype conversion.
func TestCPUBackend_Cast(t *testing.T) {
	backend := newTestBackend()

	t.Run("Float32ToInt64", func(t *testing.T) {
		x := mustFloat32(t, []float32{1.7, -2.3, 3.0}, tensor.Shape{3})
		result := backend.Cast(x, tensor.Int64)
		got := result.AsInt64()
		expected := []int64{1, -2, 3}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("Cast[%d] = %d, expected %d", i, got[i], expected[i])
			}
		}
	})

	t.Run("Int64ToFloat32", func(t *testing.T) {
		x := mustInt64(t, []int64{1, -2, 3}, tensor.Shape{3})
		result := backend.Cast(x, tensor.Float32)
		if !float32SliceEqual(result.AsFloat32(), []float32{1, -2, 3}) {
			t.Errorf("Cast failed: got %v", result.AsFloat32())
		}
	})

	t.Run("BoolToInt64", func(t *testing.T) {
		x, err := tensor.FromBools([]bool{true, false, true}, tensor.Shape{3}, tensor.CPU)
		if err != nil {
			t.Fatal(err)
		}
		result := backend.Cast(x, tensor.Int64)
		got := result.AsInt64()
		expected := []int64{1, 0, 1}
		for i := range expected {
			if got[i] != expected[i] {
				t.Errorf("Cast[%d] = %d, expected %d", i, got[i], expected[i])
			}
		}
	})

	t.Run("SameDTypeCopies", func(t *testing.T) {
		x := mustFloat32(t, []float32{1, 2}, tensor.Shape{2})
		result := backend.Cast(x, tensor.Float32)
		if result == x {
			t.Error("Cast to same dtype should return a copy")
		}
		result.AsFloat32()[0] = 99
		if x.AsFloat32()[0] != 1 {
			t.Error("Cast result aliases input buffer")
		}
	})
}

// TestCPUBackend_Dot tests matrix products.
func TestCPUBackend_Dot(t *testing.T) {
	backend := newTestBackend()

	t.Run("MatMat", func(t *testing.T) {
		a := mustFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
		b := mustFloat32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
		result := backend.Dot(a, b)
		if !result.Shape().Equal(tensor.Shape{2, 2}) {
			t.Fatalf("Expected shape [2, 2], got %v", result.Shape())
		}
		expected := []float32{58, 64, 139, 154}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Dot failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("VecMat", func(t *testing.T) {
		a := mustFloat32(t, []float32{1, 2, 3}, tensor.Shape{3})
		b := mustFloat32(t, []float32{1, 0, 0, 1, 1, 1}, tensor.Shape{3, 2})
		result := backend.Dot(a, b)
		if !result.Shape().Equal(tensor.Shape{2}) {
			t.Fatalf("Expected shape [2], got %v", result.Shape())
		}
		if !float32SliceEqual(result.AsFloat32(), []float32{4, 5}) {
			t.Errorf("VecMat dot failed: got %v", result.AsFloat32())
		}
	})

	t.Run("VecVec", func(t *testing.T) {
		a := mustFloat32(t, []float32{1, 2, 3}, tensor.Shape{3})
		b := mustFloat32(t, []float32{4, 5, 6}, tensor.Shape{3})
		result := backend.Dot(a, b)
		if result.NumElements() != 1 {
			t.Fatalf("Expected scalar result, got shape %v", result.Shape())
		}
		if !float32SliceEqual(result.AsFloat32(), []float32{32}) {
			t.Errorf("VecVec dot failed: got %v", result.AsFloat32())
		}
	})
}
