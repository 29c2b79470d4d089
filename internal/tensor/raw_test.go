package tensor

import "testing"

// TestNewRaw tests tensor allocation.
func TestNewRaw(t *testing.T) {
	r, err := NewRaw(Shape{2, 3}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if !r.Shape().Equal(Shape{2, 3}) {
		t.Errorf("Shape = %v, expected [2, 3]", r.Shape())
	}
	if r.NumElements() != 6 {
		t.Errorf("NumElements = %d, expected 6", r.NumElements())
	}
	if r.ByteSize() != 24 {
		t.Errorf("ByteSize = %d, expected 24", r.ByteSize())
	}
	for _, v := range r.AsFloat32() {
		if v != 0 {
			t.Error("New tensor not zero-initialized")
			break
		}
	}

	if _, err := NewRaw(Shape{2, 0}, Float32, CPU); err == nil {
		t.Error("Expected error for zero dimension")
	}
}

// TestRawTensor_ScalarShape tests that an empty shape is a one-element scalar.
func TestRawTensor_ScalarShape(t *testing.T) {
	r, err := NewRaw(Shape{}, Float32, CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if r.NumElements() != 1 {
		t.Errorf("Scalar NumElements = %d, expected 1", r.NumElements())
	}
	r.AsFloat32()[0] = 3.5
	if r.ScalarFloat() != 3.5 {
		t.Errorf("ScalarFloat = %v, expected 3.5", r.ScalarFloat())
	}
	if r.ScalarInt() != 3 {
		t.Errorf("ScalarInt = %v, expected 3", r.ScalarInt())
	}
	if !r.ScalarBool() {
		t.Error("ScalarBool of non-zero value should be true")
	}
}

// TestRawTensor_Clone tests deep copying.
func TestRawTensor_Clone(t *testing.T) {
	r, _ := FromFloat32s([]float32{1, 2, 3}, Shape{3}, CPU)
	c := r.Clone()

	c.AsFloat32()[0] = 99
	if r.AsFloat32()[0] != 1 {
		t.Error("Clone shares its buffer with the original")
	}
	if c.DType() != r.DType() || c.Device() != r.Device() {
		t.Error("Clone lost dtype or device")
	}
}

// TestRawTensor_WithShape tests shared-buffer reshaping.
func TestRawTensor_WithShape(t *testing.T) {
	r, _ := FromFloat32s([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)

	v, err := r.WithShape(Shape{6})
	if err != nil {
		t.Fatalf("WithShape failed: %v", err)
	}
	v.AsFloat32()[0] = 99
	if r.AsFloat32()[0] != 99 {
		t.Error("WithShape should share the buffer")
	}

	if _, err := r.WithShape(Shape{4}); err == nil {
		t.Error("Expected error for element count mismatch")
	}
}

// TestRawTensor_AsTypedPanics tests dtype-checked views.
func TestRawTensor_AsTypedPanics(t *testing.T) {
	r, _ := NewRaw(Shape{2}, Float32, CPU)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic on dtype-mismatched view")
		}
	}()
	r.AsInt64()
}

// TestFromSlices tests slice constructors.
func TestFromSlices(t *testing.T) {
	r, err := FromInt64s([]int64{1, 2, 3, 4}, Shape{2, 2}, CPU)
	if err != nil {
		t.Fatalf("FromInt64s failed: %v", err)
	}
	if r.AsInt64()[3] != 4 {
		t.Errorf("FromInt64s data = %v", r.AsInt64())
	}

	if _, err := FromInt64s([]int64{1, 2, 3}, Shape{2, 2}, CPU); err == nil {
		t.Error("Expected error for element count mismatch")
	}
}

// TestArange tests the integer range constructor.
func TestArange(t *testing.T) {
	r := Arange(0, 10, 3, Host)
	got := r.AsInt64()
	expected := []int64{0, 3, 6, 9}
	if len(got) != len(expected) {
		t.Fatalf("Arange length = %d, expected %d", len(got), len(expected))
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Arange[%d] = %d, expected %d", i, got[i], expected[i])
		}
	}
	if r.Device() != Host {
		t.Errorf("Arange device = %v, expected Host", r.Device())
	}
}

// TestEye tests the identity matrix constructor.
func TestEye(t *testing.T) {
	r := Eye(3, Float32, CPU)
	data := r.AsFloat32()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if data[i*3+j] != want {
				t.Errorf("Eye[%d,%d] = %v, expected %v", i, j, data[i*3+j], want)
			}
		}
	}
}

// TestFull tests the fill constructor across dtypes.
func TestFull(t *testing.T) {
	f := Full(Shape{2}, 2.5, Float64, CPU)
	if f.AsFloat64()[0] != 2.5 || f.AsFloat64()[1] != 2.5 {
		t.Errorf("Full float64 = %v", f.AsFloat64())
	}

	i := Full(Shape{2}, 7, Int32, CPU)
	if i.AsInt32()[0] != 7 {
		t.Errorf("Full int32 = %v", i.AsInt32())
	}

	b := Full(Shape{2}, 1, Bool, CPU)
	if !b.AsBool()[0] {
		t.Error("Full bool should be true for non-zero value")
	}
}
