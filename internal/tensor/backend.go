package tensor

// Backend is the array-engine contract the VM's op kernels are written
// against. Every call is synchronous: it returns only once the result is
// fully computed. Inputs are borrowed, results are freshly allocated and
// never alias an input.
//
// Fatal conditions (shape mismatches, unsupported dtype combinations,
// out-of-range axes) panic; the VM dispatcher converts such panics into a
// run-aborting error.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	// Both operands must share a dtype and a device.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise unary operations.
	Neg(x *RawTensor) *RawTensor
	Reciprocal(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor // log(x<=0) yields -Inf/NaN, not an error
	Sqrt(x *RawTensor) *RawTensor

	// Element-wise maximum with broadcasting, and against a scalar.
	Maximum(a, b *RawTensor) *RawTensor
	MaximumScalar(x *RawTensor, v float64) *RawTensor

	// Comparisons produce Bool tensors; operands must share a dtype.
	Equal(a, b *RawTensor) *RawTensor
	Greater(a, b *RawTensor) *RawTensor
	LogicalNot(x *RawTensor) *RawTensor

	// Type conversion.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Dot product: 2-D x 2-D, 1-D x 2-D, 2-D x 1-D or 1-D x 1-D.
	Dot(a, b *RawTensor) *RawTensor

	// Reductions over an axis set; empty axes means all axes.
	ReduceSum(x *RawTensor, axes []int, keepdims bool) *RawTensor
	ReduceMax(x *RawTensor, axes []int, keepdims bool) *RawTensor
	ReduceMean(x *RawTensor, axes []int, keepdims bool) *RawTensor

	// ArgMax removes the axis and returns Int64 indices.
	ArgMax(x *RawTensor, axis int) *RawTensor

	// Numerically stable log-softmax along an axis.
	LogSoftmax(x *RawTensor, axis int) *RawTensor

	// Shape and layout operations.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Transpose(x *RawTensor, perm []int) *RawTensor // nil perm reverses axes
	BroadcastTo(x *RawTensor, shape Shape) *RawTensor
	Concat(xs []*RawTensor, axis int) *RawTensor
	Split(x *RawTensor, lens []int, axis int) []*RawTensor
	Slice(x *RawTensor, starts, ends []int) *RawTensor // full rank, stride 1
	Pad(x *RawTensor, before, after []int, value float64) *RawTensor

	// Indexing.
	Take(x *RawTensor, indices *RawTensor, axis int) *RawTensor
	ScatterAdd(x *RawTensor, indices *RawTensor, axis int, updates *RawTensor) *RawTensor

	// Convolution over two spatial dimensions; b may be nil.
	Conv(x, w, b *RawTensor, strides, pads []int) *RawTensor
	ConvTranspose(x, w, b *RawTensor, strides, pads, outSize []int) *RawTensor
	ConvGradWeight(wShape Shape, wDType DataType, x, gy *RawTensor, strides, pads []int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
