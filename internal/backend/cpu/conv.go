package cpu

import (
	"fmt"

	"github.com/axonvm/axon/internal/tensor"
)

// Conv performs 2-D convolution with per-axis strides and symmetric pads.
//
// Input shape: [N, C_in, H, W], weight shape: [C_out, C_in, K_h, K_w],
// optional bias shape: [C_out]. Output: [N, C_out, H_out, W_out] with
// out = (in + 2*pad - k)/stride + 1 per spatial axis.
func (cpu *CPUBackend) Conv(x, w, b *tensor.RawTensor, strides, pads []int) *tensor.RawTensor {
	n, cIn, h, wid := convCheck("conv", x, w, strides, pads)
	cOut, kh, kw := w.Shape()[0], w.Shape()[2], w.Shape()[3]
	if w.Shape()[1] != cIn {
		panic(fmt.Sprintf("conv: input channels %d != weight channels %d", cIn, w.Shape()[1]))
	}

	sh, sw := strides[0], strides[1]
	ph, pw := pads[0], pads[1]
	hOut := (h+2*ph-kh)/sh + 1
	wOut := (wid+2*pw-kw)/sw + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("conv: invalid output dimensions %dx%d (check strides/pads)", hOut, wOut))
	}

	result, err := tensor.NewRaw(tensor.Shape{n, cOut, hOut, wOut}, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("conv: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		convForward(result.AsFloat32(), x.AsFloat32(), w.AsFloat32(), biasData[float32](b),
			n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw)
	case tensor.Float64:
		convForward(result.AsFloat64(), x.AsFloat64(), w.AsFloat64(), biasData[float64](b),
			n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw)
	default:
		panic(fmt.Sprintf("conv: unsupported dtype %s", x.DType()))
	}

	return result
}

// ConvTranspose performs the gradient-of-conv (a.k.a. deconvolution).
//
// Input shape: [N, C_in, H, W], weight shape: [C_in, C_out, K_h, K_w],
// optional bias shape: [C_out]. When outSize is nil the spatial output is
// stride*(in-1) + k - 2*pad; otherwise outSize gives the two spatial dims
// and contributions falling outside are dropped.
func (cpu *CPUBackend) ConvTranspose(x, w, b *tensor.RawTensor, strides, pads, outSize []int) *tensor.RawTensor {
	n, cIn, h, wid := convCheck("convtranspose", x, w, strides, pads)
	if w.Shape()[0] != cIn {
		panic(fmt.Sprintf("convtranspose: input channels %d != weight channels %d", cIn, w.Shape()[0]))
	}
	cOut, kh, kw := w.Shape()[1], w.Shape()[2], w.Shape()[3]

	sh, sw := strides[0], strides[1]
	ph, pw := pads[0], pads[1]
	var hOut, wOut int
	if len(outSize) == 2 {
		hOut, wOut = outSize[0], outSize[1]
	} else if outSize == nil {
		hOut = sh*(h-1) + kh - 2*ph
		wOut = sw*(wid-1) + kw - 2*pw
	} else {
		panic(fmt.Sprintf("convtranspose: output size must have 2 spatial dims, got %d", len(outSize)))
	}
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("convtranspose: invalid output dimensions %dx%d", hOut, wOut))
	}

	result, err := tensor.NewRaw(tensor.Shape{n, cOut, hOut, wOut}, x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("convtranspose: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		convTransposeKernel(result.AsFloat32(), x.AsFloat32(), w.AsFloat32(), biasData[float32](b),
			n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw)
	case tensor.Float64:
		convTransposeKernel(result.AsFloat64(), x.AsFloat64(), w.AsFloat64(), biasData[float64](b),
			n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw)
	default:
		panic(fmt.Sprintf("convtranspose: unsupported dtype %s", x.DType()))
	}

	return result
}

// ConvGradWeight computes the weight gradient of Conv given the input x and
// the output gradient gy. The result has the requested weight shape/dtype.
func (cpu *CPUBackend) ConvGradWeight(wShape tensor.Shape, wDType tensor.DataType, x, gy *tensor.RawTensor, strides, pads []int) *tensor.RawTensor {
	if len(wShape) != 4 {
		panic(fmt.Sprintf("convgradweight: weight must be 4D, got %dD", len(wShape)))
	}
	if len(x.Shape()) != 4 || len(gy.Shape()) != 4 {
		panic(fmt.Sprintf("convgradweight: input and gradient must be 4D, got %dD and %dD",
			len(x.Shape()), len(gy.Shape())))
	}
	if len(strides) != 2 || len(pads) != 2 {
		panic(fmt.Sprintf("convgradweight: expected 2 strides and 2 pads, got %d and %d", len(strides), len(pads)))
	}

	n, cIn, h, wid := x.Shape()[0], x.Shape()[1], x.Shape()[2], x.Shape()[3]
	cOut, kh, kw := wShape[0], wShape[2], wShape[3]
	if wShape[1] != cIn {
		panic(fmt.Sprintf("convgradweight: input channels %d != weight channels %d", cIn, wShape[1]))
	}
	hOut, wOut := gy.Shape()[2], gy.Shape()[3]

	result, err := tensor.NewRaw(wShape, wDType, x.Device())
	if err != nil {
		panic(fmt.Sprintf("convgradweight: %v", err))
	}

	sh, sw := strides[0], strides[1]
	ph, pw := pads[0], pads[1]
	switch wDType {
	case tensor.Float32:
		convGradWeightKernel(result.AsFloat32(), x.AsFloat32(), gy.AsFloat32(),
			n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw)
	case tensor.Float64:
		convGradWeightKernel(result.AsFloat64(), x.AsFloat64(), gy.AsFloat64(),
			n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw)
	default:
		panic(fmt.Sprintf("convgradweight: unsupported dtype %s", wDType))
	}

	return result
}

func convCheck(name string, x, w *tensor.RawTensor, strides, pads []int) (n, c, h, wid int) {
	if len(x.Shape()) != 4 {
		panic(fmt.Sprintf("%s: input must be 4D [N,C,H,W], got %dD", name, len(x.Shape())))
	}
	if len(w.Shape()) != 4 {
		panic(fmt.Sprintf("%s: weight must be 4D, got %dD", name, len(w.Shape())))
	}
	if len(strides) != 2 || len(pads) != 2 {
		panic(fmt.Sprintf("%s: expected 2 strides and 2 pads, got %d and %d", name, len(strides), len(pads)))
	}
	return x.Shape()[0], x.Shape()[1], x.Shape()[2], x.Shape()[3]
}

func biasData[T numeric](b *tensor.RawTensor) []T {
	if b == nil {
		return nil
	}
	switch any(*new(T)).(type) {
	case float32:
		return any(b.AsFloat32()).([]T)
	case float64:
		return any(b.AsFloat64()).([]T)
	default:
		panic(fmt.Sprintf("conv: unsupported bias dtype %s", b.DType()))
	}
}

func convForward[T numeric](dst, x, w, bias []T, n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw int) {
	for b := 0; b < n; b++ {
		for m := 0; m < cOut; m++ {
			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					var sum T
					for c := 0; c < cIn; c++ {
						for i := 0; i < kh; i++ {
							for j := 0; j < kw; j++ {
								ih := oh*sh + i - ph
								iw := ow*sw + j - pw
								if ih >= 0 && ih < h && iw >= 0 && iw < wid {
									sum += x[((b*cIn+c)*h+ih)*wid+iw] * w[((m*cIn+c)*kh+i)*kw+j]
								}
							}
						}
					}
					if bias != nil {
						sum += bias[m]
					}
					dst[((b*cOut+m)*hOut+oh)*wOut+ow] = sum
				}
			}
		}
	}
}

func convTransposeKernel[T numeric](dst, x, w, bias []T, n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw int) {
	for b := 0; b < n; b++ {
		for c := 0; c < cIn; c++ {
			for ih := 0; ih < h; ih++ {
				for iw := 0; iw < wid; iw++ {
					v := x[((b*cIn+c)*h+ih)*wid+iw]
					for m := 0; m < cOut; m++ {
						for i := 0; i < kh; i++ {
							for j := 0; j < kw; j++ {
								oh := ih*sh + i - ph
								ow := iw*sw + j - pw
								if oh >= 0 && oh < hOut && ow >= 0 && ow < wOut {
									dst[((b*cOut+m)*hOut+oh)*wOut+ow] += v * w[((c*cOut+m)*kh+i)*kw+j]
								}
							}
						}
					}
				}
			}
		}
	}
	if bias != nil {
		for b := 0; b < n; b++ {
			for m := 0; m < cOut; m++ {
				for i := 0; i < hOut*wOut; i++ {
					dst[(b*cOut+m)*hOut*wOut+i] += bias[m]
				}
			}
		}
	}
}

func convGradWeightKernel[T numeric](dst, x, gy []T, n, cIn, h, wid, cOut, kh, kw, hOut, wOut, sh, sw, ph, pw int) {
	for m := 0; m < cOut; m++ {
		for c := 0; c < cIn; c++ {
			for i := 0; i < kh; i++ {
				for j := 0; j < kw; j++ {
					var sum T
					for b := 0; b < n; b++ {
						for oh := 0; oh < hOut; oh++ {
							for ow := 0; ow < wOut; ow++ {
								ih := oh*sh + i - ph
								iw := ow*sw + j - pw
								if ih >= 0 && ih < h && iw >= 0 && iw < wid {
									sum += x[((b*cIn+c)*h+ih)*wid+iw] * gy[((b*cOut+m)*hOut+oh)*wOut+ow]
								}
							}
						}
					}
					dst[((m*cIn+c)*kh+i)*kw+j] = sum
				}
			}
		}
	}
}
