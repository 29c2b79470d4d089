// Package onnx provides the compile-time type descriptor and its ONNX
// interchange codec.
//
// The compiler that produces axon programs describes every graph value with a
// Type: an element dtype plus a list of dimensions, where each dimension is a
// concrete size or a symbolic parameter (e.g. "batch_size"), optionally tagged
// with a semantic denotation string. Types travel in the ONNX TypeProto
// message; this package implements a hand-written protobuf reader and writer
// for that message without external dependencies, so a Type survives a trip
// through the wire format byte for byte.
//
// Types are compile-time only. The VM never sees them: by the time a program
// runs, every instruction carries concrete attributes.
package onnx
