package runfile

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonvm/axon/internal/backend/cpu"
	"github.com/axonvm/axon/internal/tensor"
	"github.com/axonvm/axon/internal/vm"
)

func TestParse_AddProgram(t *testing.T) {
	f, err := Parse([]byte(`
inputs:
  a: {shape: [2], data: [1, 2]}
  b: {shape: [2], data: [3, 4]}
program:
  - {op: In, name: a, out: [0]}
  - {op: In, name: b, out: [1]}
  - {op: Add, in: [0, 1], out: [2]}
  - {op: Out, name: sum, in: [2]}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Program.InputNames)
	assert.Equal(t, []string{"sum"}, f.Program.OutputNames)

	outputs, err := vm.New(cpu.New()).Run(f.Program, f.Inputs)
	require.NoError(t, err)
	assert.Equal(t, []float32{4, 6}, outputs["sum"].AsFloat32())
}

func TestParse_ConstantsAndAttrs(t *testing.T) {
	f, err := Parse([]byte(`
program:
  - {op: IntConstant, dtype: int64, shape: [3], value: [7, 8, 9], host: true, out: [0]}
  - {op: FloatScalarConstant, dtype: float64, value: 2.5, out: [1]}
  - {op: Out, name: ints, in: [0]}
  - {op: Out, name: scalar, in: [1]}
`))
	require.NoError(t, err)

	outputs, err := vm.New(cpu.New()).Run(f.Program, nil)
	require.NoError(t, err)
	ints := outputs["ints"]
	assert.Equal(t, tensor.Host, ints.Device())
	assert.Equal(t, []int64{7, 8, 9}, ints.AsInt64())
	assert.InDelta(t, 2.5, outputs["scalar"].ScalarFloat(), 0)
}

func TestParse_GemmDefaults(t *testing.T) {
	f, err := Parse([]byte(`
program:
  - {op: In, name: a, out: [0]}
  - {op: In, name: b, out: [1]}
  - {op: In, name: c, out: [2]}
  - {op: Gemm, trans_b: true, in: [0, 1, 2], out: [3]}
  - {op: Out, name: y, in: [3]}
`))
	require.NoError(t, err)

	gemm := f.Program.Insts[3]
	assert.InDelta(t, 1.0, gemm.Attr.Alpha, 0)
	assert.InDelta(t, 1.0, gemm.Attr.Beta, 0)
	assert.True(t, gemm.Attr.TransB)
}

func TestParse_JumpTargets(t *testing.T) {
	f, err := Parse([]byte(`
inputs:
  cond: {dtype: bool, shape: [], data: [true]}
  x: {shape: [2], data: [1, 2]}
program:
  - {op: In, name: cond, out: [0]}
  - {op: In, name: x, out: [1]}
  - {op: JmpTrue, target: 5, in: [0]}
  - {op: Neg, in: [1], out: [2]}
  - {op: Out, name: y, in: [2]}
  - {op: Out, name: z, in: [1]}
`))
	require.NoError(t, err)

	outputs, err := vm.New(cpu.New()).Run(f.Program, f.Inputs)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, outputs["z"].AsFloat32())
	assert.NotContains(t, outputs, "y")
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name, src, want string
	}{
		{"unknown opcode", `
program:
  - {op: Frobnicate, out: [0]}
`, "unknown opcode"},
		{"unknown dtype", `
inputs:
  x: {dtype: float16, shape: [1], data: [0]}
program:
  - {op: In, name: x, out: [0]}
  - {op: Out, name: x, in: [0]}
`, "unknown dtype"},
		{"missing constant value", `
program:
  - {op: IntScalarConstant, dtype: int64, out: [0]}
  - {op: Out, name: x, in: [0]}
`, "requires a value"},
		{"arity", `
program:
  - {op: Add, in: [0], out: [1]}
`, "at least 2 inputs"},
		{"not yaml", "\t, nope", "failed to parse"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoad_File(t *testing.T) {
	f, err := Load("testdata/relu_sum.yaml")
	require.NoError(t, err)
	assert.Equal(t, "relu-sum", f.Name)

	outputs, err := vm.New(cpu.New()).Run(f.Program, f.Inputs)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, outputs["total"].ScalarFloat(), 1e-6)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("testdata/no_such_file.yaml")
	assert.ErrorContains(t, err, "failed to read run file")
}

func TestDump_Golden(t *testing.T) {
	f, err := Load("testdata/relu_sum.yaml")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "relu_sum", []byte(f.Program.Dump()))
}
