package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "axon v")
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "testdata/add.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sum: float32[2] = [4 6]\n", out)
}

func TestRunCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "run", "testdata/no_such_file.yaml")
	assert.ErrorContains(t, err, "failed to read run file")
}

func TestDumpCommand(t *testing.T) {
	out, err := execute(t, "dump", "testdata/add.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `0: In("a") out=[0]`)
	assert.Contains(t, out, "2: Add in=[0 1] out=[2]")
	assert.Contains(t, out, "outputs: sum")
}
