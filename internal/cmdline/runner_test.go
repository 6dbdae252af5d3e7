package cmdline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+content), 0755))
	return path
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	script := writeScript(t, "echo \"out $1\"\necho err >&2\n")

	result, err := NewExecRunner().Run(context.Background(), script, "arg")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "out arg\n", string(result.Stdout))
	assert.Equal(t, "err\n", string(result.Stderr))
}

func TestExecRunnerNonZeroExitIsNotAnError(t *testing.T) {
	script := writeScript(t, "exit 3\n")

	result, err := NewExecRunner().Run(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
}

func TestExecRunnerLaunchFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.sh")

	_, err := NewExecRunner().Run(context.Background(), missing)
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, missing, cmdErr.Name)
	assert.False(t, errors.Is(err, ErrCommandFailed))
}

func TestExecRunnerPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores execute permission bits")
	}
	path := filepath.Join(t.TempDir(), "noexec.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0644))

	_, err := NewExecRunner().Run(context.Background(), path)
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))
}

func TestRunAndCheck(t *testing.T) {
	ok := writeScript(t, "exit 0\n")
	bad := writeScript(t, "echo broken >&2\nexit 1\n")
	runner := NewExecRunner()

	_, err := RunAndCheck(context.Background(), runner, 0, ok)
	assert.NoError(t, err)

	_, err = RunAndCheck(context.Background(), runner, 0, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "broken")
}
