package process

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unkn0wn-root/jobstamp"
)

func newRunner(t *testing.T) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	s, err := NewStamper(jobstamp.Options[Result]{Dir: t.TempDir()})
	require.NoError(t, err)
	var out, errb bytes.Buffer
	return &Runner{Stamper: s, Stdout: &out, Stderr: &errb}, &out, &errb
}

func runs(t *testing.T, counter string) int {
	t.Helper()
	b, err := os.ReadFile(counter)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(b), "\n")
}

func TestRunAndReplay(t *testing.T) {
	r, out, errb := newRunner(t)
	counter := filepath.Join(t.TempDir(), "count")
	argv := []string{"sh", "-c", "echo run >> " + counter + "; echo out; echo err >&2; exit 3"}

	code, err := r.Run(context.Background(), argv, jobstamp.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "out\n", out.String())
	assert.Equal(t, "err\n", errb.String())

	out.Reset()
	errb.Reset()
	code, err = r.Run(context.Background(), argv, jobstamp.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, code, "exit status replayed")
	assert.Equal(t, "out\n", out.String(), "stdout replayed")
	assert.Equal(t, "err\n", errb.String(), "stderr replayed")
	assert.Equal(t, 1, runs(t, counter), "command must run once")
}

func TestDependencyChangeReruns(t *testing.T) {
	r, out, _ := newRunner(t)
	dep := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(dep, []byte("Hello\n"), 0o644))
	ro := jobstamp.RunOptions{Dependencies: []string{dep}}
	argv := []string{"cat", dep}

	_, err := r.Run(context.Background(), argv, ro)
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", out.String())

	require.NoError(t, os.WriteFile(dep, []byte("World\n"), 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(dep, future, future))

	out.Reset()
	_, err = r.Run(context.Background(), argv, ro)
	require.NoError(t, err)
	assert.Equal(t, "World\n", out.String())
}

func TestDifferentArgvDifferentRecord(t *testing.T) {
	r, out, _ := newRunner(t)
	_, err := r.Run(context.Background(), []string{"echo", "a"}, jobstamp.RunOptions{})
	require.NoError(t, err)
	_, err = r.Run(context.Background(), []string{"echo", "b"}, jobstamp.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", out.String())
}

func TestCommandNotFound(t *testing.T) {
	r, _, _ := newRunner(t)
	_, err := r.Run(context.Background(), []string{"jobstamp-no-such-command-xyz"}, jobstamp.RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestNotFoundIsNotRecorded(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStamper(jobstamp.Options[Result]{Dir: dir})
	require.NoError(t, err)
	r := &Runner{Stamper: s}

	_, err = r.Run(context.Background(), []string{"jobstamp-no-such-command-xyz"}, jobstamp.RunOptions{})
	require.Error(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorkingDirectory(t *testing.T) {
	r, out, _ := newRunner(t)
	wd := t.TempDir()
	r.Dir = wd
	_, err := r.Run(context.Background(), []string{"pwd"}, jobstamp.RunOptions{})
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEmptyArgvAndMissingStamper(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), nil, jobstamp.RunOptions{})
	assert.ErrorIs(t, err, ErrNoCommand)
	_, err = (&Runner{}).Run(context.Background(), []string{"true"}, jobstamp.RunOptions{})
	assert.ErrorIs(t, err, ErrNoStamper)
}
