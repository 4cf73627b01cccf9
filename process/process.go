// Package process memoizes external commands. A command's captured stdout,
// stderr and exit status are stored as the job result; on a hit they are
// replayed instead of running the command again.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/unkn0wn-root/jobstamp"
	"github.com/unkn0wn-root/jobstamp/codec"
)

// Identity is the job name under which commands are keyed; the argv is the
// only argument.
const Identity = "process"

var (
	ErrNoCommand = errors.New("process: empty command")
	ErrNoStamper = errors.New("process: runner has no stamper")
)

// Result is what gets stored for a command.
type Result struct {
	Stdout   []byte `msgpack:"stdout"`
	Stderr   []byte `msgpack:"stderr"`
	ExitCode int    `msgpack:"code"`
}

// SignaledError reports a command that did not exit normally (killed by a
// signal, usually on context cancellation). Such runs are not recorded.
type SignaledError struct {
	Argv []string
	Err  error
}

func (e *SignaledError) Error() string {
	return fmt.Sprintf("process: %s terminated abnormally: %v", e.Argv[0], e.Err)
}

func (e *SignaledError) Unwrap() error { return e.Err }

// NewStamper is jobstamp.New with the msgpack codec as default.
func NewStamper(opts jobstamp.Options[Result]) (jobstamp.Stamper[Result], error) {
	if opts.Codec == nil {
		opts.Codec = codec.Msgpack[Result]{}
	}
	return jobstamp.New[Result](opts)
}

// Runner runs commands through a Stamper.
type Runner struct {
	Stamper jobstamp.Stamper[Result]

	// Stdout and Stderr receive the command output, live on a miss and
	// replayed on a hit. nil discards.
	Stdout io.Writer
	Stderr io.Writer

	// Dir and Env configure the child process. They are not part of the key.
	Dir string
	Env []string
}

// Run executes argv unless a fresh record exists, and returns the command's
// exit status. A non-zero status is a normal, recorded result. Failing to
// start the command (not found, not executable) is returned as an error and
// nothing is recorded.
func (r *Runner) Run(ctx context.Context, argv []string, ro jobstamp.RunOptions) (int, error) {
	if len(argv) == 0 {
		return 0, ErrNoCommand
	}
	if r.Stamper == nil {
		return 0, ErrNoStamper
	}

	executed := false
	job := jobstamp.Job[Result]{
		Name: Identity,
		Args: []any{argv},
		Fn: func(ctx context.Context) (Result, error) {
			executed = true
			return r.exec(ctx, argv)
		},
	}
	res, err := r.Stamper.Run(ctx, job, ro)
	if err != nil {
		return 0, err
	}
	if !executed {
		if err := r.replay(res); err != nil {
			return res.ExitCode, err
		}
	}
	return res.ExitCode, nil
}

func (r *Runner) exec(ctx context.Context, argv []string) (Result, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, orDiscard(r.Stdout))
	cmd.Stderr = io.MultiWriter(&stderr, orDiscard(r.Stderr))

	code := 0
	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return Result{}, err
		}
		if !ee.Exited() {
			return Result{}, &SignaledError{Argv: argv, Err: err}
		}
		code = ee.ExitCode()
	}

	return Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: code,
	}, nil
}

func (r *Runner) replay(res Result) error {
	if _, err := orDiscard(r.Stdout).Write(res.Stdout); err != nil {
		return fmt.Errorf("process: replay stdout: %w", err)
	}
	if _, err := orDiscard(r.Stderr).Write(res.Stderr); err != nil {
		return fmt.Errorf("process: replay stderr: %w", err)
	}
	return nil
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
