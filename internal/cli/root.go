// Package cli implements the jobstamp command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"github.com/unkn0wn-root/jobstamp"
	"github.com/unkn0wn-root/jobstamp/internal/build"
	jszap "github.com/unkn0wn-root/jobstamp/log/zap"
	"github.com/unkn0wn-root/jobstamp/process"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	flagDependencies   = "dependencies"
	flagOutputFiles    = "output-files"
	flagStampDirectory = "stamp-directory"
	flagUseHashes      = "use-hashes"
	flagConfig         = "config"
)

// Exit statuses of the tool itself. Otherwise the command's status is used.
const (
	ExitToolError = 1
	ExitNotFound  = 127
)

var errNoCommand = errors.New("must specify command after '--'")

type options struct {
	dependencies []string
	outputs      []string
	stampDir     string
	useHashes    bool
	configFile   string
}

type rootCommand struct {
	cmd    *cobra.Command
	opts   options
	stdout io.Writer
	stderr io.Writer
	lookup func(string) (string, bool)
	code   int
}

func newRootCommand(stdout, stderr io.Writer, lookup func(string) (string, bool)) *rootCommand {
	rc := &rootCommand{stdout: stdout, stderr: stderr, lookup: lookup}
	rc.cmd = &cobra.Command{
		Use:   "jobstamp [flags] -- CMD [ARGS...]",
		Short: "Run a command only when its inputs changed.",
		Long: `jobstamp runs CMD and records its output and exit status. On later
invocations with the same command line, if none of the --dependencies changed
and all --output-files exist, the recorded output and exit status are replayed
and CMD is not run.`,
		Version:       build.Describe(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          rc.run,
	}
	rc.cmd.SetVersionTemplate("{{.Version}}\n")
	rc.cmd.SetOut(stdout)
	rc.cmd.SetErr(stderr)

	f := rc.cmd.Flags()
	f.StringArrayVar(&rc.opts.dependencies, flagDependencies, nil, "paths which, if changed since the last run, cause the command to be re-run; "+
		"several may follow one flag, and a path starting with '-' must be given as --dependencies=PATH")
	f.StringArrayVar(&rc.opts.outputs, flagOutputFiles, nil, "expected output paths; a missing one causes the command to be re-run; "+
		"several may follow one flag, and a path starting with '-' must be given as --output-files=PATH")
	f.StringVar(&rc.opts.stampDir, flagStampDirectory, "", "directory holding stamp records (default $TMPDIR/jobstamps)")
	f.BoolVar(&rc.opts.useHashes, flagUseHashes, false, "compare dependency content hashes instead of modification times")
	f.StringVar(&rc.opts.configFile, flagConfig, "", "YAML config file (default $"+EnvConfig+")")
	return rc
}

func (rc *rootCommand) run(cmd *cobra.Command, args []string) error {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return errNoCommand
	}
	if dash > 0 {
		return fmt.Errorf("unexpected arguments before '--': %v", args[:dash])
	}
	argv := args[dash:]
	if len(argv) == 0 {
		return errNoCommand
	}

	s, err := resolve(&rc.opts, cmd.Flags().Changed, rc.lookup)
	if err != nil {
		return err
	}

	zl := newLogger(rc.stderr, s.cfg.Debug)
	defer func() { _ = zl.Sync() }()

	stamper, err := process.NewStamper(jobstamp.Options[process.Result]{
		Dir:    s.stampDir,
		Logger: jszap.ZapLogger{L: zl},
		Config: s.cfg,
	})
	if err != nil {
		return err
	}
	defer stamper.Close(cmd.Context())

	method := jobstamp.TimeBased
	if s.useHashes {
		method = jobstamp.ContentHashBased
	}
	r := &process.Runner{Stamper: stamper, Stdout: rc.stdout, Stderr: rc.stderr}
	code, err := r.Run(cmd.Context(), argv, jobstamp.RunOptions{
		Dependencies: rc.opts.dependencies,
		Outputs:      rc.opts.outputs,
		Method:       method,
	})
	if err != nil {
		return err
	}
	rc.code = code
	return nil
}

// newLogger returns a console logger on w when debug is set, a no-op
// logger otherwise.
func newLogger(w io.Writer, debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
	return zap.New(core).Named("jobstamp")
}

// Execute runs jobstamp with args (without the program name) and returns the
// process exit status.
func Execute(args []string, stdout, stderr io.Writer) int {
	return execute(context.Background(), args, stdout, stderr, os.LookupEnv)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	rc := newRootCommand(stdout, stderr, lookup)
	rc.cmd.SetArgs(expandMulti(args, flagDependencies, flagOutputFiles))
	if err := rc.cmd.ExecuteContext(ctx); err != nil {
		return rc.fail(err)
	}
	return rc.code
}

func (rc *rootCommand) fail(err error) int {
	if errors.Is(err, exec.ErrNotFound) {
		var ee *exec.Error
		if errors.As(err, &ee) {
			fmt.Fprintf(rc.stderr, "jobstamp: %s: command not found\n", ee.Name)
		} else {
			fmt.Fprintf(rc.stderr, "jobstamp: %v\n", err)
		}
		return ExitNotFound
	}
	fmt.Fprintf(rc.stderr, "jobstamp: %v\n", err)
	return ExitToolError
}
