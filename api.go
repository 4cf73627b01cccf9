package jobstamp

import (
	"context"

	c "github.com/unkn0wn-root/jobstamp/codec"
	pr "github.com/unkn0wn-root/jobstamp/provider"
)

// Stamper runs jobs and reuses their stamped results while the declared
// dependencies and outputs are unchanged.
// V is the job's result type. Serialization is handled by a pluggable Codec[V].
type Stamper[V any] interface {
	// Run returns the recorded result when the record for job is fresh,
	// otherwise runs the job, records its result and returns it.
	Run(ctx context.Context, job Job[V], ro RunOptions) (V, error)

	// OutOfDate reports whether Run would execute the job. It never runs the
	// job and never writes.
	OutOfDate(ctx context.Context, job Job[V], ro RunOptions) (Verdict, error)

	// Close releases the configured Provider, if any.
	Close(ctx context.Context) error
}

// Job is one memoizable computation. Name and Args form its identity: two
// jobs with equal Name and Args share a record. Args must be serializable
// with CBOR (no funcs, channels or complex numbers).
type Job[V any] struct {
	Name string
	Args []any
	Fn   func(ctx context.Context) (V, error)
}

// Func binds a single argument to fn, using it both as the job's identity
// and as its input.
func Func[A, V any](name string, fn func(context.Context, A) (V, error), arg A) Job[V] {
	return Job[V]{
		Name: name,
		Args: []any{arg},
		Fn:   func(ctx context.Context) (V, error) { return fn(ctx, arg) },
	}
}

// RunOptions are per-invocation settings.
type RunOptions struct {
	// Dependencies are files whose change makes the record stale. Order is
	// kept; the first stale one is reported.
	Dependencies []string
	// Outputs are files the job is expected to produce. A missing one makes
	// the record stale.
	Outputs []string
	// Dir overrides the stamp directory for this call. When set, records are
	// kept in files under Dir even if Options.Provider is configured.
	Dir string
	// Method defaults to TimeBased. Config.AlwaysUseHashes overrides it.
	Method Method
}

// Options tune the behavior of the stamper.
// Only Codec is required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Codec c.Codec[V]

	Namespace string      // separates unrelated tools sharing a directory; "" => "jobstamp"
	Dir       string      // stamp directory when Provider is nil; "" => $TMPDIR/jobstamps
	Provider  pr.Provider // nil => files under Dir (provider/fs)
	Logger    Logger      // if nil, NopLogger is used (stderr text logger when Config.Debug)
	Hooks     Hooks       // if nil, NopHooks is used
	Config    Config      // process overrides, see ConfigFromEnv
}

func New[V any](opts Options[V]) (Stamper[V], error) {
	return newStamper[V](opts)
}
