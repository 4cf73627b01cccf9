package jobstamp

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	c "github.com/unkn0wn-root/jobstamp/codec"
	"github.com/unkn0wn-root/jobstamp/internal/fingerprint"
	"github.com/unkn0wn-root/jobstamp/internal/keys"
	pr "github.com/unkn0wn-root/jobstamp/provider"
	fsp "github.com/unkn0wn-root/jobstamp/provider/fs"
)

const defaultNamespace = "jobstamp"

// debugOutput is where the fallback debug logger writes.
var debugOutput io.Writer = os.Stderr

type stamper[V any] struct {
	ns       string
	codec    c.Codec[V]
	dir      string
	provider pr.Provider
	log      Logger
	hooks    Hooks
	cfg      Config
}

func newStamper[V any](opts Options[V]) (*stamper[V], error) {
	if opts.Codec == nil {
		return nil, ErrNoCodec
	}
	s := &stamper[V]{
		codec:    opts.Codec,
		dir:      opts.Dir,
		provider: opts.Provider,
		cfg:      opts.Config,
	}

	// defaults
	s.ns = coalesce(opts.Namespace, defaultNamespace)
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	var fallback Logger = NopLogger{}
	if s.cfg.Debug {
		fallback = newTextLogger(debugOutput)
	}
	s.log = coalesce[Logger](opts.Logger, fallback)

	return s, nil
}

func (s *stamper[V]) Close(ctx context.Context) error {
	if s.provider != nil {
		return s.provider.Close(ctx)
	}
	return nil
}

func (s *stamper[V]) method(ro RunOptions) Method {
	if s.cfg.AlwaysUseHashes {
		return ContentHashBased
	}
	if !ro.Method.valid() {
		return TimeBased
	}
	return ro.Method
}

func (s *stamper[V]) key(job Job[V]) (string, error) {
	if job.Name == "" {
		return "", ErrNoJobName
	}
	k, err := keys.Build(s.ns, job.Name, job.Args)
	if err != nil {
		return "", &SerializationError{Job: job.Name, Op: "key", Err: err}
	}
	return k.String(), nil
}

// open resolves the store for one call: RunOptions.Dir, then the configured
// provider, then files under Options.Dir. A stamp directory is created only
// when create is set; otherwise it must already exist.
func (s *stamper[V]) open(ro RunOptions, create bool) (stampStore, error) {
	if ro.Dir == "" && s.provider != nil {
		return stampStore{p: s.provider}, nil
	}
	dir := coalesce(ro.Dir, s.dir)
	openDir := fsp.Lookup
	if create {
		openDir = fsp.Open
	}
	p, err := openDir(dir)
	if err != nil {
		return stampStore{}, err
	}
	return stampStore{p: p}, nil
}

// load looks up the record for key. Read and decode failures are reported
// and then treated as an absent record.
func (s *stamper[V]) load(ctx context.Context, st stampStore, key string) *Record {
	rec, err := st.lookup(ctx, key)
	if err == nil {
		return rec
	}
	var ce *CorruptRecordError
	if errors.As(err, &ce) {
		s.corrupt(ce)
		return nil
	}
	s.log.Warn("stamp read failed; treating as missing", Fields{"key": key, "err": err})
	return nil
}

func (s *stamper[V]) corrupt(ce *CorruptRecordError) {
	s.hooks.CorruptRecord(ce.Key, ce.Err)
	s.log.Warn("corrupt stamp record; recomputing", Fields{"key": ce.Key, "err": ce.Err})
}

func (s *stamper[V]) OutOfDate(ctx context.Context, job Job[V], ro RunOptions) (Verdict, error) {
	m := s.method(ro)
	key, err := s.key(job)
	if err != nil {
		return Verdict{}, err
	}
	st, err := s.open(ro, false)
	if err != nil {
		// Nothing can be recorded in a directory that is absent or unusable.
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("stamp directory unusable; reporting stale", Fields{"err": err})
		}
		return staleBy(ReasonNoRecord, ""), nil
	}
	rec := s.load(ctx, st, key)
	return m.Check(rec, ro.Dependencies, ro.Outputs), nil
}

func (s *stamper[V]) Run(ctx context.Context, job Job[V], ro RunOptions) (V, error) {
	var zero V
	if job.Fn == nil {
		return zero, ErrNoJobFunc
	}
	m := s.method(ro)

	if s.cfg.Disabled {
		s.trace(job.Name, "", "disabled", Verdict{Stale: true}, m)
		return job.Fn(ctx)
	}

	key, err := s.key(job)
	if err != nil {
		return zero, err
	}
	st, err := s.open(ro, true)
	if err != nil {
		return zero, err
	}

	rec := s.load(ctx, st, key)
	verdict := m.Check(rec, ro.Dependencies, ro.Outputs)
	if !verdict.Stale {
		v, err := s.codec.Decode(rec.Payload)
		if err == nil {
			s.hooks.Hit(job.Name, key)
			s.trace(job.Name, key, "hit", verdict, m)
			return v, nil
		}
		s.corrupt(&CorruptRecordError{Key: key, Err: err})
		verdict = staleBy(ReasonNoRecord, "")
	}

	s.hooks.Miss(job.Name, key, verdict.Reason, verdict.Path)
	s.trace(job.Name, key, "miss", verdict, m)

	v, err := job.Fn(ctx)
	if err != nil {
		return zero, err
	}
	payload, err := s.codec.Encode(v)
	if err != nil {
		return zero, &SerializationError{Job: job.Name, Op: "encode", Err: err}
	}

	out := &Record{
		Method:       m,
		Fingerprints: s.fingerprints(ro.Dependencies),
		Outputs:      ro.Outputs,
		Payload:      payload,
	}
	if err := st.save(ctx, key, out); err != nil {
		s.hooks.SaveFailed(key, err)
		s.log.Error("stamp write failed; result not memoized", Fields{"job": job.Name, "key": key, "err": err})
	}
	return v, nil
}

// fingerprints observes every dependency that can be read. The rest are left
// out of the record so the next check reports them as stale.
func (s *stamper[V]) fingerprints(deps []string) []Fingerprint {
	if len(deps) == 0 {
		return nil
	}
	out := make([]Fingerprint, 0, len(deps))
	for _, d := range deps {
		f, err := fingerprint.Take(d)
		if err != nil {
			s.hooks.FingerprintSkipped(d, err)
			if !fingerprint.IsMissing(err) {
				s.log.Warn("dependency not fingerprinted", Fields{"path": d, "err": err})
			}
			continue
		}
		out = append(out, Fingerprint(f))
	}
	return out
}

func (s *stamper[V]) trace(job, key, outcome string, v Verdict, m Method) {
	if !s.cfg.Debug {
		return
	}
	f := Fields{
		"job":     job,
		"outcome": outcome,
		"method":  m.String(),
	}
	if key != "" {
		f["key"] = keys.Key(key).Short()
	}
	if v.Stale && v.Reason != ReasonNone {
		f["reason"] = v.Reason.String()
	}
	if v.Path != "" {
		f["path"] = v.Path
	}
	s.log.Debug("jobstamp", f)
}

// coalesce returns def when v is the zero value of T, otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
