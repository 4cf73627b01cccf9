package jobstamp

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/jobstamp/internal/wire"
	pr "github.com/unkn0wn-root/jobstamp/provider"
)

// Fingerprint is what a record remembers about one dependency. Both the
// modification time and the digest are kept, so a record written under one
// Method can be checked under the other.
type Fingerprint struct {
	Path    string
	ModTime int64 // unix nanoseconds
	Digest  []byte
}

// Record is a decoded stamp.
type Record struct {
	Method       Method // method in effect when the record was written
	Fingerprints []Fingerprint
	Outputs      []string
	Payload      []byte // codec-encoded job result
}

func (r *Record) fingerprint(path string) (Fingerprint, bool) {
	for _, fp := range r.Fingerprints {
		if fp.Path == path {
			return fp, true
		}
	}
	return Fingerprint{}, false
}

// stampStore owns the record framing on top of a byte provider.
type stampStore struct {
	p pr.Provider
}

// lookup returns (nil, nil) when no record exists for key.
func (s stampStore) lookup(ctx context.Context, key string) (*Record, error) {
	raw, ok, err := s.p.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("jobstamp: read stamp %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	wr, err := wire.DecodeRecord(raw)
	if err != nil {
		return nil, &CorruptRecordError{Key: key, Err: err}
	}
	m := Method(wr.Method)
	if !m.valid() {
		return nil, &CorruptRecordError{Key: key, Err: fmt.Errorf("%w: unknown method %d", wire.ErrCorrupt, wr.Method)}
	}
	rec := &Record{
		Method:  m,
		Outputs: wr.Outputs,
		Payload: wr.Payload,
	}
	if len(wr.Fingerprints) > 0 {
		rec.Fingerprints = make([]Fingerprint, len(wr.Fingerprints))
		for i, fp := range wr.Fingerprints {
			rec.Fingerprints[i] = Fingerprint(fp)
		}
	}
	return rec, nil
}

func (s stampStore) save(ctx context.Context, key string, rec *Record) error {
	wr := wire.Record{
		Method:  byte(rec.Method),
		Outputs: rec.Outputs,
		Payload: rec.Payload,
	}
	if len(rec.Fingerprints) > 0 {
		wr.Fingerprints = make([]wire.Fingerprint, len(rec.Fingerprints))
		for i, fp := range rec.Fingerprints {
			wr.Fingerprints[i] = wire.Fingerprint(fp)
		}
	}
	b, err := wire.EncodeRecord(wr)
	if err != nil {
		return err
	}
	if err := s.p.Set(ctx, key, b); err != nil {
		return fmt.Errorf("jobstamp: write stamp %s: %w", key, err)
	}
	return nil
}
