package jobstamp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/unkn0wn-root/jobstamp/internal/wire"
)

func TestStoreSaveLookup(t *testing.T) {
	ctx := context.Background()
	st := stampStore{p: newMemProvider()}

	if rec, err := st.lookup(ctx, "k"); rec != nil || err != nil {
		t.Fatalf("absent key: rec=%v err=%v", rec, err)
	}

	in := &Record{
		Method:       ContentHashBased,
		Fingerprints: []Fingerprint{{Path: "a.txt", ModTime: 42, Digest: []byte{1, 2, 3}}},
		Outputs:      []string{"out.txt"},
		Payload:      []byte(`16`),
	}
	if err := st.save(ctx, "k", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.lookup(ctx, "k")
	if err != nil || got == nil {
		t.Fatalf("lookup: %v", err)
	}
	fp, ok := got.fingerprint("a.txt")
	if got.Method != ContentHashBased || !ok || fp.ModTime != 42 || !bytes.Equal(fp.Digest, []byte{1, 2, 3}) {
		t.Fatalf("unexpected record %+v", got)
	}
	if len(got.Outputs) != 1 || got.Outputs[0] != "out.txt" || string(got.Payload) != "16" {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestStoreRejectsUnknownMethod(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	raw, err := wire.EncodeRecord(wire.Record{Method: 7})
	if err != nil {
		t.Fatal(err)
	}
	_ = mp.Set(ctx, "k", raw)

	_, err = stampStore{p: mp}.lookup(ctx, "k")
	var ce *CorruptRecordError
	if !errors.As(err, &ce) || !errors.Is(err, wire.ErrCorrupt) {
		t.Fatalf("expected CorruptRecordError wrapping ErrCorrupt, got %v", err)
	}
}
