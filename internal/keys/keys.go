// Package keys derives stamp keys from a job's identity and arguments.
//
// Key material layout (format v1):
//
//	tag("jobstamp/key/v1") | len(ns) ns | len(identity) identity | cbor(args)
//
// Lengths are unsigned varints. Arguments are encoded with CBOR Core
// Deterministic Encoding (RFC 8949 section 4.2.1): map keys are sorted and
// every value uses its shortest form, so the same argument values give the
// same bytes on every run and every machine. The material is hashed with
// BLAKE3-256 and rendered as 64 lowercase hex characters.
//
// CBOR only sees exported struct fields. A struct with unexported state is
// accepted when it encodes itself (cbor.Marshaler, encoding.BinaryMarshaler
// or encoding.TextMarshaler) and rejected otherwise, so values like
// errors.New("a") and errors.New("b") never collapse onto one key.
//
// Two different inputs share a key only on a BLAKE3 collision. A 256-bit
// digest makes that negligible in practice; it is not treated as impossible,
// a collision would return the other job's result.
package keys

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"lukechampine.com/blake3"
)

const formatTag = "jobstamp/key/v1"

// Key is the hex digest naming one stamp record.
type Key string

func (k Key) String() string { return string(k) }

// Short is the first 12 hex characters, enough for log lines.
func (k Key) Short() string {
	if len(k) < 12 {
		return string(k)
	}
	return string(k[:12])
}

var canonical cbor.EncMode

func init() {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	eo.TextMarshaler = cbor.TextMarshalerTextString
	em, err := eo.EncMode()
	if err != nil {
		panic(fmt.Sprintf("keys: canonical cbor mode: %v", err))
	}
	canonical = em
}

// EncodeArgs returns the canonical encoding of args.
func EncodeArgs(args []any) ([]byte, error) {
	if args == nil {
		args = []any{}
	}
	if err := checkArgs(args); err != nil {
		return nil, err
	}
	return canonical.Marshal(args)
}

// Build returns the key for (namespace, identity, args). It never mutates
// args. An argument without a canonical CBOR form (func, chan, unsafe
// pointer, unsupported map key, opaque struct) yields an error instead of a
// weaker key.
func Build(namespace, identity string, args []any) (Key, error) {
	enc, err := EncodeArgs(args)
	if err != nil {
		return "", err
	}

	h := blake3.New(32, nil)
	_, _ = h.Write([]byte(formatTag))
	writeField(h, namespace)
	writeField(h, identity)
	_, _ = h.Write(enc)

	return Key(hex.EncodeToString(h.Sum(nil))), nil
}

func writeField(h *blake3.Hasher, s string) {
	var n [binary.MaxVarintLen64]byte
	l := binary.PutUvarint(n[:], uint64(len(s)))
	_, _ = h.Write(n[:l])
	_, _ = h.Write([]byte(s))
}
