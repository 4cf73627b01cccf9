package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR stores job results as CBOR. Build it with NewCBOR or MustCBOR; the
// zero value has no modes and panics on use.
//
// Stamp keys are CBOR too, but that encoding lives in internal/keys and is
// fixed: arguments always go through Core Deterministic Encoding and opaque
// structs are refused, because equal arguments must hash to equal keys. A
// result payload has no such duty. It is read back only through Decode, so
// determinism here is optional and only matters when the stamp files are
// themselves compared or content addressed. Payloads never affect the key.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// maxPayloadNesting bounds decoding of a stamp payload.
const maxPayloadNesting = 64

// NewCBOR returns a codec whose payloads use Core Deterministic Encoding when
// deterministic is set and the preferred unsorted form otherwise. Times are
// written as RFC 3339 strings with nanoseconds in both cases.
func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := cbor.DecOptions{MaxNestedLevels: maxPayloadNesting}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR panics where NewCBOR would return an error.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	cc, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return cc
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	if err := c.dec.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}
