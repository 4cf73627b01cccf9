// Package codec turns job results into the payload bytes kept inside a stamp
// record and back again.
//
// A codec used with jobstamp must round-trip: Decode(Encode(v)) has to yield a
// value the caller cannot tell apart from v, because a cache hit returns the
// decoded value instead of calling the job.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
