package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

// Protobuf stores proto.Message results. Encoding is deterministic so that
// map fields do not make equal messages produce different payloads.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *mypb.Report { return &mypb.Report{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	if c.new == nil {
		var zero T
		return zero, errors.New("codec: protobuf codec has no message constructor")
	}
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
