package keys

import (
	"encoding"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// maxDepth bounds the argument walk so self-referencing pointers terminate.
const maxDepth = 64

var (
	typeTime            = reflect.TypeOf(time.Time{})
	typeBigInt          = reflect.TypeOf(big.Int{})
	typeMarshaler       = reflect.TypeOf((*cbor.Marshaler)(nil)).Elem()
	typeBinaryMarshaler = reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem()
	typeTextMarshaler   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// OpaqueArgError reports an argument whose value CBOR cannot see in full:
// a struct with unexported fields and no marshaler. Encoding it would drop
// the hidden state, so two different values could share one key.
type OpaqueArgError struct {
	Type  reflect.Type
	Field string
}

func (e *OpaqueArgError) Error() string {
	return fmt.Sprintf("keys: %s has unexported field %q and implements no marshaler", e.Type, e.Field)
}

// checkArgs rejects values that would encode lossily.
func checkArgs(args []any) error {
	for _, a := range args {
		if err := checkValue(reflect.ValueOf(a), 0); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(v reflect.Value, depth int) error {
	if !v.IsValid() {
		return nil
	}
	if depth > maxDepth {
		return fmt.Errorf("keys: argument nested deeper than %d levels", maxDepth)
	}
	t := v.Type()
	if selfEncoding(t) {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return checkValue(v.Elem(), depth+1)

	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if skipped(f) {
				continue
			}
			if !f.IsExported() && !promotes(f) {
				return &OpaqueArgError{Type: t, Field: f.Name}
			}
			if err := checkValue(v.Field(i), depth+1); err != nil {
				return err
			}
		}

	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkValue(v.Index(i), depth+1); err != nil {
				return err
			}
		}

	case reflect.Map:
		it := v.MapRange()
		for it.Next() {
			if err := checkValue(it.Key(), depth+1); err != nil {
				return err
			}
			if err := checkValue(it.Value(), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// selfEncoding reports types the encoder handles through a marshaler or a
// built-in representation rather than by reflecting over fields.
func selfEncoding(t reflect.Type) bool {
	if t == typeTime || t == typeBigInt {
		return true
	}
	if t.Kind() == reflect.Interface {
		return false
	}
	pt := reflect.PointerTo(t)
	return pt.Implements(typeMarshaler) ||
		pt.Implements(typeBinaryMarshaler) ||
		pt.Implements(typeTextMarshaler)
}

// promotes reports an embedded unexported struct whose exported fields the
// encoder lifts into the parent. Embedded pointers to unexported structs are
// not followed by the encoder and so do not count.
func promotes(f reflect.StructField) bool {
	return f.Anonymous && f.Type.Kind() == reflect.Struct
}

// skipped mirrors the encoder's "-" tag handling: a cbor tag wins, a json
// tag is consulted only when there is none.
func skipped(f reflect.StructField) bool {
	tag, ok := f.Tag.Lookup("cbor")
	if !ok {
		tag = f.Tag.Get("json")
	}
	name, _, _ := strings.Cut(tag, ",")
	return name == "-"
}
