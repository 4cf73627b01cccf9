package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	version byte = 1

	maxPath   = 0xFFFF
	maxDigest = 0xFF
)

var (
	ErrCorrupt = errors.New("jobstamp: corrupt stamp record")
	magic4     = [...]byte{'J', 'S', 'T', 'P'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

type Fingerprint struct {
	Path    string
	ModTime int64
	Digest  []byte
}

type Record struct {
	Method       byte
	Fingerprints []Fingerprint
	Outputs      []string
	Payload      []byte
}

// Stamp record:
//
//	magic(4) | ver(1) | method(1)
//	nfp(u32 be) | { plen(u16 be) | path | mtime(i64 be) | dlen(u8) | digest } * nfp
//	nout(u32 be) | { plen(u16 be) | path } * nout
//	vlen(u32 be) | payload(vlen)
//
// Nothing may follow the payload.
func EncodeRecord(r Record) ([]byte, error) {
	total := 4 + 1 + 1 + 4 + 4 + 4 + len(r.Payload)
	for _, fp := range r.Fingerprints {
		if len(fp.Path) > maxPath {
			return nil, fmt.Errorf("wire: dependency path too long (%d bytes)", len(fp.Path))
		}
		if len(fp.Digest) > maxDigest {
			return nil, fmt.Errorf("wire: digest too long (%d bytes)", len(fp.Digest))
		}
		total += 2 + len(fp.Path) + 8 + 1 + len(fp.Digest)
	}
	for _, o := range r.Outputs {
		if len(o) > maxPath {
			return nil, fmt.Errorf("wire: output path too long (%d bytes)", len(o))
		}
		total += 2 + len(o)
	}

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(r.Method)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint32(u4[:], uint32(len(r.Fingerprints)))
	buf.Write(u4[:])
	for _, fp := range r.Fingerprints {
		binary.BigEndian.PutUint16(u2[:], uint16(len(fp.Path)))
		buf.Write(u2[:])
		buf.WriteString(fp.Path)

		binary.BigEndian.PutUint64(u8[:], uint64(fp.ModTime))
		buf.Write(u8[:])

		buf.WriteByte(byte(len(fp.Digest)))
		buf.Write(fp.Digest)
	}

	binary.BigEndian.PutUint32(u4[:], uint32(len(r.Outputs)))
	buf.Write(u4[:])
	for _, o := range r.Outputs {
		binary.BigEndian.PutUint16(u2[:], uint16(len(o)))
		buf.Write(u2[:])
		buf.WriteString(o)
	}

	binary.BigEndian.PutUint32(u4[:], uint32(len(r.Payload)))
	buf.Write(u4[:])
	buf.Write(r.Payload)

	return buf.Bytes(), nil
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) take(n int) ([]byte, bool) {
	if n < 0 || n > len(r.b)-r.off { // overflow-safe bound check
		return nil, false
	}
	s := r.b[r.off : r.off+n]
	r.off += n
	return s, true
}

func (r *reader) u8() (byte, bool) {
	s, ok := r.take(1)
	if !ok {
		return 0, false
	}
	return s[0], true
}

func (r *reader) u16() (int, bool) {
	s, ok := r.take(2)
	if !ok {
		return 0, false
	}
	return int(binary.BigEndian.Uint16(s)), true
}

func (r *reader) u32() (int, bool) {
	s, ok := r.take(4)
	if !ok {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(s)), true
}

func (r *reader) i64() (int64, bool) {
	s, ok := r.take(8)
	if !ok {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(s)), true
}

// DecodeRecord parses a stamp record. Paths and digests are copied; the
// payload slice aliases b.
func DecodeRecord(b []byte) (Record, error) {
	const hdr = 4 + 1 + 1
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return Record{}, ErrCorrupt
	}
	rd := &reader{b: b, off: hdr}
	rec := Record{Method: b[5]}

	nfp, ok := rd.u32()
	// each fingerprint needs at least 11 bytes; reject absurd counts early
	if !ok || nfp > (len(b)-rd.off)/11 {
		return Record{}, ErrCorrupt
	}
	if nfp > 0 {
		rec.Fingerprints = make([]Fingerprint, 0, nfp)
	}
	for i := 0; i < nfp; i++ {
		plen, ok := rd.u16()
		if !ok {
			return Record{}, ErrCorrupt
		}
		path, ok := rd.take(plen)
		if !ok {
			return Record{}, ErrCorrupt
		}
		mt, ok := rd.i64()
		if !ok {
			return Record{}, ErrCorrupt
		}
		dlen, ok := rd.u8()
		if !ok {
			return Record{}, ErrCorrupt
		}
		digest, ok := rd.take(int(dlen))
		if !ok {
			return Record{}, ErrCorrupt
		}
		rec.Fingerprints = append(rec.Fingerprints, Fingerprint{
			Path:    string(path),
			ModTime: mt,
			Digest:  append([]byte(nil), digest...),
		})
	}

	nout, ok := rd.u32()
	if !ok || nout > (len(b)-rd.off)/2 {
		return Record{}, ErrCorrupt
	}
	if nout > 0 {
		rec.Outputs = make([]string, 0, nout)
	}
	for i := 0; i < nout; i++ {
		plen, ok := rd.u16()
		if !ok {
			return Record{}, ErrCorrupt
		}
		path, ok := rd.take(plen)
		if !ok {
			return Record{}, ErrCorrupt
		}
		rec.Outputs = append(rec.Outputs, string(path))
	}

	vlen, ok := rd.u32()
	if !ok {
		return Record{}, ErrCorrupt
	}
	payload, ok := rd.take(vlen)
	if !ok {
		return Record{}, ErrCorrupt
	}
	if rd.off != len(b) {
		return Record{}, ErrCorrupt
	}
	rec.Payload = payload
	return rec, nil
}
