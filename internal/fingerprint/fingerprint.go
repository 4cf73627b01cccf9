// Package fingerprint observes dependency files: modification time and a
// BLAKE3-256 digest of their content.
package fingerprint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"lukechampine.com/blake3"
)

// DigestSize is the length in bytes of a content digest.
const DigestSize = 32

// ErrNotRegular is returned for directories and other non-regular files,
// which cannot be content-hashed.
var ErrNotRegular = errors.New("fingerprint: not a regular file")

// File is one dependency observation.
type File struct {
	Path    string
	ModTime int64 // unix nanoseconds
	Digest  []byte
}

// ModTime returns the modification time of path in unix nanoseconds.
func ModTime(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.ModTime().UnixNano(), nil
}

// Digest streams the content of path through BLAKE3-256.
func Digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	h := blake3.New(DigestSize, nil)
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("fingerprint: read %s: %w", path, err)
	}
	return h.Sum(nil), nil
}

// Take records both the modification time and the digest of path.
func Take(path string) (File, error) {
	mt, err := ModTime(path)
	if err != nil {
		return File{}, err
	}
	d, err := Digest(path)
	if err != nil {
		return File{}, err
	}
	return File{Path: path, ModTime: mt, Digest: d}, nil
}

// Exists reports whether path can be stat'ed. Any error counts as absent.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsMissing reports whether err means the path does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// SameDigest compares two digests; an empty recorded digest never matches.
func SameDigest(recorded, current []byte) bool {
	return len(recorded) > 0 && bytes.Equal(recorded, current)
}
