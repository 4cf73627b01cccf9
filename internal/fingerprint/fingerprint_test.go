package fingerprint

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lukechampine.com/blake3"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestDigestMatchesBlake3(t *testing.T) {
	p := writeFile(t, t.TempDir(), "dep", "hi")
	got, err := Digest(p)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	want := blake3.Sum256([]byte("hi"))
	if hex.EncodeToString(got) != hex.EncodeToString(want[:]) {
		t.Fatalf("digest = %x, want %x", got, want)
	}
}

func TestTakeIgnoresTimestampForDigest(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "dep", "content")
	first, err := Take(p)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}

	later := time.Unix(0, first.ModTime).Add(5 * time.Second)
	if err := os.Chtimes(p, later, later); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	second, err := Take(p)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if second.ModTime <= first.ModTime {
		t.Fatalf("mtime did not advance: %d -> %d", first.ModTime, second.ModTime)
	}
	if !SameDigest(first.Digest, second.Digest) {
		t.Fatalf("digest changed for identical content")
	}
}

func TestTakeMissing(t *testing.T) {
	_, err := Take(filepath.Join(t.TempDir(), "nope"))
	if !IsMissing(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if Exists(filepath.Join(t.TempDir(), "nope")) {
		t.Fatalf("Exists reported a missing file")
	}
}

func TestDigestRejectsDirectory(t *testing.T) {
	_, err := Digest(t.TempDir())
	if !errors.Is(err, ErrNotRegular) {
		t.Fatalf("expected ErrNotRegular, got %v", err)
	}
}

func TestSameDigestEmptyNeverMatches(t *testing.T) {
	if SameDigest(nil, nil) {
		t.Fatalf("empty recorded digest must not match")
	}
	if !SameDigest([]byte{1, 2}, []byte{1, 2}) || SameDigest([]byte{1}, []byte{2}) {
		t.Fatalf("SameDigest compares wrongly")
	}
}
