// Package fs stores stamp records as one file per key in a directory.
//
// Layout:
//
//	<dir>/<key>.stamp
//
// Writes go to a temporary file in the same directory which is then renamed
// over the target, so a reader sees either the previous record or the new one.
// Concurrent writers of the same key race on the rename; the last one wins.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	pr "github.com/unkn0wn-root/jobstamp/provider"
)

// Ext is the file extension of a stamp record.
const Ext = ".stamp"

// ErrNotDirectory is returned by Open and Lookup when the stamp directory
// path exists but is not a directory.
var ErrNotDirectory = errors.New("fs: stamp directory path exists and is not a directory")

type Provider struct {
	dir  string
	perm os.FileMode
}

var _ pr.Provider = (*Provider)(nil)

// DefaultDir is $TMPDIR/jobstamps.
func DefaultDir() string {
	return filepath.Join(os.TempDir(), "jobstamps")
}

// Open prepares dir (creating it and its parents when needed) and returns a
// provider rooted there. An empty dir means DefaultDir.
func Open(dir string) (*Provider, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	err := stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			if errors.Is(err, syscall.ENOTDIR) {
				return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
			}
			return nil, fmt.Errorf("fs: create stamp directory: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	return &Provider{dir: dir, perm: 0o644}, nil
}

// Lookup returns a provider over an existing dir without touching the
// filesystem beyond a stat. A missing dir yields an error matching
// fs.ErrNotExist; a file in its place yields ErrNotDirectory.
func Lookup(dir string) (*Provider, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := stat(dir); err != nil {
		return nil, err
	}
	return &Provider{dir: dir, perm: 0o644}, nil
}

func stat(dir string) error {
	fi, err := os.Stat(dir)
	switch {
	case err == nil && !fi.IsDir():
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("fs: stamp directory %s: %w", dir, fs.ErrNotExist)
	case errors.Is(err, syscall.ENOTDIR):
		// a parent component is a file
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	default:
		return fmt.Errorf("fs: stat stamp directory: %w", err)
	}
}

// Dir returns the directory the provider writes to.
func (p *Provider) Dir() string { return p.dir }

// Path returns the file a key is stored in.
func (p *Provider) Path(key string) string {
	return filepath.Join(p.dir, key+Ext)
}

func (p *Provider) checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("fs: invalid key %q", key)
	}
	return nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := p.checkKey(key); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte) error {
	if err := p.checkKey(key); err != nil {
		return err
	}
	return writeFileAtomic(p.Path(key), value, p.perm)
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.checkKey(key); err != nil {
		return err
	}
	err := os.Remove(p.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (p *Provider) Close(context.Context) error { return nil }

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
