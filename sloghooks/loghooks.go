// Package sloghooks reports jobstamp events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/jobstamp"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// Optional path redactor for dependency paths. Defaults to identity.
	// Stamp keys are already digests and are logged as-is.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ jobstamp.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

// HashRedact replaces a path with a short SHA-256 prefix.
func HashRedact(p string) string {
	sum := sha256.Sum256([]byte(p))
	return hex.EncodeToString(sum[:8])
}

func (h *Hooks) redact(p string) string {
	if h.opts.Redact != nil && p != "" {
		return h.opts.Redact(p)
	}
	return p
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(job, key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("jobstamp.hit",
		"job", job,
		"key", key)
}

func (h *Hooks) Miss(job, key string, reason jobstamp.Reason, path string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Info("jobstamp.miss",
		"job", job,
		"key", key,
		"reason", reason.String(),
		"path", h.redact(path))
}

func (h *Hooks) CorruptRecord(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("jobstamp.corrupt_record",
		"key", key,
		"err", err)
}

func (h *Hooks) SaveFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("jobstamp.save_failed",
		"key", key,
		"err", err)
}

func (h *Hooks) FingerprintSkipped(path string, err error) {
	if h.l == nil {
		return
	}
	h.l.Debug("jobstamp.fingerprint_skipped",
		"path", h.redact(path),
		"err", err)
}
