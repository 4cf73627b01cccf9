// Package provider defines the byte store that holds stamp records.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). The record framing is owned by
// jobstamp; a provider never interprets the bytes.
//
// Records never expire on their own. Removing old stamps is left to the
// operator (e.g. clearing the stamp directory).
package provider

import (
	"context"
)

// Provider is a minimal byte store keyed by stamp key.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value. A reader
	// must observe either the old or the new value, never a mix.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
