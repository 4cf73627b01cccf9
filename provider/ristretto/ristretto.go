// Package ristretto keeps stamp records in process memory. Records vanish
// with the process, which suits long-lived tools that memoize the same
// generator calls many times (watch loops, language servers, tests).
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"
	pr "github.com/unkn0wn-root/jobstamp/provider"
)

type Provider struct {
	c *rc.Cache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64 // total bytes of record data kept
	BufferItems int64
	Metrics     bool
}

// DefaultConfig sizes the cache for roughly 10k records / 64 MiB.
func DefaultConfig() Config {
	return Config{NumCounters: 100_000, MaxCost: 64 << 20, BufferItems: 64}
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set copies value and waits for the write buffer to drain, so a Get that
// follows in the same goroutine sees the record.
func (p *Provider) Set(_ context.Context, key string, value []byte) error {
	cp := append([]byte(nil), value...)
	if !p.c.Set(key, cp, int64(len(cp))) {
		return errors.New("ristretto: write rejected")
	}
	p.c.Wait()
	return nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
