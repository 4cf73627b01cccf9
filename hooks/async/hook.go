// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/jobstamp"
//	"github.com/unkn0wn-root/jobstamp/codec"
//	asynchook "github.com/unkn0wn-root/jobstamp/hooks/async"
//	"github.com/unkn0wn-root/jobstamp/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    HitEvery:  100, // sample logs: ~every 100th hit
//	    MissEvery: 1,   // log every miss
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	s, _ := jobstamp.New[Report](jobstamp.Options[Report]{
//	    Codec: codec.JSON[Report]{},
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/jobstamp"
)

type Hooks struct {
	inner  jobstamp.Hooks
	q      chan func()
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

var _ jobstamp.Hooks = (*Hooks)(nil)

func New(inner jobstamp.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) Hit(job, key string) { h.try(func() { h.inner.Hit(job, key) }) }
func (h *Hooks) Miss(job, key string, r jobstamp.Reason, path string) {
	h.try(func() { h.inner.Miss(job, key, r, path) })
}
func (h *Hooks) CorruptRecord(key string, err error) {
	h.try(func() { h.inner.CorruptRecord(key, err) })
}
func (h *Hooks) SaveFailed(key string, err error) { h.try(func() { h.inner.SaveFailed(key, err) }) }
func (h *Hooks) FingerprintSkipped(path string, err error) {
	h.try(func() { h.inner.FingerprintSkipped(path, err) })
}
