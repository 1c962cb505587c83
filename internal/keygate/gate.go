// Package keygate owns the single active upstream API credential. The Riot
// client asks it for a replacement when the upstream rejects the current key;
// the operator surface supplies one out of band. Replacement is a blocking
// exchange with no internal timeout: a stuck gate stalls crawling until a new
// key arrives or the caller's context ends.
package keygate

import (
	"context"
	"sync"
	"sync/atomic"
)

// Gate holds the active credential and serializes replacement requests.
// Concurrent rejection storms collapse into a single outstanding request:
// later callers wait on the same pending exchange instead of raising new ones.
type Gate struct {
	mu      sync.Mutex
	key     string
	pending chan struct{} // non-nil while a replacement is outstanding, closed on supply
	waiters atomic.Int32

	// onRequest, if set, fires once per outstanding replacement request.
	// Used to prompt the operator channel.
	onRequest func()
}

// New creates a Gate holding the initial credential.
func New(initial string) *Gate {
	return &Gate{key: initial}
}

// OnRequest registers a hook invoked when a replacement request opens.
func (g *Gate) OnRequest(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onRequest = fn
}

// Current returns the active credential.
func (g *Gate) Current() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.key
}

// Pending reports whether a replacement request is outstanding.
func (g *Gate) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// RequestReplacement blocks until Supply delivers a credential newer than
// rejected, then returns it. When the active key already differs from the
// rejected one — a supply raced ahead of this caller — it returns at once
// without opening an exchange. Callers arriving while a request is already
// outstanding join the same exchange. The context is the only way out of a
// stuck gate.
func (g *Gate) RequestReplacement(ctx context.Context, rejected string) (string, error) {
	g.mu.Lock()
	if g.key != rejected {
		key := g.key
		g.mu.Unlock()
		return key, nil
	}
	if g.pending == nil {
		g.pending = make(chan struct{})
		if g.onRequest != nil {
			go g.onRequest()
		}
	}
	ch := g.pending
	g.mu.Unlock()

	g.waiters.Add(1)
	defer g.waiters.Add(-1)
	select {
	case <-ch:
		return g.Current(), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Supply installs a new credential and releases every caller blocked in
// RequestReplacement. Supplying with no request outstanding just swaps the key.
func (g *Gate) Supply(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.key = key
	if g.pending != nil {
		close(g.pending)
		g.pending = nil
	}
}
