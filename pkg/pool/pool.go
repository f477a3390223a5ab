// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package pool bounds and reuses the transport.Session connections to a
// single array, the same role eventlet.pools.Pool plays around
// SSHTransport in the reference client.
package pool

import (
	"context"
	"sync"

	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/pkg/errors"
	"github.com/stratastor/svcgate/pkg/transport"
)

// Dialer opens a new transport.Session. Factored out so Pool can be unit
// tested without a real array.
type Dialer func() (*transport.Session, error)

// Pool is a bounded, blocking pool of live SSH sessions to one array.
// Checkout probes liveness before handing out a cached session and
// transparently replaces dead ones; Put either returns a session to the
// free list or closes it outright if the pool has since been shrunk.
type Pool struct {
	mu          sync.Mutex
	cond        *sync.Cond
	dial        Dialer
	log         logger.Logger
	minSize     int
	maxSize     int
	currentSize int
	free        []*transport.Session
	closed      bool
}

// New creates a Pool that lazily dials connections up to maxSize. minSize
// is recorded but not enforced: Pool neither connects minSize sessions at
// construction nor keeps that many open afterwards — the first Get() pays
// the dial cost, matching the reference client's lazy-connect pool.
func New(dial Dialer, minSize, maxSize int, l logger.Logger) *Pool {
	if maxSize < 1 {
		maxSize = 1
	}
	if minSize < 1 {
		minSize = 1
	}
	p := &Pool{dial: dial, log: l, minSize: minSize, maxSize: maxSize}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Get checks out a session, blocking until one is free or ctx is done. A
// cached session is probed with Alive() before being handed out; a dead
// one is discarded and a fresh one dialed in its place.
func (p *Pool) Get(ctx context.Context) (*transport.Session, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, errors.New(errors.PoolClosed, "pool is closed")
		}

		if len(p.free) > 0 {
			s := p.free[len(p.free)-1]
			p.free = p.free[:len(p.free)-1]
			p.mu.Unlock()

			if s.Alive() {
				return s, nil
			}
			_ = s.Close()
			p.mu.Lock()
			p.currentSize--
			p.mu.Unlock()
			continue
		}

		if p.currentSize < p.maxSize {
			p.currentSize++
			p.mu.Unlock()

			s, err := p.dial()
			if err != nil {
				p.mu.Lock()
				p.currentSize--
				p.cond.Broadcast()
				p.mu.Unlock()
				return nil, errors.Wrap(err, errors.PoolCheckoutFailed)
			}
			return s, nil
		}

		// Pool is at capacity with nothing free: wait for a Put or a
		// context cancellation, whichever comes first. cond.Wait must be
		// called by the goroutine currently holding p.mu, so cancellation
		// is delivered by a watcher that reacquires the lock and
		// broadcasts rather than by waiting on cond.Wait from elsewhere.
		stop := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				p.mu.Lock()
				p.cond.Broadcast()
				p.mu.Unlock()
			case <-stop:
			}
		}()
		p.cond.Wait()
		close(stop)
		p.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return nil, errors.New(errors.PoolExhausted, err.Error())
		}
		// loop back around and retry checkout
	}
}

// Put returns s to the pool. If the pool has been shrunk below its
// current live count, s is closed instead of being kept.
func (p *Pool) Put(s *transport.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.currentSize > p.maxSize {
		p.currentSize--
		p.mu.Unlock()
		_ = s.Close()
		p.mu.Lock()
		p.cond.Broadcast()
		return
	}

	p.free = append(p.free, s)
	p.cond.Broadcast()
}

// Remove forcibly discards s rather than returning it to the free list,
// for callers that observed it misbehave mid-use.
func (p *Pool) Remove(s *transport.Session) {
	p.mu.Lock()
	if p.currentSize > 0 {
		p.currentSize--
	}
	p.cond.Broadcast()
	p.mu.Unlock()
	_ = s.Close()
}

// Resize changes the pool's maximum size. Shrinking does not close
// sessions immediately; excess sessions are closed as they're returned
// via Put.
func (p *Pool) Resize(maxSize int) error {
	if maxSize < 1 {
		return errors.New(errors.PoolInvalidSize, "pool size must be at least 1")
	}
	p.mu.Lock()
	p.maxSize = maxSize
	p.cond.Broadcast()
	p.mu.Unlock()
	return nil
}

// Shutdown drains and closes every free session and marks the pool
// closed so subsequent Get calls fail fast.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	free := p.free
	p.free = nil
	p.currentSize -= len(free)
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, s := range free {
		_ = s.Close()
	}
}

// Size reports the current live connection count and configured maximum,
// for health sweeps and diagnostics.
func (p *Pool) Size() (current, max int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentSize, p.maxSize
}

// Prune probes every currently-idle session with Alive() and closes the
// ones that have gone dead, returning how many were reaped. It never
// touches sessions checked out at the time of the call. Intended for a
// periodic maintenance sweep rather than the request path, where Get's
// own lazy liveness check already suffices.
func (p *Pool) Prune() int {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0
	}
	live := p.free[:0]
	var dead []*transport.Session
	for _, s := range p.free {
		if s.Alive() {
			live = append(live, s)
		} else {
			dead = append(dead, s)
		}
	}
	p.free = live
	p.currentSize -= len(dead)
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, s := range dead {
		_ = s.Close()
	}
	return len(dead)
}
