// Package resource guards a shared resource with a reader/writer lock that
// hands out scoped handles.
//
// Callers release a handle with defer so it is returned however the scope
// exits:
//
//	l := s.AcquireRead()
//	defer l.Release()
//
// Many read handles may be held at once. A write handle is exclusive and
// waits for outstanding readers. Once a writer is waiting, new readers queue
// behind it, so a goroutine must never acquire a second handle on the same
// Sync while holding one.
package resource

import (
	"sync"
	"sync/atomic"
)

// Mode is the kind of access a Lock grants.
type Mode int

const (
	Read Mode = iota
	Write
)

func (m Mode) String() string {
	if m == Write {
		return "write"
	}
	return "read"
}

// Sync is the lock shared by every handle on one resource.
type Sync struct {
	mu      sync.RWMutex
	readers atomic.Int64
	writing atomic.Bool
}

// Lock is a held handle. Release is idempotent.
type Lock struct {
	s        *Sync
	mode     Mode
	released atomic.Bool
}

// AcquireRead blocks while a writer holds or waits for the lock.
func (s *Sync) AcquireRead() *Lock {
	s.mu.RLock()
	s.readers.Add(1)
	return &Lock{s: s, mode: Read}
}

// AcquireWrite blocks until no other handle is held.
func (s *Sync) AcquireWrite() *Lock {
	s.mu.Lock()
	s.writing.Store(true)
	return &Lock{s: s, mode: Write}
}

// Readers is the number of read handles currently held.
func (s *Sync) Readers() int { return int(s.readers.Load()) }

// Writing reports whether a write handle is held.
func (s *Sync) Writing() bool { return s.writing.Load() }

// WithRead runs fn while holding a read handle.
func (s *Sync) WithRead(fn func() error) error {
	l := s.AcquireRead()
	defer l.Release()
	return fn()
}

// WithWrite runs fn while holding the write handle.
func (s *Sync) WithWrite(fn func() error) error {
	l := s.AcquireWrite()
	defer l.Release()
	return fn()
}

func (l *Lock) Mode() Mode { return l.mode }

// Released reports whether Release has been called.
func (l *Lock) Released() bool { return l.released.Load() }

// Release returns the handle to its Sync. Calls after the first are no-ops.
func (l *Lock) Release() {
	if !l.released.CompareAndSwap(false, true) {
		return
	}
	if l.mode == Write {
		l.s.writing.Store(false)
		l.s.mu.Unlock()
		return
	}
	l.s.readers.Add(-1)
	l.s.mu.RUnlock()
}
