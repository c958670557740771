package track

import (
	"fmt"
	"log/slog"
	"sync"
)

// Handle identifies a registered track.
type Handle uint64

// Registry owns live tracks. Readers and writers refer to a track by handle
// so nothing outside the registry holds a track pointer.
type Registry struct {
	mu     sync.RWMutex
	next   Handle
	tracks map[Handle]*Track
}

func NewRegistry() *Registry {
	return &Registry{tracks: make(map[Handle]*Track)}
}

// Open registers t and returns its handle. The registry owns t afterwards.
func (r *Registry) Open(t *Track) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.tracks[r.next] = t
	slog.Debug("track opened", "handle", r.next, "name", t.name)
	return r.next
}

// Create builds a track from opts and registers it.
func (r *Registry) Create(opts Options) (Handle, error) {
	t, err := New(opts)
	if err != nil {
		return 0, err
	}
	return r.Open(t), nil
}

// Close waits for every outstanding handle on h, then forgets the track.
func (r *Registry) Close(h Handle) error {
	t, err := r.lookup(h)
	if err != nil {
		return err
	}
	l := t.sync.AcquireWrite()
	defer l.Release()

	r.mu.Lock()
	delete(r.tracks, h)
	r.mu.Unlock()
	slog.Debug("track closed", "handle", h)
	return nil
}

// Len is the number of open tracks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracks)
}

// AcquireRead blocks until shared access to h is available.
func (r *Registry) AcquireRead(h Handle) (*Reader, error) {
	t, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	l := t.sync.AcquireRead()
	if _, err := r.lookup(h); err != nil {
		// closed while we waited
		l.Release()
		return nil, err
	}
	return &Reader{reg: r, h: h, lock: l}, nil
}

// AcquireWrite blocks until exclusive access to h is available.
func (r *Registry) AcquireWrite(h Handle) (*Writer, error) {
	t, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	l := t.sync.AcquireWrite()
	if _, err := r.lookup(h); err != nil {
		l.Release()
		return nil, err
	}
	return &Writer{Reader{reg: r, h: h, lock: l}}, nil
}

// WithRead runs fn with a read handle that is released when fn returns.
func (r *Registry) WithRead(h Handle, fn func(*Reader) error) error {
	rd, err := r.AcquireRead(h)
	if err != nil {
		return err
	}
	defer rd.Release()
	return fn(rd)
}

// WithWrite runs fn with the write handle and releases it when fn returns.
func (r *Registry) WithWrite(h Handle, fn func(*Writer) error) error {
	w, err := r.AcquireWrite(h)
	if err != nil {
		return err
	}
	defer w.Release()
	return fn(w)
}

func (r *Registry) lookup(h Handle) (*Track, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tracks[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTrack, h)
	}
	return t, nil
}
