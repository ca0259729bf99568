// Package framestore keeps the frame buffers of a render session and
// enforces the producer/consumer convention with real locks, for hosts
// whose producer and consumer run on different goroutines.
package framestore

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"aton-buffer/internal/framebuffer"
)

var (
	ErrUnknownFrame = errors.New("framestore: unknown frame")
	ErrNotReady     = errors.New("framestore: frame not ready")
)

// Store is a concurrency-safe set of FrameBuffers keyed by frame number.
type Store struct {
	mu     sync.RWMutex
	frames map[float64]*entry
	keep   int
}

type entry struct {
	mu sync.RWMutex
	fb *framebuffer.FrameBuffer
}

// New creates a store that retains at most keep frames; older frames are
// dropped as new ones are acquired. keep <= 0 means unbounded.
func New(keep int) *Store {
	return &Store{
		frames: make(map[float64]*entry),
		keep:   keep,
	}
}

// Acquire returns the buffer for frame, prepared for a render of the
// given size and ordered layer names. An existing buffer is reused when
// its dimensions match and its layers are the expected names or a prefix
// of them (a render still registering layers); otherwise its layers are
// cleared and its dimensions reset. The buffer is created when absent.
//
// With concurrent readers, touch the returned buffer only through Write
// and Read.
func (s *Store) Acquire(frame float64, width, height int, layers []string) *framebuffer.FrameBuffer {
	// Fast path: read lock
	s.mu.RLock()
	e, ok := s.frames[frame]
	s.mu.RUnlock()

	if !ok {
		// Write lock with double-check
		s.mu.Lock()
		e, ok = s.frames[frame]
		if !ok {
			e = &entry{fb: framebuffer.New(frame, width, height)}
			s.frames[frame] = e
			framebuffer.Logger().Debug("framestore: frame created", "frame", frame, "width", width, "height", height)
			s.trim(frame)
		}
		s.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if c := e.fb.CompareAll(width, height, layers); c != framebuffer.CompatMatch && !registering(e.fb, c, layers) {
		framebuffer.Logger().Debug("framestore: frame reset", "frame", frame, "reason", c)
		e.fb.SetReady(false)
		e.fb.ClearAll()
		e.fb.SetWidth(width)
		e.fb.SetHeight(height)
	}
	return e.fb
}

func registering(fb *framebuffer.FrameBuffer, c framebuffer.Compat, layers []string) bool {
	if c != framebuffer.CompatLayers {
		return false
	}
	have := fb.Layers()
	return len(have) <= len(layers) && slices.Equal(have, layers[:len(have)])
}

// trim drops the oldest frames beyond keep, never current. Caller holds
// s.mu.
func (s *Store) trim(current float64) {
	if s.keep <= 0 || len(s.frames) <= s.keep {
		return
	}
	frames := s.framesLocked()
	drop := len(frames) - s.keep
	for _, f := range frames {
		if drop == 0 {
			break
		}
		if f == current {
			continue
		}
		drop--
		delete(s.frames, f)
		framebuffer.Logger().Debug("framestore: frame dropped", "frame", f)
	}
}

func (s *Store) lookup(frame float64) (*entry, error) {
	s.mu.RLock()
	e, ok := s.frames[frame]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("framestore: frame %g: %w", frame, ErrUnknownFrame)
	}
	return e, nil
}

// Write runs fn with exclusive access to the frame's buffer. The ready
// gate is closed while fn runs and opened afterwards. If fn fails the
// gate goes back to the state it had before the call.
func (s *Store) Write(frame float64, fn func(*framebuffer.FrameBuffer) error) error {
	e, err := s.lookup(frame)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	was := e.fb.IsReady()
	e.fb.SetReady(false)
	if err := fn(e.fb); err != nil {
		e.fb.SetReady(was)
		return err
	}
	e.fb.SetReady(true)
	return nil
}

// Read runs fn with shared access to the frame's buffer, provided the
// ready gate is open. fn must not mutate the buffer.
func (s *Store) Read(frame float64, fn func(*framebuffer.FrameBuffer) error) error {
	e, err := s.lookup(frame)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.fb.IsReady() {
		return fmt.Errorf("framestore: frame %g: %w", frame, ErrNotReady)
	}
	return fn(e.fb)
}

// Drop discards a frame. It reports whether the frame was present.
func (s *Store) Drop(frame float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.frames[frame]
	delete(s.frames, frame)
	return ok
}

// Frames returns the stored frame numbers in ascending order.
func (s *Store) Frames() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.framesLocked()
}

func (s *Store) framesLocked() []float64 {
	frames := make([]float64, 0, len(s.frames))
	for f := range s.frames {
		frames = append(frames, f)
	}
	slices.Sort(frames)
	return frames
}

// Latest returns the highest stored frame number.
func (s *Store) Latest() (float64, bool) {
	frames := s.Frames()
	if len(frames) == 0 {
		return 0, false
	}
	return frames[len(frames)-1], true
}

// Len returns the number of stored frames.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}
