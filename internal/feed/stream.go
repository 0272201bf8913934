// Package feed defines the producer-facing frame slot: the single point of
// contact between an external capture/encode pipeline and the streaming
// engine. A Picture plus width/height plus a dirty flag, all guarded by one
// mutex.
//
// The capture/encode pipeline itself is out of scope for this module; feed
// only defines the contract a producer must honor.
package feed

import (
	"sync"

	"github.com/warpcomdev/streamcore/internal/frame"
)

// Stream is the shared frame slot. Every access to Picture, Width, Height or
// Updated must happen while the embedded mutex is held; a reader that
// consumes Updated must clear it before releasing the lock.
type Stream struct {
	sync.Mutex
	Picture frame.Picture
	Width   int
	Height  int
	Updated bool
}

// New returns an empty, not-yet-updated stream slot.
func New() *Stream {
	return &Stream{}
}

// Publish is the producer-side convenience for the common case: copy a
// freshly encoded frame into the slot and mark it dirty, all under lock. A
// zero-length data publishes an "empty" frame, which the refresh ticker
// treats as the producer going offline (see internal/engine).
func (s *Stream) Publish(width, height int, data []byte) {
	s.Lock()
	defer s.Unlock()
	s.Picture.Set(data)
	s.Width = width
	s.Height = height
	s.Updated = true
}
