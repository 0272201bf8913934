// Package snapshot holds the server-owned, stable copy of the most recently
// published frame: the exposed picture every HTTP handler and every
// streaming client ultimately reads from. It is owned exclusively by the
// engine's single event-loop goroutine and is never touched by the
// producer.
package snapshot

import (
	"github.com/warpcomdev/streamcore/internal/feed"
	"github.com/warpcomdev/streamcore/internal/frame"
	"github.com/warpcomdev/streamcore/internal/snapshot/assets"
)

// Exposed is the current picture the engine serves to HTTP clients. If
// Online is false, Picture is byte-equal to the embedded blank JPEG.
type Exposed struct {
	Picture frame.Picture
	Width   int
	Height  int
	Online  bool
}

// New returns an Exposed snapshot initialized to the blank picture, as
// required at server startup before any producer has published a frame.
func New() *Exposed {
	e := &Exposed{}
	e.Blankify()
	return e
}

// Adopt copies the stream's current frame into the snapshot. The caller
// must hold s's lock and must have already verified s.Picture.Size() > 0;
// Adopt performs exactly one copy so the stream lock is held for no longer
// than a single memcpy regardless of how many clients are attached.
func (e *Exposed) Adopt(s *feed.Stream) {
	e.Picture.Set(s.Picture.Bytes())
	e.Width = s.Width
	e.Height = s.Height
	e.Online = true
}

// Blankify replaces the exposed picture with the embedded blank JPEG. It is
// a no-op if the snapshot is already blank, making repeated calls
// idempotent beyond the first transition.
func (e *Exposed) Blankify() {
	if !e.Online && e.Picture.Size() == len(assets.Blank) {
		return
	}
	e.Picture.Set(assets.Blank)
	e.Width = assets.BlankWidth
	e.Height = assets.BlankHeight
	e.Online = false
}
