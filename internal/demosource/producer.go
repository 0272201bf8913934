// Package demosource is a stand-in frame producer: the capture/encode
// pipeline of a real camera is out of scope for this module, so this
// package exists only to give the engine something to stream in the
// absence of a real camera, and to exercise internal/feed.Stream the way a
// real producer would. Built against the standard library's image/jpeg
// rather than a cgo JPEG codec, since no pure-Go JPEG library was available
// to wire in instead (see DESIGN.md).
package demosource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io/fs"
	"sync"
	"time"

	"github.com/warpcomdev/streamcore/internal/feed"
	"github.com/warpcomdev/streamcore/internal/servicelog"
)

// Producer holds one decoded source image and republishes it, scan-line
// rotated, on every tick of Run.
type Producer struct {
	mu     sync.Mutex
	pix    *image.NRGBA
	stream *feed.Stream
	logger servicelog.Logger
}

// New builds a Producer around an already-open stream slot. Load must be
// called at least once before Run produces anything.
func New(stream *feed.Stream, logger servicelog.Logger) *Producer {
	return &Producer{stream: stream, logger: logger}
}

// Load decodes path from fsys and adopts it as the current source frame,
// replacing whatever was loaded before. Safe to call while Run is active.
func (p *Producer) Load(fsys fs.FS, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)

	p.mu.Lock()
	p.pix = nrgba
	p.mu.Unlock()
	if p.logger != nil {
		p.logger.Info("demo source loaded", servicelog.String("path", path))
	}
	return nil
}

// Run republishes the current frame to stream every tick, rotating one
// scan line per publish so a static source image still looks "live".
func (p *Producer) Run(ctx context.Context, fps int) {
	if fps <= 0 {
		fps = 1
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.publishRotated()
		}
	}
}

func (p *Producer) publishRotated() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pix == nil {
		return
	}
	rotateScanline(p.pix)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, p.pix, &jpeg.Options{Quality: 85}); err != nil {
		if p.logger != nil {
			p.logger.Error("demo source encode failed", servicelog.Error(err))
		}
		return
	}
	bounds := p.pix.Bounds()
	p.stream.Publish(bounds.Dx(), bounds.Dy(), buf.Bytes())
}

// rotateScanline shifts every row of img up by one pixel, wrapping the top
// row to the bottom.
func rotateScanline(img *image.NRGBA) {
	stride := img.Stride
	pix := img.Pix
	if len(pix) < 2*stride {
		return
	}
	top := make([]byte, stride)
	copy(top, pix[:stride])
	copy(pix, pix[stride:])
	copy(pix[len(pix)-stride:], top)
}
