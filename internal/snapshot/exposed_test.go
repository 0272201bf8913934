package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warpcomdev/streamcore/internal/feed"
	"github.com/warpcomdev/streamcore/internal/snapshot/assets"
)

func TestNewIsBlank(t *testing.T) {
	e := New()
	assert.False(t, e.Online)
	assert.Equal(t, assets.Blank, e.Picture.Bytes())
	assert.Equal(t, assets.BlankWidth, e.Width)
	assert.Equal(t, assets.BlankHeight, e.Height)
}

func TestAdoptGoesOnline(t *testing.T) {
	e := New()
	s := feed.New()
	s.Publish(320, 240, []byte{9, 9, 9})

	e.Adopt(s)
	assert.True(t, e.Online)
	assert.Equal(t, 320, e.Width)
	assert.Equal(t, 240, e.Height)
	assert.Equal(t, []byte{9, 9, 9}, e.Picture.Bytes())
}

func TestBlankifyIdempotent(t *testing.T) {
	e := New()
	s := feed.New()
	s.Publish(320, 240, []byte{9, 9, 9})
	e.Adopt(s)

	e.Blankify()
	firstBytes := append([]byte(nil), e.Picture.Bytes()...)
	e.Blankify()
	assert.Equal(t, firstBytes, e.Picture.Bytes())
	assert.False(t, e.Online)
}
