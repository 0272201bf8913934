package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPictureSetGrowsOnce(t *testing.T) {
	var p Picture
	p.Set([]byte("abc"))
	assert.Equal(t, 3, p.Size())
	firstAlloc := p.Allocated()

	p.Set([]byte("de"))
	assert.Equal(t, 2, p.Size())
	assert.Equal(t, firstAlloc, p.Allocated(), "allocated capacity must never shrink")
	assert.Equal(t, []byte("de"), p.Bytes())
}

func TestPictureSetGrowsWhenLarger(t *testing.T) {
	var p Picture
	p.Set([]byte("ab"))
	p.Set([]byte("abcdef"))
	assert.Equal(t, []byte("abcdef"), p.Bytes())
	assert.GreaterOrEqual(t, p.Allocated(), 6)
}

func TestPictureReset(t *testing.T) {
	var p Picture
	p.Set([]byte("hello"))
	allocated := p.Allocated()
	p.Reset()
	assert.Equal(t, 0, p.Size())
	assert.Equal(t, allocated, p.Allocated())
}
