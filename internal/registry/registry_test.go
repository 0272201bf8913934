package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachDetach(t *testing.T) {
	var r Registry
	h1 := r.Attach("a")
	h2 := r.Attach("b")
	assert.Equal(t, 2, r.Len())

	got := r.Detach(h1)
	assert.Equal(t, "a", got)
	assert.Equal(t, 1, r.Len())

	var remaining []Client
	r.ForEach(func(h Handle, c Client) { remaining = append(remaining, c) })
	assert.Equal(t, []Client{"b"}, remaining)

	_ = h2
}

func TestDetachTwiceIsSafe(t *testing.T) {
	var r Registry
	h := r.Attach("a")
	first := r.Detach(h)
	second := r.Detach(h)
	assert.Equal(t, "a", first)
	assert.Nil(t, second)
	assert.Equal(t, 0, r.Len())
}

func TestForEachSurvivesSelfDetach(t *testing.T) {
	var r Registry
	r.Attach("a")
	r.Attach("b")
	r.Attach("c")

	seen := 0
	r.ForEach(func(h Handle, c Client) {
		seen++
		r.Detach(h)
	})
	assert.Equal(t, 3, seen)
	assert.Equal(t, 0, r.Len())
}
