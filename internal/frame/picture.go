// Package frame implements the opaque JPEG byte buffer shared between the
// producer side of the streaming engine and the HTTP-facing snapshot.
package frame

// Picture is a byte buffer with separate size and allocated capacity,
// mirroring the data/size/allocated triple of the original stream picture.
// Capacity grows on demand and is never shrunk within a Picture's lifetime:
// downward resize is an explicit non-goal (avoids realloc thrash on a
// steady-state stream where frame sizes fluctuate within a narrow band).
type Picture struct {
	data []byte
	size int
}

// Size returns the number of valid bytes currently held.
func (p *Picture) Size() int {
	return p.size
}

// Allocated returns the current capacity in bytes.
func (p *Picture) Allocated() int {
	return cap(p.data)
}

// Bytes returns the valid portion of the buffer. The returned slice aliases
// the Picture's storage and must not be retained past the next call that
// mutates this Picture.
func (p *Picture) Bytes() []byte {
	return p.data[:p.size]
}

// grow ensures capacity for at least n bytes, without touching size.
func (p *Picture) grow(n int) {
	if cap(p.data) >= n {
		return
	}
	data := make([]byte, n)
	copy(data, p.data[:p.size])
	p.data = data
}

// Set replaces the contents with src, growing capacity if needed but never
// shrinking it. The only allocation happens when growth is required.
func (p *Picture) Set(src []byte) {
	p.grow(len(src))
	p.data = p.data[:cap(p.data)]
	n := copy(p.data, src)
	p.size = n
}

// Reset marks the picture empty without releasing its capacity.
func (p *Picture) Reset() {
	p.size = 0
}
