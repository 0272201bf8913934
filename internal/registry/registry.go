// Package registry tracks the set of currently attached streaming clients.
// It is engine-private: only the single event-loop goroutine in
// internal/engine ever calls its methods, so no locking is required here.
package registry

import "container/list"

// Client is anything the registry can hold. Callers attach a concrete type
// (internal/mjpeg's client, in this module) and receive a Handle back.
type Client any

// Handle identifies one attached client for O(1) detach.
type Handle struct {
	elem *list.Element
}

// Registry is a doubly linked list of attached clients. container/list
// gives O(1) Attach/Detach without requiring clients to carry their own
// prev/next pointers.
type Registry struct {
	clients list.List
}

// Attach appends client and returns a handle usable for O(1) Detach.
func (r *Registry) Attach(client Client) Handle {
	return Handle{elem: r.clients.PushBack(client)}
}

// Detach removes the client identified by h and returns the value that was
// stored there, or nil if h was already detached. Safe to call more than
// once per handle: Detach clears elem.Value on removal, so a repeated call
// on the same handle returns nil instead of the stale client, which matters
// since the refresh ticker and a concurrent transport error can race to
// detach the same client.
func (r *Registry) Detach(h Handle) Client {
	if h.elem == nil {
		return nil
	}
	v := h.elem.Value
	r.clients.Remove(h.elem)
	h.elem.Value = nil
	return v
}

// Len returns the number of currently attached clients.
func (r *Registry) Len() int {
	return r.clients.Len()
}

// ForEach invokes f once per currently attached client, in list order,
// passing the handle alongside the client so f can Detach the client it
// was called with. ForEach snapshots the next element before invoking f,
// so self-removal during iteration is safe and iteration always
// completes.
func (r *Registry) ForEach(f func(Handle, Client)) {
	for e := r.clients.Front(); e != nil; {
		next := e.Next()
		f(Handle{elem: e}, e.Value)
		e = next
	}
}
