// Package mjpeg implements the per-client MJPEG multipart emission protocol:
// the HTTP/1.0 preamble, the once-per-tick part framing, and the client
// lifecycle across write/read errors and disconnects. Driven by the engine's
// refresh tick rather than a per-client goroutine pulling frames from a
// channel, since at most one part is ever queued per tick per client — no
// frame buffering.
package mjpeg

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"time"
)

const boundary = "boundarydonotcross"

// preamble is the exact byte sequence required for the first write to a
// /stream client.
const preamble = "HTTP/1.0 200 OK\r\n" +
	"Access-Control-Allow-Origin: *\r\n" +
	"Cache-Control: no-store, no-cache, must-revalidate, pre-check=0, post-check=0, max-age=0\r\n" +
	"Pragma: no-cache\r\n" +
	"Expires: Mon, 3 Jan 2000 12:34:56 GMT\r\n" +
	"Content-Type: multipart/x-mixed-replace;boundary=" + boundary + "\r\n" +
	"\r\n" +
	"--" + boundary + "\r\n"

// Client is one HTTP connection currently receiving the MJPEG stream. It is
// driven exclusively by the engine's single event-loop goroutine
// (internal/engine) — Push is never called concurrently with itself for the
// same Client.
type Client struct {
	conn        net.Conn
	rw          *bufio.ReadWriter
	needInitial bool
	idleTimeout time.Duration
}

// New wraps a hijacked connection as a streaming client. needInitial starts
// true: the first Push emits the preamble before falling through to the
// first part.
func New(conn net.Conn, rw *bufio.ReadWriter, idleTimeout time.Duration) *Client {
	return &Client{conn: conn, rw: rw, needInitial: true, idleTimeout: idleTimeout}
}

// NeedsInitial reports whether the next Push still owes the client the
// HTTP preamble. Used by tests to check the "need_initial is true on at
// most the first write" invariant.
func (c *Client) NeedsInitial() bool {
	return c.needInitial
}

// Push writes one multipart part carrying picture to the client — or, on
// the first call, the preamble immediately followed by the first part. The
// whole write is assembled in a scratch buffer and handed to the
// connection in a single Write, so a torn write can only ever be a
// transport-level partial write, never a structural one.
//
// Only one part is queued per call; Push is meant to be invoked at most
// once per refresh tick. A non-nil error means the client must be
// considered closed: the caller is responsible for detaching it from the
// registry and calling Close.
func (c *Client) Push(picture []byte) error {
	var buf bytes.Buffer
	if c.needInitial {
		buf.WriteString(preamble)
	}
	now := time.Now()
	sec := now.Unix()
	usec := now.Nanosecond() / 1000
	fmt.Fprintf(&buf, "Content-Type: image/jpeg\r\nContent-Length: %d\r\nX-Timestamp: %d.%06d\r\n\r\n", len(picture), sec, usec)
	buf.Write(picture)
	buf.WriteString("\r\n--" + boundary + "\r\n")

	if c.idleTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.idleTimeout))
	}
	if _, err := c.rw.Write(buf.Bytes()); err != nil {
		return err
	}
	if err := c.rw.Flush(); err != nil {
		return err
	}
	c.needInitial = false
	return nil
}

// Close releases the underlying connection. Safe to call more than once.
func (c *Client) Close() error {
	return c.conn.Close()
}

// WatchPeerClose spawns a goroutine that blocks reading from the
// connection and calls onClose exactly once, as soon as the peer
// disconnects or the read otherwise errors. This is how the engine learns
// about a dead client between refresh ticks rather than only discovering
// it on the next failed write.
//
// onClose runs on the goroutine spawned here, not on the engine's
// single-owner goroutine; it must only ever post a message back to that
// goroutine, never touch engine-private state directly.
func (c *Client) WatchPeerClose(onClose func()) {
	go func() {
		one := make([]byte, 1)
		// Bytes the peer sends are discarded; only a read error (including
		// io.EOF) means "closed".
		for {
			if _, err := c.rw.Read(one); err != nil {
				break
			}
		}
		onClose()
	}()
}
