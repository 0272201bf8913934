package mjpeg

import (
	"bufio"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, net.Conn) {
	t.Helper()
	server, peer := net.Pipe()
	rw := bufio.NewReadWriter(bufio.NewReader(server), bufio.NewWriter(server))
	return New(server, rw, 0), peer
}

func TestFirstPushEmitsPreambleOnce(t *testing.T) {
	client, peer := newTestClient(t)
	defer peer.Close()

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4096)
		n, _ := peer.Read(buf)
		done <- buf[:n]
	}()

	require.True(t, client.NeedsInitial())
	require.NoError(t, client.Push([]byte("jpegdata")))
	require.False(t, client.NeedsInitial())

	got := <-done
	text := string(got)
	assert.True(t, strings.HasPrefix(text, preamble), "first write must start with the preamble")
	assert.Contains(t, text, "Content-Length: 8")
	assert.Contains(t, text, "jpegdata")
}

func TestSecondPushOmitsPreamble(t *testing.T) {
	client, peer := newTestClient(t)
	defer peer.Close()

	reads := make(chan []byte, 2)
	go func() {
		for i := 0; i < 2; i++ {
			buf := make([]byte, 4096)
			n, err := peer.Read(buf)
			if err != nil {
				return
			}
			reads <- buf[:n]
		}
	}()

	require.NoError(t, client.Push([]byte("a")))
	require.NoError(t, client.Push([]byte("b")))

	first := <-reads
	second := <-reads
	assert.Contains(t, string(first), preamble)
	assert.NotContains(t, string(second), "HTTP/1.0")
}

func TestWatchPeerCloseFiresOnDisconnect(t *testing.T) {
	client, peer := newTestClient(t)

	closed := make(chan struct{})
	client.WatchPeerClose(func() { close(closed) })

	peer.Close()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("onClose was not called after peer disconnect")
	}
}

func TestPushErrorsAfterClose(t *testing.T) {
	client, peer := newTestClient(t)
	defer peer.Close()

	require.NoError(t, client.Close())
	err := client.Push([]byte("x"))
	assert.Error(t, err)
	assert.True(t, err == io.ErrClosedPipe || err != nil)
}
