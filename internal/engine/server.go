// Package engine is the single-owner event loop driving the refresh
// scheduler and server lifecycle. Exactly one goroutine — the one running
// Run — ever touches the exposed snapshot and the client registry, which is
// what lets both stay lock-free. Every other goroutine reaches the engine
// only through channels: HTTP handlers through the Attach and Status calls
// below, peer-close watchers through the notification handleAttach wires up.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/warpcomdev/streamcore/internal/feed"
	"github.com/warpcomdev/streamcore/internal/httpapi"
	"github.com/warpcomdev/streamcore/internal/mjpeg"
	"github.com/warpcomdev/streamcore/internal/registry"
	"github.com/warpcomdev/streamcore/internal/servicelog"
	"github.com/warpcomdev/streamcore/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus"
)

type attachRequest struct {
	conn net.Conn
	rw   *httpapi.ReadWriter
}

type queryRequest struct {
	resp chan httpapi.Status
}

// Server owns the frame fanout: the exposed snapshot, the client registry
// and the refresh ticker. It implements httpapi.Engine.
type Server struct {
	stream          *feed.Stream
	exposed         *snapshot.Exposed
	reg             registry.Registry
	refreshInterval time.Duration
	idleTimeout     time.Duration
	logger          servicelog.Logger
	metrics         *metrics

	listener net.Listener

	attachCh    chan attachRequest
	peerCloseCh chan registry.Handle
	queryCh     chan queryRequest
	stopOnce    sync.Once
	stopCh      chan struct{}
	doneCh      chan struct{}
	runDone     chan struct{}
}

// New builds a Server around an existing producer-facing stream slot.
// refreshInterval is the fanout tick period (cmd/streamcore defaults it to
// 30ms); idleTimeout bounds both the per-write deadline on /stream and the
// time the HTTP server waits for a request's headers.
func New(stream *feed.Stream, refreshInterval, idleTimeout time.Duration, logger servicelog.Logger, reg prometheus.Registerer) *Server {
	return &Server{
		stream:          stream,
		exposed:         snapshot.New(),
		refreshInterval: refreshInterval,
		idleTimeout:     idleTimeout,
		logger:          logger,
		metrics:         newMetrics(reg),
		attachCh:        make(chan attachRequest),
		peerCloseCh:     make(chan registry.Handle, 16),
		queryCh:         make(chan queryRequest),
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
		runDone:         make(chan struct{}),
	}
}

// Listen binds the TCP listener the HTTP dispatcher will serve from. Must
// be called before Run.
func (s *Server) Listen(host string, port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("listen on %s:%d: %w", host, port, err)
	}
	s.listener = ln
	return nil
}

// Addr reports the bound address, mainly so tests and the startup log line
// can report the ephemeral port when 0 was requested.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run serves HTTP on the bound listener and drives the refresh loop until
// ctx is cancelled or Stop is called. It returns nil on a clean shutdown.
// Closes runDone as the very last act, after the HTTP server and ticker
// have already been torn down, so Close can safely join on it before
// touching the registry.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.runDone)

	httpSrv := &http.Server{
		Handler:           httpapi.Router(s, s.logger),
		ReadHeaderTimeout: s.idleTimeout,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- httpSrv.Serve(s.listener) }()
	defer httpSrv.Close()

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopCh:
			return nil
		case err := <-serveErr:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case req := <-s.attachCh:
			s.handleAttach(req)
		case h := <-s.peerCloseCh:
			s.handleDetach(h)
		case req := <-s.queryCh:
			req.resp <- s.currentStatus()
		case <-ticker.C:
			s.tick()
		}
	}
}

// Stop breaks the Run loop. Safe to call from any goroutine, any number of
// times, and safe to call before Run starts.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Close releases resources after Run has returned: it detaches and closes
// every still-attached client and closes the listener. It blocks on Run's
// completion signal first, so it is always safe to call right after Stop
// without racing the event loop's own registry access — even though Stop
// itself only requests the loop exit and returns immediately. Run must
// already have been started (as every caller in this module does) or Close
// blocks forever.
func (s *Server) Close() error {
	<-s.runDone
	s.reg.ForEach(func(h registry.Handle, c registry.Client) {
		s.reg.Detach(h)
		if client, ok := c.(*mjpeg.Client); ok {
			client.Close()
		}
	})
	close(s.doneCh)
	if s.listener == nil {
		return nil
	}
	// Run's HTTP server normally closed the listener already on its way out.
	if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Attach registers a freshly hijacked /stream connection with the engine.
// Implements httpapi.Engine.
func (s *Server) Attach(conn net.Conn, rw *httpapi.ReadWriter) {
	select {
	case s.attachCh <- attachRequest{conn: conn, rw: rw}:
	case <-s.doneCh:
		conn.Close()
	}
}

// Status implements httpapi.Engine: it round-trips through the event loop
// so /ping and /snapshot always see a self-consistent width/height/picture
// triple, never a torn read of a snapshot mid-update.
func (s *Server) Status() httpapi.Status {
	resp := make(chan httpapi.Status, 1)
	select {
	case s.queryCh <- queryRequest{resp: resp}:
	case <-s.doneCh:
		return httpapi.Status{}
	}
	select {
	case st := <-resp:
		return st
	case <-s.doneCh:
		return httpapi.Status{}
	}
}

func (s *Server) handleAttach(req attachRequest) {
	client := mjpeg.New(req.conn, req.rw, s.idleTimeout)
	h := s.reg.Attach(client)
	client.WatchPeerClose(func() {
		select {
		case s.peerCloseCh <- h:
		case <-s.doneCh:
		}
	})
	s.metrics.clientsAttached.Set(float64(s.reg.Len()))
	s.logger.Debug("client attached", servicelog.Int("clients", s.reg.Len()))
}

func (s *Server) handleDetach(h registry.Handle) {
	c := s.reg.Detach(h)
	client, ok := c.(*mjpeg.Client)
	if !ok {
		return
	}
	client.Close()
	s.metrics.clientsAttached.Set(float64(s.reg.Len()))
	s.logger.Debug("client detached", servicelog.Int("clients", s.reg.Len()))
}

// tick is the Go realization of the C original's _http_exposed_refresh: it
// decides whether the stream has a fresh frame, a producer that just went
// offline, or neither, updates the exposed snapshot accordingly, and fans
// the (possibly unchanged) snapshot out to every attached client once. The
// only tick without fanout is one with no new frame while the snapshot is
// already online.
func (s *Server) tick() {
	start := time.Now()
	defer s.metrics.observeTick(start)

	wasOnline := s.exposed.Online
	s.stream.Lock()
	updated := s.stream.Updated
	hasFrame := s.stream.Picture.Size() > 0
	s.stream.Updated = false
	if updated && hasFrame {
		// Adopt must run while the stream is still locked: it reads
		// s.stream.Picture directly, and the producer is free to publish
		// a new frame the instant the lock is released.
		s.exposed.Adopt(s.stream)
	}
	s.stream.Unlock()

	if updated && !hasFrame {
		s.exposed.Blankify()
	} else if !updated && s.exposed.Online {
		// No new frame, and clients are already receiving a live stream:
		// nothing to fan out this tick.
		return
	}
	// !updated && !s.exposed.Online falls through: the snapshot is still
	// blank and every tick keeps fanning it out as a heartbeat, exactly
	// like the updated-and-blank case above.

	if s.exposed.Online != wasOnline {
		s.logger.Debug("exposed snapshot state changed", servicelog.Bool("online", s.exposed.Online))
	}
	if s.exposed.Online {
		s.metrics.online.Set(1)
	} else {
		s.metrics.online.Set(0)
	}

	picture := s.exposed.Picture.Bytes()
	s.reg.ForEach(func(h registry.Handle, c registry.Client) {
		client, ok := c.(*mjpeg.Client)
		if !ok {
			return
		}
		if err := client.Push(picture); err != nil {
			s.handleDetach(h)
			return
		}
		s.metrics.framesSent.Inc()
	})
}

func (s *Server) currentStatus() httpapi.Status {
	b := s.exposed.Picture.Bytes()
	cp := make([]byte, len(b))
	copy(cp, b)
	return httpapi.Status{
		Width:   s.exposed.Width,
		Height:  s.exposed.Height,
		Online:  s.exposed.Online,
		Picture: cp,
	}
}
