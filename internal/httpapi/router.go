// Package httpapi is the HTTP dispatcher: it routes `/`, `/ping`,
// `/snapshot` and `/stream`, rejects any method but GET/HEAD, and
// short-circuits HEAD on every route to an empty 200 OK. Every handler
// either reads a point-in-time Status or hands a hijacked connection to
// Engine.Attach, never touching engine-private state itself.
package httpapi

import (
	"bufio"
	"net"
	"net/http"

	"github.com/warpcomdev/streamcore/internal/servicelog"
)

// ReadWriter is the buffered connection handed back by http.Hijacker. The
// alias keeps internal/engine from importing bufio just to name this type.
type ReadWriter = bufio.ReadWriter

// Status is a point-in-time view of the exposed snapshot, as read by /ping
// and /snapshot.
type Status struct {
	Width   int
	Height  int
	Online  bool
	Picture []byte
}

// Engine is everything the dispatcher needs from the streaming engine.
// internal/engine.Server implements this.
type Engine interface {
	Attach(conn net.Conn, rw *ReadWriter)
	Status() Status
}

// Router builds the top-level handler for the four routes this service
// exposes. "/" is registered on ServeMux, which treats it as a catch-all
// prefix match, so indexHandler itself rejects any path but the exact
// root with 404.
func Router(engine Engine, logger servicelog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", indexHandler())
	mux.HandleFunc("/ping", pingHandler(engine))
	mux.HandleFunc("/snapshot", snapshotHandler(engine))
	mux.HandleFunc("/stream", streamHandler(engine, logger))
	return mux
}

// checkMethod rejects anything but GET/HEAD with 405, and reports whether
// the request is a HEAD so the caller can short-circuit to an empty body.
func checkMethod(w http.ResponseWriter, r *http.Request) (isHead bool, ok bool) {
	switch r.Method {
	case http.MethodGet:
		return false, true
	case http.MethodHead:
		return true, true
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return false, false
	}
}
