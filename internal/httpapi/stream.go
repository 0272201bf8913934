package httpapi

import (
	"net/http"

	"github.com/warpcomdev/streamcore/internal/servicelog"
)

// streamHandler hijacks the connection and hands it to the engine, which
// drives the MJPEG multipart protocol (internal/mjpeg) from its own
// refresh-tick loop. HEAD must not hijack at all: it gets a bare 200 OK
// with no client created. After Hijack, the handler does nothing further —
// ownership of the connection passes entirely to the engine's event loop.
func streamHandler(engine Engine, logger servicelog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isHead, ok := checkMethod(w, r)
		if !ok {
			return
		}
		if isHead {
			return
		}

		hijacker, ok := w.(http.Hijacker)
		if !ok {
			http.Error(w, "Protocol Not Supported", http.StatusNotImplemented)
			return
		}
		conn, rw, err := hijacker.Hijack()
		if err != nil {
			logger.Warn("stream hijack failed", servicelog.Error(err))
			http.Error(w, "Hijacking failed", http.StatusInternalServerError)
			return
		}
		engine.Attach(conn, rw)
	}
}
