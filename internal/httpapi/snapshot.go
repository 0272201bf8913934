package httpapi

import (
	"fmt"
	"net/http"
	"time"
)

// snapshotHandler serves the raw bytes of the exposed picture, byte-equal
// to whatever the engine's event loop held at the moment this handler ran.
func snapshotHandler(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isHead, ok := checkMethod(w, r)
		if !ok {
			return
		}
		if isHead {
			return
		}
		status := engine.Status()
		now := time.Now()
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, pre-check=0, post-check=0, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "Mon, 3 Jan 2000 12:34:56 GMT")
		h.Set("X-Timestamp", fmt.Sprintf("%d.%06d", now.Unix(), now.Nanosecond()/1000))
		h.Set("Content-Type", "image/jpeg")
		w.Write(status.Picture)
	}
}
