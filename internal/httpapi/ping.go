package httpapi

import (
	"encoding/json"
	"net/http"
)

type pingResolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type pingStream struct {
	Resolution pingResolution `json:"resolution"`
	Online     bool           `json:"online"`
}

type pingBody struct {
	Stream pingStream `json:"stream"`
}

// pingHandler reports the exposed snapshot's resolution and online state,
// as of the moment the engine's event loop answered the Status query.
func pingHandler(engine Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isHead, ok := checkMethod(w, r)
		if !ok {
			return
		}
		if isHead {
			return
		}
		status := engine.Status()
		body, err := json.Marshal(pingBody{
			Stream: pingStream{
				Resolution: pingResolution{Width: status.Width, Height: status.Height},
				Online:     status.Online,
			},
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}
