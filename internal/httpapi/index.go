package httpapi

import "net/http"

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>streamcore</title></head>
<body>
<h1>streamcore</h1>
<ul>
<li><a href="/ping">/ping</a> - stream status as JSON</li>
<li><a href="/snapshot">/snapshot</a> - single JPEG frame</li>
<li><a href="/stream">/stream</a> - MJPEG multipart stream</li>
</ul>
</body>
</html>
`

func indexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		isHead, ok := checkMethod(w, r)
		if !ok {
			return
		}
		if isHead {
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(indexHTML))
	}
}
