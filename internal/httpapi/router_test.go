package httpapi

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warpcomdev/streamcore/internal/servicelog"
)

type fakeEngine struct {
	status    Status
	attached  int
	lastConn  net.Conn
}

func (f *fakeEngine) Attach(conn net.Conn, rw *ReadWriter) {
	f.attached++
	f.lastConn = conn
}

func (f *fakeEngine) Status() Status {
	return f.status
}

func testLogger(t *testing.T) servicelog.Logger {
	t.Helper()
	l, err := servicelog.New(servicelog.Options{Debug: true})
	require.NoError(t, err)
	return l
}

func TestIndexGet(t *testing.T) {
	router := Router(&fakeEngine{}, testLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/stream")
}

func TestUnknownPathNotFound(t *testing.T) {
	router := Router(&fakeEngine{}, testLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexHead(t *testing.T) {
	router := Router(&fakeEngine{}, testLogger(t))
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	router := Router(&fakeEngine{}, testLogger(t))
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPingReportsStatus(t *testing.T) {
	engine := &fakeEngine{status: Status{Width: 640, Height: 480, Online: true}}
	router := Router(engine, testLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"stream":{"resolution":{"width":640,"height":480},"online":true}}`, rec.Body.String())
}

func TestSnapshotReturnsExposedBytes(t *testing.T) {
	engine := &fakeEngine{status: Status{Picture: []byte("jpegbytes")}}
	router := Router(engine, testLogger(t))
	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "jpegbytes", rec.Body.String())
}

func TestSnapshotHeadHasNoBody(t *testing.T) {
	engine := &fakeEngine{status: Status{Picture: []byte("jpegbytes")}}
	router := Router(engine, testLogger(t))
	req := httptest.NewRequest(http.MethodHead, "/snapshot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestStreamHeadDoesNotAttach(t *testing.T) {
	engine := &fakeEngine{}
	router := Router(engine, testLogger(t))
	req := httptest.NewRequest(http.MethodHead, "/stream", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, engine.attached)
}
