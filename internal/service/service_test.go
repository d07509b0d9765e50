package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pressgate/pressgate/internal/gateway"
)

// fakeBackend is a minimal JSend backend for service tests. Mutating
// routes are registered behind the anti-forgery endpoint it also serves.
type fakeBackend struct {
	mux      *http.ServeMux
	server   *httptest.Server
	csrfHits atomic.Int64
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{mux: http.NewServeMux()}
	b.mux.HandleFunc("GET /auth/csrf/", func(w http.ResponseWriter, r *http.Request) {
		b.csrfHits.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: "tok-1"})
		writeJSend(w, http.StatusOK, map[string]any{
			"status": "success",
			"data":   map[string]any{"csrf_token": "tok-1"},
		})
	})
	b.server = httptest.NewServer(b.mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) handle(pattern string, status int, body map[string]any) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSend(w, status, body)
	})
}

func writeJSend(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// newSession binds a fresh browser request, optionally carrying cookies,
// against the fake backend.
func newSession(t *testing.T, b *fakeBackend, cookies ...*http.Cookie) (*gateway.Session, *httptest.ResponseRecorder) {
	t.Helper()
	gw := gateway.New(gateway.Options{Config: gateway.Config{BaseURL: b.server.URL}})
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	return gw.Bind(w, r), w
}

func successData(data any) map[string]any {
	return map[string]any{"status": "success", "data": data}
}
