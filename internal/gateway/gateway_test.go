package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend is a minimal JSend backend: a CSRF endpoint plus whatever the
// test registers on the mux.
type testBackend struct {
	srv       *httptest.Server
	mux       *http.ServeMux
	csrfHits  atomic.Int64
	lastCSRF  atomic.Value // string: last X-CSRFToken header seen
	csrfToken string
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{mux: http.NewServeMux(), csrfToken: "backend-csrf-token"}
	b.mux.HandleFunc("GET /auth/csrf/", func(w http.ResponseWriter, r *http.Request) {
		b.csrfHits.Add(1)
		http.SetCookie(w, &http.Cookie{Name: CSRFTokenCookie, Value: b.csrfToken, Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]string{"csrf_token": b.csrfToken},
		})
	})
	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *testBackend) gateway(t *testing.T) *Gateway {
	t.Helper()
	return New(Options{
		Client: b.srv.Client(),
		Config: Config{BaseURL: b.srv.URL, Timeout: 5 * time.Second},
	})
}

func (b *testBackend) recordCSRF(r *http.Request) {
	b.lastCSRF.Store(r.Header.Get(CSRFHeader))
}

// Scenario: login succeeds, the backend issues both session cookies, and the
// gateway re-emits them with the contract attributes.
func TestSessionDo_LoginSuccessPersistsCookies(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		backend.recordCSRF(r)
		http.SetCookie(w, &http.Cookie{Name: AccessTokenCookie, Value: "new-access"})
		http.SetCookie(w, &http.Cookie{Name: RefreshTokenCookie, Value: "new-refresh"})
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"user": map[string]any{"id": 7}},
		})
	})

	gw := backend.gateway(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	sess := gw.Bind(w, r)

	res := sess.Do(context.Background(), Call{
		Method: http.MethodPost,
		Path:   "/auth/login/",
		Body:   map[string]string{"email": "a@b.c", "password": "pw"},
	})

	require.Equal(t, KindSuccess, res.Kind)
	assert.Equal(t, "backend-csrf-token", backend.lastCSRF.Load())

	access := cookieByName(t, w, AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "new-access", access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, int((30 * time.Minute).Seconds()), access.MaxAge)

	refresh := cookieByName(t, w, RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "new-refresh", refresh.Value)
	assert.Equal(t, int((14 * 24 * time.Hour).Seconds()), refresh.MaxAge)

	// The freshly brokered token is cached for the next mutation.
	csrf := cookieByName(t, w, CSRFTokenCookie)
	require.NotNil(t, csrf)
	assert.False(t, csrf.HttpOnly)
}

// Scenario: wrong password. Field errors come back verbatim and no cookie is
// written besides the brokered CSRF cache.
func TestSessionDo_LoginFailWritesNoSessionCookies(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"fail","data":{"password":["incorrect password"]}}`))
	})

	gw := backend.gateway(t)
	w := httptest.NewRecorder()
	sess := gw.Bind(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	res := sess.Do(context.Background(), Call{Method: http.MethodPost, Path: "/auth/login/"})

	require.Equal(t, KindFail, res.Kind)
	assert.Equal(t, []string{"incorrect password"}, res.FieldErrors["password"].Messages())
	assert.Nil(t, cookieByName(t, w, AccessTokenCookie))
	assert.Nil(t, cookieByName(t, w, RefreshTokenCookie))
}

// Scenario: expired session on a mutation. Both session cookies are deleted
// and the result is flagged for a sign-in redirect.
func TestSessionDo_UnauthorizedDeletesSession(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("PATCH /v1/users/me/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"token expired","code":"UNAUTHORIZED"}`))
	})

	gw := backend.gateway(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPatch, "/profile", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "expired"})
	r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "expired"})
	r.AddCookie(&http.Cookie{Name: CSRFTokenCookie, Value: "cached"})
	sess := gw.Bind(w, r)

	res := sess.Do(context.Background(), Call{Method: http.MethodPatch, Path: "/v1/users/me/"})

	require.Equal(t, KindError, res.Kind)
	assert.True(t, res.Unauthorized())
	assert.True(t, res.SessionInvalid)

	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := cookieByName(t, w, name)
		require.NotNil(t, c, name)
		assert.Equal(t, -1, c.MaxAge, name)
	}
}

// No other error code triggers session deletion.
func TestSessionDo_OtherErrorsKeepSession(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("POST /v1/posts/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":"error","message":"not yours","code":"FORBIDDEN"}`))
	})

	gw := backend.gateway(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/new", nil)
	r.AddCookie(&http.Cookie{Name: CSRFTokenCookie, Value: "cached"})
	sess := gw.Bind(w, r)

	res := sess.Do(context.Background(), Call{Method: http.MethodPost, Path: "/v1/posts/"})

	require.Equal(t, KindError, res.Kind)
	assert.False(t, res.SessionInvalid)
	assert.Nil(t, cookieByName(t, w, AccessTokenCookie))
}

// Scenario: the anti-forgery endpoint is unreachable. The mutation aborts
// before reaching the backend.
func TestSessionDo_TokenUnavailableAbortsMutation(t *testing.T) {
	backend := newTestBackend(t)
	var createHits atomic.Int64
	backend.mux.HandleFunc("POST /v1/posts/", func(w http.ResponseWriter, r *http.Request) {
		createHits.Add(1)
	})

	// Point the gateway's broker at a dead server while the main backend
	// stays up.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	gw := New(Options{
		Client: backend.srv.Client(),
		Config: Config{BaseURL: backend.srv.URL, Timeout: 2 * time.Second},
	})
	gw.broker = NewTokenBroker(TokenBrokerOptions{
		Client:   backend.srv.Client(),
		TokenURL: deadURL + "/auth/csrf/",
	})

	w := httptest.NewRecorder()
	sess := gw.Bind(w, httptest.NewRequest(http.MethodPost, "/new", nil))

	res := sess.Do(context.Background(), Call{Method: http.MethodPost, Path: "/v1/posts/"})

	require.Equal(t, KindError, res.Kind)
	assert.True(t, res.Transport)
	assert.Zero(t, createHits.Load(), "mutation must not reach the backend without a token")
}

// A cached anti-forgery cookie means zero calls to the token endpoint.
func TestSessionDo_CachedCSRFSkipsBroker(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("POST /v1/posts/", func(w http.ResponseWriter, r *http.Request) {
		backend.recordCSRF(r)
		_, _ = w.Write([]byte(`{"status":"success","data":{"id":1}}`))
	})

	gw := backend.gateway(t)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/new", nil)
	r.AddCookie(&http.Cookie{Name: CSRFTokenCookie, Value: "cached-token"})
	sess := gw.Bind(w, r)

	res := sess.Do(context.Background(), Call{Method: http.MethodPost, Path: "/v1/posts/"})

	require.Equal(t, KindSuccess, res.Kind)
	assert.Zero(t, backend.csrfHits.Load())
	assert.Equal(t, "cached-token", backend.lastCSRF.Load())
}

// Reads never consult the broker at all.
func TestSessionDo_GetSkipsBroker(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("GET /v1/posts/", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(CSRFHeader))
		_, _ = w.Write([]byte(`{"status":"success","data":{"count":0,"next":null,"previous":null,"results":[]}}`))
	})

	gw := backend.gateway(t)
	sess := gw.Bind(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))

	res := sess.Do(context.Background(), Call{Method: http.MethodGet, Path: "/v1/posts/"})

	require.Equal(t, KindSuccess, res.Kind)
	assert.Zero(t, backend.csrfHits.Load())
}

func TestSessionDo_ForwardsCredentialsAndQuery(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("GET /v1/users/me/posts/", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(AccessTokenCookie)
		require.NoError(t, err)
		assert.Equal(t, "my-token", c.Value)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"status":"success","data":{"count":0,"next":null,"previous":null,"results":[]}}`))
	})

	gw := backend.gateway(t)
	r := httptest.NewRequest(http.MethodGet, "/dashboard/posts", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "my-token"})
	sess := gw.Bind(httptest.NewRecorder(), r)

	res := sess.Do(context.Background(), Call{
		Method: http.MethodGet,
		Path:   "/v1/users/me/posts/",
		Query:  map[string][]string{"page": {"2"}},
	})

	require.Equal(t, KindSuccess, res.Kind)
}

func TestSessionDo_TimeoutClassifiesAsTransport(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("GET /v1/slow/", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	})

	gw := New(Options{
		Client: backend.srv.Client(),
		Config: Config{BaseURL: backend.srv.URL, Timeout: 50 * time.Millisecond},
	})
	sess := gw.Bind(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	start := time.Now()
	res := sess.Do(context.Background(), Call{Method: http.MethodGet, Path: "/v1/slow/"})

	require.Equal(t, KindError, res.Kind)
	assert.True(t, res.Transport)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSessionDo_CallerCancellationAborts(t *testing.T) {
	backend := newTestBackend(t)
	backend.mux.HandleFunc("GET /v1/slow/", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	gw := backend.gateway(t)
	ctx, cancel := context.WithCancel(context.Background())
	sess := gw.Bind(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	res := sess.Do(ctx, Call{Method: http.MethodGet, Path: "/v1/slow/"})

	require.Equal(t, KindError, res.Kind)
	assert.True(t, res.Transport)
}

func TestSessionEnsureCSRF(t *testing.T) {
	backend := newTestBackend(t)
	gw := backend.gateway(t)

	w := httptest.NewRecorder()
	sess := gw.Bind(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	tok, err := sess.EnsureCSRF(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "backend-csrf-token", tok)
	c := cookieByName(t, w, CSRFTokenCookie)
	require.NotNil(t, c)
	assert.Equal(t, "backend-csrf-token", c.Value)
	assert.False(t, c.HttpOnly)

	// Second render with the cookie present stays off the network.
	r2 := httptest.NewRequest(http.MethodGet, "/login", nil)
	r2.AddCookie(&http.Cookie{Name: CSRFTokenCookie, Value: "backend-csrf-token"})
	sess2 := gw.Bind(httptest.NewRecorder(), r2)
	before := backend.csrfHits.Load()

	_, err = sess2.EnsureCSRF(context.Background())

	require.NoError(t, err)
	assert.Equal(t, before, backend.csrfHits.Load())
}

func TestValidationError(t *testing.T) {
	ve := &ValidationError{Fields: FieldErrors{"title": NewFieldMessages("too short")}}

	assert.Contains(t, ve.Error(), "title: too short")

	got, ok := AsValidation(ve)
	assert.True(t, ok)
	assert.Equal(t, ve, got)

	_, ok = AsValidation(context.Canceled)
	assert.False(t, ok)
}
