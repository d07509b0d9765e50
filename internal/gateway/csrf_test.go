package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBrokerAgainst(t *testing.T, handler http.HandlerFunc) (*TokenBroker, *httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	broker := NewTokenBroker(TokenBrokerOptions{
		Client:   srv.Client(),
		TokenURL: srv.URL + "/auth/csrf/",
	})
	return broker, srv, &hits
}

// A cached anti-forgery cookie is the fast path: zero network calls.
func TestTokenBroker_CachedCookieSkipsNetwork(t *testing.T) {
	broker, _, hits := newBrokerAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token endpoint must not be called")
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CSRFTokenCookie, Value: "cached-token"})
	store, _ := newTestStore(t, r, false)

	tok, err := broker.Token(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, "cached-token", tok.Value)
	assert.Nil(t, tok.Cookie)
	assert.Zero(t, hits.Load())
}

func TestTokenBroker_FetchesWhenAbsent(t *testing.T) {
	broker, _, hits := newBrokerAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		http.SetCookie(w, &http.Cookie{Name: CSRFTokenCookie, Value: "fresh-token", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"csrf_token":"fresh-token"}}`))
	})

	store, _ := newTestStore(t, nil, false)

	tok, err := broker.Token(context.Background(), store)

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", tok.Value)
	require.NotNil(t, tok.Cookie)
	assert.Equal(t, "fresh-token", tok.Cookie.Value)
	assert.Equal(t, int64(1), hits.Load())
}

func TestTokenBroker_UnavailableOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"status":"error","message":"down"}`))
			},
		},
		{
			"malformed envelope",
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>proxy error</html>`))
			},
		},
		{
			"success without token field",
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"success","data":{}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broker, _, _ := newBrokerAgainst(t, tt.handler)
			store, _ := newTestStore(t, nil, false)

			_, err := broker.Token(context.Background(), store)

			assert.ErrorIs(t, err, ErrTokenUnavailable)
		})
	}
}

func TestTokenBroker_NetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := srv.Client()
	srv.Close() // unreachable from here on

	broker := NewTokenBroker(TokenBrokerOptions{Client: client, TokenURL: srv.URL + "/auth/csrf/"})
	store, _ := newTestStore(t, nil, false)

	_, err := broker.Token(context.Background(), store)

	assert.ErrorIs(t, err, ErrTokenUnavailable)
}
