package httpx

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pressgate/pressgate/internal/data"
	"github.com/pressgate/pressgate/internal/gateway"
)

// PageCache stores rendered pages. *data.RedisPageCacheRepo satisfies it.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, page []byte, ttl time.Duration) error
}

// CachePages returns a middleware that serves anonymous GET responses from
// the page cache. Requests carrying any credential cookie bypass the cache
// entirely so no personalized markup is ever stored or replayed, and
// responses marked Cache-Control: no-store are never kept. Handlers that
// embed a per-session anti-forgery token set that header, because a cached
// replay carries the body but not the matching Set-Cookie.
func CachePages(cache PageCache, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || hasCredentials(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := data.PageKey(r.URL.Path, r.URL.Query())
			if page, err := cache.Get(r.Context(), key); err == nil && page != nil {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("X-Cache", "HIT")
				_, _ = w.Write(page)
				return
			}

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			if cw.status != http.StatusOK || !isHTML(cw.Header().Get("Content-Type")) {
				return
			}
			if strings.Contains(cw.Header().Get("Cache-Control"), "no-store") {
				return
			}
			if err := cache.Set(r.Context(), key, cw.buf.Bytes(), ttl); err != nil {
				logger.Warn("page cache store failed", slog.String("key", key), slog.Any("error", err))
			}
		})
	}
}

func hasCredentials(r *http.Request) bool {
	for _, name := range []string{gateway.AccessTokenCookie, gateway.RefreshTokenCookie} {
		if _, err := r.Cookie(name); err == nil {
			return true
		}
	}
	return false
}

func isHTML(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html")
}

// captureWriter tees the response body so a successful render can be cached
// after it has been sent to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// HeaderWritten forwards flush state to the wrapped writer.
func (w *captureWriter) HeaderWritten() bool {
	if c, ok := w.ResponseWriter.(interface{ HeaderWritten() bool }); ok {
		return c.HeaderWritten()
	}
	return false
}
