// Package testutil provides testing helpers shared across packages: a
// Redis client factory for cache tests and JSend envelope writers for
// fake backends.
package testutil

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetupTestRedis creates a Redis client for testing with automatic address
// detection. Tests are skipped if Redis is not reachable.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}
	_ = conn.Close()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = client.FlushDB(ctx).Err()
		_ = client.Close()
	})
	return client
}

// WriteJSendSuccess writes a success envelope with the given data payload.
func WriteJSendSuccess(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, map[string]any{"status": "success", "data": data})
}

// WriteJSendFail writes a fail envelope carrying field errors.
func WriteJSendFail(w http.ResponseWriter, status int, fields map[string]any) {
	writeEnvelope(w, status, map[string]any{"status": "fail", "data": fields})
}

// WriteJSendError writes an error envelope. code may be empty.
func WriteJSendError(w http.ResponseWriter, status int, message, code string) {
	body := map[string]any{"status": "error", "message": message}
	if code != "" {
		body["code"] = code
	}
	writeEnvelope(w, status, body)
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
