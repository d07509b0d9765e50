package httpx

import (
	"encoding/json"
	"net/http"
)

// healthHandler reports liveness of the rendering tier. It deliberately does
// not call the backend: a dead backend degrades pages but the tier itself is
// still up.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
