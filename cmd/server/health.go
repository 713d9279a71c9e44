package main

import (
	"context"
	"net/http"
	"time"

	"checkout/pkg/platform/httputil"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

// healthHandler reports ok, or 503 when the session store is unreachable.
// A nil checker means sessions are held in process.
func healthHandler(store healthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if store != nil {
			if err := store.Health(ctx); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"redis":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
