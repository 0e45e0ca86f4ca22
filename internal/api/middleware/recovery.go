package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kiranshivaraju/insightreporter/internal/api/response"
)

// Recovery turns a handler panic into a 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			slog.ErrorContext(r.Context(), "panic recovered",
				"error", rvr,
				"stack", string(debug.Stack()),
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "An unexpected error occurred", nil)
		}()
		next.ServeHTTP(w, r)
	})
}
