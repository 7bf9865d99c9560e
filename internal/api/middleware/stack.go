package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/quickquack/internal/api/apierr"
	"github.com/mcoot/quickquack/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics are answered with a JSON 500.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Common returns the middleware every API route runs through, outermost first
func Common(logger *slog.Logger) []mux.MiddlewareFunc {
	return []mux.MiddlewareFunc{
		middleware.RequestID,
		Recovery(logger),
		middleware.Logging(logger),
	}
}
