// Package middleware holds the HTTP middleware that ties requests to the
// container.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/container"
)

// RequestIDKey is the abstract under which Scope stores the request id.
const RequestIDKey = "request.id"

// Scope opens a container scope for each request and closes it once the
// handler returns. The scope is reachable with container.ScopeFrom and holds
// the chi request id under RequestIDKey, so it must run after
// chi's RequestID middleware.
func Scope(c *container.Container, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := c.NewScope()
			defer func() {
				if err := scope.Close(); err != nil {
					log.Warn("closing request scope", zap.String("scope", scope.ID()), zap.Error(err))
				}
			}()

			id := chimw.GetReqID(r.Context())
			if id == "" {
				id = scope.ID()
			}
			// A fresh scope cannot be closed yet.
			_ = scope.Instance(RequestIDKey, id)

			next.ServeHTTP(w, r.WithContext(container.WithScope(r.Context(), scope)))
		})
	}
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
