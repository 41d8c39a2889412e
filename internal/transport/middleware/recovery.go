package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/ayodelan/schoolbase-backend/pkg/ctxutil"
)

// Recovery converts panics in downstream handlers into a 500 response. The
// panic value and stack are logged together with the request id so the
// incident can be traced from the client's error report.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", v),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
