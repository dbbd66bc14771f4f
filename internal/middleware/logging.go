package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietPaths are probed constantly and only logged on failure.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// LoggingMiddleware writes one line per request, leveled by status.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := zapcore.InfoLevel
			switch {
			case status >= 500:
				level = zapcore.ErrorLevel
			case status >= 400:
				level = zapcore.WarnLevel
			case quietPaths[r.URL.Path]:
				return
			}

			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			}
			if userID, ok := GetUserID(r.Context()); ok {
				fields = append(fields, zap.String("user_id", userID))
			}
			if ce := logger.Check(level, "Request completed"); ce != nil {
				ce.Write(fields...)
			}
		})
	}
}
