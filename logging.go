package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

func newLogger(writer io.Writer, level slog.Level) *slog.Logger {
	if writer == nil {
		writer = os.Stderr
	}
	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level}))
}

// parseLogLevel accepts debug, info, warn and error in any case. Empty means info.
func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	trimmed := stringsTrimSpace(value)
	if trimmed == "" {
		return slog.LevelInfo, nil
	}
	if unmarshalError := level.UnmarshalText([]byte(trimmed)); unmarshalError != nil {
		return slog.LevelInfo, unmarshalError
	}
	return level, nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(httpResponseWriter http.ResponseWriter, httpRequest *http.Request) {
			wrappedWriter := middleware.NewWrapResponseWriter(httpResponseWriter, httpRequest.ProtoMajor)
			startTime := time.Now()
			next.ServeHTTP(wrappedWriter, httpRequest)
			logger.LogAttrs(httpRequest.Context(), slog.LevelInfo, "request",
				slog.String("request_id", middleware.GetReqID(httpRequest.Context())),
				slog.String("method", httpRequest.Method),
				slog.String("path", httpRequest.URL.Path),
				slog.Int("status", wrappedWriter.Status()),
				slog.Int("bytes", wrappedWriter.BytesWritten()),
				slog.Duration("duration", time.Since(startTime)),
			)
		})
	}
}
