package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MarkoPoloResearchLab/stringkit/stringutil"
)

const shutdownTimeout = 10 * time.Second

func newRouter(serviceConfig serverConfig, logger *slog.Logger, metrics *serviceMetrics, generator *stringutil.Generator) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.NotFound(handleNotFound)
	router.MethodNotAllowed(handleMethodNotAllowed)

	router.Get("/healthz", handleHealth)
	router.Handle("/metrics", metrics.handler())

	rateLimiterWindow := newWindowLimiter(serviceConfig.RateLimitPerMinute)
	router.Route("/v1", func(apiRouter chi.Router) {
		if len(serviceConfig.AllowedOrigins) > 0 {
			apiRouter.Use(requireAllowedOrigin(serviceConfig.AllowedOrigins, metrics))
			apiRouter.Use(corsHandler(serviceConfig.AllowedOrigins))
		}
		apiRouter.Use(rateLimit(rateLimiterWindow, metrics))
		if serviceConfig.requiresBearer() {
			apiRouter.Use(requireBearer(serviceConfig.JwtHmacKey, metrics))
		}
		apiRouter.Post("/begins-with", handleMatch(operationBeginsWith, stringutil.BeginsWith, metrics, logger))
		apiRouter.Post("/ends-with", handleMatch(operationEndsWith, stringutil.EndsWith, metrics, logger))
		apiRouter.Get("/unique-id", handleUniqueID(generator, serviceConfig.UniqueIDMaxBatch, metrics))
	})
	return router
}

func newHTTPServer(serviceConfig serverConfig, logger *slog.Logger, metrics *serviceMetrics) (*http.Server, error) {
	generator, generatorError := stringutil.NewGenerator(serviceConfig.UniqueIDFormat)
	if generatorError != nil {
		return nil, fmt.Errorf("unique id generator: %w", generatorError)
	}
	return &http.Server{
		Addr:              serviceConfig.ListenAddress,
		Handler:           newRouter(serviceConfig, logger, metrics, generator),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}, nil
}

// tiny indirection to ease testing (can be stubbed)
var timeNow = func() time.Time { return time.Now() }
