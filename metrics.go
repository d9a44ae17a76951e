package main

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarkoPoloResearchLab/stringkit/stringutil"
)

const (
	metricsNamespace = "stringkit"

	outcomeOK              = "ok"
	outcomeInvalidArgument = "invalid_argument"
	outcomeError           = "error"

	rejectionMissingBearer    = "missing_bearer"
	rejectionInvalidToken     = "invalid_token"
	rejectionOriginNotAllowed = "origin_not_allowed"
	rejectionRateLimited      = "rate_limited"
)

type serviceMetrics struct {
	registry        *prometheus.Registry
	operationsTotal *prometheus.CounterVec
	uniqueIDsTotal  *prometheus.CounterVec
	rejectedTotal   *prometheus.CounterVec
}

func newServiceMetrics() *serviceMetrics {
	registry := prometheus.NewRegistry()
	metrics := &serviceMetrics{
		registry: registry,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "String operations served, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		uniqueIDsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unique_ids_total",
			Help:      "Unique ids handed out, by token format.",
		}, []string{"format"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_rejected_total",
			Help:      "API requests rejected before reaching an operation, by reason.",
		}, []string{"reason"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.operationsTotal,
		metrics.uniqueIDsTotal,
		metrics.rejectedTotal,
	)
	return metrics
}

func (metrics *serviceMetrics) handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{Registry: metrics.registry})
}

func (metrics *serviceMetrics) observeOperation(operation string, operationError error) {
	outcome := outcomeOK
	switch {
	case errors.Is(operationError, stringutil.ErrInvalidArgument):
		outcome = outcomeInvalidArgument
	case operationError != nil:
		outcome = outcomeError
	}
	metrics.operationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (metrics *serviceMetrics) observeUniqueIDs(format stringutil.Format, count int) {
	metrics.uniqueIDsTotal.WithLabelValues(string(format)).Add(float64(count))
}

func (metrics *serviceMetrics) observeRejection(reason string) {
	metrics.rejectedTotal.WithLabelValues(reason).Inc()
}
