package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	appmw "tripndrop/internal/http/middleware"
	"tripndrop/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter     `name:"rate_limit_exceeded_total"`
	PublishRetriesTotal    prometheus.Counter     `name:"event_publish_retries_total"`
	PublishDroppedTotal    prometheus.Counter     `name:"event_publish_dropped_total"`
	TransitionsTotal       *prometheus.CounterVec `name:"delivery_transitions_total"`
	MatchResults           prometheus.Histogram   `name:"match_results"`
	HTTP                   appmw.HTTPMetrics
	Gatherer               prometheus.Gatherer
}

// provideMetrics registers every collector on the default registry. A
// collector that is already registered is reused.
func provideMetrics() (metricsOut, error) {
	reg := prometheus.DefaultRegisterer

	rl, err := register(reg, "rate_limit_exceeded_total", metrics.NewRateLimitExceededTotal())
	if err != nil {
		return metricsOut{}, err
	}
	pr, err := register(reg, "event_publish_retries_total", metrics.NewPublishRetriesTotal())
	if err != nil {
		return metricsOut{}, err
	}
	pd, err := register(reg, "event_publish_dropped_total", metrics.NewPublishDroppedTotal())
	if err != nil {
		return metricsOut{}, err
	}
	tr, err := register(reg, "delivery_transitions_total", metrics.NewTransitionsTotal())
	if err != nil {
		return metricsOut{}, err
	}
	mr, err := register(reg, "match_results", metrics.NewMatchResults())
	if err != nil {
		return metricsOut{}, err
	}
	hr, err := register(reg, "http_requests_total", metrics.NewHTTPRequestsTotal())
	if err != nil {
		return metricsOut{}, err
	}
	hd, err := register(reg, "http_request_duration_seconds", metrics.NewHTTPRequestDuration())
	if err != nil {
		return metricsOut{}, err
	}

	return metricsOut{
		RateLimitExceededTotal: rl,
		PublishRetriesTotal:    pr,
		PublishDroppedTotal:    pd,
		TransitionsTotal:       tr,
		MatchResults:           mr,
		HTTP:                   appmw.HTTPMetrics{Requests: hr, Duration: hd},
		Gatherer:               prometheus.DefaultGatherer,
	}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, name string, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}
