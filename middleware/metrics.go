package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/lestrrat-go/cloudstack"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects Prometheus metrics for calls. It is safe for concurrent
// use; create one per registry and share its Middleware.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil reg means
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudstack_requests_total",
				Help: "Total number of CloudStack API calls",
			},
			[]string{"command", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudstack_request_duration_seconds",
				Help:    "Duration of CloudStack API calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudstack_errors_total",
				Help: "Total number of failed CloudStack API calls by kind",
			},
			[]string{"command", "kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.errorsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware returns the stage that records the metrics.
func (m *Metrics) Middleware() cloudstack.Middleware {
	return cloudstack.Func(func(next cloudstack.Handler) cloudstack.HandlerFunc {
		return func(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
			start := time.Now()
			res, err := next.Call(ctx, env)
			m.requestDuration.WithLabelValues(env.EndpointName).Observe(time.Since(start).Seconds())

			status := "error"
			var serr *cloudstack.StatusError
			switch {
			case err == nil:
				status = strconv.Itoa(res.Status())
			case errors.As(err, &serr):
				status = strconv.Itoa(serr.StatusCode)
			}
			m.requestsTotal.WithLabelValues(env.EndpointName, status).Inc()

			if err != nil {
				m.errorsTotal.WithLabelValues(env.EndpointName, errorKind(err)).Inc()
			}
			return res, err
		}
	})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, cloudstack.ErrConfiguration):
		return "configuration"
	case errors.Is(err, cloudstack.ErrValidation):
		return "validation"
	case errors.Is(err, cloudstack.ErrTransport):
		return "transport"
	default:
		return "other"
	}
}
