// Package metrics agrupa los collectors Prometheus del servicio. Todas
// las operaciones toleran un *Metrics nil.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lockpad"

type Metrics struct {
	AuthorizeTotal   *prometheus.CounterVec
	TokensIssued     prometheus.Counter
	TokenValidations *prometheus.CounterVec
	HashDuration     *prometheus.HistogramVec
	RateLimited      *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInflight prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New crea y registra los collectors. reg nil => registry propio.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		AuthorizeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorize_total",
			Help:      "Intentos de autorización por tipo de credencial y resultado",
		}, []string{"kind", "outcome"}), // outcome: issued|rejected|invalid|error

		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Tokens firmados",
		}),

		TokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_validations_total",
			Help:      "Validaciones de bearer token por resultado",
		}, []string{"result"}), // ok|rejected

		HashDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "hash_duration_seconds",
			Help:      "Duración de hash/verify argon2id",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"op"}), // hash|verify

		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rechazadas por rate limit",
		}, []string{"route"}),

		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests HTTP procesadas",
		}, []string{"method", "route", "status"}),

		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de requests HTTP",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		HTTPInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_inflight_requests",
			Help:      "Requests en vuelo",
		}),
		gatherer: reg,
	}

	var err error
	reuse := func(c prometheus.Collector) prometheus.Collector {
		if err != nil {
			return c
		}
		var got prometheus.Collector
		got, err = register(reg, c)
		return got
	}
	m.AuthorizeTotal = reuse(m.AuthorizeTotal).(*prometheus.CounterVec)
	m.TokensIssued = reuse(m.TokensIssued).(prometheus.Counter)
	m.TokenValidations = reuse(m.TokenValidations).(*prometheus.CounterVec)
	m.HashDuration = reuse(m.HashDuration).(*prometheus.HistogramVec)
	m.RateLimited = reuse(m.RateLimited).(*prometheus.CounterVec)
	m.HTTPRequests = reuse(m.HTTPRequests).(*prometheus.CounterVec)
	m.HTTPDuration = reuse(m.HTTPDuration).(*prometheus.HistogramVec)
	m.HTTPInflight = reuse(m.HTTPInflight).(prometheus.Gauge)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// register devuelve el collector ya registrado si había uno igual.
func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return c, err
	}
	return c, nil
}

// Handler expone /metrics para el registry de estas métricas.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Authorize(kind, outcome string) {
	if m == nil {
		return
	}
	m.AuthorizeTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) TokenIssued() {
	if m == nil {
		return
	}
	m.TokensIssued.Inc()
}

func (m *Metrics) TokenValidated(ok bool) {
	if m == nil {
		return
	}
	res := "ok"
	if !ok {
		res = "rejected"
	}
	m.TokenValidations.WithLabelValues(res).Inc()
}

// Hash mide una operación argon2; uso: defer m.Hash("verify")().
func (m *Metrics) Hash(op string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() { m.HashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds()) }
}

func (m *Metrics) Limited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}

// Request cuenta un request HTTP terminado. route es el patrón, no el path.
func (m *Metrics) Request(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HTTPRequests.WithLabelValues(method, route, code).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Inflight suma delta al gauge de requests en curso.
func (m *Metrics) Inflight(delta float64) {
	if m == nil {
		return
	}
	m.HTTPInflight.Add(delta)
}
