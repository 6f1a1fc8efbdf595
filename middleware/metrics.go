package middleware

import (
	"errors"
	"strconv"
	"time"

	"ezwallet/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the HTTP and authorization collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	respTime  *prometheus.SummaryVec
	active    prometheus.Gauge
	decisions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	respTime := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "http_resp_time",
		Help:      "HTTP response time in milliseconds.",
		Objectives: map[float64]float64{
			0.5:  0.01,
			0.9:  0.01,
			0.99: 0.001,
		},
	}, []string{"method", "pattern", "status"})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_active_requests",
		Help:      "Requests currently being served.",
	})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Authorization decisions by outcome.",
	}, []string{"authorized", "cause", "renewed"})

	return &Metrics{
		respTime:  register(reg, respTime),
		active:    register(reg, active),
		decisions: register(reg, decisions),
	}
}

// register reuses a collector already registered under the same descriptor.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Handler tracks in-flight requests and their response time per route.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.active.Inc()
		defer func() {
			m.active.Dec()
			status := strconv.Itoa(c.Writer.Status())
			m.respTime.WithLabelValues(c.Request.Method, c.FullPath(), status).
				Observe(float64(time.Since(start).Milliseconds()))
		}()
		c.Next()
	}
}

func (m *Metrics) ObserveDecision(d services.Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(
		strconv.FormatBool(d.Authorized),
		d.Cause,
		strconv.FormatBool(d.RenewedAccessToken != ""),
	).Inc()
}
