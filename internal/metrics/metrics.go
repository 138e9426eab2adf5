// Package metrics expone las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec

	// Auth events
	signUpsTotal       prometheus.Counter
	signInsTotal       *prometheus.CounterVec
	verificationsTotal prometheus.Counter
	refreshesTotal     *prometheus.CounterVec
	oauthSignInsTotal  *prometheus.CounterVec
	mailsSentTotal     *prometheus.CounterVec
)

// Config agrupa dependencias necesarias para exponer /metrics.
type Config struct {
	Registry prometheus.Registerer

	// Pool opcional; si está, se registran gauges de conexiones.
	Pool func() *pgxpool.Pool
}

// Register inicializa las métricas y devuelve el handler para /metrics.
func Register(cfg Config) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		signUpsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_signups_total",
			Help: "Registros exitosos",
		})

		signInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_signins_total",
			Help: "Intentos de login por resultado",
		}, []string{"result"}) // result: success|invalid|unverified

		verificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_email_verifications_total",
			Help: "Emails verificados",
		})

		refreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refreshes_total",
			Help: "Renovaciones de sesión por resultado",
		}, []string{"result"}) // result: success|invalid

		oauthSignInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_oauth_signins_total",
			Help: "Logins OAuth por provider y resultado",
		}, []string{"provider", "result"})

		mailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_verification_mails_total",
			Help: "Mails de verificación por resultado",
		}, []string{"result"}) // result: sent|failed

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight,
			signUpsTotal, signInsTotal, verificationsTotal,
			refreshesTotal, oauthSignInsTotal, mailsSentTotal,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.Pool != nil {
		if err := registerCollector(registry, newPoolCollector(cfg.Pool)); err != nil {
			return nil, err
		}
	}

	// Usamos el gatherer global por compatibilidad, ya que las métricas se registran allí.
	return promhttp.Handler(), nil
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// ─── Middleware HTTP ───

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

// WithMetrics instrumenta requests HTTP (contadores, latencia, inflight).
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		pathLabel := normalizePath(r.URL.Path)

		httpInflight.WithLabelValues(method, pathLabel).Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			httpInflight.WithLabelValues(method, pathLabel).Dec()
			httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

// normalizePath colapsa segmentos dinámicos para acotar la cardinalidad.
// Las rutas del servicio sólo tienen {provider} como segmento variable.
func normalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	for _, prov := range []string{"google", "github"} {
		clean = strings.ReplaceAll(clean, "/"+prov, "/:provider")
	}
	return clean
}

// ─── Eventos de negocio ───

// RecordSignUp registra un registro exitoso.
func RecordSignUp() {
	if signUpsTotal != nil {
		signUpsTotal.Inc()
	}
}

// RecordSignIn registra un intento de login. result: success|invalid|unverified
func RecordSignIn(result string) {
	if signInsTotal != nil {
		signInsTotal.WithLabelValues(result).Inc()
	}
}

// RecordVerification registra un email verificado.
func RecordVerification() {
	if verificationsTotal != nil {
		verificationsTotal.Inc()
	}
}

// RecordRefresh registra un refresh. result: success|invalid
func RecordRefresh(result string) {
	if refreshesTotal != nil {
		refreshesTotal.WithLabelValues(result).Inc()
	}
}

// RecordOAuthSignIn registra un login social. result: success|failed
func RecordOAuthSignIn(provider, result string) {
	if oauthSignInsTotal != nil {
		oauthSignInsTotal.WithLabelValues(provider, result).Inc()
	}
}

// RecordMail registra el resultado de un mail de verificación. result: sent|failed
func RecordMail(result string) {
	if mailsSentTotal != nil {
		mailsSentTotal.WithLabelValues(result).Inc()
	}
}

// ─── Collector del pool pgx ───

type poolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newPoolCollector(pool func() *pgxpool.Pool) *poolCollector {
	return &poolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	pool := c.pool()
	if pool == nil {
		return
	}
	stat := pool.Stat()
	if stat == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}
