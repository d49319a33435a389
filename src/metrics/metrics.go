package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resource_share"

// Recorder アプリケーションのPrometheusメトリクス
//
// nilのRecorderに対する記録は何もしない。
type Recorder struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	rateLimitRejection *prometheus.CounterVec
	degradedReads      *prometheus.CounterVec
	storeErrors        *prometheus.CounterVec
	loginAttempts      *prometheus.CounterVec
}

// NewRecorder 独自のレジストリにメトリクスを登録する
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		rateLimitRejection: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_rejections_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"policy"},
		),
		degradedReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "degraded_reads_total",
				Help:      "Reads answered with fallback data because the store failed",
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Store failures by operation",
			},
			[]string{"operation"},
		),
		loginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admin_login_attempts_total",
				Help:      "Admin login attempts by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveHTTP リクエスト1件を記録
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RateLimited レート制限による拒否を記録
func (r *Recorder) RateLimited(policy string) {
	if r == nil {
		return
	}
	r.rateLimitRejection.WithLabelValues(policy).Inc()
}

// DegradedRead フォールバックで応答した読み取りを記録
func (r *Recorder) DegradedRead(operation string) {
	if r == nil {
		return
	}
	r.degradedReads.WithLabelValues(operation).Inc()
}

// StoreError ストアのエラーを記録
func (r *Recorder) StoreError(operation string) {
	if r == nil {
		return
	}
	r.storeErrors.WithLabelValues(operation).Inc()
}

// LoginAttempt 管理者ログインの結果を記録（success / failure / throttled）
func (r *Recorder) LoginAttempt(result string) {
	if r == nil {
		return
	}
	r.loginAttempts.WithLabelValues(result).Inc()
}

// Handler /metrics 用のハンドラ
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry 登録先のレジストリ
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
