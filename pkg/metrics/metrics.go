package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequestsTotal API请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration API请求处理时长
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// LoginAttemptsTotal 登录尝试次数（按结果分类）
	// result: success / invalid_credentials / disabled / rate_limited
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// AccessDeniedTotal 访问拒绝次数（按原因分类）
	// reason: unauthenticated / forbidden
	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_denied_total",
			Help: "Total number of denied requests by reason",
		},
		[]string{"reason"},
	)
)
