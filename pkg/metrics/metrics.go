package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signage_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// 地点写操作结果
	LocationMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_location_mutations_total",
			Help: "Total number of screen location write operations by result",
		},
		[]string{"operation", "result"},
	)

	// 翻译任务派发结果: dispatched / failed / relayed
	TranslationTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signage_translation_tasks_total",
			Help: "Total number of translation task dispatch attempts by result",
		},
		[]string{"result"},
	)

	// DB 查询耗时
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signage_db_query_duration_seconds",
			Help:    "Database query execution time in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation", "table", "status"},
	)
)
