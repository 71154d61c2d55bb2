package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ── HTTP ──

	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration API 请求处理时长
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ── 投诉业务 ──

	// ComplaintsSubmitted 已受理的投诉数（按校区）
	ComplaintsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_submitted_total",
			Help: "Total number of complaints accepted by intake",
		},
		[]string{"campus_id"},
	)

	// ComplaintStatusTransitions 状态流转次数
	ComplaintStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_transitions_total",
			Help: "Total number of complaint status transitions",
		},
		[]string{"from", "to"},
	)

	// TicketCodeCollisions 工单号唯一约束冲突次数
	TicketCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_code_collisions_total",
			Help: "Total number of ticket code unique-index collisions",
		},
	)

	// UploadFailures 图片存储失败次数
	UploadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "complaint_upload_failures_total",
			Help: "Total number of failed complaint image writes",
		},
	)
)
