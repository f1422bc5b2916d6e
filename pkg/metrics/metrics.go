// Package metrics 提供 Prometheus 监控指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 会话指标
var (
	SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fishpi_sessions_connected",
		Help: "Number of currently connected channel sessions",
	})

	SessionReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishpi_session_reconnects_total",
		Help: "Reconnect attempts per channel",
	}, []string{"channel"})

	SessionRetryExhausted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishpi_session_retry_exhausted_total",
		Help: "Sessions that gave up after hitting the retry ceiling",
	}, []string{"channel"})
)

// 消息指标
var (
	FramesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishpi_frames_received_total",
		Help: "Decoded frames per channel and event type",
	}, []string{"channel", "type"})

	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishpi_frames_dropped_total",
		Help: "Frames dropped (keepalives, malformed, unknown type)",
	}, []string{"channel", "reason"})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishpi_messages_sent_total",
		Help: "Outbound messages per channel",
	}, []string{"channel"})
)

// 红包指标
var (
	RedPacketCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fishpi_redpacket_cache_size",
		Help: "Red packets currently tracked in the local cache",
	})

	RedPacketOpened = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fishpi_redpacket_opened_total",
		Help: "Red packet open attempts by outcome",
	}, []string{"outcome"})
)

// API 指标
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fishpi_api_request_duration_seconds",
		Help:    "REST request duration per endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// Serve 启动指标 HTTP 服务
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
