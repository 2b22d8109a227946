package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики - количество запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - время обработки запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// WS метрики - количество активных соединений
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	relayActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_rooms",
			Help: "Количество непустых комнат",
		},
	)

	relaySignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_signals_total",
			Help: "Количество пересланных сигнальных сообщений по типу",
		},
		[]string{"type"},
	)

	relayDroppedMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_dropped_messages_total",
			Help: "Сообщения, отброшенные из-за отключившегося или медленного получателя",
		},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func SetActiveRooms(count int) {
	relayActiveRooms.Set(float64(count))
}

// RecordSignal считает одно пересланное сообщение (на каждого получателя)
func RecordSignal(eventType string) {
	relaySignalsTotal.WithLabelValues(eventType).Inc()
}

func RecordDroppedMessage() {
	relayDroppedMessagesTotal.Inc()
}
