package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передаётся nil
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ReservationsTotal  *prometheus.CounterVec
	CancellationsTotal *prometheus.CounterVec

	RoomLockWait     *prometheus.HistogramVec
	RateLimitBlocked *prometheus.CounterVec

	BroadcastEvents      *prometheus.CounterVec
	BroadcastDropped     *prometheus.CounterVec
	BroadcastSubscribers prometheus.Gauge
	RelayMessages        *prometheus.CounterVec

	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec
}

// New регистрирует метрики сервиса в переданном registerer
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ReservationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservations_total",
			Help:        "Reservation attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		CancellationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "cancellations_total",
			Help:        "Cancellation attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		RoomLockWait: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "room_lock_wait_seconds",
			Help:        "Time spent waiting for the per-room lock",
			ConstLabels: constLabels,
			Buckets:     []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2, 5},
		}, []string{"acquired"}),
		RateLimitBlocked: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "rate_limit_rejections_total",
			Help:        "Requests rejected by the rate limiter",
			ConstLabels: constLabels,
		}, []string{"action"}),

		BroadcastEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "broadcast_events_total",
			Help:        "Inventory events published",
			ConstLabels: constLabels,
		}, []string{"type"}),
		BroadcastDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "broadcast_dropped_total",
			Help:        "Events dropped or subscribers disconnected on overflow",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		BroadcastSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "broadcast_subscribers",
			Help:        "Live broadcast subscriptions",
			ConstLabels: constLabels,
		}),
		RelayMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "relay_messages_total",
			Help:        "Inventory events relayed to the message broker",
			ConstLabels: constLabels,
		}, []string{"result"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation"}),
		DBOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Open database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBInUse: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Database connections in use",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBIdle: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Idle database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),
	}
}

func (m *Metrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncReservation(outcome string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCancellation(outcome string) {
	if m == nil {
		return
	}
	m.CancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLockWait(d time.Duration, acquired bool) {
	if m == nil {
		return
	}
	label := "true"
	if !acquired {
		label = "false"
	}
	m.RoomLockWait.WithLabelValues(label).Observe(d.Seconds())
}

func (m *Metrics) IncRateLimited(action string) {
	if m == nil {
		return
	}
	m.RateLimitBlocked.WithLabelValues(action).Inc()
}

func (m *Metrics) IncBroadcastEvent(eventType string) {
	if m == nil {
		return
	}
	m.BroadcastEvents.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncBroadcastDropped(reason string) {
	if m == nil {
		return
	}
	m.BroadcastDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.BroadcastSubscribers.Set(float64(n))
}

func (m *Metrics) IncRelayMessage(result string) {
	if m == nil {
		return
	}
	m.RelayMessages.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveDBQuery(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetPoolStats обновляет метрики пула соединений
func (m *Metrics) SetPoolStats(dbName string, stats sql.DBStats) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(dbName).Set(float64(stats.OpenConnections))
	m.DBInUse.WithLabelValues(dbName).Set(float64(stats.InUse))
	m.DBIdle.WithLabelValues(dbName).Set(float64(stats.Idle))
	m.DBWaitCount.WithLabelValues(dbName).Set(float64(stats.WaitCount))
}
