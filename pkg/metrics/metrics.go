package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор метрик Prometheus сервиса
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Метрики БД
	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections prometheus.Gauge
	DBInUseConnections prometheus.Gauge
	DBIdleConnections prometheus.Gauge

	// Бизнес-метрики бронирования
	AppointmentsCreatedTotal   prometheus.Counter
	AppointmentsCancelledTotal prometheus.Counter
	BookingConflictsTotal      *prometheus.CounterVec
	HoldsPlacedTotal           prometheus.Counter
	HoldsExpiredTotal          prometheus.Counter

	// Метрики напоминаний
	RemindersSentTotal       prometheus.Counter
	ReminderSendErrorsTotal  prometheus.Counter
	ReminderTicksSkippedTotal prometheus.Counter
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				ConstLabels: constLabels,
				Buckets:     prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "db_query_duration_seconds",
				Help:        "Database query duration in seconds",
				ConstLabels: constLabels,
				Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}),
		DBInUseConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections currently in use",
			ConstLabels: constLabels,
		}),
		DBIdleConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}),
		AppointmentsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "appointments_created_total",
			Help:        "Total number of confirmed appointments created",
			ConstLabels: constLabels,
		}),
		AppointmentsCancelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "appointments_cancelled_total",
			Help:        "Total number of cancelled appointments",
			ConstLabels: constLabels,
		}),
		BookingConflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "booking_conflicts_total",
				Help:        "Total number of rejected booking attempts by conflict reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		HoldsPlacedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "holds_placed_total",
			Help:        "Total number of temporary reservations placed",
			ConstLabels: constLabels,
		}),
		HoldsExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "holds_expired_total",
			Help:        "Total number of temporary reservations removed by TTL expiry",
			ConstLabels: constLabels,
		}),
		RemindersSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reminders_sent_total",
			Help:        "Total number of reminder notifications sent",
			ConstLabels: constLabels,
		}),
		ReminderSendErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reminder_send_errors_total",
			Help:        "Total number of failed reminder notification attempts",
			ConstLabels: constLabels,
		}),
		ReminderTicksSkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "reminder_ticks_skipped_total",
			Help:        "Total number of scheduler ticks skipped because the previous tick was still running",
			ConstLabels: constLabels,
		}),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.AppointmentsCreatedTotal,
		m.AppointmentsCancelledTotal,
		m.BookingConflictsTotal,
		m.HoldsPlacedTotal,
		m.HoldsExpiredTotal,
		m.RemindersSentTotal,
		m.ReminderSendErrorsTotal,
		m.ReminderTicksSkippedTotal,
	)

	return m
}
