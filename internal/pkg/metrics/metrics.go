package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 予約結果のラベル
const (
	ReservationCreated   = "created"
	ReservationUpdated   = "updated"
	ReservationCancelled = "cancelled"
	ReservationConflict  = "conflict"
	ReservationRejected  = "rejected"
	ReservationLockBusy  = "lock_failed"
	ReservationError     = "error"
)

// Metrics はアプリケーションのメトリクスを保持する
// nil の *Metrics も有効で、何も記録しない
type Metrics struct {
	// method, path, status_code
	HTTPRequestsTotal *prometheus.CounterVec

	// method, path
	HTTPRequestDuration *prometheus.HistogramVec

	// status: created, updated, cancelled, conflict, rejected, lock_failed, error
	ReservationsTotal *prometheus.CounterVec

	// type: withdrawal, refund, deposit; status: success, failed
	SettlementsTotal *prometheus.CounterVec

	// 種別ごとの精算金額の合計
	SettlementAmount *prometheus.CounterVec

	// operation: acquire/release, status: success/failed
	DistributedLockDuration *prometheus.HistogramVec

	// 引き落とし待ちの確定予約数
	UnsettledReservations prometheus.Gauge
}

// New はデフォルトレジストリにメトリクスを登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Reservation operations by outcome",
			},
			[]string{"status"},
		),
		SettlementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlements_total",
				Help: "Balance settlements by type and outcome",
			},
			[]string{"type", "status"},
		),
		SettlementAmount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_amount_total",
				Help: "Sum of successfully settled amounts by type",
			},
			[]string{"type"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		UnsettledReservations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "unsettled_reservations",
				Help: "Confirmed reservations without a withdrawal seen by the last reconcile run",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.SettlementsTotal,
		m.SettlementAmount,
		m.DistributedLockDuration,
		m.UnsettledReservations,
	)

	return m
}

func (m *Metrics) ObserveReservation(status string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveSettlement(typ string, err error, amount float64) {
	if m == nil {
		return
	}
	if err != nil {
		m.SettlementsTotal.WithLabelValues(typ, "failed").Inc()
		return
	}
	m.SettlementsTotal.WithLabelValues(typ, "success").Inc()
	if amount > 0 {
		m.SettlementAmount.WithLabelValues(typ).Add(amount)
	}
}

func (m *Metrics) ObserveLock(operation string, err error, started time.Time) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

func (m *Metrics) SetUnsettled(n int) {
	if m == nil {
		return
	}
	m.UnsettledReservations.Set(float64(n))
}

var defaultMetrics *Metrics

// Init はデフォルトインスタンスを作成する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

func Get() *Metrics {
	return defaultMetrics
}
