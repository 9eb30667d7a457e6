// Package metrics считает выполнения запросов для Prometheus.
// CLI живет недолго, поэтому вместо HTTP endpoint метрики сбрасываются
// в textfile для node_exporter (--metrics-file / metrics.textfile).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Статусы выполнения
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder принимает результат каждого выполнения запроса
type Recorder interface {
	ObserveQuery(dbType string, elapsed time.Duration, rows int, err error)
}

// Prometheus - Recorder поверх собственного реестра
type Prometheus struct {
	registry *prometheus.Registry

	// executions counts query executions by outcome.
	executions *prometheus.CounterVec

	// duration tracks wall time of each execution including row materialization.
	duration *prometheus.HistogramVec

	// rowsFetched counts rows returned by successful executions.
	rowsFetched *prometheus.CounterVec
}

// NewPrometheus создает Recorder с отдельным реестром
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbclean_query_executions_total",
				Help: "Total number of executed queries by database type and status",
			},
			[]string{"db_type", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbclean_query_duration_seconds",
				Help:    "Query execution time including fetching all rows",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"db_type"},
		),
		rowsFetched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbclean_rows_fetched_total",
				Help: "Total number of rows fetched by successful queries",
			},
			[]string{"db_type"},
		),
	}
}

// ObserveQuery реализует Recorder
func (p *Prometheus) ObserveQuery(dbType string, elapsed time.Duration, rows int, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}

	p.executions.WithLabelValues(dbType, status).Inc()
	p.duration.WithLabelValues(dbType).Observe(elapsed.Seconds())
	if err == nil {
		p.rowsFetched.WithLabelValues(dbType).Add(float64(rows))
	}
}

// Registry возвращает реестр для тестов и внешней регистрации
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile сохраняет текущие значения в формате textfile collector
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

// Nop - Recorder, который ничего не делает
type Nop struct{}

// ObserveQuery реализует Recorder
func (Nop) ObserveQuery(string, time.Duration, int, error) {}
