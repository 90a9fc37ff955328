// observability/metrics.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package observability

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Database labels used with the db label.
const (
	DBNavaid = "navaid"
	DBAirway = "airway"
)

// Collector bundles the Prometheus metrics reported by database builds
// and path queries. All methods accept a nil *Collector, in which case
// they do nothing.
type Collector struct {
	RecordsLoaded  *prometheus.CounterVec
	MalformedLines *prometheus.CounterVec
	Colocated      prometheus.Counter
	Duplicates     prometheus.Counter
	BuildDuration  *prometheus.HistogramVec
	BuildStatus    *prometheus.GaugeVec
	PathQueries    *prometheus.CounterVec
}

// NewCollector registers the database metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Metrics that are already registered are reused so that several
// databases may share a registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	var c Collector
	var err error
	if c.RecordsLoaded, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navdb_records_loaded_total",
		Help: "Records read from source files, labeled by database and record kind.",
	}, []string{"db", "kind"})); err != nil {
		return nil, err
	}
	if c.MalformedLines, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navdb_malformed_lines_total",
		Help: "Source lines that could not be parsed, labeled by database.",
	}, []string{"db"})); err != nil {
		return nil, err
	}
	if c.Colocated, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "navdb_colocated_total",
		Help: "Navaids merged into a colocated composite station.",
	})); err != nil {
		return nil, err
	}
	if c.Duplicates, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "navdb_duplicates_total",
		Help: "Duplicate navaid records discarded.",
	})); err != nil {
		return nil, err
	}
	if c.BuildDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "navdb_build_duration_seconds",
		Help:    "Time to build a database from its source files.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"db"})); err != nil {
		return nil, err
	}
	if c.BuildStatus, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "navdb_build_status",
		Help: "Terminal build status: 0 pending, 1 success, 2 partial load, 3 file not found.",
	}, []string{"db"})); err != nil {
		return nil, err
	}
	if c.PathQueries, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navdb_path_queries_total",
		Help: "Airway path queries, labeled by query kind and result (found, empty, cached).",
	}, []string{"kind", "result"})); err != nil {
		return nil, err
	}

	return &c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return c, fmt.Errorf("collector %T already registered with incompatible type", are.ExistingCollector)
		}
		return c, err
	}
	return c, nil
}

func (c *Collector) RecordLoaded(db, kind string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.RecordsLoaded.WithLabelValues(db, kind).Add(float64(n))
}

func (c *Collector) Malformed(db string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.MalformedLines.WithLabelValues(db).Add(float64(n))
}

// Merges records the outcome of navaid colocation merging.
func (c *Collector) Merges(colocated, duplicates int) {
	if c == nil {
		return
	}
	c.Colocated.Add(float64(colocated))
	c.Duplicates.Add(float64(duplicates))
}

// BuildFinished records the duration and terminal status of a build;
// status is the numeric value of the database's status enum.
func (c *Collector) BuildFinished(db string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.BuildDuration.WithLabelValues(db).Observe(elapsed.Seconds())
	c.BuildStatus.WithLabelValues(db).Set(float64(status))
}

func (c *Collector) PathQuery(kind, result string) {
	if c != nil {
		c.PathQueries.WithLabelValues(kind, result).Inc()
	}
}
