// navdb/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"errors"
	"fmt"

	"github.com/libnav/navdb/observability"

	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBannerLines is the number of format banner lines at the
	// start of X-Plane navigation data files.
	DefaultBannerLines = 3

	DefaultPathCacheSize = 1024
)

// Config specifies the source files and tuning for the databases.
type Config struct {
	FixPath    string `json:"fix_path"`
	NavaidPath string `json:"navaid_path"`
	AirwayPath string `json:"airway_path"`

	// BannerLines leading lines of each file are skipped; they are
	// never reported as malformed.
	BannerLines int `json:"banner_lines"`

	// PathCacheSize is the number of airway path query results that
	// are memoized; 0 disables the cache.
	PathCacheSize int `json:"path_cache_size"`
}

func DefaultConfig() Config {
	return Config{
		BannerLines:   DefaultBannerLines,
		PathCacheSize: DefaultPathCacheSize,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.BannerLines < 0 {
		errs = append(errs, fmt.Errorf("banner_lines: %d must not be negative", c.BannerLines))
	}
	if c.PathCacheSize < 0 {
		errs = append(errs, fmt.Errorf("path_cache_size: %d must not be negative", c.PathCacheSize))
	}
	if c.FixPath == "" && c.NavaidPath == "" && c.AirwayPath == "" {
		errs = append(errs, errors.New("no source files specified"))
	}
	return errors.Join(errs...)
}

///////////////////////////////////////////////////////////////////////////
// Options

type options struct {
	collector *observability.Collector
	tracer    trace.Tracer
}

// Option customizes the instrumentation of a database.
type Option func(*options)

// WithCollector reports build and query metrics to c.
func WithCollector(c *observability.Collector) Option {
	return func(o *options) { o.collector = c }
}

// WithTracerProvider creates build and query spans using tp rather than
// the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = observability.Tracer(tp) }
}

func makeOptions(opts []Option) options {
	o := options{tracer: observability.Tracer(nil)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
