// config/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package config loads the JSON configuration for the navigation
// databases, the radio navigation limits, and logging.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/libnav/navdb/log"
	"github.com/libnav/navdb/navdb"
	"github.com/libnav/navdb/radnav"
	"github.com/libnav/navdb/util"
)

type Config struct {
	Database navdb.Config  `json:"database"`
	RadNav   radnav.Limits `json:"radnav"`
	Log      LogConfig     `json:"log"`
}

type LogConfig struct {
	Level string `json:"level"`
	Dir   string `json:"dir"` // empty: user config directory
}

// Default returns a Config with default settings and no source files.
func Default() *Config {
	return &Config{
		Database: navdb.DefaultConfig(),
		RadNav:   radnav.DefaultLimits,
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the configuration at path. Settings that aren't given in the
// file keep their default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode reads and validates a configuration from r.
func Decode(r io.Reader) (*Config, error) {
	c := Default()
	if err := util.UnmarshalJSON(r, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}

func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	l := c.RadNav
	if l.DMEDMEMinCutDeg < 0 || l.DMEDMEMaxCutDeg > 180 || l.DMEDMEMinCutDeg >= l.DMEDMEMaxCutDeg {
		errs = append(errs, fmt.Errorf("radnav: invalid DME/DME cut window (%g, %g)",
			l.DMEDMEMinCutDeg, l.DMEDMEMaxCutDeg))
	}
	if l.MaxSlantAngleDeg <= 0 || l.MaxSlantAngleDeg > 90 {
		errs = append(errs, fmt.Errorf("radnav: max_slant_angle_deg %g must be in (0, 90]", l.MaxSlantAngleDeg))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log: invalid level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

// NewLogger returns a logger as specified by the configuration.
func (c *Config) NewLogger() *log.Logger {
	return log.New(c.Log.Level, c.Log.Dir)
}

// Open starts building the databases for which source files are
// configured; databases without sources are returned as nil. A
// NavaidCache reads both the fix and navaid files, so a missing one of
// the two is reported as StatusFileNotFound.
func (c *Config) Open(lg *log.Logger, opts ...navdb.Option) (*navdb.NavaidCache, *navdb.AirwayGraph) {
	var nc *navdb.NavaidCache
	var ag *navdb.AirwayGraph
	if c.Database.FixPath != "" || c.Database.NavaidPath != "" {
		nc = navdb.NewNavaidCache(c.Database, lg, opts...)
	}
	if c.Database.AirwayPath != "" {
		ag = navdb.NewAirwayGraph(c.Database, lg, opts...)
	}
	return nc, ag
}
