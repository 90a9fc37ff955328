// config/config_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/libnav/navdb/navdb"
	"github.com/libnav/navdb/radnav"
)

func TestDecodeDefaults(t *testing.T) {
	c, err := Decode(strings.NewReader(`{"database": {"airway_path": "earth_awy.dat", "path_cache_size": 0}}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Database.AirwayPath != "earth_awy.dat" {
		t.Errorf("airway path = %q", c.Database.AirwayPath)
	}
	if c.Database.PathCacheSize != 0 {
		t.Errorf("explicit zero should be kept, got %d", c.Database.PathCacheSize)
	}
	if c.Database.BannerLines != navdb.DefaultBannerLines {
		t.Errorf("banner lines = %d, want default", c.Database.BannerLines)
	}
	if c.RadNav != radnav.DefaultLimits {
		t.Errorf("radnav limits = %+v, want defaults", c.RadNav)
	}
	if c.Log.Level != "info" {
		t.Errorf("log level = %q", c.Log.Level)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name, json, want string
	}{
		{"no sources", `{}`, "no source files"},
		{"bad window", `{"database": {"fix_path": "f"}, "radnav": {"dme_dme_min_cut_deg": 160}}`, "cut window"},
		{"bad slant", `{"database": {"fix_path": "f"}, "radnav": {"max_slant_angle_deg": 0}}`, "max_slant_angle_deg"},
		{"bad level", `{"database": {"fix_path": "f"}, "log": {"level": "verbose"}}`, "verbose"},
		{"negative cache", `{"database": {"fix_path": "f", "path_cache_size": -1}}`, "path_cache_size"},
		{"unknown key", `{"database": {"fix_pth": "f"}}`, "fix_pth"},
		{"syntax", "{\n\"database\": {\n\"fix_path\": f}}", "line 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.json))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navdb.json")

	c := Default()
	c.Database.FixPath = "earth_fix.dat"
	c.Database.NavaidPath = "earth_nav.dat.zst"
	c.RadNav.MaxSlantAngleDeg = 35
	c.Log.Level = "debug"
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *c {
		t.Errorf("loaded %+v, want %+v", loaded, c)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"navaid_path": "earth_nav.dat.zst"`) {
		t.Errorf("unexpected encoding: %s", buf.String())
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, lines ...string) string {
		path := filepath.Join(dir, name)
		contents := "I\n1100 Version - data cycle 2309, build 20230810\n\n" + strings.Join(lines, "\n") + "\n99\n"
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	c := Default()
	c.Database.AirwayPath = write("earth_awy.dat", "A K2 11 B K2 11 N 1 180 450 V1")
	nc, ag := c.Open(nil)
	if nc != nil {
		t.Errorf("navaid cache should not be built without sources")
	}
	if ag == nil || ag.Wait() != navdb.StatusSuccess || !ag.IsOnAirway("V1", navdb.AirwayPointId{Id: "A", Region: "K2", Type: "11"}) {
		t.Fatalf("airway graph not built")
	}

	c.Database.FixPath = write("earth_fix.dat", " 37.5 -122.25 ARTHR K2 K2 0")
	c.Database.NavaidPath = write("earth_nav.dat")
	c.Log.Dir = t.TempDir()
	lg := c.NewLogger()
	if lg.LogDir != c.Log.Dir {
		t.Errorf("log dir = %q", lg.LogDir)
	}
	nc, _ = c.Open(lg)
	if nc.Wait() != navdb.StatusSuccess || !nc.Exists("ARTHR") {
		t.Errorf("navaid cache not built: %v", nc.Err())
	}
}
