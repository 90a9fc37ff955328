// navdb/navaid.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/libnav/navdb/log"
	"github.com/libnav/navdb/math"
	"github.com/libnav/navdb/observability"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

///////////////////////////////////////////////////////////////////////////
// NavaidType

// NavaidType is a bitmask of the navigation facilities present at a
// point. Colocated stations are represented by the union of their bits.
type NavaidType uint16

const (
	NavaidWaypoint NavaidType = 1 << iota
	NavaidNDB
	NavaidVOR
	NavaidILSLocOnly
	NavaidILSLoc
	NavaidILSGS
	NavaidDME     // DME component of a VOR or ILS
	NavaidDMEOnly // standalone DME
)

const (
	NavaidNone NavaidType = 0

	NavaidVORDME  = NavaidVOR | NavaidDME
	NavaidILSFull = NavaidILSLoc | NavaidILSGS
	NavaidILSDME  = NavaidILSLoc | NavaidDME

	// Masks for use with IsOfType and Lookup.
	NavaidAnyILS   = NavaidILSLocOnly | NavaidILSLoc | NavaidILSGS
	NavaidAnyDME   = NavaidDME | NavaidDMEOnly
	NavaidAnyRadio = NavaidNDB | NavaidVOR | NavaidAnyILS | NavaidAnyDME
)

func (t NavaidType) String() string {
	switch {
	case t&NavaidVOR != 0 && t&NavaidDME != 0:
		return "VORDME"
	case t&NavaidAnyILS != 0 && t&NavaidDME != 0:
		return "ILSDME"
	case t&NavaidVOR != 0:
		return "VOR"
	case t&NavaidAnyILS != 0:
		return "ILS"
	case t&NavaidAnyDME != 0:
		return "DME"
	case t&NavaidNDB != 0:
		return "NDB"
	case t&NavaidWaypoint != 0:
		return "WPT"
	default:
		return ""
	}
}

// colocatedType returns the composite type for two stations of types a
// and b at the same location and frequency, if they form a recognized
// pairing.
func colocatedType(a, b NavaidType) (NavaidType, bool) {
	if a&b != 0 {
		return NavaidNone, false
	}
	switch u := a | b; u {
	case NavaidVORDME, NavaidILSDME, NavaidILSLocOnly | NavaidDME, NavaidILSFull, NavaidILSFull | NavaidDME:
		return u, true
	default:
		return NavaidNone, false
	}
}

///////////////////////////////////////////////////////////////////////////
// Entries

// NavaidHandle refers to a NavaidRecord owned by a NavaidCache. The zero
// handle refers to no record.
type NavaidHandle uint32

func (h NavaidHandle) Valid() bool {
	return h != 0
}

// NavaidRecord holds the radio attributes of a station.
type NavaidRecord struct {
	Frequency         int     // as listed in the source, e.g. 11630 for 116.30MHz
	Elevation         float64 // feet MSL
	MaxReception      float64 // nm
	MagneticVariation float64
}

// WaypointEntry is a single published point. Several entries may share an
// identifier; they are distinguished by area code and type.
type WaypointEntry struct {
	Type     NavaidType
	Location math.Point2LL
	AreaCode string
	Navaid   NavaidHandle
}

// Waypoint is a WaypointEntry along with its identifier.
type Waypoint struct {
	Id string
	WaypointEntry
}

// ColocationTolerance is the maximum sum of absolute latitude and
// longitude differences, in degrees, for two stations to be considered
// the same facility.
const ColocationTolerance = 0.001

///////////////////////////////////////////////////////////////////////////
// NavaidCache

// NavaidCache is an index of fixes and radio navaids by identifier. It is
// built in the background by NewNavaidCache; queries issued before the
// build finishes return empty results. Once built it is immutable and
// safe for concurrent use.
type NavaidCache struct {
	buildTask

	cfg  Config
	lg   *log.Logger
	opts options

	entries map[string][]WaypointEntry
	navaids []NavaidRecord // NavaidHandle h refers to navaids[h-1]
	cycle   CycleInfo
	n       int
}

// NewNavaidCache starts building a NavaidCache from cfg.FixPath and
// cfg.NavaidPath and returns immediately.
func NewNavaidCache(cfg Config, lg *log.Logger, opts ...Option) *NavaidCache {
	c := &NavaidCache{
		cfg:  cfg,
		lg:   lg.With(slog.String("db", observability.DBNavaid)),
		opts: makeOptions(opts),
	}
	c.buildTask.init()

	go c.build()

	return c
}

type fixLine struct {
	id    string
	entry WaypointEntry
}

type navaidLine struct {
	id     string
	entry  WaypointEntry
	record NavaidRecord
}

func (c *NavaidCache) build() {
	start := time.Now()
	_, span := observability.StartSpan(context.Background(), c.opts.tracer, "navdb.NavaidCache.build",
		attribute.String("fix_path", c.cfg.FixPath), attribute.String("navaid_path", c.cfg.NavaidPath))

	var fixes []fixLine
	var navaids []navaidLine
	var fixScan, navScan scanResult

	var eg errgroup.Group
	eg.Go(func() error {
		var err error
		fixScan, err = scanSource(c.cfg.FixPath, c.cfg.BannerLines, c.lg, func(fields []string) error {
			id, e, err := parseFixRecord(fields)
			if err == nil {
				fixes = append(fixes, fixLine{id: id, entry: e})
			}
			return err
		})
		return err
	})
	eg.Go(func() error {
		var err error
		navScan, err = scanSource(c.cfg.NavaidPath, c.cfg.BannerLines, c.lg, func(fields []string) error {
			id, e, rec, err := parseNavaidRecord(fields)
			if err == nil {
				navaids = append(navaids, navaidLine{id: id, entry: e, record: rec})
			}
			return err
		})
		return err
	})

	if err := eg.Wait(); err != nil {
		c.lg.Errorf("%v", err)
		c.complete(observability.DBNavaid, c.opts, start, span, StatusFileNotFound, err)
		return
	}

	// Merge the two passes: fixes first, then navaids, each in file order.
	entries := make(map[string][]WaypointEntry, len(fixes)+len(navaids))
	for _, f := range fixes {
		entries[f.id] = append(entries[f.id], f.entry)
	}
	c.entries = entries
	c.navaids = make([]NavaidRecord, 0, len(navaids))

	var colocated, duplicates int
	for _, n := range navaids {
		switch c.insertNavaid(n.id, n.entry, n.record) {
		case insertColocated:
			colocated++
		case insertDuplicate:
			duplicates++
		}
	}
	for _, e := range c.entries {
		c.n += len(e)
	}
	c.cycle = navScan.cycle

	col := c.opts.collector
	col.RecordLoaded(observability.DBNavaid, "fix", fixScan.records)
	col.RecordLoaded(observability.DBNavaid, "navaid", navScan.records)
	col.Merges(colocated, duplicates)
	col.Malformed(observability.DBNavaid, fixScan.malformed+navScan.malformed)
	span.SetAttributes(attribute.Int("entries", c.n), attribute.Int("colocated", colocated),
		attribute.Int("duplicates", duplicates))

	c.lg.Info("navaid cache built",
		slog.Int("fixes", fixScan.records), slog.Int("navaids", navScan.records),
		slog.Int("entries", c.n), slog.Int("colocated", colocated), slog.Int("duplicates", duplicates),
		slog.Int("malformed", fixScan.malformed+navScan.malformed),
		slog.Int("cycle", c.cycle.Cycle), slog.Duration("elapsed", time.Since(start)))

	if malformed := fixScan.malformed + navScan.malformed; malformed > 0 {
		c.complete(observability.DBNavaid, c.opts, start, span, StatusPartialLoad,
			fmt.Errorf("%w: %d malformed lines", ErrPartialLoad, malformed))
	} else {
		c.complete(observability.DBNavaid, c.opts, start, span, StatusSuccess, nil)
	}
}

type insertResult int

const (
	insertAppended insertResult = iota
	insertColocated
	insertDuplicate
)

// insertNavaid adds a radio station to the index, merging it into an
// existing entry when it duplicates one or is colocated with one. The
// first existing entry that matches either way wins.
func (c *NavaidCache) insertNavaid(id string, e WaypointEntry, rec NavaidRecord) insertResult {
	entries := c.entries[id]
	for i, ex := range entries {
		if !ex.Navaid.Valid() {
			continue
		}
		exrec := c.navaids[ex.Navaid-1]

		if ex.Type == e.Type && ex.Location == e.Location && exrec == rec {
			return insertDuplicate
		}

		if math.AngularDeviation2LL(ex.Location, e.Location) < ColocationTolerance &&
			exrec.Frequency == rec.Frequency {
			if t, ok := colocatedType(ex.Type, e.Type); ok {
				entries[i].Type = t
				return insertColocated
			}
		}
	}

	c.navaids = append(c.navaids, rec)
	e.Navaid = NavaidHandle(len(c.navaids))
	c.entries[id] = append(entries, e)
	return insertAppended
}

// Len returns the total number of entries in the cache.
func (c *NavaidCache) Len() int {
	if !c.ready() {
		return 0
	}
	return c.n
}

// Cycle returns the cycle information from the navaid file header.
func (c *NavaidCache) Cycle() CycleInfo {
	if !c.ready() {
		return CycleInfo{}
	}
	return c.cycle
}

// Exists reports whether there are any entries for id.
func (c *NavaidCache) Exists(id string) bool {
	if !c.ready() {
		return false
	}
	return len(c.entries[id]) > 0
}

// IsOfType reports whether any entry for id has a type that intersects
// mask.
func (c *NavaidCache) IsOfType(id string, mask NavaidType) bool {
	if !c.ready() {
		return false
	}
	return slices.ContainsFunc(c.entries[id], func(e WaypointEntry) bool { return e.Type&mask != 0 })
}

// Lookup returns the entries for id with the given area code whose type
// intersects mask, in the order they were loaded. An empty area or a
// NavaidNone mask matches all entries. The returned slice may be
// modified by the caller.
func (c *NavaidCache) Lookup(id string, area string, mask NavaidType) []WaypointEntry {
	if !c.ready() {
		return nil
	}

	var result []WaypointEntry
	for _, e := range c.entries[id] {
		if area != "" && e.AreaCode != area {
			continue
		}
		if mask != NavaidNone && e.Type&mask == 0 {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Navaid returns the radio station attributes of e, if it is a radio
// station.
func (c *NavaidCache) Navaid(e WaypointEntry) (NavaidRecord, bool) {
	if !c.ready() || !e.Navaid.Valid() || int(e.Navaid) > len(c.navaids) {
		return NavaidRecord{}, false
	}
	return c.navaids[e.Navaid-1], true
}

// NearestNavaids returns all entries whose type intersects mask that are
// within maxNM nautical miles of p, nearest first.
func (c *NavaidCache) NearestNavaids(p math.Point2LL, maxNM float64, mask NavaidType) []Waypoint {
	if !c.ready() {
		return nil
	}

	type near struct {
		wp Waypoint
		d  float64
	}
	var found []near
	for id, entries := range c.entries {
		for _, e := range entries {
			if e.Type&mask == 0 {
				continue
			}
			// Cheap rejection before the great circle computation.
			if math.Abs(e.Location.Latitude()-p.Latitude())*math.NMPerLatitude > maxNM {
				continue
			}
			if d := math.NMDistance2LL(p, e.Location); d <= maxNM {
				found = append(found, near{wp: Waypoint{Id: id, WaypointEntry: e}, d: d})
			}
		}
	}

	slices.SortFunc(found, func(a, b near) int {
		return cmp.Or(cmp.Compare(a.d, b.d), cmp.Compare(a.wp.Id, b.wp.Id))
	})
	result := make([]Waypoint, len(found))
	for i, n := range found {
		result[i] = n.wp
	}
	return result
}

// RankEntriesByDistance sorts entries in place by increasing great
// circle distance from p.
func RankEntriesByDistance(entries []WaypointEntry, p math.Point2LL) {
	slices.SortFunc(entries, func(a, b WaypointEntry) int {
		return cmp.Compare(math.NMDistance2LL(p, a.Location), math.NMDistance2LL(p, b.Location))
	})
}

// RankWaypointsByDistance sorts waypoints in place by increasing great
// circle distance from p.
func RankWaypointsByDistance(wps []Waypoint, p math.Point2LL) {
	slices.SortFunc(wps, func(a, b Waypoint) int {
		return cmp.Compare(math.NMDistance2LL(p, a.Location), math.NMDistance2LL(p, b.Location))
	})
}
