// navdb/airway.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/libnav/navdb/log"
	"github.com/libnav/navdb/observability"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
)

// AirwayPointId identifies an airway point; identifiers alone are not
// unique across regions.
type AirwayPointId struct {
	Id     string
	Region string
	Type   string // X-Plane point type code: 11 fix, 2 NDB, 3 VHF navaid
}

func (p AirwayPointId) String() string {
	return p.Id + "_" + p.Region + "_" + p.Type
}

func (p AirwayPointId) compare(q AirwayPointId) int {
	return cmp.Or(strings.Compare(p.Id, q.Id), strings.Compare(p.Region, q.Region),
		strings.Compare(p.Type, q.Type))
}

// ParseAirwayPointId parses the "ID_REGION_TYPE" form returned by
// AirwayPointId.String.
func ParseAirwayPointId(s string) (AirwayPointId, error) {
	f := strings.Split(s, "_")
	if len(f) != 3 || f[0] == "" || f[1] == "" || f[2] == "" {
		return AirwayPointId{}, fmt.Errorf("%q: %w: expected ID_REGION_TYPE", s, ErrMalformedRecord)
	}
	return AirwayPointId{Id: f[0], Region: f[1], Type: f[2]}, nil
}

// AltitudeRestriction gives the usable flight levels along an airway
// segment.
type AltitudeRestriction struct {
	Lower, Upper int
}

// AirwayPathPoint is a point along an airway path along with the altitude
// restriction of the segment used to reach it.
type AirwayPathPoint struct {
	Point       AirwayPointId
	Restriction AltitudeRestriction
}

type airwayEdge struct {
	to          AirwayPointId
	restriction AltitudeRestriction
}

// airway is the directed graph of a single named airway. Every point on
// the airway has a key in adj, even if it has no outbound edges.
type airway struct {
	adj map[AirwayPointId][]airwayEdge // sorted by destination
}

func (a *airway) has(p AirwayPointId) bool {
	_, ok := a.adj[p]
	return ok
}

// path does a breadth-first search from start and returns the shortest
// path to the first point for which stop returns true. Neighbors are
// visited in sorted order so that ties are broken consistently.
func (a *airway) path(start AirwayPointId, stop func(AirwayPointId) bool) []AirwayPathPoint {
	if !a.has(start) {
		return nil
	}

	type visit struct {
		prev        AirwayPointId
		restriction AltitudeRestriction
	}
	visited := map[AirwayPointId]visit{start: {}}
	queue := []AirwayPointId{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if stop(cur) {
			var path []AirwayPathPoint
			for p := cur; p != start; p = visited[p].prev {
				path = append(path, AirwayPathPoint{Point: p, Restriction: visited[p].restriction})
			}
			path = append(path, AirwayPathPoint{Point: start})
			slices.Reverse(path)

			// The start point takes the restriction of the first segment.
			if len(path) > 1 {
				path[0].Restriction = path[1].Restriction
			}
			return path
		}

		for _, e := range a.adj[cur] {
			if _, ok := visited[e.to]; !ok {
				visited[e.to] = visit{prev: cur, restriction: e.restriction}
				queue = append(queue, e.to)
			}
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// AirwayGraph

type pathKind uint8

const (
	pathPointToPoint pathKind = iota
	pathPointToAirway
)

func (k pathKind) String() string {
	if k == pathPointToPoint {
		return "point_to_point"
	}
	return "point_to_airway"
}

type pathKey struct {
	kind   pathKind
	airway string
	start  AirwayPointId
	target string // end point or next airway
}

// AirwayGraph holds the directed graph of each airway. It is built in the
// background by NewAirwayGraph; queries issued before the build finishes
// return empty results. Once built it is safe for concurrent use.
type AirwayGraph struct {
	buildTask

	cfg  Config
	lg   *log.Logger
	opts options

	airways map[string]*airway
	cycle   CycleInfo
	paths   *lru.Cache[pathKey, []AirwayPathPoint] // nil if disabled
}

// NewAirwayGraph starts building an AirwayGraph from cfg.AirwayPath and
// returns immediately.
func NewAirwayGraph(cfg Config, lg *log.Logger, opts ...Option) *AirwayGraph {
	g := &AirwayGraph{
		cfg:  cfg,
		lg:   lg.With(slog.String("db", observability.DBAirway)),
		opts: makeOptions(opts),
	}
	g.buildTask.init()

	if cfg.PathCacheSize > 0 {
		var err error
		if g.paths, err = lru.New[pathKey, []AirwayPathPoint](cfg.PathCacheSize); err != nil {
			g.lg.Warnf("path cache disabled: %v", err)
		}
	}

	go g.build()

	return g
}

func (g *AirwayGraph) build() {
	start := time.Now()
	_, span := observability.StartSpan(context.Background(), g.opts.tracer, "navdb.AirwayGraph.build",
		attribute.String("airway_path", g.cfg.AirwayPath))

	type dedupKey struct {
		from, to AirwayPointId
		names    string
	}
	seen := make(map[dedupKey]struct{})
	edges := make(map[string]map[AirwayPointId]map[AirwayPointId]AltitudeRestriction)

	addPoint := func(awy map[AirwayPointId]map[AirwayPointId]AltitudeRestriction, p AirwayPointId) map[AirwayPointId]AltitudeRestriction {
		m, ok := awy[p]
		if !ok {
			m = make(map[AirwayPointId]AltitudeRestriction)
			awy[p] = m
		}
		return m
	}

	var duplicates int
	scan, err := scanSource(g.cfg.AirwayPath, g.cfg.BannerLines, g.lg, func(fields []string) error {
		r, err := parseAirwayRecord(fields)
		if err != nil {
			return err
		}

		k := dedupKey{from: r.from, to: r.to, names: r.names}
		if _, ok := seen[k]; ok {
			duplicates++
			return nil
		}
		seen[k] = struct{}{}

		for name := range strings.SplitSeq(r.names, "-") {
			if name == "" {
				continue
			}
			awy, ok := edges[name]
			if !ok {
				awy = make(map[AirwayPointId]map[AirwayPointId]AltitudeRestriction)
				edges[name] = awy
			}

			from, to := addPoint(awy, r.from), addPoint(awy, r.to)
			if r.restriction == restrictForward || r.restriction == restrictNone {
				from[r.to] = r.altitude
			}
			if r.restriction == restrictBackward || r.restriction == restrictNone {
				to[r.from] = r.altitude
			}
		}
		return nil
	})
	if err != nil {
		g.lg.Errorf("%v", err)
		g.complete(observability.DBAirway, g.opts, start, span, StatusFileNotFound, err)
		return
	}

	// Flatten to sorted adjacency lists.
	g.airways = make(map[string]*airway, len(edges))
	nedges := 0
	for name, awy := range edges {
		a := &airway{adj: make(map[AirwayPointId][]airwayEdge, len(awy))}
		for p, nbrs := range awy {
			var adj []airwayEdge
			for _, to := range slices.SortedFunc(maps.Keys(nbrs), AirwayPointId.compare) {
				adj = append(adj, airwayEdge{to: to, restriction: nbrs[to]})
			}
			a.adj[p] = adj
			nedges += len(adj)
		}
		g.airways[name] = a
	}
	g.cycle = scan.cycle

	g.opts.collector.RecordLoaded(observability.DBAirway, "segment", scan.records)
	g.opts.collector.Malformed(observability.DBAirway, scan.malformed)
	span.SetAttributes(attribute.Int("airways", len(g.airways)), attribute.Int("edges", nedges))

	g.lg.Info("airway graph built",
		slog.Int("segments", scan.records), slog.Int("duplicates", duplicates),
		slog.Int("airways", len(g.airways)), slog.Int("edges", nedges),
		slog.Int("malformed", scan.malformed), slog.Int("cycle", g.cycle.Cycle),
		slog.Duration("elapsed", time.Since(start)))

	if scan.malformed > 0 {
		g.complete(observability.DBAirway, g.opts, start, span, StatusPartialLoad,
			fmt.Errorf("%w: %d malformed lines", ErrPartialLoad, scan.malformed))
	} else {
		g.complete(observability.DBAirway, g.opts, start, span, StatusSuccess, nil)
	}
}

// Cycle returns the cycle information from the airway file header.
func (g *AirwayGraph) Cycle() CycleInfo {
	if !g.ready() {
		return CycleInfo{}
	}
	return g.cycle
}

func (g *AirwayGraph) airway(name string) (*airway, bool) {
	if !g.ready() {
		return nil, false
	}
	a, ok := g.airways[name]
	return a, ok
}

// Airways returns the names of all airways in sorted order.
func (g *AirwayGraph) Airways() []string {
	if !g.ready() {
		return nil
	}
	return slices.Sorted(maps.Keys(g.airways))
}

// IsOnAirway reports whether p is a point on the named airway.
func (g *AirwayGraph) IsOnAirway(awy string, p AirwayPointId) bool {
	a, ok := g.airway(awy)
	return ok && a.has(p)
}

// Points returns the points on the named airway in sorted order.
func (g *AirwayGraph) Points(awy string) ([]AirwayPointId, error) {
	a, ok := g.airway(awy)
	if !ok {
		return nil, fmt.Errorf("%s: %w", awy, ErrUnknownAirway)
	}
	return slices.SortedFunc(maps.Keys(a.adj), AirwayPointId.compare), nil
}

// Successors returns the points that can be reached directly from p
// along the named airway, each with the restriction of its segment.
func (g *AirwayGraph) Successors(awy string, p AirwayPointId) ([]AirwayPathPoint, error) {
	a, ok := g.airway(awy)
	if !ok {
		return nil, fmt.Errorf("%s: %w", awy, ErrUnknownAirway)
	}
	adj, ok := a.adj[p]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", awy, p, ErrUnknownPoint)
	}

	succ := make([]AirwayPathPoint, len(adj))
	for i, e := range adj {
		succ[i] = AirwayPathPoint{Point: e.to, Restriction: e.restriction}
	}
	return succ, nil
}

// PointToPointPath returns the path with the fewest segments from start to
// end along the named airway, including both endpoints. It returns nil if
// either point isn't on the airway or end can't be reached from start.
func (g *AirwayGraph) PointToPointPath(awy string, start, end AirwayPointId) []AirwayPathPoint {
	return g.query(pathKey{kind: pathPointToPoint, airway: awy, start: start, target: end.String()},
		func(a *airway) []AirwayPathPoint {
			if !a.has(end) {
				return nil
			}
			return a.path(start, func(p AirwayPointId) bool { return p == end })
		})
}

// PointToNextAirwayPath returns the path with the fewest segments from
// start along the named airway to the first point that is also on
// nextAwy. If start is itself on nextAwy, the path consists of start
// alone.
func (g *AirwayGraph) PointToNextAirwayPath(awy string, start AirwayPointId, nextAwy string) []AirwayPathPoint {
	return g.query(pathKey{kind: pathPointToAirway, airway: awy, start: start, target: nextAwy},
		func(a *airway) []AirwayPathPoint {
			next, ok := g.airway(nextAwy)
			if !ok {
				return nil
			}
			return a.path(start, next.has)
		})
}

func (g *AirwayGraph) query(k pathKey, search func(*airway) []AirwayPathPoint) []AirwayPathPoint {
	a, ok := g.airway(k.airway)
	if !ok {
		g.opts.collector.PathQuery(k.kind.String(), "empty")
		return nil
	}

	if g.paths != nil {
		if p, ok := g.paths.Get(k); ok {
			g.opts.collector.PathQuery(k.kind.String(), "cached")
			return slices.Clone(p)
		}
	}

	_, span := observability.StartSpan(context.Background(), g.opts.tracer, "navdb.AirwayGraph."+k.kind.String(),
		attribute.String("airway", k.airway), attribute.String("start", k.start.String()),
		attribute.String("target", k.target))
	path := search(a)
	span.SetAttributes(attribute.Int("length", len(path)))
	observability.EndSpan(span, nil)

	if len(path) == 0 {
		g.opts.collector.PathQuery(k.kind.String(), "empty")
	} else {
		g.opts.collector.PathQuery(k.kind.String(), "found")
	}
	g.lg.Debug("airway path", slog.String("kind", k.kind.String()), slog.String("airway", k.airway),
		slog.String("start", k.start.String()), slog.String("target", k.target), slog.Int("length", len(path)))

	if g.paths != nil {
		g.paths.Add(k, path)
	}
	return slices.Clone(path)
}
