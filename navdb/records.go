// navdb/records.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"errors"
	"fmt"

	"github.com/libnav/navdb/log"
	"github.com/libnav/navdb/math"
	"github.com/libnav/navdb/util"
)

// CycleInfo identifies the data snapshot a database was loaded from.
type CycleInfo struct {
	Cycle   int // AIRAC cycle, e.g. 2309
	Version int // data format version, e.g. 1100
}

func (c CycleInfo) IsZero() bool {
	return c.Cycle == 0 && c.Version == 0
}

func isTrailer(fields []string) bool {
	return len(fields) > 0 && fields[0] == "99"
}

// parseHeader recognizes header lines of the form
//
//	1100 Version - data cycle 2309, build 20230810, metadata AwyXP1100. ...
func parseHeader(fields []string) (CycleInfo, bool) {
	if len(fields) < 2 || fields[1] != "Version" {
		return CycleInfo{}, false
	}
	version, err := util.Atoi(fields[0])
	if err != nil {
		return CycleInfo{}, false
	}

	for i := 2; i+1 < len(fields); i++ {
		if fields[i] == "cycle" {
			if cycle, err := util.Atoi(fields[i+1]); err == nil {
				return CycleInfo{Cycle: cycle, Version: version}, true
			}
		}
	}
	return CycleInfo{Version: version}, true
}

func parseLatLong(lat, lon string) (math.Point2LL, error) {
	la, err := util.Atof(lat)
	if err != nil {
		return math.Point2LL{}, fmt.Errorf("%w: latitude %q", ErrMalformedRecord, lat)
	}
	lo, err := util.Atof(lon)
	if err != nil {
		return math.Point2LL{}, fmt.Errorf("%w: longitude %q", ErrMalformedRecord, lon)
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return math.Point2LL{}, fmt.Errorf("%w: position (%s, %s) out of range", ErrMalformedRecord, lat, lon)
	}
	return math.Point2LL{lo, la}, nil
}

// parseFixRecord parses "lat lon id area ...".
func parseFixRecord(fields []string) (string, WaypointEntry, error) {
	if len(fields) < 4 {
		return "", WaypointEntry{}, fmt.Errorf("%w: fix record has %d fields", ErrMalformedRecord, len(fields))
	}
	p, err := parseLatLong(fields[0], fields[1])
	if err != nil {
		return "", WaypointEntry{}, err
	}
	return fields[2], WaypointEntry{
		Type:     NavaidWaypoint,
		Location: p,
		AreaCode: fields[3],
	}, nil
}

// X-Plane navaid row codes.
var xpNavaidTypes = map[int]NavaidType{
	2:  NavaidNDB,
	3:  NavaidVOR,
	4:  NavaidILSLoc,
	5:  NavaidILSLocOnly,
	6:  NavaidILSGS,
	12: NavaidDME,
	13: NavaidDMEOnly,
}

// parseNavaidRecord parses
// "type lat lon elevation frequency range magvar id area ...".
func parseNavaidRecord(fields []string) (string, WaypointEntry, NavaidRecord, error) {
	if len(fields) < 9 {
		return "", WaypointEntry{}, NavaidRecord{},
			fmt.Errorf("%w: navaid record has %d fields", ErrMalformedRecord, len(fields))
	}

	code, err := util.Atoi(fields[0])
	if err != nil {
		return "", WaypointEntry{}, NavaidRecord{}, fmt.Errorf("%w: navaid type %q", ErrMalformedRecord, fields[0])
	}
	typ, ok := xpNavaidTypes[code]
	if !ok {
		return "", WaypointEntry{}, NavaidRecord{}, errUnsupportedNavaid
	}

	p, err := parseLatLong(fields[1], fields[2])
	if err != nil {
		return "", WaypointEntry{}, NavaidRecord{}, err
	}

	var rec NavaidRecord
	var errs []error
	num := func(s string, what string) float64 {
		v, err := util.Atof(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s %q", ErrMalformedRecord, what, s))
		}
		return v
	}
	rec.Elevation = num(fields[3], "elevation")
	rec.MaxReception = num(fields[5], "range")
	rec.MagneticVariation = num(fields[6], "magnetic variation")
	if rec.Frequency, err = util.Atoi(fields[4]); err != nil {
		errs = append(errs, fmt.Errorf("%w: frequency %q", ErrMalformedRecord, fields[4]))
	}
	if len(errs) > 0 {
		return "", WaypointEntry{}, NavaidRecord{}, errors.Join(errs...)
	}

	return fields[7], WaypointEntry{
		Type:     typ,
		Location: p,
		AreaCode: fields[8],
	}, rec, nil
}

type restriction byte

const (
	restrictForward  restriction = 'F'
	restrictBackward restriction = 'B'
	restrictNone     restriction = 'N'
)

type airwayRecord struct {
	from, to    AirwayPointId
	restriction restriction
	altitude    AltitudeRestriction
	names       string // '-' joined airway names
}

// parseAirwayRecord parses
// "id1 region1 type1 id2 region2 type2 restriction unused lowerFL upperFL names".
func parseAirwayRecord(fields []string) (airwayRecord, error) {
	if len(fields) != 11 {
		return airwayRecord{}, fmt.Errorf("%w: airway record has %d fields", ErrMalformedRecord, len(fields))
	}

	r := airwayRecord{
		from:        AirwayPointId{Id: fields[0], Region: fields[1], Type: fields[2]},
		to:          AirwayPointId{Id: fields[3], Region: fields[4], Type: fields[5]},
		restriction: restriction(fields[6][0]),
		names:       fields[10],
	}
	switch r.restriction {
	case restrictForward, restrictBackward, restrictNone:
	default:
		return airwayRecord{}, fmt.Errorf("%w: restriction %q", ErrMalformedRecord, fields[6])
	}

	var err error
	if r.altitude.Lower, err = util.Atoi(fields[8]); err != nil {
		return airwayRecord{}, fmt.Errorf("%w: lower flight level %q", ErrMalformedRecord, fields[8])
	}
	if r.altitude.Upper, err = util.Atoi(fields[9]); err != nil {
		return airwayRecord{}, fmt.Errorf("%w: upper flight level %q", ErrMalformedRecord, fields[9])
	}
	return r, nil
}

///////////////////////////////////////////////////////////////////////////
// Source scanning

type scanResult struct {
	cycle     CycleInfo
	records   int
	malformed int
}

// scanSource reads the file at path, skipping the banner and stopping at
// the trailer, and calls parse with the fields of each data line. The
// returned error is non-nil only if the file can't be opened; over-long
// lines and read errors partway through are counted as malformed lines.
func scanSource(path string, banner int, lg *log.Logger, parse func(fields []string) error) (scanResult, error) {
	var res scanResult

	r, err := util.OpenSource(path)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}
	defer r.Close()

	err = util.ForEachLine(r, func(lineno int, line string) bool {
		fields := util.Fields(line)
		switch {
		case len(fields) == 0:
			return true
		case isTrailer(fields):
			return false
		}

		if ci, ok := parseHeader(fields); ok {
			if res.cycle.IsZero() {
				res.cycle = ci
			}
			return true
		}
		if lineno <= banner {
			return true
		}

		if err := parse(fields); errors.Is(err, errUnsupportedNavaid) {
			return true
		} else if err != nil {
			res.malformed++
			lg.Debug("skipping record", "error", fmt.Errorf("%s:%d: %w", path, lineno, err))
		} else {
			res.records++
		}
		return true
	})
	var long *util.LongLinesError
	if errors.As(err, &long) {
		res.malformed += len(long.Lines)
		lg.Warnf("%s: %v", path, long)
		err = long.Err
	}
	if err != nil {
		res.malformed++
		lg.Warnf("%s: %v", path, err)
	}

	return res, nil
}
