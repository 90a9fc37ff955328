// navdb/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import "errors"

var (
	ErrFileNotFound    = errors.New("source file could not be opened")
	ErrPartialLoad     = errors.New("one or more records could not be parsed")
	ErrMalformedRecord = errors.New("malformed record")
	ErrUnknownAirway   = errors.New("unknown airway")
	ErrUnknownPoint    = errors.New("unknown airway point")

	// errUnsupportedNavaid is returned for navaid types that aren't
	// stored (markers, GLS, etc.); such lines are skipped silently.
	errUnsupportedNavaid = errors.New("unsupported navaid type")
)
