// util/text.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"strconv"
	"strings"
)

// Fields splits a flat-file record into its whitespace-separated fields.
func Fields(line string) []string {
	return strings.Fields(line)
}

// trimNumber strips surrounding whitespace along with trailing
// punctuation that header lines put after numbers, e.g. "2309,".
func trimNumber(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ",.;:")
}

// Atoi parses an integer field, ignoring surrounding whitespace and
// trailing punctuation.
func Atoi(s string) (int, error) {
	return strconv.Atoi(trimNumber(s))
}

// Atof parses a floating-point field, ignoring surrounding whitespace
// and trailing punctuation.
func Atof(s string) (float64, error) {
	return strconv.ParseFloat(trimNumber(s), 64)
}

func IsAllNumbers(s string) bool {
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return s != ""
}
