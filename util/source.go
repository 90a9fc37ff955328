// util/source.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// zstdReadCloser adapts a zstd.Decoder to io.ReadCloser; the Decoder's
// Close() method doesn't return an error and doesn't close the
// underlying file.
type zstdReadCloser struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

// OpenSource opens the flat file at path for reading; if it's zstd
// compressed (as indicated by a .zst extension), the returned reader
// handles decompression transparently.
func OpenSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(path) == ".zst" {
		zr, err := zstd.NewReader(bufio.NewReader(f), zstd.WithDecoderConcurrency(0))
		if err != nil {
			f.Close()
			return nil, err
		}
		return zstdReadCloser{Decoder: zr, f: f}, nil
	}

	return f, nil
}

// MaxLineLength is the longest line ForEachLine passes on, in bytes.
const MaxLineLength = 1024 * 1024

// LongLinesError reports the line numbers of lines that ForEachLine
// skipped because they exceeded MaxLineLength. Err holds the read error
// that ended the scan, if any.
type LongLinesError struct {
	Lines []int
	Err   error
}

func (e *LongLinesError) Error() string {
	msg := fmt.Sprintf("skipped %d line(s) longer than %d bytes, first at line %d",
		len(e.Lines), MaxLineLength, e.Lines[0])
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LongLinesError) Unwrap() error {
	return e.Err
}

// ForEachLine calls fn with each line of r along with its 1-based line
// number. Scanning stops early if fn returns false. Lines longer than
// MaxLineLength are skipped and reported in a *LongLinesError once the
// rest of the input has been read.
func ForEachLine(r io.Reader, fn func(lineno int, line string) bool) error {
	br := bufio.NewReaderSize(r, 64*1024)

	var line []byte
	var long []int
	tooLong := false
	lineno := 0

	var err error
	for {
		var frag []byte
		var isPrefix bool
		if frag, isPrefix, err = br.ReadLine(); err != nil {
			if err != io.EOF {
				break
			}
			err = nil
			if len(line) == 0 && !tooLong {
				break
			}
			// Unterminated last line that filled the buffer exactly.
			isPrefix = false
		}

		if !tooLong {
			line = append(line, frag...)
			if len(line) > MaxLineLength {
				tooLong = true
				line = line[:0]
			}
		}
		if isPrefix {
			continue
		}

		lineno++
		if tooLong {
			long = append(long, lineno)
		} else if !fn(lineno, string(line)) {
			break
		}
		line = line[:0]
		tooLong = false
	}

	if len(long) > 0 {
		return &LongLinesError{Lines: long, Err: err}
	}
	return err
}
