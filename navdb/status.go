// navdb/status.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"sync/atomic"
	"time"

	"github.com/libnav/navdb/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Status is the state of a database build.
type Status int32

const (
	StatusPending Status = iota
	StatusSuccess
	StatusPartialLoad
	StatusFileNotFound
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusPartialLoad:
		return "partial load"
	case StatusFileNotFound:
		return "file not found"
	default:
		return "unknown"
	}
}

// buildTask tracks a single background build. The terminal status is
// set exactly once and may then be observed any number of times.
type buildTask struct {
	status atomic.Int32
	done   chan struct{}
	err    error // written before done is closed
}

func (b *buildTask) init() {
	b.done = make(chan struct{})
}

// finish publishes the terminal status of the build. All of the
// database's tables must be in place before it is called.
func (b *buildTask) finish(s Status, err error) {
	if !b.status.CompareAndSwap(int32(StatusPending), int32(s)) {
		panic("navdb: build finished twice")
	}
	b.err = err
	close(b.done)
}

// Status returns the current build status without blocking.
func (b *buildTask) Status() Status {
	return Status(b.status.Load())
}

// Wait blocks until the build has finished and returns its status. It
// may be called repeatedly and from multiple goroutines.
func (b *buildTask) Wait() Status {
	<-b.done
	return b.Status()
}

// Done returns a channel that is closed when the build finishes.
func (b *buildTask) Done() <-chan struct{} {
	return b.done
}

// Err returns nil while the build is pending or if it succeeded and
// otherwise an error wrapping ErrPartialLoad or ErrFileNotFound.
func (b *buildTask) Err() error {
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

func (b *buildTask) ready() bool {
	return b.Status() != StatusPending
}

// complete records metrics and tracing for a finished build and then
// publishes its status.
func (b *buildTask) complete(db string, o options, start time.Time, span trace.Span, s Status, err error) {
	o.collector.BuildFinished(db, int(s), time.Since(start))
	span.SetAttributes(attribute.String("status", s.String()))
	observability.EndSpan(span, err)
	b.finish(s, err)
}
