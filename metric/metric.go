// Copyright 2016 The Upspin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metric implements routines for recording metrics associated
// with client operations in a go-metrics registry.
package metric // import "sharebox.io/metric"

import (
	"sync"
	"time"

	metrics "github.com/rcrowley/go-metrics"

	"sharebox.io/errors"
	"sharebox.io/log"
)

// Metric measures one run of a named operation. It is made of spans,
// each measuring one phase of the operation. When the metric is Done
// its total duration is added to the timer of the same name in the
// registry and, if the operation failed, the counter named
// Name+".errors" is incremented.
type Metric struct {
	Name errors.Op

	reg   metrics.Registry
	start time.Time

	mu    sync.Mutex // protects all fields below
	spans []*Span
	done  bool
}

// A Span measures time from the beginning of a phase of an operation
// until its completion.
type Span struct {
	Name      errors.Op
	StartTime time.Time
	EndTime   time.Time
	Parent    *Metric
}

// New starts a new named metric recorded in reg.
// A nil registry records nothing.
func New(reg metrics.Registry, name errors.Op) *Metric {
	return &Metric{
		Name:  name,
		reg:   reg,
		start: time.Now(),
	}
}

// StartSpan starts a new span of the metric with start time being the current time.
// Spans need not be contiguous and may or may not overlap.
func (m *Metric) StartSpan(name errors.Op) *Span {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		log.Error.Printf("metric: span %q started after %q is done", name, m.Name)
	}
	// Lazily allocate the spans slice.
	if m.spans == nil {
		m.spans = make([]*Span, 0, 4)
	}
	s := &Span{
		Name:      name,
		StartTime: time.Now(),
		Parent:    m,
	}
	m.spans = append(m.spans, s)
	return s
}

// Done ends the metric and any not-yet-ended span and records them.
// The error is the result of the operation; a non-nil error counts as
// a failure. Further use of the metric or its spans has no effect.
func (m *Metric) Done(err error) {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	spans := m.spans
	m.mu.Unlock()

	var zeroTime time.Time
	for _, s := range spans {
		if s.EndTime == zeroTime {
			s.End()
		}
	}
	if m.reg == nil {
		return
	}
	metrics.GetOrRegisterTimer(string(m.Name), m.reg).UpdateSince(m.start)
	if err != nil {
		metrics.GetOrRegisterCounter(string(m.Name)+".errors", m.reg).Inc(1)
	}
}

// End marks the end time of the span as the current time and records
// its duration under the name Parent.Name+"/"+Name.
// It returns the parent metric for convenience.
func (s *Span) End() *Metric {
	if s.EndTime != (time.Time{}) {
		return s.Parent
	}
	s.EndTime = time.Now()
	if m := s.Parent; m != nil && m.reg != nil {
		name := string(m.Name) + "/" + string(s.Name)
		metrics.GetOrRegisterTimer(name, m.reg).Update(s.EndTime.Sub(s.StartTime))
	}
	return s.Parent
}

// Count returns the number of completed runs of the named operation
// and how many of them failed.
func Count(reg metrics.Registry, name errors.Op) (runs, failures int64) {
	if reg == nil {
		return 0, 0
	}
	if t, ok := reg.Get(string(name)).(metrics.Timer); ok {
		runs = t.Count()
	}
	if c, ok := reg.Get(string(name) + ".errors").(metrics.Counter); ok {
		failures = c.Count()
	}
	return runs, failures
}
