// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscale

import (
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
)

// Margin is the space around the focus plot area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Layout gives the chart geometry in pixels. The focus chart occupies
// the top MainHeight pixels; the context strip follows after Spacing.
type Layout struct {
	Width         float64
	MainHeight    float64
	ContextHeight float64
	Spacing       float64
	Margin        Margin
}

// DefaultLayout is the dashboard's chart geometry.
var DefaultLayout = Layout{
	Width:         960,
	MainHeight:    400,
	ContextHeight: 80,
	Spacing:       60,
	Margin:        Margin{Top: 20, Right: 30, Bottom: 40, Left: 60},
}

// PlotWidth is the width of the focus and context plot areas.
func (l Layout) PlotWidth() float64 { return l.Width - l.Margin.Left - l.Margin.Right }

// PlotHeight is the height of the focus plot area.
func (l Layout) PlotHeight() float64 { return l.MainHeight - l.Margin.Top - l.Margin.Bottom }

// ContextTop is the offset of the context strip from the top of the
// chart.
func (l Layout) ContextTop() float64 { return l.MainHeight + l.Spacing }

// Height is the total chart height.
func (l Layout) Height() float64 { return l.MainHeight + l.Spacing + l.ContextHeight }

// A Manager owns the focus and context mappings of one chart. The
// context mappings always span the full filtered series; only the
// focus time domain is zoomed and panned.
type Manager struct {
	Layout Layout

	FocusX   Time
	FocusY   Linear
	ContextX Time
	ContextY Linear

	initial [2]time.Time
	empty   bool
}

// NewManager returns a Manager for an empty series.
func NewManager(l Layout) *Manager {
	m := &Manager{Layout: l}
	m.Reset(nil, ZeroBased, time.Time{})
	return m
}

// Reset fits every mapping to points, the full filtered series. If
// points is empty the time domains collapse to [now, now].
func (m *Manager) Reset(points []*perfdata.Point, mode AxisMode, now time.Time) {
	lo, hi, ok := TimeExtent(points)
	if !ok {
		lo, hi = now, now
	}
	m.empty = !ok
	m.initial = [2]time.Time{lo, hi}

	w := m.Layout.PlotWidth()
	m.FocusX = Time{Domain: m.initial, Range: [2]float64{0, w}}
	m.ContextX = Time{Domain: m.initial, Range: [2]float64{0, w}}
	m.ContextY = Linear{
		Domain: ValueDomain(ZeroBased, Metrics(points), nil),
		Range:  [2]float64{m.Layout.ContextHeight, 0},
	}
	m.FocusY = Linear{Range: [2]float64{m.Layout.PlotHeight(), 0}}
	m.UpdateValue(mode, points)
}

// UpdateValue refits the focus value domain for mode against the
// current focus window and returns it.
func (m *Manager) UpdateValue(mode AxisMode, points []*perfdata.Point) [2]float64 {
	window := InWindow(points, m.FocusX.Domain)
	m.FocusY.Domain = ValueDomain(mode, Metrics(points), Metrics(window))
	return m.FocusY.Domain
}

// Empty reports whether the last Reset had no points.
func (m *Manager) Empty() bool { return m.empty }

// InitialTime returns the full extent set by the last Reset.
func (m *Manager) InitialTime() [2]time.Time { return m.initial }

// FocusTime returns the current focus window.
func (m *Manager) FocusTime() [2]time.Time { return m.FocusX.Domain }

// SetFocusTime sets the focus window. Bounds out of order are
// swapped.
func (m *Manager) SetFocusTime(d [2]time.Time) {
	if d[1].Before(d[0]) {
		d[0], d[1] = d[1], d[0]
	}
	m.FocusX.Domain = d
}

// Zoomed reports whether the focus window differs from the full
// extent.
func (m *Manager) Zoomed() bool {
	return !m.FocusX.Domain[0].Equal(m.initial[0]) || !m.FocusX.Domain[1].Equal(m.initial[1])
}

// Highlight returns the pixel interval of window d on the context
// strip, clamped to the strip.
func (m *Manager) Highlight(d [2]time.Time) [2]float64 {
	r := m.ContextX.Range
	return [2]float64{Clamp(m.ContextX.Map(d[0]), r[0], r[1]), Clamp(m.ContextX.Map(d[1]), r[0], r[1])}
}

// Clamp limits x to [lo, hi]. If hi < lo, lo wins.
func Clamp(x, lo, hi float64) float64 {
	if x > hi {
		x = hi
	}
	if x < lo {
		x = lo
	}
	return x
}
