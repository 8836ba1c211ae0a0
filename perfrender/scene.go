// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfrender projects a filtered point series onto visual
// primitives: one line per branch, a marker per point, the legend and
// the tooltip. Successive renders are diffed so that each element is
// tagged as entering, updating or exiting.
package perfrender

import (
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

// NoDataMessage replaces the chart when the filtered series is empty.
const NoDataMessage = "No data for selected filters."

// Phase is the lifecycle stage of a drawn element.
type Phase int

const (
	Enter Phase = iota
	Update
	Exit
)

func (p Phase) String() string {
	switch p {
	case Enter:
		return "enter"
	case Update:
		return "update"
	case Exit:
		return "exit"
	}
	return "?"
}

// A Scene is everything drawn for one frame. When Error or Message is
// set, the chart is replaced by that text and Focus, Context, Lines,
// ContextLines, Markers and Highlight are empty.
type Scene struct {
	Width, Height float64
	Layout        perfscale.Layout

	Error   string
	Message string

	Focus   Panel
	Context Panel

	Lines        []*Line
	ContextLines []*Line
	Markers      []*Marker

	// Highlight is the focus window on the context strip, in context
	// plot pixels.
	Highlight *[2]float64
	Brush     *Brush

	Legend      []*LegendEntry
	Tooltip     *Tooltip
	LastUpdated string

	Transitions []Transition
}

// Empty reports whether the scene draws no chart.
func (s *Scene) Empty() bool { return s.Error != "" || s.Message != "" }

// A Panel is one plot area with its axes. X and Y are the offset of
// the plot area within the chart.
type Panel struct {
	X, Y, Width, Height float64

	TimeDomain  [2]time.Time
	ValueDomain [2]float64

	XTicks []perfscale.Tick
	YTicks []perfscale.Tick
}

// Vertex is a point in plot pixels.
type Vertex struct {
	X, Y float64
}

// A Line is one branch's series.
type Line struct {
	Branch string
	Color  string
	Phase  Phase

	// Opacity is the value the line settles at: 1, or 0 when exiting.
	Opacity float64

	// DotOnly is set for a series with a single plottable point.
	DotOnly bool

	// Points are the plottable points in ctime order; Path holds
	// their pixel positions.
	Points []*perfdata.Point
	Path   []Vertex
}

// A Marker is the circle drawn for one point.
type Marker struct {
	Key    string
	Point  *perfdata.Point
	Color  string
	X, Y   float64
	Radius float64
	Phase  Phase

	// Visible is false when the point lies outside the focus plot
	// area and is clipped.
	Visible bool
}

// LegendEntry is one branch available under the current scale.
type LegendEntry struct {
	Branch string
	Color  string
	Active bool

	Stat    perfdata.BranchStat
	HasStat bool
}

// A Brush is an in-progress drag selection.
type Brush struct {
	Target string // "focus" or "context"
	X0, X1 float64
}

// A Tooltip describes the hovered point.
type Tooltip struct {
	Key       string
	Point     *perfdata.Point
	Color     string
	Date      string
	Value     string
	Commit    string // abbreviated revision
	CommitURL string
	BuildURL  string
	Placement Placement
}
