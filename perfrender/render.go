// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfrender

import (
	"fmt"
	"sort"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

// Axis tick counts and label formats.
const (
	FocusTimeTicks    = 5
	ValueTicks        = 8
	FocusTimeFormat   = "Jan 02, 2006"
	ContextTimeFormat = "Jan 2006"
	TooltipDateFormat = "Monday, January 02, 2006"
)

// Tooltip size assumed when the frame does not give one.
const (
	DefaultTooltipW = 240
	DefaultTooltipH = 120
)

// A Frame is the input of one render.
type Frame struct {
	Scales *perfscale.Manager

	// Series is the filtered series. Branches lists every branch
	// available under the current scale, in legend order.
	Series   []*perfdata.Point
	Branches []string
	Selected map[string]bool
	Palette  Palette
	Stats    map[string]perfdata.BranchStat
	Links    perfdata.Links

	Hover       *Hover
	TooltipSize Size

	// Highlight is the focus window to mark on the context strip,
	// or nil.
	Highlight *[2]time.Time
	Brush     *Brush

	LastUpdated string
	Error       string

	Animator *Animator
	Now      time.Time
}

// A Renderer turns frames into scenes, remembering the previous frame's
// lines and markers to classify elements as entering, updating or
// exiting. The zero Renderer is ready to use.
type Renderer struct {
	lines   map[string]*Line
	markers map[string]*Marker
}

// Render builds the scene for f.
func (r *Renderer) Render(f *Frame) *Scene {
	l := f.Scales.Layout
	s := &Scene{Width: l.Width, Height: l.Height(), Layout: l, LastUpdated: f.LastUpdated}
	if f.Animator != nil {
		s.Transitions = f.Animator.Running(f.Now)
	}
	if f.Error != "" {
		s.Error = f.Error
		r.lines, r.markers = nil, nil
		return s
	}
	s.Legend = legend(f)
	groups := groupByBranch(f.Series)
	if len(groups) == 0 {
		s.Message = NoDataMessage
		r.lines, r.markers = nil, nil
		return s
	}

	m := f.Scales
	s.Focus = Panel{
		X: l.Margin.Left, Y: l.Margin.Top, Width: l.PlotWidth(), Height: l.PlotHeight(),
		TimeDomain:  m.FocusX.Domain,
		ValueDomain: m.FocusY.Domain,
		XTicks:      m.FocusX.Ticks(FocusTimeTicks, FocusTimeFormat),
		YTicks:      m.FocusY.Ticks(ValueTicks),
	}
	s.Context = Panel{
		X: l.Margin.Left, Y: l.ContextTop(), Width: l.PlotWidth(), Height: l.ContextHeight,
		TimeDomain:  m.ContextX.Domain,
		ValueDomain: m.ContextY.Domain,
		XTicks:      m.ContextX.Ticks(FocusTimeTicks, ContextTimeFormat),
	}

	lines := make(map[string]*Line)
	markers := make(map[string]*Marker)
	seen := make(map[string]int)
	hoverKey := ""
	if f.Hover != nil {
		hoverKey = f.Hover.Key()
	}
	for _, g := range groups {
		color := f.Palette.Color(g.branch)
		line := &Line{
			Branch:  g.branch,
			Color:   color,
			Phase:   phase(r.lines[g.branch] != nil),
			Opacity: 1,
			DotOnly: len(g.points) == 1,
			Points:  g.points,
		}
		ctx := *line
		ctx.Path = nil
		for _, p := range g.points {
			x, y := m.FocusX.Map(p.CTime), m.FocusY.Map(p.Metric)
			line.Path = append(line.Path, Vertex{x, y})
			ctx.Path = append(ctx.Path, Vertex{m.ContextX.Map(p.CTime), m.ContextY.Map(p.Metric)})

			key := p.Key()
			if n := seen[key]; n > 0 {
				key = fmt.Sprintf("%s#%d", key, n+1)
			}
			seen[p.Key()]++
			mk := &Marker{
				Key:     key,
				Point:   p,
				Color:   color,
				X:       x,
				Y:       y,
				Radius:  MarkerRadius,
				Phase:   phase(r.markers[key] != nil),
				Visible: x >= 0 && x <= s.Focus.Width && y >= 0 && y <= s.Focus.Height,
			}
			if key == hoverKey {
				mk.Radius = HoverRadius
			}
			markers[key] = mk
			s.Markers = append(s.Markers, mk)
		}
		lines[g.branch] = line
		s.Lines = append(s.Lines, line)
		s.ContextLines = append(s.ContextLines, &ctx)
	}

	for _, b := range sortedKeys(r.lines) {
		if lines[b] == nil {
			old := *r.lines[b]
			old.Phase, old.Opacity = Exit, 0
			s.Lines = append(s.Lines, &old)
		}
	}
	for _, k := range sortedKeys(r.markers) {
		if markers[k] == nil {
			old := *r.markers[k]
			old.Phase, old.Radius = Exit, 0
			s.Markers = append(s.Markers, &old)
		}
	}
	r.lines, r.markers = lines, markers

	if f.Highlight != nil {
		hl := m.Highlight(*f.Highlight)
		s.Highlight = &hl
	}
	if f.Brush != nil {
		b := *f.Brush
		s.Brush = &b
	}
	if f.Hover != nil && f.Hover.TooltipKey() != "" {
		if mk := markers[f.Hover.TooltipKey()]; mk != nil {
			s.Tooltip = tooltip(f, mk)
		}
	}
	return s
}

func phase(existed bool) Phase {
	if existed {
		return Update
	}
	return Enter
}

type branchGroup struct {
	branch string
	points []*perfdata.Point
}

// groupByBranch groups the plottable points by branch in order of
// first appearance, each sorted by ctime with ties in input order.
func groupByBranch(points []*perfdata.Point) []*branchGroup {
	var groups []*branchGroup
	index := make(map[string]*branchGroup)
	for _, p := range points {
		if !p.Plottable() {
			continue
		}
		g := index[p.Branch]
		if g == nil {
			g = &branchGroup{branch: p.Branch}
			index[p.Branch] = g
			groups = append(groups, g)
		}
		g.points = append(g.points, p)
	}
	for _, g := range groups {
		sort.SliceStable(g.points, func(i, j int) bool {
			return g.points[i].CTime.Before(g.points[j].CTime)
		})
	}
	return groups
}

func legend(f *Frame) []*LegendEntry {
	var out []*LegendEntry
	for _, b := range f.Branches {
		e := &LegendEntry{Branch: b, Color: f.Palette.Color(b), Active: f.Selected[b]}
		e.Stat, e.HasStat = f.Stats[b]
		out = append(out, e)
	}
	return out
}

func tooltip(f *Frame, mk *Marker) *Tooltip {
	l := f.Scales.Layout
	p := mk.Point
	t := &Tooltip{
		Key:       mk.Key,
		Point:     p,
		Color:     mk.Color,
		Date:      p.CTime.Format(TooltipDateFormat),
		Value:     perfscale.FormatMetric(p.Metric),
		Commit:    perfdata.ShortRevision(p.Revision),
		CommitURL: f.Links.CommitURL(p),
	}
	if u, ok := f.Links.BuildURL(p); ok {
		t.BuildURL = u
	}
	size := f.TooltipSize
	if size.W == 0 || size.H == 0 {
		size = Size{DefaultTooltipW, DefaultTooltipH}
	}
	t.Placement = PlaceTooltip(mk.X+l.Margin.Left, mk.Y+l.Margin.Top, size, Size{l.Width, l.Height()}, TooltipOffset)
	return t
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
