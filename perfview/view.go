// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfview is the interactive dashboard chart: the filter
// state, the brush and zoom controller, and the View tying them to the
// scale manager and renderer.
//
// A View is driven by gesture methods (SetScale, ToggleBranch,
// EndBrush, Key, Hover, ...). Every gesture recomputes derived state
// from the current FilterState and produces a new perfrender.Scene.
// Time only moves when Advance is called, so transitions and the
// tooltip hide delay are deterministic.
//
// A View is not safe for concurrent use.
package perfview

import (
	"errors"
	"strings"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfrender"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

// ErrUnknownScale is returned when selecting a scale that is not in
// the dataset.
var ErrUnknownScale = errors.New("perfview: unknown scale")

// Options configures a View.
type Options struct {
	// Layout is the chart geometry. The zero Layout means
	// perfscale.DefaultLayout.
	Layout perfscale.Layout

	// Links builds outbound links. The zero Links means
	// perfdata.DefaultLinks.
	Links perfdata.Links

	// Mode is the initial y-axis mode.
	Mode perfscale.AxisMode

	// TooltipSize is the rendered tooltip size used for placement.
	TooltipSize perfrender.Size

	// Now is the initial clock. The zero Time means time.Now().
	Now time.Time

	// Logf, if non-nil, receives initialization errors and notes.
	Logf func(format string, args ...interface{})
}

// A View is one dashboard chart instance.
type View struct {
	opts   Options
	points []*perfdata.Point
	scales []float64
	counts map[float64]int

	filter   *FilterState
	axes     *perfscale.Manager
	ctrl     *Controller
	renderer perfrender.Renderer
	anim     perfrender.Animator
	hover    perfrender.Hover

	series  []*perfdata.Point
	palette perfrender.Palette
	stats   map[string]perfdata.BranchStat

	// shownX and shownY are the domains the last transitions head
	// to, in Unix seconds and metric units.
	shownX, shownY [2]float64

	lastUpdated string
	scene       *perfrender.Scene
	renders     int
	clock       time.Time
	err         error
}

// Load normalizes d and returns a View over it. If d cannot be
// normalized, the View shows the error instead of a chart and Err
// reports it.
func Load(d *perfdata.Dataset, opts Options) *View {
	points, err := perfdata.Normalize(d)
	if err != nil {
		return failed(err, opts)
	}
	return newView(points, d.ScaleValues(), opts)
}

// New returns a View over points, showing the smallest scale with all
// of its branches selected.
func New(points []*perfdata.Point, opts Options) *View {
	return newView(points, nil, opts)
}

// Failed returns a View that only shows err.
func Failed(err error, opts Options) *View {
	return failed(err, opts)
}

func setDefaults(opts *Options) {
	if opts.Layout == (perfscale.Layout{}) {
		opts.Layout = perfscale.DefaultLayout
	}
	if opts.Links == (perfdata.Links{}) {
		opts.Links = perfdata.DefaultLinks
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
}

func failed(err error, opts Options) *View {
	setDefaults(&opts)
	v := &View{opts: opts, clock: opts.Now, err: err}
	v.logf("perfview: %v", err)
	v.filter = NewFilterState(nil, opts.Mode, nil)
	v.axes = perfscale.NewManager(opts.Layout)
	v.ctrl = NewController(v.axes, func(time.Duration) {})
	v.render()
	return v
}

func newView(points []*perfdata.Point, extraScales []float64, opts Options) *View {
	setDefaults(&opts)
	v := &View{opts: opts, points: points, clock: opts.Now}
	v.counts = perfdata.ScaleCounts(points)
	for _, s := range extraScales {
		if _, ok := v.counts[s]; !ok {
			v.counts[s] = 0
		}
	}
	v.scales = perfdata.Scales(v.counts)
	v.lastUpdated = perfdata.LastUpdatedLabel(points)
	v.filter = NewFilterState(points, opts.Mode, v.changed)
	v.axes = perfscale.NewManager(opts.Layout)
	v.ctrl = NewController(v.axes, v.redraw)
	if len(v.scales) == 0 {
		v.ApplyFiltersAndRender()
		return v
	}
	v.filter.SetScale(v.scales[0])
	return v
}

func (v *View) logf(format string, args ...interface{}) {
	if v.opts.Logf != nil {
		v.opts.Logf(format, args...)
	}
}

// Err returns the initialization error, if any.
func (v *View) Err() error { return v.err }

// Scene returns the current scene.
func (v *View) Scene() *perfrender.Scene { return v.scene }

// Renders returns how many scenes have been produced.
func (v *View) Renders() int { return v.renders }

// Filter returns the filter state. Mutate it only through its setters.
func (v *View) Filter() *FilterState { return v.filter }

// Scales returns the scale manager.
func (v *View) Scales() *perfscale.Manager { return v.axes }

// Controller returns the brush and zoom controller.
func (v *View) Controller() *Controller { return v.ctrl }

// Series returns the filtered series.
func (v *View) Series() []*perfdata.Point { return v.series }

// Points returns every point of the dataset.
func (v *View) Points() []*perfdata.Point { return v.points }

// Links returns the outbound link formats in use.
func (v *View) Links() perfdata.Links { return v.opts.Links }

// Clock returns the View's current time.
func (v *View) Clock() time.Time { return v.clock }

// ButtonText returns the label of the branch selection control.
func (v *View) ButtonText() string { return v.filter.ButtonText() }

// LastUpdated returns the "Last updated" label.
func (v *View) LastUpdated() string { return v.lastUpdated }

// changed is the FilterState notification.
func (v *View) changed(c Change) {
	if c&(ScaleChanged|BranchesChanged) != 0 {
		v.ApplyFiltersAndRender()
		return
	}
	if c&AxisModeChanged != 0 {
		v.updateYAxis(perfrender.AxisDuration)
		v.render()
	}
}

// ApplyFiltersAndRender recomputes the filtered series, resets the
// focus window to its full extent and renders.
func (v *View) ApplyFiltersAndRender() {
	if v.err != nil {
		v.render()
		return
	}
	v.series = v.filter.PointsForFilter()
	v.palette = perfrender.NewPalette(v.filter.AvailableBranches())
	v.stats = perfdata.BranchStats(v.filter.PointsForScale())
	v.axes.Reset(v.series, v.filter.YAxisMode(), v.clock)
	v.ctrl.clear()
	v.hover.Reset()

	x := timeDomain(v.axes.FocusTime())
	y := v.axes.FocusY.Domain
	if v.renders > 0 && !v.axes.Empty() {
		v.anim.Start("x", v.shownX, x, perfrender.RedrawDuration, v.clock)
		v.anim.Start("y", v.shownY, y, perfrender.RedrawDuration, v.clock)
	}
	v.shownX, v.shownY = x, y
	v.render()
}

// redraw animates the axes to the current focus window.
func (v *View) redraw(d time.Duration) {
	x := timeDomain(v.axes.FocusTime())
	v.anim.Start("x", v.shownX, x, d, v.clock)
	v.shownX = x
	v.updateYAxis(d)
	v.render()
}

// updateYAxis refits the value axis and animates it over d.
func (v *View) updateYAxis(d time.Duration) {
	y := v.axes.UpdateValue(v.filter.YAxisMode(), v.series)
	v.anim.Start("y", v.shownY, y, d, v.clock)
	v.shownY = y
}

func (v *View) render() {
	f := &perfrender.Frame{
		Scales:      v.axes,
		Series:      v.series,
		Branches:    v.filter.AvailableBranches(),
		Selected:    make(map[string]bool),
		Palette:     v.palette,
		Stats:       v.stats,
		Links:       v.opts.Links,
		Hover:       &v.hover,
		TooltipSize: v.opts.TooltipSize,
		Highlight:   v.ctrl.Highlight(),
		Brush:       v.ctrl.Brush(),
		LastUpdated: v.lastUpdated,
		Animator:    &v.anim,
		Now:         v.clock,
	}
	for _, b := range f.Branches {
		f.Selected[b] = v.filter.IsSelected(b)
	}
	if v.err != nil {
		f.Error = "Error: " + v.err.Error()
	}
	v.scene = v.renderer.Render(f)
	v.renders++
}

func timeDomain(d [2]time.Time) [2]float64 {
	return [2]float64{perfscale.UnixSeconds(d[0]), perfscale.UnixSeconds(d[1])}
}

// A ScaleOption is one entry of the scale selection control.
type ScaleOption struct {
	Scale    float64
	Count    int
	Label    string
	Selected bool
}

// ScaleOptions returns the scale choices in ascending order.
func (v *View) ScaleOptions() []ScaleOption {
	var out []ScaleOption
	for _, s := range v.scales {
		out = append(out, ScaleOption{
			Scale:    s,
			Count:    v.counts[s],
			Label:    perfdata.ScaleLabel(s, v.counts[s]),
			Selected: s == v.filter.Scale(),
		})
	}
	return out
}

// SetScale selects scale, selecting all of its branches.
func (v *View) SetScale(scale float64) error {
	if v.err != nil {
		return v.err
	}
	if _, ok := v.counts[scale]; !ok {
		return ErrUnknownScale
	}
	v.filter.SetScale(scale)
	return nil
}

// SetBranches replaces the branch selection.
func (v *View) SetBranches(branches []string) {
	if v.err == nil {
		v.filter.SetBranches(branches)
	}
}

// ToggleBranch flips the selection of branch, as its checkbox does.
// It reports false, without rendering, if branch is not available
// under the current scale.
func (v *View) ToggleBranch(branch string) bool {
	if v.err != nil || !v.filter.IsAvailable(branch) {
		return false
	}
	v.filter.ToggleBranch(branch)
	return true
}

// LegendClick is a click on branch's legend entry. It has the same
// effect as ToggleBranch.
func (v *View) LegendClick(branch string) bool {
	return v.ToggleBranch(branch)
}

// SelectAllBranches selects every branch of the current scale.
func (v *View) SelectAllBranches() {
	if v.err == nil {
		v.filter.SelectAllBranches()
	}
}

// DeselectAllBranches clears the branch selection.
func (v *View) DeselectAllBranches() {
	if v.err == nil {
		v.filter.DeselectAllBranches()
	}
}

// SetYAxisMode switches the y-axis mode, animating the value axis.
func (v *View) SetYAxisMode(m perfscale.AxisMode) {
	if v.err == nil {
		v.filter.SetYAxisMode(m)
	}
}

// Batch runs fn, rendering once for all filter changes it makes.
func (v *View) Batch(fn func()) {
	if v.err == nil {
		v.filter.Batch(fn)
	}
}

// BeginBrush starts a drag on t at pixel x.
func (v *View) BeginBrush(t Target, x float64) {
	if v.err != nil || v.axes.Empty() {
		return
	}
	v.ctrl.BeginBrush(t, x)
	v.render()
}

// MoveBrush extends the in-progress drag.
func (v *View) MoveBrush(x float64) {
	if v.err != nil || v.ctrl.Brush() == nil {
		return
	}
	v.ctrl.MoveBrush(x)
	v.render()
}

// EndBrush completes a drag on t over pixels [x0, x1].
func (v *View) EndBrush(t Target, x0, x1 float64) bool {
	if v.err != nil {
		return false
	}
	hadBrush := v.ctrl.Brush() != nil
	if v.ctrl.EndBrush(t, x0, x1) {
		return true
	}
	if hadBrush {
		v.render()
	}
	return false
}

// PointerEnter records that the pointer is over the chart.
func (v *View) PointerEnter() { v.ctrl.PointerEnter() }

// PointerLeave records that the pointer left the chart.
func (v *View) PointerLeave() { v.ctrl.PointerLeave() }

// Key handles a key press while the pointer is over the chart.
func (v *View) Key(name string) bool {
	if v.err != nil {
		return false
	}
	return v.ctrl.Key(name)
}

// DoubleClick resets the zoom.
func (v *View) DoubleClick() {
	if v.err == nil {
		v.ctrl.DoubleClick()
	}
}

// ZoomTo sets the focus window to [from, to]. A zero bound means the
// corresponding end of the full extent; inverted bounds are swapped.
// It reports false if the window would be empty.
func (v *View) ZoomTo(from, to time.Time) bool {
	if v.err != nil || v.axes.Empty() {
		return false
	}
	full := v.axes.InitialTime()
	if from.IsZero() {
		from = full[0]
	}
	if to.IsZero() {
		to = full[1]
	}
	if to.Before(from) {
		from, to = to, from
	}
	if !to.After(from) {
		return false
	}
	d := [2]time.Time{from, to}
	v.axes.SetFocusTime(d)
	v.ctrl.setHighlight(d)
	v.redraw(perfrender.RedrawDuration)
	return true
}

// Hover moves the pointer onto the marker with key. It reports false
// if no such marker is drawn.
func (v *View) Hover(key string) bool {
	if v.err != nil || !v.hasMarker(key) {
		return false
	}
	v.hover.Enter(key)
	v.render()
	return true
}

// HoverPoint hovers the first marker of branch at ctime.
func (v *View) HoverPoint(branch string, ctime time.Time) bool {
	if v.scene == nil {
		return false
	}
	for _, m := range v.scene.Markers {
		if m.Phase != perfrender.Exit && m.Point.Branch == branch && m.Point.CTime.Equal(ctime) {
			return v.Hover(m.Key)
		}
	}
	return false
}

func (v *View) hasMarker(key string) bool {
	if v.scene == nil {
		return false
	}
	for _, m := range v.scene.Markers {
		if m.Key == key && m.Phase != perfrender.Exit {
			return true
		}
	}
	return false
}

// Unhover moves the pointer off the hovered marker. The tooltip hides
// after perfrender.HideDelay unless the pointer moves onto it.
func (v *View) Unhover() {
	if v.err != nil || v.hover.Key() == "" {
		return
	}
	v.hover.Exit(v.clock)
	v.render()
}

// TooltipEnter moves the pointer onto the tooltip.
func (v *View) TooltipEnter() { v.hover.EnterTooltip() }

// TooltipLeave moves the pointer off the tooltip, hiding it.
func (v *View) TooltipLeave() {
	if v.hover.TooltipKey() == "" {
		return
	}
	v.hover.LeaveTooltip()
	v.render()
}

// Advance moves the clock to now, finishing transitions and running
// a pending tooltip hide. Times before the current clock are ignored.
func (v *View) Advance(now time.Time) {
	if now.Before(v.clock) {
		return
	}
	v.clock = now
	v.anim.Advance(now)
	if v.hover.Advance(now) && v.err == nil {
		v.render()
		return
	}
	if v.scene != nil {
		v.scene.Transitions = v.anim.Running(now)
	}
}

// Wait advances the clock by d.
func (v *View) Wait(d time.Duration) { v.Advance(v.clock.Add(d)) }

// Summary describes the active filters.
type Summary struct {
	Branches  string
	DateRange string
}

// Summary returns the active filter summary.
func (v *View) Summary() Summary {
	var s Summary
	switch sel := v.filter.SelectedBranches(); {
	case len(sel) == 0:
		s.Branches = "None"
	case v.filter.AllSelected():
		s.Branches = "All"
	default:
		s.Branches = strings.Join(sel, ", ")
	}
	s.DateRange = "All"
	if !v.axes.Empty() && v.axes.Zoomed() {
		d := v.axes.FocusTime()
		s.DateRange = d[0].Format("02 Jan 2006") + " to " + d[1].Format("02 Jan 2006")
	}
	return s
}
