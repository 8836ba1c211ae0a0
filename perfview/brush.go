// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfview

import (
	"fmt"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfrender"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

// State is the drag state of a Controller.
type State int

const (
	Idle State = iota
	BrushingContext
	BrushingFocus
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case BrushingContext:
		return "brushing-context"
	case BrushingFocus:
		return "brushing-focus"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Target is the plot a brush is dragged on.
type Target int

const (
	Focus Target = iota
	Context
)

func (t Target) String() string {
	if t == Context {
		return "context"
	}
	return "focus"
}

// ParseTarget parses "focus" or "context".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "focus", "main":
		return Focus, nil
	case "context", "overview":
		return Context, nil
	}
	return 0, fmt.Errorf("unknown brush target %q", s)
}

// panFraction is how far one arrow key press moves the focus window,
// as a fraction of its span.
const panFraction = 0.1

// A Controller turns brush drags, arrow keys, Escape and double clicks
// into focus windows on a perfscale.Manager. After changing the
// window it calls redraw with the transition duration to use.
type Controller struct {
	scales *perfscale.Manager
	redraw func(time.Duration)

	state     State
	hovering  bool
	brush     *perfrender.Brush
	highlight *[2]time.Time
}

// NewController returns an idle Controller.
func NewController(m *perfscale.Manager, redraw func(time.Duration)) *Controller {
	return &Controller{scales: m, redraw: redraw}
}

// State returns the drag state.
func (c *Controller) State() State { return c.state }

// Hovering reports whether the pointer is over the chart, which is
// when keys are handled.
func (c *Controller) Hovering() bool { return c.hovering }

// Brush returns the in-progress selection, or nil.
func (c *Controller) Brush() *perfrender.Brush { return c.brush }

// Highlight returns the focus window marked on the context strip, or
// nil.
func (c *Controller) Highlight() *[2]time.Time { return c.highlight }

// BeginBrush starts a drag on t at pixel x.
func (c *Controller) BeginBrush(t Target, x float64) {
	c.state = BrushingFocus
	if t == Context {
		c.state = BrushingContext
	}
	c.brush = &perfrender.Brush{Target: t.String(), X0: x, X1: x}
}

// MoveBrush extends the in-progress drag to pixel x.
func (c *Controller) MoveBrush(x float64) {
	if c.brush != nil {
		c.brush.X1 = x
	}
}

// CancelBrush abandons the in-progress drag.
func (c *Controller) CancelBrush() {
	c.state = Idle
	c.brush = nil
}

// EndBrush completes a drag on t selecting pixels [x0, x1] of that
// plot. A selection on the context strip replaces the focus window
// and leaves no highlight. A selection on the focus plot narrows the
// current focus window and is marked on the context strip. Zero-width
// or out-of-order selections are ignored. EndBrush reports whether
// the focus window changed.
func (c *Controller) EndBrush(t Target, x0, x1 float64) bool {
	c.CancelBrush()
	if c.scales.Empty() {
		return false
	}
	scale := c.scales.FocusX
	if t == Context {
		scale = c.scales.ContextX
	}
	r := scale.Range
	x0 = perfscale.Clamp(x0, r[0], r[1])
	x1 = perfscale.Clamp(x1, r[0], r[1])
	if !(x1 > x0) {
		return false
	}
	d := [2]time.Time{scale.Invert(x0), scale.Invert(x1)}
	if !d[1].After(d[0]) {
		return false
	}
	c.scales.SetFocusTime(d)
	if t == Context {
		c.highlight = nil
	} else {
		c.highlight = &d
	}
	c.redraw(perfrender.RedrawDuration)
	return true
}

// PointerEnter attaches key handling.
func (c *Controller) PointerEnter() { c.hovering = true }

// PointerLeave detaches key handling.
func (c *Controller) PointerLeave() { c.hovering = false }

// Key handles a key press. ArrowLeft and ArrowRight pan the focus
// window; Escape resets it. Keys are ignored unless the pointer is
// over the chart. Key reports whether the key was handled.
func (c *Controller) Key(name string) bool {
	if !c.hovering || c.scales.Empty() {
		return false
	}
	switch name {
	case "ArrowLeft":
		return c.pan(-1)
	case "ArrowRight":
		return c.pan(1)
	case "Escape":
		c.Reset()
		return true
	}
	return false
}

func (c *Controller) pan(dir int) bool {
	d := c.scales.FocusTime()
	shift := time.Duration(float64(d[1].Sub(d[0])) * panFraction)
	if shift == 0 {
		return false
	}
	shift *= time.Duration(dir)
	d[0], d[1] = d[0].Add(shift), d[1].Add(shift)
	c.scales.SetFocusTime(d)
	c.brush = nil
	c.highlight = &d
	c.redraw(perfrender.PanDuration)
	return true
}

// DoubleClick resets the focus window.
func (c *Controller) DoubleClick() {
	if c.scales.Empty() {
		return
	}
	c.Reset()
}

// Reset restores the full extent and clears both brushes.
func (c *Controller) Reset() {
	c.clear()
	c.scales.SetFocusTime(c.scales.InitialTime())
	c.redraw(perfrender.RedrawDuration)
}

// clear drops all brush state without redrawing.
func (c *Controller) clear() {
	c.state = Idle
	c.brush = nil
	c.highlight = nil
}

// setHighlight marks d on the context strip.
func (c *Controller) setHighlight(d [2]time.Time) {
	c.brush = nil
	c.highlight = &d
}
