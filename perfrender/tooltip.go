// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfrender

import (
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

// TooltipOffset is the gap between a point and its tooltip.
const TooltipOffset = 20

// HideDelay is how long a tooltip stays up after the pointer leaves
// its marker.
const HideDelay = 100 * time.Millisecond

// Marker radii.
const (
	MarkerRadius = 4
	HoverRadius  = 7
)

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// A Placement positions a tooltip relative to its container.
type Placement struct {
	Side  string // "top", "bottom", "right" or "left"
	X, Y  float64
	Arrow string // CSS class of the arrow pointing at the point
}

// PlaceTooltip picks the first of top, bottom, right and left that
// keeps a tooltip of size tip inside container when anchored at the
// pointer (px, py). If none fits it uses top, clamped to the
// container.
func PlaceTooltip(px, py float64, tip, container Size, offset float64) Placement {
	cands := []Placement{
		{"top", px - tip.W/2, py - tip.H - offset, "arrow-down"},
		{"bottom", px - tip.W/2, py + offset, "arrow-up"},
		{"right", px + offset, py - tip.H/2, "arrow-left"},
		{"left", px - tip.W - offset, py - tip.H/2, "arrow-right"},
	}
	for _, c := range cands {
		if c.X >= 0 && c.Y >= 0 && c.X+tip.W <= container.W && c.Y+tip.H <= container.H {
			return c
		}
	}
	c := cands[0]
	c.X = perfscale.Clamp(c.X, 0, container.W-tip.W)
	c.Y = perfscale.Clamp(c.Y, 0, container.H-tip.H)
	return c
}

// Hover tracks the marker under the pointer and the tooltip, whose
// hiding is delayed by HideDelay and cancelled while the pointer is
// over the tooltip itself.
type Hover struct {
	key     string
	tipKey  string
	overTip bool
	hideAt  time.Time
}

// Enter records that the pointer is over the marker with key.
func (h *Hover) Enter(key string) {
	h.key = key
	h.tipKey = key
	h.overTip = false
	h.hideAt = time.Time{}
}

// Exit records that the pointer left the marker at now.
func (h *Hover) Exit(now time.Time) {
	if h.key == "" && h.tipKey == "" {
		return
	}
	h.key = ""
	h.hideAt = now.Add(HideDelay)
}

// EnterTooltip records that the pointer moved onto the tooltip.
func (h *Hover) EnterTooltip() {
	if h.tipKey != "" {
		h.overTip = true
	}
}

// LeaveTooltip hides the tooltip.
func (h *Hover) LeaveTooltip() {
	h.overTip = false
	h.tipKey = ""
	h.hideAt = time.Time{}
}

// Advance runs the pending hide at now. It reports whether the
// tooltip was hidden.
func (h *Hover) Advance(now time.Time) bool {
	if h.hideAt.IsZero() || now.Before(h.hideAt) {
		return false
	}
	h.hideAt = time.Time{}
	if h.overTip {
		return false
	}
	h.tipKey = ""
	return true
}

// Reset clears all hover state.
func (h *Hover) Reset() { *h = Hover{} }

// Key returns the key of the marker under the pointer.
func (h *Hover) Key() string { return h.key }

// TooltipKey returns the key of the point the tooltip shows, or "".
func (h *Hover) TooltipKey() string { return h.tipKey }
