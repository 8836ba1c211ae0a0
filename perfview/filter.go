// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfview

import (
	"fmt"
	"sort"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

// A Change describes which parts of a FilterState a mutation touched.
type Change int

const (
	ScaleChanged Change = 1 << iota
	BranchesChanged
	AxisModeChanged
)

// FilterState holds the user's selections: one scale, a set of
// branches and the y-axis mode. All mutation goes through its setters.
// Every top-level setter call, or Batch call, sends exactly one change
// notification.
type FilterState struct {
	points    []*perfdata.Point
	scale     float64
	available []string
	selected  map[string]bool
	mode      perfscale.AxisMode

	notify  func(Change)
	depth   int
	pending Change
}

// NewFilterState returns a FilterState over points with no scale
// selected. notify, if non-nil, is called after each mutation.
func NewFilterState(points []*perfdata.Point, mode perfscale.AxisMode, notify func(Change)) *FilterState {
	return &FilterState{
		points:   points,
		scale:    -1,
		selected: make(map[string]bool),
		mode:     mode,
		notify:   notify,
	}
}

func (s *FilterState) update(c Change, fn func()) {
	s.depth++
	fn()
	s.pending |= c
	s.depth--
	if s.depth > 0 {
		return
	}
	c, s.pending = s.pending, 0
	if s.notify != nil {
		s.notify(c)
	}
}

// Batch runs fn, coalescing the notifications of every setter it
// calls into one.
func (s *FilterState) Batch(fn func()) {
	s.update(0, fn)
}

// SetScale selects scale and resets the branch selection to every
// branch available under it.
func (s *FilterState) SetScale(scale float64) {
	s.update(ScaleChanged|BranchesChanged, func() {
		s.scale = scale
		s.available = perfdata.Branches(s.PointsForScale())
		s.selected = make(map[string]bool, len(s.available))
		for _, b := range s.available {
			s.selected[b] = true
		}
	})
}

// SetBranches replaces the branch selection. Branches need not be
// available under the current scale.
func (s *FilterState) SetBranches(branches []string) {
	s.update(BranchesChanged, func() {
		s.selected = make(map[string]bool, len(branches))
		for _, b := range branches {
			s.selected[b] = true
		}
	})
}

// ToggleBranch flips the selection of branch.
func (s *FilterState) ToggleBranch(branch string) {
	s.update(BranchesChanged, func() {
		if s.selected[branch] {
			delete(s.selected, branch)
		} else {
			s.selected[branch] = true
		}
	})
}

// SelectAllBranches selects every available branch.
func (s *FilterState) SelectAllBranches() {
	s.SetBranches(s.available)
}

// DeselectAllBranches clears the branch selection.
func (s *FilterState) DeselectAllBranches() {
	s.SetBranches(nil)
}

// SetYAxisMode sets the y-axis mode.
func (s *FilterState) SetYAxisMode(m perfscale.AxisMode) {
	s.update(AxisModeChanged, func() { s.mode = m })
}

// Scale returns the selected scale.
func (s *FilterState) Scale() float64 { return s.scale }

// YAxisMode returns the y-axis mode.
func (s *FilterState) YAxisMode() perfscale.AxisMode { return s.mode }

// AvailableBranches returns the branches present under the selected
// scale.
func (s *FilterState) AvailableBranches() []string {
	return append([]string(nil), s.available...)
}

// IsAvailable reports whether branch has points under the selected
// scale.
func (s *FilterState) IsAvailable(branch string) bool {
	for _, b := range s.available {
		if b == branch {
			return true
		}
	}
	return false
}

// IsSelected reports whether branch is selected.
func (s *FilterState) IsSelected(branch string) bool { return s.selected[branch] }

// SelectedBranches returns the selected branches, available ones
// first in their listed order.
func (s *FilterState) SelectedBranches() []string {
	var out, extra []string
	for _, b := range s.available {
		if s.selected[b] {
			out = append(out, b)
		}
	}
	for b := range s.selected {
		if !s.IsAvailable(b) {
			extra = append(extra, b)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// AllSelected reports whether exactly the available branches are
// selected. It is false when no branch is available.
func (s *FilterState) AllSelected() bool {
	if len(s.available) == 0 || len(s.selected) != len(s.available) {
		return false
	}
	for _, b := range s.available {
		if !s.selected[b] {
			return false
		}
	}
	return true
}

// PointsForScale returns the points of the selected scale.
func (s *FilterState) PointsForScale() []*perfdata.Point {
	var out []*perfdata.Point
	for _, p := range s.points {
		if p.Scale == s.scale {
			out = append(out, p)
		}
	}
	return out
}

// PointsForFilter returns the points of the selected scale and
// branches.
func (s *FilterState) PointsForFilter() []*perfdata.Point {
	var out []*perfdata.Point
	for _, p := range s.points {
		if p.Scale == s.scale && s.selected[p.Branch] {
			out = append(out, p)
		}
	}
	return out
}

// ButtonText is the label of the branch selection control.
func (s *FilterState) ButtonText() string {
	n := 0
	for _, b := range s.available {
		if s.selected[b] {
			n++
		}
	}
	switch {
	case n == len(s.available) && n > 0:
		return "All Branches Selected"
	case n == 0:
		return "No Branches Selected"
	}
	return fmt.Sprintf("%d Branches Selected", n)
}
