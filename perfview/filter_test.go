// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfview

import (
	"fmt"
	"testing"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
	"github.com/google/go-cmp/cmp"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// fixture has scale 100 with branches a and b, five daily results
// each. Metrics of a run 500000..540000 and of b 560000..600000.
// Scale 200 has a single branch c, and scale 300 is empty.
func fixture() *perfdata.Dataset {
	d := new(perfdata.Dataset)
	for i := 0; i < 5; i++ {
		ct := perfdata.FormatNumber(float64(t0.AddDate(0, 0, i).Unix()))
		d.Add("100", "a", &perfdata.Result{
			Revision: fmt.Sprintf("a%015d", i),
			CTime:    ct,
			Metric:   perfdata.FormatNumber(500000 + 10000*float64(i)),
		})
		d.Add("100", "b", &perfdata.Result{
			Revision:    fmt.Sprintf("b%015d", i),
			CTime:       ct,
			Metric:      perfdata.FormatNumber(560000 + 10000*float64(i)),
			BuilderID:   "3",
			BuildNumber: perfdata.FormatNumber(float64(100 + i)),
		})
	}
	d.Add("200", "c", &perfdata.Result{Revision: "c", CTime: perfdata.FormatNumber(float64(t0.Unix())), Metric: "7"})
	d.Scales = append(d.Scales, &perfdata.ScaleResults{Scale: "300"})
	return d
}

func fixturePoints(t *testing.T) []*perfdata.Point {
	t.Helper()
	points, err := perfdata.Normalize(fixture())
	if err != nil {
		t.Fatal(err)
	}
	return points
}

func TestFilterSetScale(t *testing.T) {
	var changes []Change
	s := NewFilterState(fixturePoints(t), perfscale.ZeroBased, func(c Change) { changes = append(changes, c) })

	s.SetScale(100)
	if diff := cmp.Diff([]string{"b", "a"}, s.AvailableBranches()); diff != "" {
		t.Errorf("AvailableBranches (-want +got):\n%s", diff)
	}
	if !s.AllSelected() || s.ButtonText() != "All Branches Selected" {
		t.Errorf("after SetScale: AllSelected %v, button %q", s.AllSelected(), s.ButtonText())
	}
	if n := len(s.PointsForFilter()); n != 10 {
		t.Errorf("PointsForFilter has %d points, want 10", n)
	}

	s.ToggleBranch("a")
	if s.IsSelected("a") || s.ButtonText() != "1 Branches Selected" {
		t.Errorf("after toggle: a selected %v, button %q", s.IsSelected("a"), s.ButtonText())
	}
	s.SetYAxisMode(perfscale.Zoomed)

	// A new scale resets the branches but keeps the axis mode.
	s.SetScale(200)
	if diff := cmp.Diff([]string{"c"}, s.SelectedBranches()); diff != "" {
		t.Errorf("SelectedBranches (-want +got):\n%s", diff)
	}
	if s.YAxisMode() != perfscale.Zoomed {
		t.Errorf("SetScale reset the axis mode")
	}

	want := []Change{ScaleChanged | BranchesChanged, BranchesChanged, AxisModeChanged, ScaleChanged | BranchesChanged}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("notifications (-want +got):\n%s", diff)
	}
}

func TestFilterBatch(t *testing.T) {
	n := 0
	var last Change
	s := NewFilterState(fixturePoints(t), perfscale.ZeroBased, func(c Change) { n++; last = c })
	s.SetScale(100)
	n = 0

	s.Batch(func() {
		s.DeselectAllBranches()
		s.ToggleBranch("b")
		s.SetYAxisMode(perfscale.Zoomed)
	})
	if n != 1 {
		t.Fatalf("Batch sent %d notifications, want 1", n)
	}
	if last != BranchesChanged|AxisModeChanged {
		t.Errorf("Batch change = %v, want branches|axis", last)
	}
	if diff := cmp.Diff([]string{"b"}, s.SelectedBranches()); diff != "" {
		t.Errorf("SelectedBranches (-want +got):\n%s", diff)
	}
}

func TestFilterButtonText(t *testing.T) {
	s := NewFilterState(fixturePoints(t), perfscale.ZeroBased, nil)
	s.SetScale(100)
	for _, test := range []struct {
		branches []string
		want     string
		all      bool
	}{
		{[]string{"a", "b"}, "All Branches Selected", true},
		{nil, "No Branches Selected", false},
		{[]string{"a"}, "1 Branches Selected", false},
		{[]string{"a", "b", "zzz"}, "All Branches Selected", false},
		{[]string{"zzz"}, "No Branches Selected", false},
	} {
		s.SetBranches(test.branches)
		if got := s.ButtonText(); got != test.want {
			t.Errorf("SetBranches(%v): ButtonText = %q, want %q", test.branches, got, test.want)
		}
		if got := s.AllSelected(); got != test.all {
			t.Errorf("SetBranches(%v): AllSelected = %v, want %v", test.branches, got, test.all)
		}
	}
}

func TestFilterUnavailableBranches(t *testing.T) {
	s := NewFilterState(fixturePoints(t), perfscale.ZeroBased, nil)
	s.SetScale(100)
	s.SetBranches([]string{"zzz", "a", "c"})
	if diff := cmp.Diff([]string{"a", "c", "zzz"}, s.SelectedBranches()); diff != "" {
		t.Errorf("SelectedBranches (-want +got):\n%s", diff)
	}
	for _, p := range s.PointsForFilter() {
		if p.Branch != "a" {
			t.Errorf("PointsForFilter includes branch %q", p.Branch)
		}
	}
	if s.IsAvailable("c") {
		t.Errorf("branch c available under scale 100")
	}
}

func TestFilterScaleBranches(t *testing.T) {
	// Selecting any scale offers exactly its distinct branches, all
	// selected.
	points := fixturePoints(t)
	s := NewFilterState(points, perfscale.ZeroBased, nil)
	for _, scale := range []float64{100, 200, 300, 100} {
		s.SetScale(scale)
		seen := make(map[string]bool)
		for _, p := range points {
			if p.Scale == scale {
				seen[p.Branch] = true
			}
		}
		avail := s.AvailableBranches()
		if len(avail) != len(seen) {
			t.Errorf("scale %v: available %v, want %d branches", scale, avail, len(seen))
		}
		for _, b := range avail {
			if !seen[b] || !s.IsSelected(b) {
				t.Errorf("scale %v: branch %q seen %v selected %v", scale, b, seen[b], s.IsSelected(b))
			}
		}
	}
}
