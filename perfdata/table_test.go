// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfdata

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func pt(branch string, scale float64, day int, metric float64) *Point {
	return &Point{
		Branch: branch,
		Scale:  scale,
		CTime:  time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		Metric: metric,
	}
}

func TestScaleCounts(t *testing.T) {
	points := []*Point{
		pt("master", 100, 1, 1),
		pt("master", 10, 1, 1),
		pt("REL_16_STABLE", 100, 2, 2),
		pt("master", 100, 3, math.NaN()),
	}
	got := ScaleCounts(points)
	want := map[float64]int{10: 1, 100: 3}
	if !cmp.Equal(got, want) {
		t.Errorf("ScaleCounts = %v, want %v", got, want)
	}
	if got := Scales(got); !cmp.Equal(got, []float64{10, 100}) {
		t.Errorf("Scales = %v, want [10 100]", got)
	}
	if got := ScaleCounts(nil); len(got) != 0 {
		t.Errorf("ScaleCounts(nil) = %v, want empty", got)
	}
}

func TestScaleLabel(t *testing.T) {
	if got, want := ScaleLabel(100, 5), "100 (5 results)"; got != want {
		t.Errorf("ScaleLabel = %q, want %q", got, want)
	}
	if got, want := ScaleLabel(0.5, 1), "0.5 (1 results)"; got != want {
		t.Errorf("ScaleLabel = %q, want %q", got, want)
	}
}

func TestBranches(t *testing.T) {
	points := []*Point{
		pt("REL_15_STABLE", 100, 1, 1),
		pt("master", 100, 1, 1),
		pt("REL_16_STABLE", 100, 1, 1),
		pt("master", 100, 2, 1),
	}
	want := []string{"master", "REL_16_STABLE", "REL_15_STABLE"}
	if got := Branches(points); !cmp.Equal(got, want) {
		t.Errorf("Branches = %v, want %v", got, want)
	}
}

func TestBranchStats(t *testing.T) {
	points := []*Point{
		pt("master", 100, 1, 10),
		pt("master", 100, 2, 20),
		pt("master", 100, 3, math.NaN()),
		pt("REL_16_STABLE", 100, 1, 5),
		pt("REL_15_STABLE", 100, 1, math.NaN()),
	}
	got := BranchStats(points)
	want := map[string]BranchStat{
		"master":        {Count: 2, Min: 10, Mean: 15, Max: 20},
		"REL_16_STABLE": {Count: 1, Min: 5, Mean: 5, Max: 5},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("BranchStats mismatch (-want +got):\n%s", diff)
	}
	if got := BranchStats([]*Point{pt("x", 1, 1, math.NaN())}); len(got) != 0 {
		t.Errorf("BranchStats(all NaN) = %v, want empty", got)
	}
}

func TestLastUpdated(t *testing.T) {
	points := []*Point{pt("a", 1, 3, 1), pt("b", 1, 17, 1), pt("c", 1, 9, 1)}
	if got, want := LastUpdatedLabel(points), "Last updated: May 17, 2024"; got != want {
		t.Errorf("LastUpdatedLabel = %q, want %q", got, want)
	}
	if got := LastUpdatedLabel(nil); got != "" {
		t.Errorf("LastUpdatedLabel(nil) = %q, want empty", got)
	}
}

func TestLinks(t *testing.T) {
	p := &Point{Revision: "e0b2eed1f2a3", BuilderID: "3", BuildNumber: "118"}
	if got, want := DefaultLinks.CommitURL(p), "https://github.com/postgres/postgres/commit/e0b2eed1f2a3"; got != want {
		t.Errorf("CommitURL = %q, want %q", got, want)
	}
	if got, ok := DefaultLinks.BuildURL(p); !ok || got != "http://140.211.11.131:8010/#/builders/3/builds/118" {
		t.Errorf("BuildURL = %q, %v", got, ok)
	}
	if _, ok := DefaultLinks.BuildURL(&Point{BuilderID: "3"}); ok {
		t.Errorf("BuildURL without build number reported ok")
	}
	if got := ShortRevision(p.Revision); got != "e0b2eed1" {
		t.Errorf("ShortRevision = %q, want e0b2eed1", got)
	}
}
