// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscale

import (
	"fmt"
	"math"
	"time"

	"github.com/aclements/go-moremath/stats"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
)

// AxisMode selects how the value axis fits the data.
type AxisMode int

const (
	// ZeroBased pins the lower bound of the value axis at 0.
	ZeroBased AxisMode = iota
	// Zoomed fits the value axis to the points in the focus window.
	Zoomed
)

func (m AxisMode) String() string {
	switch m {
	case ZeroBased:
		return "zero"
	case Zoomed:
		return "zoom"
	}
	return fmt.Sprintf("AxisMode(%d)", int(m))
}

// ParseAxisMode parses "zero" or "zoom".
func ParseAxisMode(s string) (AxisMode, error) {
	switch s {
	case "zero", "zero-based":
		return ZeroBased, nil
	case "zoom", "zoomed":
		return Zoomed, nil
	}
	return 0, fmt.Errorf("unknown y-axis mode %q", s)
}

// padFraction is the headroom added around the metric range.
const padFraction = 0.05

// ValueDomain returns the value-axis domain for mode. all holds the
// metrics of the whole filtered series, window those of the points
// inside the focus window. Unplottable metrics are ignored. In Zoomed
// mode an empty window falls back to the zero-based rule.
func ValueDomain(mode AxisMode, all, window []float64) [2]float64 {
	if mode == Zoomed {
		if lo, hi, ok := bounds(window); ok {
			return Pad(lo-padFraction*math.Abs(lo), hi+padFraction*math.Abs(hi))
		}
	}
	lo, hi, ok := bounds(all)
	if !ok {
		return Pad(0, 0)
	}
	if hi < 0 {
		return Pad(lo-padFraction*math.Abs(lo), 0)
	}
	return Pad(0, hi+padFraction*math.Abs(hi))
}

// Pad widens a degenerate domain: equal bounds are padded by 5% of
// their magnitude, and [0, 0] becomes [-1, 1].
func Pad(min, max float64) [2]float64 {
	if min != max {
		return [2]float64{min, max}
	}
	if min == 0 {
		return [2]float64{-1, 1}
	}
	d := padFraction * math.Abs(min)
	return [2]float64{min - d, max + d}
}

func bounds(xs []float64) (lo, hi float64, ok bool) {
	finite := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	if len(finite) == 0 {
		return 0, 0, false
	}
	lo, hi = stats.Bounds(finite)
	return lo, hi, true
}

// TimeExtent returns the earliest and latest ctime of points.
func TimeExtent(points []*perfdata.Point) (lo, hi time.Time, ok bool) {
	for i, p := range points {
		if i == 0 || p.CTime.Before(lo) {
			lo = p.CTime
		}
		if i == 0 || p.CTime.After(hi) {
			hi = p.CTime
		}
	}
	return lo, hi, len(points) > 0
}

// InWindow returns the points whose ctime lies in w, inclusive.
func InWindow(points []*perfdata.Point, w [2]time.Time) []*perfdata.Point {
	var out []*perfdata.Point
	for _, p := range points {
		if !p.CTime.Before(w[0]) && !p.CTime.After(w[1]) {
			out = append(out, p)
		}
	}
	return out
}

// Metrics returns the metric of every point.
func Metrics(points []*perfdata.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Metric
	}
	return out
}
