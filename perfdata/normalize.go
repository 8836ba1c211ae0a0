// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfdata

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// A Point is one normalized benchmark observation.
type Point struct {
	Branch   string
	Scale    float64
	Revision string

	// CTime is when the observation was produced. CompleteAt is when
	// the run finished, or the zero Time if unknown.
	CTime      time.Time
	CompleteAt time.Time

	// Metric is NaN if the raw value was missing or malformed.
	Metric float64

	BuilderID   string
	BuildNumber string
}

// Plottable reports whether p's metric can be drawn.
func (p *Point) Plottable() bool {
	return !math.IsNaN(p.Metric) && !math.IsInf(p.Metric, 0)
}

// Key identifies p's marker. It is not unique when a branch has
// several results with the same ctime.
func (p *Point) Key() string {
	return fmt.Sprintf("%s-%d", p.Branch, p.CTime.Unix())
}

// Normalize flattens d into points, in document order. Timestamps are
// interpreted as Unix seconds in UTC.
func Normalize(d *Dataset) ([]*Point, error) {
	if d == nil {
		return nil, ErrNoData
	}
	points := make([]*Point, 0, d.Len())
	for _, s := range d.Scales {
		scale, err := parseScale(s.Scale)
		if err != nil {
			return nil, &SchemaError{Path: s.Scale, Msg: "scale is not numeric"}
		}
		for _, b := range s.Branches {
			for i, r := range b.Results {
				ctime := r.CTime.Float()
				if math.IsNaN(ctime) || math.IsInf(ctime, 0) {
					return nil, &SchemaError{
						Path: fmt.Sprintf("%s/%s[%d]", s.Scale, b.Branch, i),
						Msg:  fmt.Sprintf("ctime %q is not a timestamp", string(r.CTime)),
					}
				}
				p := &Point{
					Branch:      b.Branch,
					Scale:       scale,
					Revision:    r.Revision,
					CTime:       unixTime(ctime),
					Metric:      r.Metric.Float(),
					BuilderID:   string(r.BuilderID),
					BuildNumber: string(r.BuildNumber),
				}
				if c := r.CompleteAt.Float(); !math.IsNaN(c) && !math.IsInf(c, 0) {
					p.CompleteAt = unixTime(c)
				}
				points = append(points, p)
			}
		}
	}
	return points, nil
}

func unixTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// Scales returns the distinct scales in counts in ascending order.
func Scales(counts map[float64]int) []float64 {
	scales := make([]float64, 0, len(counts))
	for s := range counts {
		scales = append(scales, s)
	}
	sort.Float64s(scales)
	return scales
}

// ScaleLabel returns the label of a scale selection option.
func ScaleLabel(scale float64, count int) string {
	return fmt.Sprintf("%s (%d results)", strconv.FormatFloat(scale, 'f', -1, 64), count)
}

// Branches returns the distinct branches of points, sorted in reverse
// lexical order so that newer release branches come first.
func Branches(points []*Point) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range points {
		if !seen[p.Branch] {
			seen[p.Branch] = true
			out = append(out, p.Branch)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// LastUpdated returns the newest ctime among points.
func LastUpdated(points []*Point) (time.Time, bool) {
	var last time.Time
	for _, p := range points {
		if p.CTime.After(last) {
			last = p.CTime
		}
	}
	return last, !last.IsZero()
}

// LastUpdatedLabel returns the "Last updated" text for points, or ""
// if there are none.
func LastUpdatedLabel(points []*Point) string {
	t, ok := LastUpdated(points)
	if !ok {
		return ""
	}
	return "Last updated: " + t.Format("Jan 02, 2006")
}
