// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfdata

import (
	"math"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
)

// Table returns points as a table with columns "scale", "branch",
// "ctime" (Unix seconds) and "metric".
func Table(points []*Point) *table.Table {
	n := len(points)
	scales := make([]float64, n)
	branches := make([]string, n)
	ctimes := make([]float64, n)
	metrics := make([]float64, n)
	for i, p := range points {
		scales[i] = p.Scale
		branches[i] = p.Branch
		ctimes[i] = float64(p.CTime.UnixNano()) / 1e9
		metrics[i] = p.Metric
	}
	return new(table.Builder).Add("scale", scales).Add("branch", branches).Add("ctime", ctimes).Add("metric", metrics).Done()
}

// ScaleCounts returns the number of points for each scale.
func ScaleCounts(points []*Point) map[float64]int {
	counts := make(map[float64]int)
	if len(points) == 0 {
		return counts
	}
	t := table.Flatten(ggstat.Agg("scale")(ggstat.AggCount("count")).F(Table(points)))
	scales := t.MustColumn("scale").([]float64)
	ns := t.MustColumn("count").([]int)
	for i, s := range scales {
		counts[s] = ns[i]
	}
	return counts
}

// BranchStat summarizes the plottable metrics of one branch.
type BranchStat struct {
	Count          int
	Min, Mean, Max float64
}

// BranchStats summarizes the plottable metrics of each branch in
// points. Branches without plottable metrics are omitted.
func BranchStats(points []*Point) map[string]BranchStat {
	stats := make(map[string]BranchStat)
	plottable := 0
	for _, p := range points {
		if p.Plottable() {
			plottable++
		}
	}
	if plottable == 0 {
		return stats
	}

	g := table.Filter(Table(points), func(m float64) bool {
		return !math.IsNaN(m) && !math.IsInf(m, 0)
	}, "metric")
	g = ggstat.Agg("branch")(
		ggstat.AggCount("count"),
		ggstat.AggMin("metric"),
		ggstat.AggMean("metric"),
		ggstat.AggMax("metric"),
	).F(g)
	t := table.Flatten(g)

	branches := t.MustColumn("branch").([]string)
	counts := t.MustColumn("count").([]int)
	mins := t.MustColumn("min metric").([]float64)
	means := t.MustColumn("mean metric").([]float64)
	maxs := t.MustColumn("max metric").([]float64)
	for i, b := range branches {
		stats[b] = BranchStat{Count: counts[i], Min: mins[i], Mean: means[i], Max: maxs[i]}
	}
	return stats
}
