// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfreport writes a View as a static HTML dashboard page:
// the scale, branch and y-axis controls in their current state, the
// legend, the chart image, the active filter summary and a table of
// the plotted results with their commit and build links.
package perfreport

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfplot"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfrender"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfview"
	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/google/safehtml/uncheckedconversions"
)

// Page sections.
const (
	SectionScale   = "scale"
	SectionBranch  = "branches"
	SectionYAxis   = "yaxis"
	SectionLegend  = "legend"
	SectionChart   = "chart"
	SectionSummary = "summary"
	SectionUpdated = "updated"
	SectionPoints  = "points"
)

// AllSections lists every page section in page order.
var AllSections = []string{
	SectionScale, SectionBranch, SectionYAxis, SectionSummary,
	SectionChart, SectionLegend, SectionUpdated, SectionPoints,
}

// Options configures Write.
type Options struct {
	// Title is the page title. The default is "Performance Farm".
	Title string

	// Sections lists the sections to write. Nil means AllSections.
	Sections []string

	// Logf, if non-nil, is told about sections that are skipped.
	Logf func(format string, args ...interface{})
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type branch struct {
	Name    string
	Checked bool
}

type legendItem struct {
	Branch   string
	Color    int
	Inactive bool
	Stat     string
}

type row struct {
	Branch    string
	Color     int
	Date      string
	Value     string
	Commit    string
	CommitURL string
	BuildURL  string
}

type page struct {
	Title string
	Show  map[string]bool

	Scales     []option
	ButtonText string
	Branches   []branch
	ZeroBased  bool
	Summary    perfview.Summary
	Legend     []legendItem

	Error   string
	Message string
	Chart   safehtml.HTML

	LastUpdated string
	Rows        []row
}

// Write writes the dashboard page for v to w.
func Write(w io.Writer, v *perfview.View, opts Options) error {
	p, err := build(v, opts)
	if err != nil {
		return err
	}
	return pageTemplate.Execute(w, p)
}

func build(v *perfview.View, opts Options) (*page, error) {
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	p := &page{Title: opts.Title, Show: make(map[string]bool)}
	if p.Title == "" {
		p.Title = "Performance Farm"
	}
	sections := opts.Sections
	if sections == nil {
		sections = AllSections
	}
	known := make(map[string]bool)
	for _, s := range AllSections {
		known[s] = true
	}
	for _, s := range sections {
		if !known[s] {
			logf("perfreport: unknown section %q", s)
			continue
		}
		p.Show[s] = true
	}

	s := v.Scene()
	f := v.Filter()
	skip := func(section, why string) {
		if p.Show[section] {
			logf("perfreport: skipping %s section: %s", section, why)
			p.Show[section] = false
		}
	}
	if v.Err() != nil {
		for _, sec := range []string{SectionScale, SectionBranch, SectionYAxis, SectionSummary, SectionLegend, SectionUpdated, SectionPoints} {
			skip(sec, "dataset failed to load")
		}
	}

	for _, o := range v.ScaleOptions() {
		p.Scales = append(p.Scales, option{
			Value:    strconv.FormatFloat(o.Scale, 'f', -1, 64),
			Label:    o.Label,
			Selected: o.Selected,
		})
	}
	if len(p.Scales) == 0 {
		skip(SectionScale, "no scales")
	}

	p.ButtonText = f.ButtonText()
	for _, b := range f.AvailableBranches() {
		p.Branches = append(p.Branches, branch{Name: b, Checked: f.IsSelected(b)})
	}
	if len(p.Branches) == 0 {
		skip(SectionBranch, "no branches under the selected scale")
	}
	p.ZeroBased = f.YAxisMode() == perfscale.ZeroBased
	p.Summary = v.Summary()

	pal := perfrender.NewPalette(f.AvailableBranches())
	for _, e := range s.Legend {
		it := legendItem{Branch: e.Branch, Color: pal.Index(e.Branch), Inactive: !e.Active}
		if e.HasStat {
			it.Stat = fmt.Sprintf("min %s, mean %s, max %s",
				perfscale.FormatMetric(e.Stat.Min), perfscale.FormatMetric(e.Stat.Mean), perfscale.FormatMetric(e.Stat.Max))
		}
		p.Legend = append(p.Legend, it)
	}
	if len(p.Legend) == 0 {
		skip(SectionLegend, "no branches")
	}

	p.Error, p.Message = s.Error, s.Message
	if p.Show[SectionChart] && !s.Empty() {
		chart, err := svg(s)
		if err != nil {
			return nil, err
		}
		p.Chart = chart
	}

	p.LastUpdated = s.LastUpdated
	if p.LastUpdated == "" {
		skip(SectionUpdated, "no results")
	}

	links := v.Links()
	series := append([]*perfrender.Marker(nil), s.Markers...)
	sort.SliceStable(series, func(i, j int) bool {
		a, b := series[i].Point, series[j].Point
		if a.Branch != b.Branch {
			return pal.Index(a.Branch) < pal.Index(b.Branch)
		}
		return a.CTime.Before(b.CTime)
	})
	for _, m := range series {
		if m.Phase == perfrender.Exit {
			continue
		}
		pt := m.Point
		r := row{
			Branch:    pt.Branch,
			Color:     pal.Index(pt.Branch),
			Date:      pt.CTime.Format(perfrender.TooltipDateFormat),
			Value:     perfscale.FormatMetric(pt.Metric),
			Commit:    perfdata.ShortRevision(pt.Revision),
			CommitURL: links.CommitURL(pt),
		}
		if u, ok := links.BuildURL(pt); ok {
			r.BuildURL = u
		}
		p.Rows = append(p.Rows, r)
	}
	if len(p.Rows) == 0 {
		skip(SectionPoints, "no plotted results")
	}
	return p, nil
}

// svg renders s with perfplot and returns the inline <svg> element.
func svg(s *perfrender.Scene) (safehtml.HTML, error) {
	var buf bytes.Buffer
	if err := perfplot.Write(&buf, s, "svg"); err != nil {
		return safehtml.HTML{}, err
	}
	out := buf.String()
	if i := strings.Index(out, "<svg"); i > 0 {
		out = out[i:]
	}
	// perfplot output contains only markup it generated itself.
	return uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(out), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 1em 2em; }
.controls { display: flex; gap: 2em; margin-bottom: 1em; }
span.swatch { display: inline-block; width: 1em; height: 1em; margin-right: .3em; vertical-align: middle; }
.legend .inactive { opacity: .35; }
.error { color: #d62728; font-weight: bold; }
.nodata { color: #666666; text-align: center; padding: 4em 0; }
table.points td, table.points th { padding: .2em .8em; text-align: left; }
.c0 { background: #4e79a7; } .c1 { background: #f28e2c; } .c2 { background: #e15759; }
.c3 { background: #76b7b2; } .c4 { background: #59a14f; } .c5 { background: #edc949; }
.c6 { background: #af7aa1; } .c7 { background: #ff9da7; } .c8 { background: #9c755f; }
.c9 { background: #bab0ab; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<form class="controls">
{{- if index .Show "scale"}}
<label>Scale
<select name="scale">
{{- range .Scales}}
<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
{{- end}}
</select>
</label>
{{- end}}
{{- if index .Show "branches"}}
<fieldset class="branches">
<legend>{{.ButtonText}}</legend>
{{- range .Branches}}
<label><input type="checkbox" name="branch" value="{{.Name}}"{{if .Checked}} checked{{end}}> {{.Name}}</label>
{{- end}}
<button type="button" value="select-all">Select All</button>
<button type="button" value="deselect-all">Deselect All</button>
</fieldset>
{{- end}}
{{- if index .Show "yaxis"}}
<fieldset class="yaxis">
<legend>Y-axis</legend>
<label><input type="radio" name="yaxis" value="zero"{{if .ZeroBased}} checked{{end}}> Start at zero</label>
<label><input type="radio" name="yaxis" value="zoom"{{if not .ZeroBased}} checked{{end}}> Fit to data</label>
</fieldset>
{{- end}}
</form>
{{- if index .Show "summary"}}
<p class="summary">Branches: {{.Summary.Branches}} | Date Range: {{.Summary.DateRange}}</p>
{{- end}}
{{- if index .Show "chart"}}
<div class="chart">
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- else if .Message}}
<p class="nodata">{{.Message}}</p>
{{- else}}
{{.Chart}}
{{- end}}
</div>
{{- end}}
{{- if index .Show "legend"}}
<ul class="legend">
{{- range .Legend}}
<li class="{{if .Inactive}}inactive{{end}}"><span class="swatch c{{.Color}}"></span>{{.Branch}}{{with .Stat}} <small>({{.}})</small>{{end}}</li>
{{- end}}
</ul>
{{- end}}
{{- if index .Show "updated"}}
<p class="updated">{{.LastUpdated}}</p>
{{- end}}
{{- if index .Show "points"}}
<table class="points">
<tr><th>Branch</th><th>Date</th><th>Metric</th><th>Commit</th><th>Build</th></tr>
{{- range .Rows}}
<tr><td><span class="swatch c{{.Color}}"></span>{{.Branch}}</td><td>{{.Date}}</td><td>{{.Value}}</td><td><a href="{{.CommitURL}}">{{.Commit}}</a></td><td>{{if .BuildURL}}<a href="{{.BuildURL}}">build</a>{{end}}</td></tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`))
