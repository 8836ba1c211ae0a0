// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Perfchart renders the perf farm dashboard chart without a browser.
//
// Usage:
//
//	perfchart [flags] [location]
//
// The results are read from location, which is a .json results
// document, a .js script assigning RESULTS_DATA, a .csv sample file
// or a gs://bucket/object Cloud Storage object. With -driver, they are
// read from a SQL database instead:
//
//	perfchart -driver pgx -dsn 'host=db user=farm dbname=perf' -svg chart.svg
//	perfchart -driver mysql -dsn 'farm@cloudsql(project:region:instance)/perf' -list
//
// The -scale, -branches and -yaxis flags set the filters, then the
// gesture script named by -script is replayed against the chart. A
// script holds one gesture per line:
//
//	scale 100
//	toggle REL_16_STABLE
//	zoom 2024-05-01 2024-05-20
//	brush context 120 480
//	hover REL_17_STABLE 1714608000
//
// The final state is written as an image (-svg, -png), an HTML page
// (-html) and a CSV file of the plotted results (-csv). A file name of
// "-" writes to standard output. -list prints a summary of the
// available scales.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata/source"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfplot"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfreport"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfview"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

func main() {
	log.SetPrefix("perfchart: ")
	log.SetFlags(0)
	if err := perfchart(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Print(err)
		}
		os.Exit(1)
	}
}

func perfchart(stdout, stderr io.Writer, args []string) error {
	flags := flag.NewFlagSet("perfchart", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, `Usage of perfchart:
	perfchart [flags] [location]
`)
		flags.PrintDefaults()
	}
	var (
		flagDriver     = flags.String("driver", "", "read results from a SQL database with `driver`: sqlite3, mysql or pgx")
		flagDSN        = flags.String("dsn", "", "SQL data source `name` for -driver")
		flagQuery      = flags.String("query", "", "SQL `query` returning result rows (default: every row of the results table)")
		flagCSVTest    = flags.String("csv-test", "", "read only CSV rows of `test`")
		flagCSVMachine = flags.String("csv-machine", "", "read only CSV rows of `machine`")
		flagToken      = flags.String("token", "", "OAuth2 access `token` for Cloud Storage")
		flagAnonymous  = flags.Bool("anonymous", false, "read a public Cloud Storage object without credentials")
		flagTimeout    = flags.Duration("timeout", time.Minute, "give up loading results after `duration`")

		flagScale    = flags.Float64("scale", 0, "show results for `scale` (default: the smallest scale)")
		flagBranches = flags.String("branches", "", "comma-separated `list` of branches to show (default: all)")
		flagYAxis    = flags.String("yaxis", "zero", "value axis `mode`: zero or zoom")
		flagScript   = flags.String("script", "", "replay gestures from `file`")
		flagWidth    = flags.Float64("width", perfscale.DefaultLayout.Width, "chart width in `pixels`")
		flagTitle    = flags.String("title", "", "HTML page `title`")

		flagSVG  = flags.String("svg", "", "write the chart as SVG to `file`")
		flagPNG  = flags.String("png", "", "write the chart as PNG to `file`")
		flagHTML = flags.String("html", "", "write the dashboard page to `file`")
		flagCSV  = flags.String("csv", "", "write the plotted results as CSV to `file`")
		flagList = flags.Bool("list", false, "print the available scales")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 1 || (flags.NArg() == 0) == (*flagDriver == "") {
		flags.Usage()
		return flag.ErrHelp
	}
	mode, err := perfscale.ParseAxisMode(*flagYAxis)
	if err != nil {
		return err
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	warnf := func(format string, args ...interface{}) {
		fmt.Fprintln(stderr, yellow(fmt.Sprintf(format, args...)))
	}

	var src source.Source
	if *flagDriver != "" {
		db, err := source.OpenDB(*flagDriver, *flagDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		src = &source.SQL{DB: db, Query: *flagQuery}
	} else {
		src, err = source.Open(flags.Arg(0))
		if err != nil {
			return err
		}
	}
	csvOpts := perfdata.CSVOptions{Test: *flagCSVTest, Machine: *flagCSVMachine}
	switch s := src.(type) {
	case *source.File:
		s.CSV = csvOpts
	case *source.GCS:
		s.CSV = csvOpts
		s.Token = *flagToken
		s.Anonymous = *flagAnonymous
	}

	ctx, cancel := context.WithTimeout(context.Background(), *flagTimeout)
	defer cancel()
	layout := perfscale.DefaultLayout
	layout.Width = *flagWidth
	opts := perfview.Options{Layout: layout, Mode: mode, Logf: warnf}
	var v *perfview.View
	d, err := src.Load(ctx)
	if err != nil {
		v = perfview.Failed(err, opts)
	} else {
		v = perfview.Load(d, opts)
	}

	if v.Err() == nil {
		set := make(map[string]bool)
		flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
		var cmds []string
		if set["scale"] {
			cmds = append(cmds, "scale "+strconv.FormatFloat(*flagScale, 'f', -1, 64))
		}
		if *flagBranches != "" {
			cmds = append(cmds, "branches "+*flagBranches)
		}
		for _, cmd := range cmds {
			if err := perfview.Exec(v, cmd); err != nil {
				return err
			}
		}
		if *flagScript != "" {
			f, err := os.Open(*flagScript)
			if err != nil {
				return err
			}
			err = perfview.Replay(v, f)
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", *flagScript, err)
			}
		}
	}

	if *flagList && v.Err() == nil {
		if err := printScales(stdout, v); err != nil {
			return err
		}
	}
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{*flagSVG, func(w io.Writer) error { return perfplot.Write(w, v.Scene(), "svg") }},
		{*flagPNG, func(w io.Writer) error { return perfplot.Write(w, v.Scene(), "png") }},
		{*flagHTML, func(w io.Writer) error {
			return perfreport.Write(w, v, perfreport.Options{Title: *flagTitle, Logf: warnf})
		}},
		{*flagCSV, func(w io.Writer) error { return perfdata.WriteCSV(w, visible(v)) }},
	}
	for _, out := range outputs {
		if out.name == "" {
			continue
		}
		if err := writeFile(stdout, out.name, out.write); err != nil {
			return err
		}
	}
	return v.Err()
}

// writeFile writes name with write, or stdout when name is "-".
func writeFile(stdout io.Writer, name string, write func(io.Writer) error) error {
	if name == "-" {
		return write(stdout)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return f.Close()
}

// visible returns the filtered results inside the focus window.
func visible(v *perfview.View) []*perfdata.Point {
	if v.Err() != nil {
		return nil
	}
	return perfscale.InWindow(v.Series(), v.Scales().FocusTime())
}

// printScales prints one row per scale: its result count, branches
// and newest result, marking the selected scale.
func printScales(w io.Writer, v *perfview.View) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Scale", "Results", "Branches", "Last Result"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(scaleRows(v)); err != nil {
		return err
	}
	return table.Render()
}

func scaleRows(v *perfview.View) [][]string {
	byScale := make(map[float64][]*perfdata.Point)
	for _, p := range v.Points() {
		byScale[p.Scale] = append(byScale[p.Scale], p)
	}
	var rows [][]string
	for _, o := range v.ScaleOptions() {
		scale := strconv.FormatFloat(o.Scale, 'f', -1, 64)
		if o.Selected {
			scale = "* " + scale
		}
		points := byScale[o.Scale]
		last := ""
		if t, ok := perfdata.LastUpdated(points); ok {
			last = t.Format("2006-01-02")
		}
		rows = append(rows, []string{
			scale,
			strconv.Itoa(o.Count),
			strings.Join(perfdata.Branches(points), ","),
			last,
		})
	}
	return rows
}
