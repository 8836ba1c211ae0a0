// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVOptions restricts which rows ReadCSV keeps. Empty fields match
// every row, as do rows in files without that column.
type CSVOptions struct {
	Test    string
	Machine string
}

var requiredCSVColumns = []string{"branch", "revision", "scale", "ctime", "metric"}

// ReadCSV reads flat result rows with a header line naming at least
// the branch, revision, scale, ctime and metric columns. Optional
// columns are complete_at, builder_id, build_number, test and machine.
// Rows are grouped by scale and branch in the order they appear.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredCSVColumns {
		if _, ok := cols[name]; !ok {
			return nil, &SchemaError{Path: "header", Msg: fmt.Sprintf("missing column %q", name)}
		}
	}

	d := new(Dataset)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if opts.Test != "" && hasColumn(cols, "test") && field("test") != opts.Test {
			continue
		}
		if opts.Machine != "" && hasColumn(cols, "machine") && field("machine") != opts.Machine {
			continue
		}
		line, _ := cr.FieldPos(0)
		scale := field("scale")
		if _, err := parseScale(scale); err != nil {
			return nil, &SchemaError{Path: fmt.Sprintf("line %d", line), Msg: fmt.Sprintf("scale %q is not numeric", scale)}
		}
		d.Add(scale, field("branch"), &Result{
			Revision:    field("revision"),
			CTime:       Number(field("ctime")),
			CompleteAt:  Number(field("complete_at")),
			Metric:      Number(field("metric")),
			BuilderID:   Number(field("builder_id")),
			BuildNumber: Number(field("build_number")),
		})
	}
	return d, nil
}

func hasColumn(cols map[string]int, name string) bool {
	_, ok := cols[name]
	return ok
}

// WriteCSV writes points in the layout read by ReadCSV.
func WriteCSV(w io.Writer, points []*Point) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"branch", "revision", "scale", "ctime", "metric", "complete_at", "builder_id", "build_number"})
	for _, p := range points {
		cw.Write([]string{
			p.Branch,
			p.Revision,
			strconv.FormatFloat(p.Scale, 'f', -1, 64),
			unixString(p.CTime),
			strof(p.Metric),
			unixString(p.CompleteAt),
			p.BuilderID,
			p.BuildNumber,
		})
	}
	cw.Flush()
	return cw.Error()
}

func unixString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Nanosecond() == 0 {
		return strconv.FormatInt(t.Unix(), 10)
	}
	return strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', -1, 64)
}

func strof(x float64) string {
	if x != x {
		return ""
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
