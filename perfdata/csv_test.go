// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfdata

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const sampleCSV = `branch,revision,scale,ctime,metric,complete_at,test,machine
master,aaaa1111,100,1714521600,590000.5,1714525200,dbt2,valilleaf
master,bbbb2222,100,1714608000,601000,,dbt2,valilleaf
REL_16_STABLE,cccc3333,100,1714521600,580000,,dbt2,valilleaf
master,dddd4444,100,1714694400,1,,pgbench,valilleaf
master,eeee5555,10,1714521600,2,,dbt2,other
`

func TestReadCSV(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(sampleCSV), CSVOptions{Test: "dbt2", Machine: "valilleaf"})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Scales) != 1 || d.Scales[0].Scale != "100" {
		t.Fatalf("got scales %v, want only 100", d.ScaleValues())
	}
	branches := d.Scales[0].Branches
	if len(branches) != 2 || branches[0].Branch != "master" || branches[1].Branch != "REL_16_STABLE" {
		t.Fatalf("got branches %+v", branches)
	}
	if n := len(branches[0].Results); n != 2 {
		t.Errorf("master has %d results, want 2", n)
	}
	if got := branches[0].Results[0].CompleteAt; got != "1714525200" {
		t.Errorf("complete_at = %q, want 1714525200", got)
	}

	all, err := ReadCSV(strings.NewReader(sampleCSV), CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if all.Len() != 5 {
		t.Errorf("unfiltered Len() = %d, want 5", all.Len())
	}
}

func TestReadCSVErrors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), CSVOptions{}); !errors.Is(err, ErrNoData) {
		t.Errorf("empty input: error = %v, want ErrNoData", err)
	}
	var se *SchemaError
	_, err := ReadCSV(strings.NewReader("branch,revision,ctime\n"), CSVOptions{})
	if !errors.As(err, &se) || se.Path != "header" {
		t.Errorf("missing columns: error = %v, want header schema error", err)
	}
	_, err = ReadCSV(strings.NewReader("branch,revision,scale,ctime,metric\nmaster,a,big,1,2\n"), CSVOptions{})
	if !errors.As(err, &se) || se.Path != "line 2" {
		t.Errorf("bad scale: error = %v, want schema error at line 2", err)
	}
}

func TestWriteCSV(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(sampleCSV), CSVOptions{Test: "dbt2", Machine: "valilleaf"})
	if err != nil {
		t.Fatal(err)
	}
	points, err := Normalize(d)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, points); err != nil {
		t.Fatal(err)
	}
	want := `branch,revision,scale,ctime,metric,complete_at,builder_id,build_number
master,aaaa1111,100,1714521600,590000.5,1714525200,,
master,bbbb2222,100,1714608000,601000,,,
REL_16_STABLE,cccc3333,100,1714521600,580000,,,
`
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV:\n%s\nwant:\n%s", got, want)
	}

	back, err := ReadCSV(strings.NewReader(buf.String()), CSVOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != len(points) {
		t.Errorf("re-read %d results, want %d", back.Len(), len(points))
	}
}
