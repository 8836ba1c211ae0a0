// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errb bytes.Buffer
	t.Logf("perfchart %s", strings.Join(args, " "))
	err = perfchart(&out, &errb, args)
	return out.String(), errb.String(), err
}

func TestList(t *testing.T) {
	out, _, err := run(t, "-list", "-scale", "100", "testdata/results.js")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"SCALE", "* 100", "REL_17_STABLE,REL_16_STABLE", "2024-05-03"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("scale table lacks %q:\n%s", want, out)
		}
	}
}

func TestOutputs(t *testing.T) {
	dir := t.TempDir()
	svg := filepath.Join(dir, "chart.svg")
	html := filepath.Join(dir, "index.html")
	csv := filepath.Join(dir, "visible.csv")
	_, _, err := run(t, "-script", "testdata/script.txt", "-yaxis", "zoom",
		"-svg", svg, "-html", html, "-csv", csv, "testdata/results.js")
	if err != nil {
		t.Fatal(err)
	}

	read := func(name string) string {
		data, err := os.ReadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
	if got := read(svg); !strings.Contains(got, "<svg") {
		t.Errorf("%s is not SVG", svg)
	}
	page := read(html)
	for _, want := range []string{
		`value="zoom" checked>`,
		`Branches: REL_17_STABLE | Date Range: 01 May 2024 to 02 May 2024`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page lacks %s", want)
		}
	}

	want := "branch,revision,scale,ctime,metric,complete_at,builder_id,build_number\n" +
		"REL_17_STABLE,9fe2f4a1c3,10,1714521600,59123.5,,3,118\n" +
		"REL_17_STABLE,1d0c3b7e44,10,1714608000,58800.2,,3,119\n"
	if got := read(csv); got != want {
		t.Errorf("visible results:\n%s\nwant:\n%s", got, want)
	}
}

func TestStdout(t *testing.T) {
	out, _, err := run(t, "-branches", "REL_16_STABLE", "-csv", "-", "testdata/results.js")
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out, "REL_16_STABLE"); n != 2 || strings.Contains(out, "REL_17_STABLE") {
		t.Errorf("CSV output:\n%s\nwant the two REL_16_STABLE results", out)
	}
}

func TestScaleZero(t *testing.T) {
	out, _, err := run(t, "-list", "-scale", "0", "-branches", "feature x", "-csv", "-", "testdata/zero.json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "* 0") {
		t.Errorf("scale 0 not selected:\n%s", out)
	}
	if n := strings.Count(out, "feature x,aa0"); n != 2 || strings.Contains(out, "bb01") {
		t.Errorf("output:\n%s\nwant the two feature x results only", out)
	}

	if _, _, err := run(t, "-scale", "0", "testdata/results.js"); err == nil {
		t.Errorf("-scale 0 accepted for results without scale 0")
	}
}

func TestLoadError(t *testing.T) {
	html := filepath.Join(t.TempDir(), "index.html")
	_, stderr, err := run(t, "-html", html, "testdata/missing.json")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want ErrNotExist", err)
	}
	data, rerr := os.ReadFile(html)
	if rerr != nil {
		t.Fatal(rerr)
	}
	if !strings.Contains(string(data), `<p class="error">Error: `) {
		t.Errorf("page does not report the load error")
	}
	if !strings.Contains(stderr, "missing.json") {
		t.Errorf("stderr lacks the load error:\n%s", stderr)
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"a.json", "b.json"},
		{"-driver", "sqlite3", "a.json"},
	} {
		if _, _, err := run(t, args...); !errors.Is(err, flag.ErrHelp) {
			t.Errorf("perfchart %v: error = %v, want usage", args, err)
		}
	}
	if _, _, err := run(t, "-yaxis", "log", "testdata/results.js"); err == nil {
		t.Errorf("bad -yaxis accepted")
	}
	if _, _, err := run(t, "-scale", "5", "testdata/results.js"); err == nil {
		t.Errorf("unknown -scale accepted")
	}
}
