// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfview

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

func TestReplay(t *testing.T) {
	v := testView(t)
	script := `
# Narrow to one branch and zoom into the middle of the run.
deselect-all
toggle b
yaxis zoom
zoom 2024-05-02 2024-05-03
enter
key ArrowRight
leave
key ArrowRight
hover b 1714694400
unhover
wait 150ms
`
	if err := Replay(v, strings.NewReader(script)); err != nil {
		t.Fatal(err)
	}
	if got := v.Filter().SelectedBranches(); len(got) != 1 || got[0] != "b" {
		t.Errorf("selected = %v, want [b]", got)
	}
	if v.Filter().YAxisMode() != perfscale.Zoomed {
		t.Errorf("y-axis mode = %v, want zoom", v.Filter().YAxisMode())
	}
	// May 2 00:00 to May 3 23:59:59, shifted right once by a tenth.
	from := day(1)
	to := day(3).Add(-time.Second)
	shift := time.Duration(float64(to.Sub(from)) * 0.1)
	want := [2]time.Time{from.Add(shift), to.Add(shift)}
	if got := v.Scales().FocusTime(); got != want {
		t.Errorf("focus = %v, want %v", got, want)
	}
	if v.Scene().Tooltip != nil {
		t.Errorf("tooltip still shown")
	}
	if got, want := v.Clock(), t0.AddDate(0, 1, 0).Add(150*time.Millisecond); !got.Equal(want) {
		t.Errorf("clock = %v, want %v", got, want)
	}
}

func TestReplayErrors(t *testing.T) {
	for _, test := range []struct {
		script string
		line   string
	}{
		{"frobnicate", "line 1:"},
		{"enter\n\nbrush focus 1", "line 3:"},
		{"brush side 1 2", "line 1:"},
		{"yaxis log", "line 1:"},
		{"wait -1s", "line 1:"},
		{"zoom 2024-13-01 -", "line 1:"},
		{"tooltip hover", "line 1:"},
		{"hover b soon", "line 1:"},
	} {
		err := Replay(testView(t), strings.NewReader(test.script))
		if !errors.Is(err, ErrScript) || !strings.HasPrefix(err.Error(), test.line) {
			t.Errorf("Replay(%q) = %v, want script error at %s", test.script, err, test.line)
		}
	}

	err := Replay(testView(t), strings.NewReader("scale 42"))
	if !errors.Is(err, ErrUnknownScale) {
		t.Errorf("scale 42: %v, want ErrUnknownScale", err)
	}
}

func TestReplayBranchNames(t *testing.T) {
	var points []*perfdata.Point
	for i, b := range []string{"REL_17_STABLE", "feature x", "b"} {
		points = append(points, &perfdata.Point{Branch: b, Scale: 100, CTime: day(i), Metric: 1})
	}
	v := New(points, Options{Now: t0})
	for _, test := range []struct {
		cmd  string
		want []string
	}{
		{"branches feature x", []string{"feature x"}},
		{"branches feature x , b", []string{"feature x", "b"}},
		{"branches REL_17_STABLE,b", []string{"REL_17_STABLE", "b"}},
		{"branches", nil},
	} {
		if err := Exec(v, test.cmd); err != nil {
			t.Fatalf("Exec(%q): %v", test.cmd, err)
		}
		f := v.Filter()
		if n := len(f.SelectedBranches()); n != len(test.want) {
			t.Errorf("Exec(%q): selected %v, want %v", test.cmd, f.SelectedBranches(), test.want)
			continue
		}
		for _, b := range test.want {
			if !f.IsSelected(b) {
				t.Errorf("Exec(%q): %q not selected", test.cmd, b)
			}
		}
	}
}

func TestDayRange(t *testing.T) {
	for _, test := range []struct {
		from, to string
		lo, hi   time.Time
	}{
		{"2024-05-01", "2024-05-01", day(0), day(1).Add(-time.Second)},
		{"2024-05-03", "2024-05-01", day(0), day(3).Add(-time.Second)},
		{"-", "2024-05-02", time.Time{}, day(2).Add(-time.Second)},
		{"2024-05-02", "", day(1), time.Time{}},
	} {
		lo, hi, err := DayRange(test.from, test.to)
		if err != nil || !lo.Equal(test.lo) || !hi.Equal(test.hi) {
			t.Errorf("DayRange(%q, %q) = %v, %v, %v; want %v, %v", test.from, test.to, lo, hi, err, test.lo, test.hi)
		}
	}
}
