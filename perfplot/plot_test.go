// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfplot

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfrender"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfview"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func view(t *testing.T) *perfview.View {
	t.Helper()
	var points []*perfdata.Point
	for i := 0; i < 5; i++ {
		for j, b := range []string{"REL_17_STABLE", "REL_16_STABLE"} {
			points = append(points, &perfdata.Point{
				Branch:   b,
				Scale:    100,
				Revision: "0123456789abcdef",
				CTime:    t0.AddDate(0, 0, i),
				Metric:   float64(500000 + 50000*j + 1000*i),
			})
		}
	}
	points = append(points, &perfdata.Point{Branch: "master", Scale: 100, CTime: t0, Metric: 42})
	return perfview.New(points, perfview.Options{Now: t0})
}

func TestWriteSVG(t *testing.T) {
	v := view(t)
	v.EndBrush(perfview.Focus, 100, 600)
	v.BeginBrush(perfview.Context, 10)
	v.MoveBrush(40)
	v.HoverPoint("REL_16_STABLE", t0.AddDate(0, 0, 1))

	var buf bytes.Buffer
	if err := Write(&buf, v.Scene(), "svg"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Fatalf("output is not SVG: %.80q", out)
	}
	// The first tick label of the focus time axis is drawn.
	if len(v.Scene().Focus.XTicks) == 0 {
		t.Fatal("focus axis has no ticks")
	}
	if label := v.Scene().Focus.XTicks[0].Label; !strings.Contains(out, label) {
		t.Errorf("SVG lacks tick label %q", label)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, view(t).Scene(), "png"); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Errorf("output is not a PNG")
	}
}

func TestWriteMessage(t *testing.T) {
	v := view(t)
	v.DeselectAllBranches()
	var buf bytes.Buffer
	if err := Write(&buf, v.Scene(), "svg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), perfrender.NoDataMessage) {
		t.Errorf("no-data SVG lacks %q", perfrender.NoDataMessage)
	}

	v = perfview.Failed(errors.New("missing results"), perfview.Options{Now: t0})
	buf.Reset()
	if err := Write(&buf, v.Scene(), "svg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Error: missing results") {
		t.Errorf("error SVG lacks the message")
	}
}

func TestWriteFormat(t *testing.T) {
	if err := Write(new(bytes.Buffer), view(t).Scene(), "gif"); err == nil {
		t.Errorf("Write(gif) succeeded")
	}
}
