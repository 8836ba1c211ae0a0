// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfplot draws a perfrender.Scene as an SVG or PNG image
// with gonum/plot: the focus chart on top and the context strip below
// it, with the same ticks and colors as the scene.
package perfplot

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfrender"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// DPI is the resolution of PNG output. One scene pixel is one point.
const DPI = 96

// Write draws s to w in format, "svg" or "png".
func Write(w io.Writer, s *perfrender.Scene, format string) error {
	width, height := vg.Points(s.Width), vg.Points(s.Height)
	var can vg.CanvasWriterTo
	switch format {
	case "svg":
		can = vgsvg.New(width, height)
	case "png":
		can = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(width, height),
			vgimg.UseDPI(DPI), vgimg.UseBackgroundColor(color.White))}
	default:
		return fmt.Errorf("unknown image format %q", format)
	}
	if err := Draw(draw.New(can), s); err != nil {
		return err
	}
	_, err := can.WriteTo(w)
	return err
}

// Draw draws s onto c.
func Draw(c draw.Canvas, s *perfrender.Scene) error {
	if s.Empty() {
		return drawMessage(c, s)
	}
	l := s.Layout
	// Canvas Y grows upward: the focus chart takes the top MainHeight
	// points and the context strip the bottom ContextHeight.
	h := c.Max.Y - c.Min.Y
	scale := h / vg.Length(l.Height())
	focusC := draw.Crop(c, 0, 0, h-vg.Length(l.MainHeight)*scale, 0)
	contextC := draw.Crop(c, 0, 0, 0, -(vg.Length(l.MainHeight+l.Spacing) * scale))

	focus, err := focusPlot(s)
	if err != nil {
		return err
	}
	focus.Draw(focusC)

	ctx, err := contextPlot(s)
	if err != nil {
		return err
	}
	ctx.Draw(contextC)
	return nil
}

func drawMessage(c draw.Canvas, s *perfrender.Scene) error {
	pl := plot.New()
	pl.HideAxes()
	pl.X.Min, pl.X.Max = 0, 1
	pl.Y.Min, pl.Y.Max = 0, 1

	msg, clr := s.Message, color.Color(color.Gray{0x66})
	if s.Error != "" {
		msg, clr = s.Error, red(0xff)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0.5, Y: 0.5}},
		Labels: []string{msg},
	})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = clr
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
		labels.TextStyle[i].Font.Size = 16
	}
	pl.Add(labels)
	pl.Draw(c)
	return nil
}

// timeRange returns the time domain of p in Unix seconds, widened by
// a second each way when it has zero width.
func timeRange(p perfrender.Panel) (float64, float64) {
	lo, hi := perfscale.UnixSeconds(p.TimeDomain[0]), perfscale.UnixSeconds(p.TimeDomain[1])
	if !(hi > lo) {
		lo, hi = lo-1, hi+1
	}
	return lo, hi
}

func focusPlot(s *perfrender.Scene) (*plot.Plot, error) {
	pl := plot.New()
	p := s.Focus
	pl.X.Min, pl.X.Max = timeRange(p)
	pl.Y.Min, pl.Y.Max = p.ValueDomain[0], p.ValueDomain[1]
	pl.X.Tick.Marker = ticks(p.XTicks)
	pl.Y.Tick.Marker = ticks(p.YTicks)
	pl.Y.Label.Text = "metric"
	pl.X.Padding, pl.Y.Padding = 0, 0

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	pl.Add(grid)

	byBranch := make(map[string][]*perfrender.Marker)
	for _, m := range s.Markers {
		if m.Phase != perfrender.Exit {
			byBranch[m.Point.Branch] = append(byBranch[m.Point.Branch], m)
		}
	}

	for _, ln := range s.Lines {
		if ln.Phase == perfrender.Exit || ln.Opacity == 0 {
			continue
		}
		clr, err := perfrender.ParseColor(ln.Color)
		if err != nil {
			return nil, err
		}
		xys := lineXYs(ln)
		if !ln.DotOnly {
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, err
			}
			line.Color = clr
			line.Width = vg.Points(2)
			pl.Add(line)
		}

		markers := byBranch[ln.Branch]
		mxys := make(plotter.XYs, len(markers))
		for i, m := range markers {
			mxys[i].X = perfscale.UnixSeconds(m.Point.CTime)
			mxys[i].Y = m.Point.Metric
		}
		sc, err := plotter.NewScatter(mxys)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: clr, Radius: vg.Points(markers[i].Radius), Shape: draw.CircleGlyph{}}
		}
		pl.Add(sc)
	}

	if b := s.Brush; b != nil && b.Target == "focus" {
		if err := addBand(pl, p, b.X0, b.X1, gray(0x40)); err != nil {
			return nil, err
		}
	}
	if t := s.Tooltip; t != nil {
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: perfscale.UnixSeconds(t.Point.CTime), Y: t.Point.Metric}},
			Labels: []string{t.Value + " @ " + t.Commit},
		})
		if err != nil {
			return nil, err
		}
		labels.Offset = vg.Point{X: vg.Points(perfrender.HoverRadius + 2), Y: vg.Points(perfrender.HoverRadius + 2)}
		pl.Add(labels)
	}
	return pl, nil
}

func contextPlot(s *perfrender.Scene) (*plot.Plot, error) {
	pl := plot.New()
	p := s.Context
	pl.X.Min, pl.X.Max = timeRange(p)
	pl.Y.Min, pl.Y.Max = p.ValueDomain[0], p.ValueDomain[1]
	pl.X.Tick.Marker = ticks(p.XTicks)
	pl.Y.Tick.Marker = plot.ConstantTicks{}
	pl.X.Padding, pl.Y.Padding = 0, 0

	for _, ln := range s.ContextLines {
		clr, err := perfrender.ParseColor(ln.Color)
		if err != nil {
			return nil, err
		}
		xys := lineXYs(ln)
		if ln.DotOnly {
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, err
			}
			sc.Color = clr
			sc.Radius = vg.Points(1.5)
			pl.Add(sc)
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = clr
		line.Width = vg.Points(1)
		pl.Add(line)
	}

	if h := s.Highlight; h != nil {
		if err := addBand(pl, p, h[0], h[1], gray(0x50)); err != nil {
			return nil, err
		}
	}
	if b := s.Brush; b != nil && b.Target == "context" {
		if err := addBand(pl, p, b.X0, b.X1, gray(0x40)); err != nil {
			return nil, err
		}
	}
	return pl, nil
}

// addBand shades the pixel interval [x0, x1] of panel p over its full
// height.
func addBand(pl *plot.Plot, p perfrender.Panel, x0, x1 float64, clr color.Color) error {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	lo, hi := timeRange(p)
	at := func(px float64) float64 {
		if p.Width == 0 {
			return lo
		}
		return lo + perfscale.Clamp(px/p.Width, 0, 1)*(hi-lo)
	}
	a, b := at(x0), at(x1)
	ylo, yhi := p.ValueDomain[0], p.ValueDomain[1]
	poly, err := plotter.NewPolygon(plotter.XYs{{X: a, Y: ylo}, {X: b, Y: ylo}, {X: b, Y: yhi}, {X: a, Y: yhi}})
	if err != nil {
		return err
	}
	poly.Color = clr
	poly.LineStyle.Width = 0
	pl.Add(poly)
	return nil
}

func lineXYs(ln *perfrender.Line) plotter.XYs {
	xys := make(plotter.XYs, 0, len(ln.Points))
	for _, pt := range ln.Points {
		if math.IsNaN(pt.Metric) {
			continue
		}
		xys = append(xys, plotter.XY{X: perfscale.UnixSeconds(pt.CTime), Y: pt.Metric})
	}
	return xys
}

// ticks pins an axis to the scene's ticks.
func ticks(ts []perfscale.Tick) plot.ConstantTicks {
	out := make(plot.ConstantTicks, len(ts))
	for i, t := range ts {
		out[i] = plot.Tick{Value: t.Value, Label: t.Label}
	}
	return out
}

func red(alpha uint8) color.Color {
	return color.NRGBA{0xd6, 0x27, 0x28, alpha}
}

func gray(alpha uint8) color.Color {
	return color.NRGBA{0x60, 0x60, 0x60, alpha}
}
