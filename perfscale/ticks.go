// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscale

import (
	"math"
	"time"

	"github.com/aclements/go-moremath/scale"
	"gonum.org/v1/plot"
)

// Ticker places at most Count ticks at round values and labels them
// with SI prefixes.
type Ticker struct {
	Count int
}

var _ plot.Ticker = Ticker{}

func (t Ticker) Ticks(min, max float64) []plot.Tick {
	if !(max > min) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil
	}
	count := t.Count
	if count <= 0 {
		count = 8
	}
	vals, _ := scale.Linear{Min: min, Max: max}.Ticks(scale.TickOptions{Max: count})
	for i, v := range vals {
		if math.Abs(v) < (max-min)*1e-12 {
			vals[i] = 0
		}
	}
	s := TickScaler(vals)
	ticks := make([]plot.Tick, len(vals))
	for i, v := range vals {
		ticks[i] = plot.Tick{Value: v, Label: s.Format(v)}
	}
	return ticks
}

// TimeTicker places about Count ticks on calendar boundaries of a
// time axis measured in Unix seconds, labeled with Format.
type TimeTicker struct {
	Count  int
	Format string
}

var _ plot.Ticker = TimeTicker{}

type timeInterval struct {
	d      time.Duration
	months int
}

var timeIntervals = []timeInterval{
	{d: time.Second}, {d: 5 * time.Second}, {d: 15 * time.Second}, {d: 30 * time.Second},
	{d: time.Minute}, {d: 5 * time.Minute}, {d: 15 * time.Minute}, {d: 30 * time.Minute},
	{d: time.Hour}, {d: 3 * time.Hour}, {d: 6 * time.Hour}, {d: 12 * time.Hour},
	{d: 24 * time.Hour}, {d: 48 * time.Hour}, {d: 7 * 24 * time.Hour},
	{months: 1}, {months: 3}, {months: 12},
}

func (iv timeInterval) approx() time.Duration {
	if iv.months > 0 {
		return time.Duration(iv.months) * 30 * 24 * time.Hour
	}
	return iv.d
}

func (t TimeTicker) Ticks(min, max float64) []plot.Tick {
	if !(max > min) {
		return nil
	}
	count := t.Count
	if count <= 0 {
		count = 5
	}
	start, end := fromUnixSeconds(min), fromUnixSeconds(max)
	target := end.Sub(start) / time.Duration(count)
	iv := timeIntervals[len(timeIntervals)-1]
	for _, c := range timeIntervals {
		if c.approx() >= target {
			iv = c
			break
		}
	}
	format := t.Format
	if format == "" {
		format = "Jan 02, 2006"
	}

	var ticks []plot.Tick
	for at := iv.floor(start); !at.After(end); at = iv.next(at) {
		if at.Before(start) {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: unixSeconds(at), Label: at.Format(format)})
	}
	return ticks
}

func (iv timeInterval) floor(t time.Time) time.Time {
	t = t.UTC()
	switch {
	case iv.months >= 12:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case iv.months > 0:
		m := (int(t.Month())-1)/iv.months*iv.months + 1
		return time.Date(t.Year(), time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	case iv.d == 7*24*time.Hour:
		// Weeks start on Sunday.
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.AddDate(0, 0, -int(day.Weekday()))
	case iv.d >= 24*time.Hour:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t.Truncate(iv.d)
}

func (iv timeInterval) next(t time.Time) time.Time {
	if iv.months > 0 {
		return t.AddDate(0, iv.months, 0)
	}
	return t.Add(iv.d)
}
