// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfscale maps result times and metric values onto chart
// pixels for the focus chart and the context strip.
package perfscale

import (
	"math"
	"time"
)

// Time maps a time domain onto a pixel range.
type Time struct {
	Domain [2]time.Time
	Range  [2]float64
}

// Map returns the pixel position of t. A zero-width domain maps every
// time to the middle of the range.
func (s Time) Map(t time.Time) float64 {
	span := s.Domain[1].Sub(s.Domain[0])
	if span == 0 {
		return (s.Range[0] + s.Range[1]) / 2
	}
	f := float64(t.Sub(s.Domain[0])) / float64(span)
	return s.Range[0] + f*(s.Range[1]-s.Range[0])
}

// Invert returns the time at pixel position px. A zero-width range
// inverts to the start of the domain.
func (s Time) Invert(px float64) time.Time {
	r := s.Range[1] - s.Range[0]
	if r == 0 {
		return s.Domain[0]
	}
	f := (px - s.Range[0]) / r
	span := s.Domain[1].Sub(s.Domain[0])
	return s.Domain[0].Add(time.Duration(math.Round(f * float64(span))))
}

// Contains reports whether t lies within the domain, inclusive.
func (s Time) Contains(t time.Time) bool {
	return !t.Before(s.Domain[0]) && !t.After(s.Domain[1])
}

// Span returns the width of the domain.
func (s Time) Span() time.Duration {
	return s.Domain[1].Sub(s.Domain[0])
}

// Ticks returns about n labeled ticks across the domain.
func (s Time) Ticks(n int, format string) []Tick {
	lo, hi := unixSeconds(s.Domain[0]), unixSeconds(s.Domain[1])
	if !(hi > lo) {
		return []Tick{{Value: lo, Pos: s.Map(s.Domain[0]), Label: s.Domain[0].UTC().Format(format)}}
	}
	var ticks []Tick
	for _, t := range (TimeTicker{Count: n, Format: format}).Ticks(lo, hi) {
		ticks = append(ticks, Tick{Value: t.Value, Pos: s.Map(fromUnixSeconds(t.Value)), Label: t.Label})
	}
	return ticks
}

// Linear maps a value domain onto a pixel range. The range is usually
// inverted so that larger values are drawn higher.
type Linear struct {
	Domain [2]float64
	Range  [2]float64
}

// Map returns the pixel position of v. A zero-width domain maps every
// value to the middle of the range.
func (s Linear) Map(v float64) float64 {
	d := s.Domain[1] - s.Domain[0]
	if d == 0 {
		return (s.Range[0] + s.Range[1]) / 2
	}
	return s.Range[0] + (v-s.Domain[0])/d*(s.Range[1]-s.Range[0])
}

// Invert returns the value at pixel position px.
func (s Linear) Invert(px float64) float64 {
	r := s.Range[1] - s.Range[0]
	if r == 0 {
		return s.Domain[0]
	}
	return s.Domain[0] + (px-s.Range[0])/r*(s.Domain[1]-s.Domain[0])
}

// Ticks returns about n labeled ticks across the domain.
func (s Linear) Ticks(n int) []Tick {
	lo, hi := s.Domain[0], s.Domain[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if !(hi > lo) {
		return []Tick{{Value: lo, Pos: s.Map(lo), Label: TickScaler([]float64{lo}).Format(lo)}}
	}
	var ticks []Tick
	for _, t := range (Ticker{Count: n}).Ticks(lo, hi) {
		ticks = append(ticks, Tick{Value: t.Value, Pos: s.Map(t.Value), Label: t.Label})
	}
	return ticks
}

// A Tick is an axis tick in both data and pixel coordinates.
type Tick struct {
	Value float64 // metric value, or Unix seconds on time axes
	Pos   float64
	Label string
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func fromUnixSeconds(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// UnixSeconds returns t as fractional Unix seconds, the unit used on
// plot axes.
func UnixSeconds(t time.Time) float64 { return unixSeconds(t) }
