// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfrender

import (
	"sort"
	"time"
)

// Transition durations.
const (
	RedrawDuration = 500 * time.Millisecond
	AxisDuration   = 250 * time.Millisecond
	PanDuration    = 100 * time.Millisecond
	FadeDuration   = 500 * time.Millisecond
	HoverDuration  = 250 * time.Millisecond
)

// A Transition animates a domain from From to To with cubic
// in-out easing. Time domains are in Unix seconds.
type Transition struct {
	Target   string
	From, To [2]float64
	Start    time.Time
	Duration time.Duration
}

// At returns the interpolated domain at now.
func (t Transition) At(now time.Time) [2]float64 {
	if t.Done(now) {
		return t.To
	}
	p := float64(now.Sub(t.Start)) / float64(t.Duration)
	if p < 0 {
		p = 0
	}
	e := EaseCubicInOut(p)
	return [2]float64{
		t.From[0] + e*(t.To[0]-t.From[0]),
		t.From[1] + e*(t.To[1]-t.From[1]),
	}
}

// Done reports whether the transition has finished at now.
func (t Transition) Done(now time.Time) bool {
	return t.Duration <= 0 || !now.Before(t.Start.Add(t.Duration))
}

// EaseCubicInOut is symmetric cubic easing over [0, 1].
func EaseCubicInOut(p float64) float64 {
	p *= 2
	if p <= 1 {
		return p * p * p / 2
	}
	p -= 2
	return (p*p*p + 2) / 2
}

// An Animator runs at most one transition per target. Starting a new
// transition on a target interrupts the running one, continuing from
// its current interpolated value.
type Animator struct {
	running map[string]Transition
}

// Start begins a transition of target toward to. from is used only if
// nothing is running on target.
func (a *Animator) Start(target string, from, to [2]float64, d time.Duration, now time.Time) Transition {
	if a.running == nil {
		a.running = make(map[string]Transition)
	}
	if cur, ok := a.running[target]; ok && !cur.Done(now) {
		from = cur.At(now)
	}
	t := Transition{Target: target, From: from, To: to, Start: now, Duration: d}
	a.running[target] = t
	return t
}

// Value returns the current value of target.
func (a *Animator) Value(target string, now time.Time) ([2]float64, bool) {
	t, ok := a.running[target]
	if !ok {
		return [2]float64{}, false
	}
	return t.At(now), true
}

// Advance drops transitions that have finished at now.
func (a *Animator) Advance(now time.Time) {
	for k, t := range a.running {
		if t.Done(now) {
			delete(a.running, k)
		}
	}
}

// Running returns the unfinished transitions at now, by target.
func (a *Animator) Running(now time.Time) []Transition {
	var out []Transition
	for _, t := range a.running {
		if !t.Done(now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Target < out[j].Target })
	return out
}
