// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfview

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfscale"
)

// ErrScript is wrapped by every gesture script error.
var ErrScript = errors.New("bad gesture script")

// DateFormat is the calendar date format of the zoom command.
const DateFormat = "2006-01-02"

// Replay executes the gesture script read from r against v. Each line
// holds one command; blank lines and lines starting with '#' are
// skipped. Replay stops at the first failing command.
//
// Commands:
//
//	scale SCALE
//	toggle BRANCH
//	legend BRANCH
//	branches A,B,...
//	select-all
//	deselect-all
//	yaxis zero|zoom
//	enter
//	leave
//	key NAME
//	dblclick
//	brush focus|context X0 X1
//	zoom FROM|- TO|-
//	hover BRANCH UNIX
//	unhover
//	tooltip enter|leave
//	wait DURATION
func Replay(v *View, r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		cmd := strings.TrimSpace(sc.Text())
		if cmd == "" || strings.HasPrefix(cmd, "#") {
			continue
		}
		if err := Exec(v, cmd); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

// Exec executes one gesture command against v.
func Exec(v *View, cmd string) error {
	f := strings.Fields(cmd)
	if len(f) == 0 {
		return nil
	}
	name, args := f[0], f[1:]
	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d arguments, got %d", ErrScript, name, n, len(args))
		}
		return nil
	}

	switch name {
	case "scale":
		if err := want(1); err != nil {
			return err
		}
		s, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("%w: bad scale %q", ErrScript, args[0])
		}
		return v.SetScale(s)

	case "toggle", "legend":
		if err := want(1); err != nil {
			return err
		}
		if name == "legend" {
			v.LegendClick(args[0])
		} else {
			v.ToggleBranch(args[0])
		}

	case "branches":
		// Branch names may contain spaces; only commas separate them.
		var bs []string
		if len(args) > 0 {
			list := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(cmd), name))
			for _, b := range strings.Split(list, ",") {
				if b = strings.TrimSpace(b); b != "" {
					bs = append(bs, b)
				}
			}
		}
		v.SetBranches(bs)

	case "select-all":
		v.SelectAllBranches()

	case "deselect-all":
		v.DeselectAllBranches()

	case "yaxis":
		if err := want(1); err != nil {
			return err
		}
		m, err := perfscale.ParseAxisMode(args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrScript, err)
		}
		v.SetYAxisMode(m)

	case "enter":
		v.PointerEnter()

	case "leave":
		v.PointerLeave()

	case "key":
		if err := want(1); err != nil {
			return err
		}
		v.Key(args[0])

	case "dblclick":
		v.DoubleClick()

	case "brush":
		if err := want(3); err != nil {
			return err
		}
		t, err := ParseTarget(args[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrScript, err)
		}
		x0, err0 := strconv.ParseFloat(args[1], 64)
		x1, err1 := strconv.ParseFloat(args[2], 64)
		if err0 != nil || err1 != nil {
			return fmt.Errorf("%w: bad brush pixels %q %q", ErrScript, args[1], args[2])
		}
		v.BeginBrush(t, x0)
		v.MoveBrush(x1)
		v.EndBrush(t, x0, x1)

	case "zoom":
		if err := want(2); err != nil {
			return err
		}
		from, to, err := DayRange(args[0], args[1])
		if err != nil {
			return err
		}
		v.ZoomTo(from, to)

	case "hover":
		if err := want(2); err != nil {
			return err
		}
		sec, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad time %q", ErrScript, args[1])
		}
		v.HoverPoint(args[0], time.Unix(sec, 0).UTC())

	case "unhover":
		v.Unhover()

	case "tooltip":
		if err := want(1); err != nil {
			return err
		}
		switch args[0] {
		case "enter":
			v.TooltipEnter()
		case "leave":
			v.TooltipLeave()
		default:
			return fmt.Errorf("%w: tooltip %q", ErrScript, args[0])
		}

	case "wait":
		if err := want(1); err != nil {
			return err
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return fmt.Errorf("%w: bad duration %q", ErrScript, args[0])
		}
		v.Wait(d)

	default:
		return fmt.Errorf("%w: unknown command %q", ErrScript, name)
	}
	return nil
}

// DayRange parses a calendar date range. from is the start of its day
// and to is the last second of its day, both UTC. Either may be "-" or
// empty, giving the zero Time. An inverted range is swapped.
func DayRange(from, to string) (time.Time, time.Time, error) {
	var lo, hi time.Time
	if from != "" && from != "-" {
		t, err := time.Parse(DateFormat, from)
		if err != nil {
			return lo, hi, fmt.Errorf("%w: bad date %q", ErrScript, from)
		}
		lo = t
	}
	if to != "" && to != "-" {
		t, err := time.Parse(DateFormat, to)
		if err != nil {
			return lo, hi, fmt.Errorf("%w: bad date %q", ErrScript, to)
		}
		hi = t.Add(24*time.Hour - time.Second)
	}
	if !lo.IsZero() && !hi.IsZero() && hi.Before(lo) {
		// Swap whole days.
		lo, hi = hi.Add(-24*time.Hour+time.Second), lo.Add(24*time.Hour-time.Second)
	}
	return lo, hi, nil
}
