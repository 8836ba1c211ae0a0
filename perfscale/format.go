// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfscale

import (
	"math"
	"strconv"
)

// A Scaler represents a scaling factor for a number and
// its SI representation.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Unscaled value of 1 Prefix (e.g., 1 k => 1000)
	Prefix string  // Unit prefix ("k", "M", etc)
}

// Format formats val and appends the unit prefix. For example, with
// Scaler{0, 1e3, "k"}, Format(590000) returns "590k".
func (s Scaler) Format(val float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	if val != 0 {
		buf = append(buf, s.Prefix...)
	}
	return string(buf)
}

var siFactors = []struct {
	factor float64
	prefix string
}{
	{1e12, "T"},
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
	{1, ""},
	{1e-3, "m"},
	{1e-6, "µ"},
}

// TickScaler returns a common Scaler for a set of tick values. The
// prefix is chosen by the largest magnitude and the precision is the
// fewest digits that still represent every value.
func TickScaler(vals []float64) Scaler {
	var max float64
	for _, v := range vals {
		if a := math.Abs(v); a > max && !math.IsInf(a, 0) {
			max = a
		}
	}
	if max == 0 {
		return Scaler{0, 1, ""}
	}
	f := siFactors[len(siFactors)-1]
	for _, c := range siFactors {
		if max >= c.factor {
			f = c
			break
		}
	}
	for prec := 0; prec < 6; prec++ {
		p := math.Pow(10, float64(prec))
		exact := true
		for _, v := range vals {
			x := v / f.factor * p
			if math.Abs(x-math.Round(x)) > 1e-6 {
				exact = false
				break
			}
		}
		if exact {
			return Scaler{prec, f.factor, f.prefix}
		}
	}
	return Scaler{6, f.factor, f.prefix}
}

// FormatMetric formats a metric for display next to a single point,
// with two decimals.
func FormatMetric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
