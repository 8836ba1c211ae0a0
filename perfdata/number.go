// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// A Number is a numeric field as it appeared in the input: a JSON
// number, a string holding a number, or anything else that will
// coerce to NaN. The zero Number means the field was absent or null.
type Number string

// Float returns n as a float64. Empty or malformed text gives NaN.
func (n Number) Float() float64 {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// FormatNumber returns v as a Number using the shortest exact
// representation.
func FormatNumber(v float64) Number {
	return Number(strconv.FormatFloat(v, 'f', -1, 64))
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		return errors.New("empty value")
	case string(data) == "null":
		*n = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
	case data[0] == '{' || data[0] == '[':
		return errors.New("expected a number or string")
	default:
		*n = Number(data)
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if c := n[0]; (c == '-' || c >= '0' && c <= '9') && json.Valid([]byte(n)) {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}
