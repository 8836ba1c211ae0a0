// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package perfdata reads the perf farm results document and flattens
// it into a sequence of typed points.
//
// The results document is a JSON object keyed by scale, then by branch:
//
//	{
//	  "100": {
//	    "REL_16_STABLE": {
//	      "reversed": [
//	        {"revision": "e0b2eed", "ctime": 1714521600, "metric": "590413.2",
//	         "builder_id": 3, "build_number": 118},
//	        ...
//	      ]
//	    }
//	  }
//	}
//
// The result list may also be named "orderedResults". Object key order
// is preserved, so scales and branches keep the order of the document.
package perfdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrNoData is returned when there is no results document at all.
var ErrNoData = errors.New("perfdata: no results data")

// A SchemaError reports a results document that does not have the
// expected shape.
type SchemaError struct {
	Path string // slash-separated location within the document
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "perfdata: " + e.Msg
	}
	return fmt.Sprintf("perfdata: %s: %s", e.Path, e.Msg)
}

// A Dataset is a decoded results document.
type Dataset struct {
	Scales []*ScaleResults

	index map[string]*ScaleResults
}

// ScaleResults holds the results of every branch for one scale.
type ScaleResults struct {
	Scale    string
	Branches []*BranchResults

	index map[string]*BranchResults
}

// BranchResults is the ordered result list of one branch.
type BranchResults struct {
	Branch  string
	Results []*Result
}

// A Result is one raw benchmark observation. Numeric fields keep their
// textual form until Normalize coerces them.
type Result struct {
	Revision    string
	CTime       Number
	CompleteAt  Number
	Metric      Number
	BuilderID   Number
	BuildNumber Number
}

// Decode reads a results document from r.
func Decode(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, ErrNoData
	}
	d := new(Dataset)
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Add appends r to the result list of branch under scale, creating the
// scale and branch entries on first use.
func (d *Dataset) Add(scale, branch string, r *Result) {
	if d.index == nil {
		d.index = make(map[string]*ScaleResults)
		for _, s := range d.Scales {
			d.index[s.Scale] = s
		}
	}
	s := d.index[scale]
	if s == nil {
		s = &ScaleResults{Scale: scale}
		d.index[scale] = s
		d.Scales = append(d.Scales, s)
	}
	s.add(branch, r)
}

func (s *ScaleResults) add(branch string, r *Result) {
	if s.index == nil {
		s.index = make(map[string]*BranchResults)
		for _, b := range s.Branches {
			s.index[b.Branch] = b
		}
	}
	b := s.index[branch]
	if b == nil {
		b = &BranchResults{Branch: branch}
		s.index[branch] = b
		s.Branches = append(s.Branches, b)
	}
	b.Results = append(b.Results, r)
}

// Len returns the total number of results in d.
func (d *Dataset) Len() int {
	n := 0
	for _, s := range d.Scales {
		for _, b := range s.Branches {
			n += len(b.Results)
		}
	}
	return n
}

// ScaleValues returns the numeric value of every scale key in document
// order, including scales whose branches have no results.
func (d *Dataset) ScaleValues() []float64 {
	var out []float64
	for _, s := range d.Scales {
		if v, err := parseScale(s.Scale); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func parseScale(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// UnmarshalJSON decodes a results document, keeping the key order of
// the scale and branch objects.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	*d = Dataset{}
	dec := json.NewDecoder(bytes.NewReader(data))
	err := decodeObject(dec, "", func(scale string) error {
		if _, err := parseScale(scale); err != nil {
			return &SchemaError{Path: scale, Msg: "scale is not numeric"}
		}
		s := &ScaleResults{Scale: scale}
		d.Scales = append(d.Scales, s)
		return decodeObject(dec, scale, func(branch string) error {
			b := &BranchResults{Branch: branch}
			s.Branches = append(s.Branches, b)
			return b.decode(dec, scale+"/"+branch)
		})
	})
	if err != nil {
		return err
	}
	d.index = nil
	return nil
}

func (b *BranchResults) decode(dec *json.Decoder, path string) error {
	found := false
	err := decodeObject(dec, path, func(key string) error {
		if key != "reversed" && key != "orderedResults" {
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
		if found {
			return &SchemaError{Path: path, Msg: "more than one result list"}
		}
		found = true
		var raw []json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return &SchemaError{Path: path + "/" + key, Msg: "result list is not an array"}
		}
		for i, msg := range raw {
			r := new(Result)
			if err := json.Unmarshal(msg, r); err != nil {
				return &SchemaError{Path: fmt.Sprintf("%s/%s[%d]", path, key, i), Msg: err.Error()}
			}
			b.Results = append(b.Results, r)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !found {
		return &SchemaError{Path: path, Msg: `missing "reversed" result list`}
	}
	return nil
}

// decodeObject reads one JSON object from dec, calling fn for each key
// with dec positioned at the key's value. fn must consume the value.
func decodeObject(dec *json.Decoder, path string, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &SchemaError{Path: path, Msg: "expected an object"}
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return &SchemaError{Path: path, Msg: "expected an object key"}
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// UnmarshalJSON decodes one result object. Both builder_id/build_number
// and builderId/buildNumber spellings are accepted.
func (r *Result) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return errors.New("result is not an object")
	}
	var rev Number
	fields := []struct {
		names    []string
		dst      *Number
		required bool
	}{
		{[]string{"revision"}, &rev, true},
		{[]string{"ctime"}, &r.CTime, true},
		{[]string{"complete_at", "completeAt"}, &r.CompleteAt, false},
		{[]string{"metric"}, &r.Metric, false},
		{[]string{"builder_id", "builderId"}, &r.BuilderID, false},
		{[]string{"build_number", "buildNumber"}, &r.BuildNumber, false},
	}
	for _, f := range fields {
		var raw json.RawMessage
		for _, name := range f.names {
			if v, ok := m[name]; ok {
				raw = v
				break
			}
		}
		if raw == nil {
			if f.required {
				return fmt.Errorf("missing %q", f.names[0])
			}
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return fmt.Errorf("%s: %v", f.names[0], err)
		}
	}
	r.Revision = string(rev)
	return nil
}

// MarshalJSON encodes r using the perf farm field names.
func (r *Result) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"revision": r.Revision,
		"ctime":    r.CTime,
		"metric":   r.Metric,
	}
	if r.CompleteAt != "" {
		m["complete_at"] = r.CompleteAt
	}
	if r.BuilderID != "" {
		m["builder_id"] = r.BuilderID
	}
	if r.BuildNumber != "" {
		m["build_number"] = r.BuildNumber
	}
	return json.Marshal(m)
}
