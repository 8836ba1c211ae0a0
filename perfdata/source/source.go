// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package source loads perf farm results documents from where they
// are kept: a local file, a Google Cloud Storage object or a SQL
// database. Every source is read-only.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
)

// ErrUnsupported is returned for locations and file formats that no
// source can read.
var ErrUnsupported = errors.New("source: unsupported location")

// A Source produces a results dataset.
type Source interface {
	Load(ctx context.Context) (*perfdata.Dataset, error)
}

// Open returns the source for location. A location of the form
// gs://bucket/object names a Cloud Storage object; anything else
// without a scheme is a local file.
func Open(location string) (Source, error) {
	if strings.HasPrefix(location, "gs://") {
		return ParseGCS(location)
	}
	if i := strings.Index(location, "://"); i > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, location)
	}
	if _, err := format(location); err != nil {
		return nil, err
	}
	return &File{Path: location}, nil
}

// A File reads a results document from the local file system. The
// format follows the file name: .json is the results document, .js
// is a script assigning it (RESULTS_DATA = {...};) and .csv holds
// flat result rows.
type File struct {
	Path string

	// CSV restricts the rows read from a .csv file.
	CSV perfdata.CSVOptions
}

func (f *File) Load(ctx context.Context) (*perfdata.Dataset, error) {
	r, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	d, err := decode(f.Path, r, f.CSV)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return d, nil
}

const (
	formatJSON = "json"
	formatJS   = "js"
	formatCSV  = "csv"
)

func format(name string) (string, error) {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".json":
		return formatJSON, nil
	case ".js":
		return formatJS, nil
	case ".csv":
		return formatCSV, nil
	default:
		return "", fmt.Errorf("%w: file format %q", ErrUnsupported, ext)
	}
}

// decode reads r in the format implied by name.
func decode(name string, r io.Reader, csv perfdata.CSVOptions) (*perfdata.Dataset, error) {
	f, err := format(name)
	if err != nil {
		return nil, err
	}
	switch f {
	case formatCSV:
		return perfdata.ReadCSV(r, csv)
	case formatJS:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return perfdata.Decode(bytes.NewReader(unwrapScript(data)))
	}
	return perfdata.Decode(r)
}

// unwrapScript returns the object literal assigned to RESULTS_DATA in
// a script, or the outermost object in it when there is no such
// assignment. A script with no object gives nil.
func unwrapScript(data []byte) []byte {
	if i := bytes.Index(data, []byte("RESULTS_DATA")); i >= 0 {
		data = data[i:]
	}
	start := bytes.IndexByte(data, '{')
	end := bytes.LastIndexByte(data, '}')
	if start < 0 || end < start {
		return nil
	}
	return data[start : end+1]
}
