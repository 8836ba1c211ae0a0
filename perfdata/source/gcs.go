// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// GCS reads a results document from a Cloud Storage object. The
// object name selects the format as for File.
type GCS struct {
	Bucket string
	Object string

	// Client, if non-nil, is used instead of a client built from
	// the fields below.
	Client *storage.Client

	// Token is an OAuth2 access token. If empty, the application
	// default credentials are used.
	Token string

	// Anonymous reads a public object without credentials.
	Anonymous bool

	// Endpoint overrides the Cloud Storage API endpoint.
	Endpoint string

	CSV perfdata.CSVOptions
}

// ParseGCS parses a gs://bucket/object location.
func ParseGCS(location string) (*GCS, error) {
	rest, ok := strings.CutPrefix(location, "gs://")
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, location)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return nil, fmt.Errorf("source: malformed Cloud Storage location %q", location)
	}
	if _, err := format(object); err != nil {
		return nil, err
	}
	return &GCS{Bucket: bucket, Object: object}, nil
}

// clientOptions returns the options for a client built by Load.
func (g *GCS) clientOptions() []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case g.Anonymous:
		opts = append(opts, option.WithoutAuthentication())
	case g.Token != "":
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: g.Token})))
	}
	if g.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.Endpoint))
	}
	return opts
}

func (g *GCS) Load(ctx context.Context) (*perfdata.Dataset, error) {
	client := g.Client
	if client == nil {
		c, err := storage.NewClient(ctx, g.clientOptions()...)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		client = c
	}
	r, err := client.Bucket(g.Bucket).Object(g.Object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("gs://%s/%s: %w", g.Bucket, g.Object, perfdata.ErrNoData)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	d, err := decode(g.Object, r, g.CSV)
	if err != nil {
		return nil, fmt.Errorf("gs://%s/%s: %w", g.Bucket, g.Object, err)
	}
	return d, nil
}
