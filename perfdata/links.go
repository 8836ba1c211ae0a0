// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package perfdata

import "fmt"

// Links holds the format strings of the outbound links of a point.
// Commit takes the revision; Build takes the builder ID and build
// number.
type Links struct {
	Commit string
	Build  string
}

// DefaultLinks points at the PostgreSQL repository and the perf farm
// buildbot.
var DefaultLinks = Links{
	Commit: "https://github.com/postgres/postgres/commit/%s",
	Build:  "http://140.211.11.131:8010/#/builders/%s/builds/%s",
}

// CommitURL returns the commit link of p.
func (l Links) CommitURL(p *Point) string {
	return fmt.Sprintf(l.Commit, p.Revision)
}

// BuildURL returns the build results link of p. It reports false if p
// does not carry both build identifiers.
func (l Links) BuildURL(p *Point) (string, bool) {
	if l.Build == "" || p.BuilderID == "" || p.BuildNumber == "" {
		return "", false
	}
	return fmt.Sprintf(l.Build, p.BuilderID, p.BuildNumber), true
}

// ShortRevision returns the abbreviated revision shown in link text.
func ShortRevision(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
