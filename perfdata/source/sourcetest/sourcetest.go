// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sourcetest builds results databases for testing the SQL
// source.
package sourcetest

import (
	"bytes"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	"github.com/mattn/go-sqlite3"
)

var cloud = flag.Bool("cloud", false, "connect to Cloud SQL database instead of a temporary SQLite file")
var cloudsql = flag.String("cloudsql", "pgperffarm:us-central1:pgperffarm", "name of Cloud SQL instance to run tests on")

// fixtureDriver writes SQLite fixtures. It is separate from "sqlite3",
// whose connections the source package makes read-only.
const fixtureDriver = "sqlite3-fixture"

func init() {
	sql.Register(fixtureDriver, &sqlite3.SQLiteDriver{})
}

// A Row is one result as stored in the results table.
type Row struct {
	Scale       string
	Branch      string
	Revision    string
	CTime       int64
	CompleteAt  sql.NullInt64
	Metric      sql.NullString
	BuilderID   sql.NullInt64
	BuildNumber sql.NullInt64
}

// createTmpl is the CREATE statement for the results table. It is
// evaluated with . as a map containing one entry whose key is the
// driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS results (
	scale VARCHAR(64) NOT NULL,
	branch VARCHAR(255) NOT NULL,
	revision VARCHAR(64) NOT NULL,
	ctime BIGINT NOT NULL,
	complete_at BIGINT,
	metric {{if .pgx}}TEXT{{else}}VARCHAR(64){{end}},
	builder_id INTEGER,
	build_number INTEGER
);
{{if .mysql}}
CREATE INDEX results_ctime ON results(ctime);
{{else}}
CREATE INDEX IF NOT EXISTS results_ctime ON results(ctime);
{{end}}
`))

// Populate creates the results table on db and inserts rows.
// driverName selects the SQL dialect, as for sql.Open.
func Populate(db *sql.DB, driverName string, rows []Row) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}

	args := "?, ?, ?, ?, ?, ?, ?, ?"
	if driverName == "pgx" {
		args = "$1, $2, $3, $4, $5, $6, $7, $8"
	}
	insert, err := db.Prepare("INSERT INTO results(scale, branch, revision, ctime, complete_at, metric, builder_id, build_number) VALUES (" + args + ")")
	if err != nil {
		return err
	}
	defer insert.Close()
	for _, r := range rows {
		if _, err := insert.Exec(r.Scale, r.Branch, r.Revision, r.CTime, r.CompleteAt, r.Metric, r.BuilderID, r.BuildNumber); err != nil {
			return fmt.Errorf("insert %s/%s: %v", r.Scale, r.Branch, err)
		}
	}
	return nil
}

// createEmptyCloudDB makes a new, empty database for the test.
func createEmptyCloudDB(t *testing.T) (dsn string, cleanup func()) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatal(err)
	}

	name := "perfchart-test-" + base64.RawURLEncoding.EncodeToString(buf)

	prefix := fmt.Sprintf("root:@cloudsql(%s)/", *cloudsql)

	db, err := sql.Open("mysql", prefix)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE `%s`", name)); err != nil {
		db.Close()
		t.Fatal(err)
	}

	t.Logf("Using database %q", name)

	return prefix + name, func() {
		if _, err := db.Exec(fmt.Sprintf("DROP DATABASE `%s`", name)); err != nil {
			t.Error(err)
		}
		db.Close()
	}
}

// NewDB makes a results database holding rows, either a temporary
// SQLite file or Cloud SQL depending on the -cloud flag. It returns
// the driver name and data source name to read it back with.
// cleanup must be called when done with the database.
func NewDB(t *testing.T, rows []Row) (driverName, dataSourceName string, cleanup func()) {
	writeDriver := fixtureDriver
	driverName = "sqlite3"
	dataSourceName = filepath.Join(t.TempDir(), "results.db")
	cleanup = func() {}
	if *cloud {
		writeDriver, driverName = "mysql", "mysql"
		dataSourceName, cleanup = createEmptyCloudDB(t)
	}

	db, err := sql.Open(writeDriver, dataSourceName)
	if err != nil {
		cleanup()
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := Populate(db, driverName, rows); err != nil {
		cleanup()
		t.Fatal(err)
	}
	return driverName, dataSourceName, cleanup
}
