// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bhaweshpanwar/pgperffarm-reporter/perfdata"
)

// DefaultQuery selects every result from the results table. A custom
// query must return the same eight columns in the same order.
const DefaultQuery = `SELECT scale, branch, revision, ctime, complete_at, metric, builder_id, build_number
FROM results ORDER BY ctime`

// OpenDB opens a database for SQL. The parameters are the same as the
// parameters for sql.Open. The drivers "sqlite3", "mysql" (including
// Cloud SQL instances when the cloudsql dialer is linked in) and "pgx"
// are available.
func OpenDB(driverName, dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called by OpenDB after
// opening a connection to driverName. It must be called from an init
// function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// SQL reads results rows from a database. Rows are grouped by scale
// and branch in the order the query returns them.
type SQL struct {
	DB *sql.DB

	// Query is the SELECT statement to run. The default is
	// DefaultQuery.
	Query string
}

func (s *SQL) Load(ctx context.Context) (*perfdata.Dataset, error) {
	q := s.Query
	if q == "" {
		q = DefaultQuery
	}
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	d := new(perfdata.Dataset)
	for rows.Next() {
		var scale, branch, revision, ctime, completeAt, metric, builder, build sql.NullString
		if err := rows.Scan(&scale, &branch, &revision, &ctime, &completeAt, &metric, &builder, &build); err != nil {
			return nil, fmt.Errorf("scan results: %w", err)
		}
		d.Add(scale.String, branch.String, &perfdata.Result{
			Revision:    revision.String,
			CTime:       perfdata.Number(ctime.String),
			CompleteAt:  perfdata.Number(completeAt.String),
			Metric:      perfdata.Number(metric.String),
			BuilderID:   perfdata.Number(builder.String),
			BuildNumber: perfdata.Number(build.String),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return d, nil
}
