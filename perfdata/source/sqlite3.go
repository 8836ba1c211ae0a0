// Copyright 2024 The pgperffarm-reporter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package source

import (
	"database/sql"
	"errors"
	"sync"

	"github.com/mattn/go-sqlite3"
)

var readOnly sync.Once

// Connections opened through OpenDB refuse writes. The hook is
// installed on the driver registered as "sqlite3", so every later
// sqlite3 connection in the process is read-only too.
func init() {
	RegisterOpenHook("sqlite3", func(db *sql.DB) error {
		drv, ok := db.Driver().(*sqlite3.SQLiteDriver)
		if !ok {
			return errors.New("sqlite3: unexpected driver type")
		}
		readOnly.Do(func() {
			drv.ConnectHook = func(c *sqlite3.SQLiteConn) error {
				_, err := c.Exec("PRAGMA query_only = ON;", nil)
				return err
			}
		})
		return nil
	})
}
