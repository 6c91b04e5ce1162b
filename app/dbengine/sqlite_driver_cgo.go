//go:build !nativesqlite
// +build !nativesqlite

package dbengine

import (
	_ "github.com/mattn/go-sqlite3"
)

const SQLiteDriverName = "sqlite3"
