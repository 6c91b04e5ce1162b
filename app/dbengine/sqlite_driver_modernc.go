//go:build nativesqlite
// +build nativesqlite

package dbengine

import (
	_ "modernc.org/sqlite"
)

const SQLiteDriverName = "sqlite"
