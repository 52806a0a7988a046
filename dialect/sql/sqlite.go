package sql

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DriverName returns the registered database/sql driver name of the engine
// this binary was built with: "sqlite" for the pure Go engine, "sqlite3"
// when built with -tags cgo_sqlite.
func DriverName() string { return driverName }

// DriverType identifies the underlying implementation: "purego" or "cgo".
func DriverType() string { return driverType }

// IsCGO reports whether the CGO engine is in use.
func IsCGO() bool { return driverType == "cgo" }

// EngineInfo describes the compiled-in SQLite engine.
type EngineInfo struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// Engine returns information about the compiled-in SQLite engine.
func Engine() EngineInfo {
	return EngineInfo{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}

// DSNOptions describes the engine-level options encoded into a data source
// name. The two engines spell their options differently; DSN hides the split.
type DSNOptions struct {
	// ReadOnly opens the database in read-only mode.
	ReadOnly bool
	// Memory opens a named shared in-memory database instead of a file.
	Memory bool
	// BusyTimeout is how long a statement waits on a locked database.
	BusyTimeout time.Duration
	// Journal selects the journaling mode, "WAL" or "DELETE".
	// Empty leaves the engine default in place.
	Journal string
	// ForeignKeys enables foreign-key enforcement.
	ForeignKeys bool
}

// DSN builds a data source name for the given engine and database path.
// Engine-specific connection options use the query grammar each driver
// documents: modernc.org/sqlite takes _pragma=name(value) pairs, while
// mattn/go-sqlite3 takes _name=value pairs.
func DSN(driverName, path string, opts DSNOptions) string {
	var params []string
	if opts.Memory {
		params = append(params, "mode=memory", "cache=shared")
	} else if opts.ReadOnly {
		params = append(params, "mode=ro")
	}
	switch driverName {
	case "sqlite3":
		if opts.BusyTimeout > 0 {
			params = append(params, fmt.Sprintf("_busy_timeout=%d", opts.BusyTimeout.Milliseconds()))
		}
		if opts.Journal != "" {
			params = append(params, "_journal_mode="+opts.Journal)
		}
		if opts.ForeignKeys {
			params = append(params, "_foreign_keys=1")
		}
	default:
		if opts.BusyTimeout > 0 {
			params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
		}
		if opts.Journal != "" {
			params = append(params, fmt.Sprintf("_pragma=journal_mode(%s)", opts.Journal))
		}
		if opts.ForeignKeys {
			params = append(params, "_pragma=foreign_keys(1)")
		}
	}
	dsn := "file:" + pathEscape(path)
	if len(params) > 0 {
		dsn += "?" + strings.Join(params, "&")
	}
	return dsn
}

// pathEscape escapes the characters that would be misread as DSN syntax,
// leaving path separators intact.
func pathEscape(path string) string {
	if !strings.ContainsAny(path, "?#") {
		return path
	}
	return (&url.URL{Path: path}).EscapedPath()
}
