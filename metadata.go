package flint

import (
	"github.com/google/uuid"

	"github.com/syssam/flint/dialect/sql"
)

// Driver identity.
const (
	// DriverName is the name the driver reports in its metadata.
	DriverName = "flint"
	// DriverVersion is the driver version.
	DriverVersion = "0.3.0"
)

// DriverMetadata describes the driver and its open logical databases.
// It is read-only to callers.
type DriverMetadata struct {
	// Name of the driver.
	Name string `json:"name"`
	// Version of the driver.
	Version string `json:"version"`
	// Engine is the compiled-in SQLite engine.
	Engine sql.EngineInfo `json:"engine"`
	// Capabilities lists the supported execution models.
	Capabilities []string `json:"capabilities"`
	// Databases describes every configured logical database.
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes one logical database.
type DatabaseMetadata struct {
	// Name is the logical database name.
	Name string `json:"name"`
	// ID identifies the open handle. Zero when the database has not
	// been opened yet.
	ID uuid.UUID `json:"id"`
	// Path is the configured file path, empty for in-memory databases.
	Path string `json:"path"`
	// ReadOnly reports whether the database rejects mutations.
	ReadOnly bool `json:"read_only"`
	// Open reports whether a handle is currently open.
	Open bool `json:"open"`
	// Tables lists the tables defined on the database, sorted.
	Tables []string `json:"tables"`
}
