package flint

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/flint/dialect/sql"
)

// Default connection option values.
const (
	// DefaultTimeout is how long a statement waits on a locked database
	// before failing, when the options leave it unset.
	DefaultTimeout = 5 * time.Second
	// DefaultJournal is the journaling mode new databases are opened
	// with. Write-ahead logging gives single-writer multiple-reader
	// isolation.
	DefaultJournal = "WAL"
)

// ConnectionOptions configures one logical database.
type ConnectionOptions struct {
	// Path is the database file path. Required unless InMemory is set.
	// The parent directory is created on open unless ReadOnly or
	// MustExist forbid it.
	Path string `yaml:"path"`
	// InMemory opens a named shared in-memory database instead of a file.
	InMemory bool `yaml:"in_memory"`
	// ReadOnly rejects every mutating operation with ReadOnlyError
	// before it reaches the engine, and opens the file in ro mode.
	ReadOnly bool `yaml:"readonly"`
	// MustExist fails with DatabaseNotFoundError when the database file
	// does not exist, instead of creating it.
	MustExist bool `yaml:"must_exist"`
	// Timeout is the busy timeout applied to the connection.
	// Zero means DefaultTimeout.
	Timeout time.Duration `yaml:"timeout"`
	// Verbose logs every statement through the client logger.
	Verbose bool `yaml:"verbose"`
	// Journal is the journaling mode, "WAL" or "DELETE".
	// Empty means DefaultJournal.
	Journal string `yaml:"journal"`
}

// DriverConfig is the connection-level configuration of a client: the set
// of named logical databases it may open.
type DriverConfig struct {
	// Databases maps each logical database name to its options.
	Databases map[string]ConnectionOptions `yaml:"databases"`
}

// LoadConfig reads a DriverConfig from a YAML file.
func LoadConfig(path string) (*DriverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flint: reading config: %w", err)
	}
	var cfg DriverConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("flint: parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and normalizes defaults in place.
func (c *DriverConfig) Validate() error {
	if len(c.Databases) == 0 {
		return fmt.Errorf("flint: config declares no databases")
	}
	for name, opts := range c.Databases {
		if !sql.ValidIdentifier(name) {
			return fmt.Errorf("flint: invalid database name %q", name)
		}
		if opts.Path == "" && !opts.InMemory {
			return fmt.Errorf("flint: database %q: path is required", name)
		}
		if opts.InMemory && opts.MustExist {
			return fmt.Errorf("flint: database %q: must_exist makes no sense for an in-memory database", name)
		}
		if opts.Timeout < 0 {
			return fmt.Errorf("flint: database %q: negative timeout", name)
		}
		if opts.Timeout == 0 {
			opts.Timeout = DefaultTimeout
		}
		switch strings.ToUpper(opts.Journal) {
		case "":
			opts.Journal = DefaultJournal
		case "WAL", "DELETE":
			opts.Journal = strings.ToUpper(opts.Journal)
		default:
			return fmt.Errorf("flint: database %q: unsupported journal mode %q", name, opts.Journal)
		}
		c.Databases[name] = opts
	}
	return nil
}
