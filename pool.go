package flint

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/syssam/flint/dialect"
	fsql "github.com/syssam/flint/dialect/sql"
	"github.com/syssam/flint/schema"
)

// Pool maps logical database names to open handles. A handle is opened
// lazily on first use and shared by every caller against that name;
// explicit Open/Release calls reference-count it for closing.
type Pool struct {
	mu   sync.Mutex
	cfg  DriverConfig
	log  *slog.Logger
	dbs  map[string]*database
	done bool
}

// database is one open logical database: its driver handle, its schema
// registry and its transaction stack.
type database struct {
	name     string
	id       uuid.UUID
	opts     ConnectionOptions
	drv      dialect.Driver
	stats    *fsql.QueryStats
	registry *schema.Registry
	refs     int

	txmu sync.Mutex
	tx   *txStack
}

func newPool(cfg DriverConfig, log *slog.Logger) *Pool {
	return &Pool{cfg: cfg, log: log, dbs: make(map[string]*database)}
}

// database returns the open handle for the named logical database,
// opening it on first use.
func (p *Pool) database(name string) (*database, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil, ErrClosed
	}
	if d, ok := p.dbs[name]; ok {
		return d, nil
	}
	opts, ok := p.cfg.Databases[name]
	if !ok {
		return nil, fmt.Errorf("flint: logical database %q is not configured", name)
	}
	d, err := open(name, opts, p.log)
	if err != nil {
		return nil, err
	}
	p.dbs[name] = d
	return d, nil
}

// open resolves the connection options into an open handle.
func open(name string, opts ConnectionOptions, log *slog.Logger) (*database, error) {
	path := opts.Path
	if !opts.InMemory {
		abs, err := filepath.Abs(opts.Path)
		if err != nil {
			return nil, err
		}
		path = abs
		if _, err := os.Stat(path); err != nil {
			// A missing file is only creatable when the options allow it.
			if opts.MustExist || opts.ReadOnly {
				return nil, NewDatabaseNotFoundError(name, path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("flint: creating database directory: %w", err)
			}
		}
	} else {
		// A shared in-memory database is addressed by its logical name.
		path = name
	}
	dsn := fsql.DSN(fsql.DriverName(), path, fsql.DSNOptions{
		ReadOnly:    opts.ReadOnly,
		Memory:      opts.InMemory,
		BusyTimeout: opts.Timeout,
		Journal:     opts.Journal,
		ForeignKeys: true,
	})
	drv, err := fsql.Open(fsql.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("flint: opening database %q: %w", name, err)
	}
	// One writer at a time keeps savepoint stacks and WAL writers honest.
	drv.DB().SetMaxOpenConns(1)
	stats := fsql.NewStatsDriver(drv)
	var d dialect.Driver = stats
	if opts.Verbose {
		d = dialect.Debug(d, log)
	}
	return &database{
		name:     name,
		id:       uuid.New(),
		opts:     opts,
		drv:      d,
		stats:    stats.QueryStats(),
		registry: schema.NewRegistry(),
	}, nil
}

// acquire opens the named database if needed and takes a reference on
// its handle.
func (p *Pool) acquire(name string) error {
	d, err := p.database(name)
	if err != nil {
		return err
	}
	p.mu.Lock()
	d.refs++
	p.mu.Unlock()
	return nil
}

// release decrements the handle's reference count and closes it at zero.
func (p *Pool) release(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.dbs[name]
	if !ok {
		return nil
	}
	d.refs--
	if d.refs > 0 {
		return nil
	}
	// Internal use never takes references; only the last Open reference
	// going away closes the handle.
	delete(p.dbs, name)
	return d.drv.Close()
}

// closeAll closes every open handle and marks the pool done.
func (p *Pool) closeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil
	}
	p.done = true
	var errs []error
	for name, d := range p.dbs {
		if err := d.drv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %q: %w", name, err))
		}
		delete(p.dbs, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("flint: %v", errs)
	}
	return nil
}

// metadata snapshots the driver and per-database handle information.
func (p *Pool) metadata() DriverMetadata {
	p.mu.Lock()
	defer p.mu.Unlock()
	meta := DriverMetadata{
		Name:         DriverName,
		Version:      DriverVersion,
		Engine:       fsql.Engine(),
		Capabilities: []string{"sync", "async"},
	}
	names := make([]string, 0, len(p.cfg.Databases))
	for name := range p.cfg.Databases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts := p.cfg.Databases[name]
		dm := DatabaseMetadata{Name: name, Path: opts.Path, ReadOnly: opts.ReadOnly}
		if d, ok := p.dbs[name]; ok {
			dm.ID = d.id
			dm.Open = true
			dm.Tables = d.registry.TableNames()
		}
		meta.Databases = append(meta.Databases, dm)
	}
	return meta
}

// writable fails with ReadOnlyError when the database rejects mutations.
// The check runs before any statement is compiled or executed.
func (d *database) writable(op string) error {
	if d.opts.ReadOnly {
		return NewReadOnlyError(d.name, op)
	}
	return nil
}
