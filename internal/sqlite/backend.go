// Package sqlite implements the persistence host for stamped records. It
// stores the standard tables in SQLite, or in PostgreSQL through the same
// code path, and runs the stamping hooks before every write.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/userstamp/internal/schema"
	"github.com/mesh-intelligence/userstamp/internal/stamping"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// DatabaseFile is the SQLite database file name inside the data directory.
const DatabaseFile = "userstamp.db"

// Compile-time interface check.
var _ types.Cupboard = (*Backend)(nil)

// Backend implements types.Cupboard.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	dialect  schema.Dialect
	tables   map[string]*table

	stamper types.Stamper
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Backend) { b.log = l }
}

// WithClock sets the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// NewBackend creates a backend that stamps records with stamper. A nil
// stamper gets a fresh one. The backend is not attached; call Attach with a
// Config to initialize.
func NewBackend(stamper types.Stamper, opts ...Option) *Backend {
	b := &Backend{
		tables:  make(map[string]*table),
		stamper: stamper,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		b.log = l
	}
	if b.stamper == nil {
		b.stamper = stamping.New(stamping.WithLogger(b.log))
	}
	return b
}

// Stamper returns the stamper the backend runs before writes.
func (b *Backend) Stamper() types.Stamper { return b.stamper }

// GetTable returns the Table for the specified table name.
// Returns ErrCupboardDetached if the backend is not attached and
// ErrTableNotFound if the name is not a standard table.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrCupboardDetached
	}
	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// Attach opens the database described by config, creates missing tables and
// registers the standard record and actor types with the stamper.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	d, err := schema.DialectFor(config.Backend)
	if err != nil {
		return err
	}

	var db *sql.DB
	switch config.Backend {
	case types.BackendPostgres:
		db, err = sql.Open(d.Driver, config.DSN)
		if err != nil {
			return fmt.Errorf("opening postgres: %w", err)
		}
	default:
		dataDir := config.DataDir
		if dataDir == "" {
			dataDir = "."
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return err
		}
		db, err = sql.Open(d.Driver, filepath.Join(dataDir, DatabaseFile))
		if err != nil {
			return fmt.Errorf("opening sqlite: %w", err)
		}
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	if err := b.attachDB(context.Background(), db, d); err != nil {
		db.Close()
		return err
	}
	b.config = config
	b.log.WithFields(logrus.Fields{"backend": config.Backend, "data_dir": config.DataDir}).Debug("attached")
	return nil
}

// attachDB prepares an open database. The caller must hold b.mu.
func (b *Backend) attachDB(ctx context.Context, db *sql.DB, d schema.Dialect) error {
	for actorType, tableName := range actorTables {
		err := b.stamper.RegisterActorType(actorType, b.finder(tableName))
		if err != nil && !errors.Is(err, types.ErrAlreadyRegistered) {
			return fmt.Errorf("registering actor type %s: %w", actorType, err)
		}
	}

	tables := make(map[string]*table, len(tableDefs))
	for _, def := range tableDefs {
		proto := def.proto()
		m, err := newMapping(proto)
		if err != nil {
			return err
		}
		cfg, err := b.stamper.Register(proto, def.opts)
		if errors.Is(err, types.ErrAlreadyRegistered) {
			cfg, _ = b.stamper.Config(m.typ.Name())
		} else if err != nil {
			return fmt.Errorf("registering %s: %w", def.name, err)
		}
		if _, err := db.ExecContext(ctx, createTableSQL(d, def.name, m, cfg, def.stampType)); err != nil {
			return fmt.Errorf("creating table %s: %w", def.name, err)
		}
		tables[def.name] = &table{backend: b, name: def.name, def: def, m: m, cfg: cfg}
	}

	b.db = db
	b.dialect = d
	b.tables = tables
	b.attached = true
	return nil
}

// finder returns the actor lookup for the actor type stored in tableName.
// Finders are registered by the first backend attached with a stamper.
func (b *Backend) finder(tableName string) types.Finder {
	return func(ctx context.Context, id types.ActorID) (any, error) {
		t, err := b.GetTable(tableName)
		if err != nil {
			return nil, err
		}
		return t.Get(ctx, id.String())
	}
}

// Detach closes the database. After Detach, all operations return
// ErrCupboardDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.tables = make(map[string]*table)
	return nil
}

// StampConfig returns the stamping configuration of a standard table.
func (b *Backend) StampConfig(name string) (types.TypeConfig, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.TypeConfig{}, types.ErrCupboardDetached
	}
	t, ok := b.tables[name]
	if !ok {
		return types.TypeConfig{}, types.ErrTableNotFound
	}
	return t.cfg, nil
}
