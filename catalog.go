package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"
)

const (
	DefaultCatalogName     = "default_catalog"
	DefaultDatabaseName    = "default"
	currentFormatVersion   = 1
	formatVersionKey       = "format_version"
	catalogNameKey         = "name"
	defaultDatabaseNameKey = "default_database"
)

const (
	metaBucket           = "meta"
	databasesBucket      = "databases"
	objectsBucket        = "objects"
	functionsBucket      = "functions"
	partitionsBucket     = "partitions"
	partitionSpecsBucket = "partition_specs"
)

var errCatalogClosed = errors.New("catalog closed")

// Catalog is a namespace of databases holding tables, views, functions and
// partitions, persisted in a storage backend. It is safe for concurrent
// use; every operation runs in its own storage transaction and mutations
// are serialized by the backend.
type Catalog struct {
	name      string
	defaultDB string
	store     storage
	logger    *slog.Logger
	verbose   bool
	closed    atomic.Bool

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
}

type Options struct {
	// Name is the catalog name used in error messages. Defaults to
	// DefaultCatalogName.
	Name string
	// DefaultDatabase is created on open if missing and cannot be dropped.
	// Defaults to DefaultDatabaseName.
	DefaultDatabase string

	Logger  *slog.Logger
	Verbose bool

	// IsTesting trades durability for speed in file backends.
	IsTesting bool
}

// NewInMemory returns a catalog whose contents live only as long as it does.
func NewInMemory(opt Options) *Catalog {
	return must(open(newMemStorage(), opt))
}

// OpenBolt opens or creates a catalog stored in a Bolt file.
func OpenBolt(path string, opt Options) (*Catalog, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	cat, err := open(newBoltStorage(bdb), opt)
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return cat, nil
}

// OpenSQLite opens or creates a catalog stored in a SQLite database file.
func OpenSQLite(path string, opt Options) (*Catalog, error) {
	store, err := openSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	cat, err := open(store, opt)
	if err != nil {
		store.Close()
		return nil, err
	}
	return cat, nil
}

func open(store storage, opt Options) (*Catalog, error) {
	c := &Catalog{
		name:      opt.Name,
		defaultDB: opt.DefaultDatabase,
		store:     store,
		logger:    opt.Logger,
		verbose:   opt.Verbose,
	}
	if c.name == "" {
		c.name = DefaultCatalogName
	}
	if c.defaultDB == "" {
		c.defaultDB = DefaultDatabaseName
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	err := c.write("open catalog", func(tx *catalogTx) error {
		meta := tx.createBucket(metaBucket, "")
		if v := meta.Get([]byte(formatVersionKey)); v != nil {
			ver, err := strconv.Atoi(string(v))
			if err != nil {
				return dataErrf(v, 0, err, "invalid format version")
			}
			if ver > currentFormatVersion {
				return fmt.Errorf("catalog format version %d is newer than supported version %d", ver, currentFormatVersion)
			}
		}
		tx.putRaw(meta, []byte(formatVersionKey), []byte(strconv.Itoa(currentFormatVersion)))
		tx.putRaw(meta, []byte(catalogNameKey), []byte(c.name))
		tx.putRaw(meta, []byte(defaultDatabaseNameKey), []byte(c.defaultDB))

		dbs := tx.createBucket(databasesBucket, "")
		if !tx.has(dbs, []byte(c.defaultDB)) {
			tx.put(dbs, []byte(c.defaultDB), &databaseRecord{})
			c.logger.Info("catalog: created default database", "catalog", c.name, "database", c.defaultDB)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the catalog name.
func (c *Catalog) Name() string {
	return c.name
}

// DefaultDatabase returns the name of the database that always exists.
func (c *Catalog) DefaultDatabase() string {
	return c.defaultDB
}

// Close releases the storage backend. Closing twice is a no-op; any other
// operation after Close fails with ErrCatalog.
func (c *Catalog) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return backendErr(c.name, "close catalog", c.store.Close())
}

func (c *Catalog) read(op string, f func(tx *catalogTx) error) error {
	return c.run(op, false, f)
}

func (c *Catalog) write(op string, f func(tx *catalogTx) error) error {
	return c.run(op, true, f)
}

// run executes f in a fresh storage transaction. Writable transactions are
// committed only if f succeeds and wrote something; everything else is
// rolled back, so a failed operation leaves no trace.
func (c *Catalog) run(op string, writable bool, f func(tx *catalogTx) error) error {
	if c.closed.Load() {
		return backendErr(c.name, op, errCatalogClosed)
	}
	stx, err := c.store.BeginTx(writable)
	if err != nil {
		return backendErr(c.name, op, err)
	}
	defer stx.Rollback()

	tx := &catalogTx{cat: c, stx: stx}
	err = safelyCall(f, tx)
	if err != nil {
		return backendErr(c.name, op, err)
	}
	if writable && tx.written {
		if err := stx.Commit(); err != nil {
			return backendErr(c.name, op, err)
		}
		c.WriteCount.Add(1)
	} else {
		c.ReadCount.Add(1)
	}
	return nil
}

// exists runs a read-only existence check. Existence checks never fail:
// a backend error is logged and reported as absence.
func (c *Catalog) exists(op string, f func(tx *catalogTx) bool) bool {
	var found bool
	err := c.read(op, func(tx *catalogTx) error {
		found = f(tx)
		return nil
	})
	if err != nil {
		c.logger.Warn("catalog: existence check failed", "catalog", c.name, "op", op, "err", err)
		return false
	}
	return found
}

func (c *Catalog) logMutation(op string, attrs ...any) {
	if !c.verbose {
		return
	}
	c.logger.Debug("catalog: "+op, append([]any{"catalog", c.name, "op", op}, attrs...)...)
}
