package catalog

import "log/slog"

func invalidDatabaseName(catalog string) error {
	return newErr(ErrInvalidIdentifier, "Database name cannot be empty in Catalog %s.", catalog)
}

func (tx *catalogTx) databases() storageBucket {
	return tx.bucket(databasesBucket, "")
}

func (tx *catalogTx) hasDatabase(name string) bool {
	return name != "" && tx.has(tx.databases(), unsafeBytesFromString(name))
}

// CreateDatabase creates database name. If it already exists, fails with
// ErrDatabaseAlreadyExists unless ignoreIfExists is set, in which case the
// stored database is left unchanged.
func (c *Catalog) CreateDatabase(name string, db *Database, ignoreIfExists bool) error {
	if name == "" {
		return invalidDatabaseName(c.name)
	}
	if db == nil {
		db = &Database{}
	}
	return c.write("create database", func(tx *catalogTx) error {
		switch resolve(tx.hasDatabase(name), ignoreIfExists) {
		case noop:
			return nil
		case fail:
			return databaseAlreadyExists(c.name, name)
		}
		tx.put(tx.createBucket(databasesBucket, ""), []byte(name), newDatabaseRecord(db))
		c.logMutation("create database", "database", name)
		return nil
	})
}

// GetDatabase returns a copy of the stored database.
func (c *Catalog) GetDatabase(name string) (*Database, error) {
	var result *Database
	err := c.read("get database", func(tx *catalogTx) error {
		var rec databaseRecord
		if name == "" || !tx.load(tx.databases(), unsafeBytesFromString(name), &rec) {
			return databaseNotExist(c.name, name)
		}
		result = rec.database()
		return nil
	})
	return result, err
}

// AlterDatabase replaces the descriptor of an existing database.
func (c *Catalog) AlterDatabase(name string, db *Database, ignoreIfNotExists bool) error {
	if db == nil {
		db = &Database{}
	}
	return c.write("alter database", func(tx *catalogTx) error {
		switch resolve(!tx.hasDatabase(name), ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return databaseNotExist(c.name, name)
		}
		tx.put(tx.databases(), []byte(name), newDatabaseRecord(db))
		c.logMutation("alter database", "database", name)
		return nil
	})
}

// DropDatabase removes database name and its functions.
//
// A database holding tables or views is not empty: dropping it fails with
// ErrDatabaseNotEmpty even with ignoreIfNotExists, unless cascade is set,
// in which case its tables, views and their partitions go too. The default
// database cannot be dropped.
func (c *Catalog) DropDatabase(name string, ignoreIfNotExists, cascade bool) error {
	return c.write("drop database", func(tx *catalogTx) error {
		switch resolve(!tx.hasDatabase(name), ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return databaseNotExist(c.name, name)
		}
		if name == c.defaultDB {
			return newErr(ErrCatalog, "Cannot drop the default database %s of Catalog %s.", name, c.name)
		}

		objects := tx.bucket(objectsBucket, name)
		if objects != nil && objects.KeyCount() > 0 {
			if !cascade {
				return databaseNotEmpty(c.name, name)
			}
			for _, obj := range tx.keys(objects) {
				tx.dropPartitionBuckets(NewObjectPath(name, obj))
			}
		}
		tx.deleteBucket(objectsBucket, name)
		tx.deleteBucket(functionsBucket, name)
		tx.delete(tx.databases(), []byte(name))
		c.logMutation("drop database", "database", name, slog.Bool("cascade", cascade))
		return nil
	})
}

// DatabaseExists never fails.
func (c *Catalog) DatabaseExists(name string) bool {
	return c.exists("database exists", func(tx *catalogTx) bool {
		return tx.hasDatabase(name)
	})
}

// ListDatabases returns database names in lexicographic order. The default
// database is always present.
func (c *Catalog) ListDatabases() ([]string, error) {
	var result []string
	err := c.read("list databases", func(tx *catalogTx) error {
		result = tx.keys(tx.databases())
		return nil
	})
	return result, err
}
