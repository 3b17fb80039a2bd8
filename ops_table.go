package catalog

import (
	"fmt"
	"slices"
	"strings"
)

func invalidObjectPath(catalog string, path ObjectPath) error {
	return newErr(ErrInvalidIdentifier, "Object path %q is not valid in Catalog %s.", path.FullName(), catalog)
}

// partitionsSub names the nested buckets holding the partitions of the table
// at path. Tuple encoding keeps ("a.b", "c") and ("a", "b.c") apart.
func partitionsSub(path ObjectPath) string {
	return string(stringTuple(path.Database, path.Object).encode(nil))
}

func (tx *catalogTx) objects(db string) storageBucket {
	if db == "" {
		return nil
	}
	return tx.bucket(objectsBucket, db)
}

// loadTable returns the record of the table or view at path, or nil.
func (tx *catalogTx) loadTable(path ObjectPath) *tableRecord {
	if !path.valid() {
		return nil
	}
	var rec tableRecord
	if !tx.load(tx.objects(path.Database), unsafeBytesFromString(path.Object), &rec) {
		return nil
	}
	return &rec
}

func (tx *catalogTx) hasTable(path ObjectPath) bool {
	return path.valid() && tx.has(tx.objects(path.Database), unsafeBytesFromString(path.Object))
}

func (tx *catalogTx) putTable(path ObjectPath, rec *tableRecord) {
	tx.put(tx.createBucket(objectsBucket, path.Database), []byte(path.Object), rec)
}

func (tx *catalogTx) dropPartitionBuckets(path ObjectPath) {
	sub := partitionsSub(path)
	tx.deleteBucket(partitionsBucket, sub)
	tx.deleteBucket(partitionSpecsBucket, sub)
}

func (tx *catalogTx) hasPartitions(path ObjectPath) bool {
	parts := tx.bucket(partitionsBucket, partitionsSub(path))
	if parts == nil {
		return false
	}
	k, _ := parts.Cursor().First()
	return k != nil
}

func sameKeySet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, k := range a {
		if !slices.Contains(b, k) {
			return false
		}
	}
	return true
}

// CreateTable stores a table or view at path. The database must exist. If
// the path is taken by a table or view, fails with ErrTableAlreadyExists
// unless ignoreIfExists is set.
func (c *Catalog) CreateTable(path ObjectPath, table BaseTable, ignoreIfExists bool) error {
	if !path.valid() {
		return invalidObjectPath(c.name, path)
	}
	rec, err := newTableRecord(table)
	if err != nil {
		return backendErr(c.name, "create table", err)
	}
	return c.write("create table", func(tx *catalogTx) error {
		if !tx.hasDatabase(path.Database) {
			return databaseNotExist(c.name, path.Database)
		}
		switch resolve(tx.hasTable(path), ignoreIfExists) {
		case noop:
			return nil
		case fail:
			return tableAlreadyExists(c.name, path)
		}
		tx.putTable(path, rec)
		c.logMutation("create table", "path", path.FullName(), "kind", rec.Kind)
		return nil
	})
}

// GetTable returns a copy of the table or view at path: a *Table or *View.
func (c *Catalog) GetTable(path ObjectPath) (BaseTable, error) {
	var result BaseTable
	err := c.read("get table", func(tx *catalogTx) error {
		rec := tx.loadTable(path)
		if rec == nil {
			return tableNotExist(c.name, path)
		}
		var err error
		result, err = rec.baseTable()
		return err
	})
	return result, err
}

// AlterTable replaces the table or view at path. The new value must be of
// the same kind as the stored one, otherwise it fails with ErrCatalog.
// Partition keys can only change while the table has no partitions.
// Statistics of the table are kept.
func (c *Catalog) AlterTable(path ObjectPath, table BaseTable, ignoreIfNotExists bool) error {
	if table == nil {
		return backendErr(c.name, "alter table", fmt.Errorf("nil table"))
	}
	return c.write("alter table", func(tx *catalogTx) error {
		existing := tx.loadTable(path)
		switch resolve(existing == nil, ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return tableNotExist(c.name, path)
		}
		if existing.Kind != table.Kind() {
			return tableKindMismatch(existing.Kind, table.Kind())
		}
		rec, err := newTableRecord(table)
		if err != nil {
			return err
		}
		if !sameKeySet(existing.PartitionKeys, rec.PartitionKeys) && tx.hasPartitions(path) {
			return partitionKeysInUse(c.name, path)
		}
		rec.Stats = existing.Stats
		tx.putTable(path, rec)
		c.logMutation("alter table", "path", path.FullName(), "kind", rec.Kind)
		return nil
	})
}

// DropTable removes the table or view at path along with its partitions.
func (c *Catalog) DropTable(path ObjectPath, ignoreIfNotExists bool) error {
	return c.write("drop table", func(tx *catalogTx) error {
		switch resolve(!tx.hasTable(path), ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return tableNotExist(c.name, path)
		}
		tx.delete(tx.objects(path.Database), []byte(path.Object))
		tx.dropPartitionBuckets(path)
		c.logMutation("drop table", "path", path.FullName())
		return nil
	})
}

// RenameTable moves the table or view at path to newName within the same
// database, together with its partitions and statistics. Fails with
// ErrTableAlreadyExists if anything already lives at the new path.
func (c *Catalog) RenameTable(path ObjectPath, newName string, ignoreIfNotExists bool) error {
	newPath := path.WithObject(newName)
	if !newPath.valid() {
		return invalidObjectPath(c.name, newPath)
	}
	return c.write("rename table", func(tx *catalogTx) error {
		rec := tx.loadTable(path)
		switch resolve(rec == nil, ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return tableNotExist(c.name, path)
		}
		if tx.hasTable(newPath) {
			return tableAlreadyExists(c.name, newPath)
		}

		objects := tx.objects(path.Database)
		tx.put(objects, []byte(newPath.Object), rec)
		tx.delete(objects, []byte(path.Object))
		from, to := partitionsSub(path), partitionsSub(newPath)
		tx.moveBucket(partitionsBucket, from, to)
		tx.moveBucket(partitionSpecsBucket, from, to)
		c.logMutation("rename table", "path", path.FullName(), "new_path", newPath.FullName())
		return nil
	})
}

// TableExists reports whether a table or view lives at path. It never fails.
func (c *Catalog) TableExists(path ObjectPath) bool {
	return c.exists("table exists", func(tx *catalogTx) bool {
		return tx.hasTable(path)
	})
}

// ListTables returns the names of all tables and views of db.
func (c *Catalog) ListTables(db string) ([]string, error) {
	return c.listObjects("list tables", db, "")
}

// ListViews returns the names of the views of db.
func (c *Catalog) ListViews(db string) ([]string, error) {
	return c.listObjects("list views", db, KindView)
}

func (c *Catalog) listObjects(op, db string, kind TableKind) ([]string, error) {
	result := []string{}
	err := c.read(op, func(tx *catalogTx) error {
		if !tx.hasDatabase(db) {
			return databaseNotExist(c.name, db)
		}
		return forEach(tx.objects(db), func(k, v []byte) error {
			if kind != "" {
				var rec tableRecord
				tx.check(decodeRecord(v, &rec))
				if rec.Kind != kind {
					return nil
				}
			}
			result = append(result, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetTableStatistics returns the statistics of the table at path, or
// UnknownStatistics if none were set.
func (c *Catalog) GetTableStatistics(path ObjectPath) (*Statistics, error) {
	var result *Statistics
	err := c.read("get table statistics", func(tx *catalogTx) error {
		rec := tx.loadTable(path)
		if rec == nil {
			return tableNotExist(c.name, path)
		}
		result = statistics(rec.Stats)
		return nil
	})
	return result, err
}

// AlterTableStatistics replaces the statistics of the table at path. Views
// have no statistics.
func (c *Catalog) AlterTableStatistics(path ObjectPath, stats *Statistics, ignoreIfNotExists bool) error {
	if stats == nil {
		return backendErr(c.name, "alter table statistics", fmt.Errorf("nil statistics"))
	}
	return c.write("alter table statistics", func(tx *catalogTx) error {
		rec := tx.loadTable(path)
		switch resolve(rec == nil, ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return tableNotExist(c.name, path)
		}
		if rec.Kind != KindTable {
			return newErr(ErrCatalog, "Cannot alter statistics of %s %s in Catalog %s.", strings.ToLower(string(rec.Kind)), path, c.name)
		}
		rec.Stats = stats.Clone()
		tx.putTable(path, rec)
		c.logMutation("alter table statistics", "path", path.FullName(), "row_count", stats.RowCount)
		return nil
	})
}
