package catalog

import "fmt"

func (tx *catalogTx) functions(db string) storageBucket {
	if db == "" {
		return nil
	}
	return tx.bucket(functionsBucket, db)
}

func (tx *catalogTx) loadFunction(path ObjectPath) *functionRecord {
	if !path.valid() {
		return nil
	}
	var rec functionRecord
	if !tx.load(tx.functions(path.Database), unsafeBytesFromString(path.Object), &rec) {
		return nil
	}
	return &rec
}

func (tx *catalogTx) hasFunction(path ObjectPath) bool {
	return path.valid() && tx.has(tx.functions(path.Database), unsafeBytesFromString(path.Object))
}

func (c *Catalog) CreateFunction(path ObjectPath, fn *Function, ignoreIfExists bool) error {
	if !path.valid() {
		return invalidObjectPath(c.name, path)
	}
	if fn == nil {
		return backendErr(c.name, "create function", fmt.Errorf("nil function"))
	}
	return c.write("create function", func(tx *catalogTx) error {
		if !tx.hasDatabase(path.Database) {
			return databaseNotExist(c.name, path.Database)
		}
		switch resolve(tx.hasFunction(path), ignoreIfExists) {
		case noop:
			return nil
		case fail:
			return functionAlreadyExists(c.name, path)
		}
		tx.put(tx.createBucket(functionsBucket, path.Database), []byte(path.Object), newFunctionRecord(fn))
		c.logMutation("create function", "path", path.FullName(), "class", fn.ClassName)
		return nil
	})
}

func (c *Catalog) GetFunction(path ObjectPath) (*Function, error) {
	var result *Function
	err := c.read("get function", func(tx *catalogTx) error {
		rec := tx.loadFunction(path)
		if rec == nil {
			return functionNotExist(c.name, path)
		}
		result = rec.function()
		return nil
	})
	return result, err
}

// AlterFunction replaces the function at path. The new function must be
// implemented in the same language as the stored one.
func (c *Catalog) AlterFunction(path ObjectPath, fn *Function, ignoreIfNotExists bool) error {
	if fn == nil {
		return backendErr(c.name, "alter function", fmt.Errorf("nil function"))
	}
	return c.write("alter function", func(tx *catalogTx) error {
		existing := tx.loadFunction(path)
		switch resolve(existing == nil, ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return functionNotExist(c.name, path)
		}
		if existing.function().EffectiveKind() != fn.EffectiveKind() {
			return functionKindMismatch(existing.function().EffectiveKind(), fn.EffectiveKind())
		}
		tx.put(tx.functions(path.Database), []byte(path.Object), newFunctionRecord(fn))
		c.logMutation("alter function", "path", path.FullName(), "class", fn.ClassName)
		return nil
	})
}

func (c *Catalog) DropFunction(path ObjectPath, ignoreIfNotExists bool) error {
	return c.write("drop function", func(tx *catalogTx) error {
		switch resolve(!tx.hasFunction(path), ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return functionNotExist(c.name, path)
		}
		tx.delete(tx.functions(path.Database), []byte(path.Object))
		c.logMutation("drop function", "path", path.FullName())
		return nil
	})
}

// FunctionExists never fails.
func (c *Catalog) FunctionExists(path ObjectPath) bool {
	return c.exists("function exists", func(tx *catalogTx) bool {
		return tx.hasFunction(path)
	})
}

// ListFunctions returns the names of the functions of db.
func (c *Catalog) ListFunctions(db string) ([]string, error) {
	result := []string{}
	err := c.read("list functions", func(tx *catalogTx) error {
		if !tx.hasDatabase(db) {
			return databaseNotExist(c.name, db)
		}
		result = append(result, tx.keys(tx.functions(db))...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
