package catalog

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Catalog operation matches exactly
// one of these with errors.Is.
var (
	ErrDatabaseAlreadyExists  = errors.New("database already exists")
	ErrDatabaseNotExist       = errors.New("database does not exist")
	ErrDatabaseNotEmpty       = errors.New("database is not empty")
	ErrTableAlreadyExists     = errors.New("table already exists")
	ErrTableNotExist          = errors.New("table does not exist")
	ErrTableNotPartitioned    = errors.New("table is not partitioned")
	ErrFunctionAlreadyExists  = errors.New("function already exists")
	ErrFunctionNotExist       = errors.New("function does not exist")
	ErrPartitionAlreadyExists = errors.New("partition already exists")
	ErrPartitionNotExist      = errors.New("partition does not exist")
	ErrPartitionSpecInvalid   = errors.New("partition spec is invalid")

	// ErrCatalog covers kind mismatches on alter and backend failures.
	ErrCatalog = errors.New("catalog error")

	// ErrInvalidIdentifier is returned by ParseObjectPath.
	ErrInvalidIdentifier = errors.New("invalid identifier")
)

// Error is the error type returned by Catalog operations. Msg is the
// human-readable message; tools match on it, so its wording is stable.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func newErr(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func databaseAlreadyExists(catalog, db string) error {
	return newErr(ErrDatabaseAlreadyExists, "Database %s already exists in Catalog %s.", db, catalog)
}

func databaseNotExist(catalog, db string) error {
	return newErr(ErrDatabaseNotExist, "Database %s does not exist in Catalog %s.", db, catalog)
}

func databaseNotEmpty(catalog, db string) error {
	return newErr(ErrDatabaseNotEmpty, "Database %s in catalog %s is not empty.", db, catalog)
}

func tableAlreadyExists(catalog string, path ObjectPath) error {
	return newErr(ErrTableAlreadyExists, "Table (or view) %s already exists in Catalog %s.", path, catalog)
}

func tableNotExist(catalog string, path ObjectPath) error {
	return newErr(ErrTableNotExist, "Table (or view) %s does not exist in Catalog %s.", path, catalog)
}

func tableNotPartitioned(catalog string, path ObjectPath) error {
	return newErr(ErrTableNotPartitioned, "Table %s in catalog %s is not partitioned.", path, catalog)
}

func functionAlreadyExists(catalog string, path ObjectPath) error {
	return newErr(ErrFunctionAlreadyExists, "Function %s already exists in Catalog %s.", path, catalog)
}

func functionNotExist(catalog string, path ObjectPath) error {
	return newErr(ErrFunctionNotExist, "Function %s does not exist in Catalog %s.", path, catalog)
}

func partitionAlreadyExists(catalog string, path ObjectPath, spec PartitionSpec) error {
	return newErr(ErrPartitionAlreadyExists, "Partition %s of table %s in catalog %s already exists.", spec, path, catalog)
}

func partitionNotExist(catalog string, path ObjectPath, spec PartitionSpec) error {
	return newErr(ErrPartitionNotExist, "Partition %s of table %s in catalog %s does not exist.", spec, path, catalog)
}

func partitionSpecInvalid(catalog string, path ObjectPath, keys []string, spec PartitionSpec) error {
	return newErr(ErrPartitionSpecInvalid, "PartitionSpec %s does not match partition keys %s of table %s in catalog %s.", spec, formatKeys(keys), path, catalog)
}

func partitionKeysInUse(catalog string, path ObjectPath) error {
	return newErr(ErrCatalog, "Cannot change partition keys of table %s in Catalog %s while it has partitions.", path, catalog)
}

func tableKindMismatch(existing, updated TableKind) error {
	return newErr(ErrCatalog, "Table types don't match. Existing table is '%s' and new table is '%s'.", existing, updated)
}

func functionKindMismatch(existing, updated FunctionKind) error {
	return newErr(ErrCatalog, "Function types don't match. Existing function is '%s' and new function is '%s'.", existing, updated)
}

// backendErr wraps a storage failure. Errors that are already catalog
// errors pass through unchanged.
func backendErr(catalog, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: ErrCatalog, Msg: fmt.Sprintf("Failed to %s in catalog %s", op, catalog), Err: err}
}

// DataError reports a stored record that could not be decoded.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}
