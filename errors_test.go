package catalog

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDataError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := dataErrf([]byte{0xAA, 0xBB}, 1, inner, "oops")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DataError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		s := err.Error()
		if !strings.Contains(s, "oops") || !strings.Contains(s, "inner") || !strings.Contains(s, "(2) aabb") {
			t.Fatalf("err.Error() = %q, wanted message with oops/inner/(2) aabb", s)
		}
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		err := dataErrf(data, 0, nil, "oops")
		s := err.Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
	})
}

func TestError_KindAndCause(t *testing.T) {
	err := databaseNotExist("c", "db")
	deepEqual(t, err.Error(), "Database db does not exist in Catalog c.")
	if !errors.Is(err, ErrDatabaseNotExist) {
		t.Fatalf("errors.Is(%v, ErrDatabaseNotExist) = false", err)
	}
	if errors.Is(err, ErrDatabaseAlreadyExists) {
		t.Fatalf("errors.Is(%v, ErrDatabaseAlreadyExists) = true", err)
	}

	cause := errors.New("disk on fire")
	err = backendErr("c", "create table", cause)
	deepEqual(t, err.Error(), "Failed to create table in catalog c: disk on fire")
	if !errors.Is(err, ErrCatalog) || !errors.Is(err, cause) {
		t.Fatalf("backendErr = %v, wanted ErrCatalog wrapping the cause", err)
	}

	// catalog errors are not wrapped twice
	orig := tableNotExist("c", NewObjectPath("db", "t"))
	deepEqual(t, backendErr("c", "get table", orig), orig)
	deepEqual(t, backendErr("c", "get table", fmt.Errorf("outer: %w", orig)).Error(), "outer: Table (or view) db.t does not exist in Catalog c.")
	deepEqual(t, backendErr("c", "x", nil), nil)
}

func TestError_Messages(t *testing.T) {
	path := NewObjectPath("db1", "t1")
	spec := Spec("second", "bob")
	tests := []struct {
		err  error
		kind error
		msg  string
	}{
		{databaseAlreadyExists("c", "db1"), ErrDatabaseAlreadyExists, "Database db1 already exists in Catalog c."},
		{databaseNotEmpty("c", "db1"), ErrDatabaseNotEmpty, "Database db1 in catalog c is not empty."},
		{tableAlreadyExists("c", path), ErrTableAlreadyExists, "Table (or view) db1.t1 already exists in Catalog c."},
		{tableNotPartitioned("c", path), ErrTableNotPartitioned, "Table db1.t1 in catalog c is not partitioned."},
		{functionAlreadyExists("c", path), ErrFunctionAlreadyExists, "Function db1.t1 already exists in Catalog c."},
		{functionNotExist("c", path), ErrFunctionNotExist, "Function db1.t1 does not exist in Catalog c."},
		{partitionAlreadyExists("c", path, spec), ErrPartitionAlreadyExists, "Partition CatalogPartitionSpec{second=bob} of table db1.t1 in catalog c already exists."},
		{partitionNotExist("c", path, spec), ErrPartitionNotExist, "Partition CatalogPartitionSpec{second=bob} of table db1.t1 in catalog c does not exist."},
		{partitionSpecInvalid("c", path, []string{"second", "third"}, spec), ErrPartitionSpecInvalid, "PartitionSpec CatalogPartitionSpec{second=bob} does not match partition keys [second, third] of table db1.t1 in catalog c."},
		{partitionKeysInUse("c", path), ErrCatalog, "Cannot change partition keys of table db1.t1 in Catalog c while it has partitions."},
		{tableKindMismatch(KindTable, KindView), ErrCatalog, "Table types don't match. Existing table is 'TABLE' and new table is 'VIEW'."},
		{functionKindMismatch(FunctionJava, FunctionPython), ErrCatalog, "Function types don't match. Existing function is 'JAVA' and new function is 'PYTHON'."},
	}
	for _, tt := range tests {
		failure(t, tt.err, tt.kind, tt.msg)
		deepEqual(t, tt.err.Error(), tt.msg)
	}
}

func TestCorruptRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		success(t, cat.CreateDatabase(db1, createDb(), false))
		success(t, cat.write("corrupt", func(tx *catalogTx) error {
			tx.putRaw(tx.databases(), []byte(db1), []byte{0xc1})
			return nil
		}))

		_, err := cat.GetDatabase(db1)
		failure(t, err, ErrCatalog, "Failed to get database in catalog test-catalog")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("** got %v, wanted a wrapped *DataError", err)
		}

		// existence doesn't decode
		deepEqual(t, cat.DatabaseExists(db1), true)

		dump := must(cat.Dump(DumpAll))
		if !strings.Contains(dump, "db1 = ** ERROR") {
			t.Errorf("** dump doesn't report the corrupt record:\n%s", dump)
		}
	})
}

func TestPanicInsideOperation(t *testing.T) {
	cat := NewInMemory(testOptions())
	defer cat.Close()

	err := cat.read("explode", func(tx *catalogTx) error {
		panic("boom")
	})
	failure(t, err, ErrCatalog, "Failed to explode in catalog test-catalog: panic: boom")
	var p panicked
	if !errors.As(err, &p) {
		t.Fatalf("** got %T, wanted to wrap panicked", err)
	}
}
