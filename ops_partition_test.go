package catalog

import (
	"fmt"
	"testing"
)

func setupPartitioned(t *testing.T, cat *Catalog) *Table {
	t.Helper()
	table := createPartitionedTable()
	success(t, cat.CreateDatabase(db1, createDb(), false))
	success(t, cat.CreateTable(path1, table, false))
	return table
}

func TestCreatePartition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)

		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{})

		success(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false))

		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{createPartitionSpec()})
		deepEqual(t, must(cat.ListPartitionsMatching(path1, createPartitionSpecSubset())), []PartitionSpec{createPartitionSpec()})
		checkEqual(t, must(cat.GetPartition(path1, createPartitionSpec())), createPartition())

		success(t, cat.CreatePartition(path1, createAnotherPartitionSpec(), createPartition(), false))

		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{createPartitionSpec(), createAnotherPartitionSpec()})
		deepEqual(t, must(cat.ListPartitionsMatching(path1, createPartitionSpecSubset())), []PartitionSpec{createPartitionSpec(), createAnotherPartitionSpec()})
		checkEqual(t, must(cat.GetPartition(path1, createAnotherPartitionSpec())), createPartition())
	})
}

func TestCreatePartition_OrderIsCreationOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)

		var want []PartitionSpec
		for _, v := range []string{"2020", "1999", "2010", "0001", "3000", "2000", "1000", "9999", "5", "10", "11"} {
			spec := Spec("second", "bob", "third", v)
			success(t, cat.CreatePartition(path1, spec, nil, false))
			want = append(want, spec)
		}
		deepEqual(t, must(cat.ListPartitions(path1)), want)

		success(t, cat.DropPartition(path1, want[3], false))
		want = append(want[:3], want[4:]...)
		success(t, cat.CreatePartition(path1, Spec("second", "eve", "third", "1"), nil, false))
		want = append(want, Spec("second", "eve", "third", "1"))
		deepEqual(t, must(cat.ListPartitions(path1)), want)
	})
}

func TestCreatePartition_EntryOrderDoesNotMatter(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)

		reversed := Spec("third", "2000", "second", "bob")
		success(t, cat.CreatePartition(path1, reversed, createPartition(), false))

		deepEqual(t, cat.PartitionExists(path1, createPartitionSpec()), true)
		checkEqual(t, must(cat.GetPartition(path1, createPartitionSpec())), createPartition())
		failure(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false), ErrPartitionAlreadyExists,
			fmt.Sprintf("Partition %s of table db1.t1 in catalog test-catalog already exists.", createPartitionSpec()))

		// listings return the spec as it was created
		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{reversed})
	})
}

func TestCreatePartition_TableNotExist(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		success(t, cat.CreateDatabase(db1, createDb(), false))
		deepEqual(t, cat.TableExists(path1), false)

		failure(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false), ErrTableNotExist,
			"Table (or view) db1.t1 does not exist in Catalog test-catalog.")
	})
}

func TestCreatePartition_TableNotPartitioned(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		success(t, cat.CreateDatabase(db1, createDb(), false))
		success(t, cat.CreateTable(path1, createTable(), false))
		success(t, cat.CreateTable(path4, createView(), false))

		failure(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false), ErrTableNotPartitioned,
			"Table db1.t1 in catalog test-catalog is not partitioned.")
		failure(t, cat.CreatePartition(path4, createPartitionSpec(), createPartition(), true), ErrTableNotPartitioned,
			"Table db1.t3 in catalog test-catalog is not partitioned.")
	})
}

func TestCreatePartition_PartitionSpecInvalid(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		table := setupPartitioned(t, cat)
		writes := cat.WriteCount.Load()

		spec := createInvalidPartitionSpecSubset()
		msg := fmt.Sprintf("PartitionSpec %s does not match partition keys [second, third] of table db1.t1 in catalog test-catalog.", spec)
		deepEqual(t, msg, "PartitionSpec CatalogPartitionSpec{third=2010} does not match partition keys [second, third] of table db1.t1 in catalog test-catalog.")
		deepEqual(t, formatKeys(table.PartitionKeys), "[second, third]")

		failure(t, cat.CreatePartition(path1, spec, createPartition(), false), ErrPartitionSpecInvalid, msg)
		// the ignore flag doesn't cover validation
		failure(t, cat.CreatePartition(path1, spec, createPartition(), true), ErrPartitionSpecInvalid, msg)

		// extra key and wrong key
		failure(t, cat.CreatePartition(path1, createPartitionSpec().With("first", "x"), createPartition(), false), ErrPartitionSpecInvalid, "does not match")
		failure(t, cat.CreatePartition(path1, Spec("second", "bob", "fourth", "2000"), createPartition(), false), ErrPartitionSpecInvalid, "does not match")
		failure(t, cat.CreatePartition(path1, nil, createPartition(), false), ErrPartitionSpecInvalid,
			"PartitionSpec CatalogPartitionSpec{} does not match")

		// nothing was written
		deepEqual(t, cat.WriteCount.Load(), writes)
		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{})
	})
}

func TestCreatePartition_PartitionAlreadyExists(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)
		partition := createPartition()
		success(t, cat.CreatePartition(path1, createPartitionSpec(), partition, false))

		spec := createPartitionSpec()
		failure(t, cat.CreatePartition(path1, spec, createPartition(), false), ErrPartitionAlreadyExists,
			fmt.Sprintf("Partition %s of table db1.t1 in catalog test-catalog already exists.", spec))
	})
}

func TestCreatePartition_PartitionAlreadyExists_ignored(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)

		spec := createPartitionSpec()
		success(t, cat.CreatePartition(path1, spec, createPartition(), false))
		success(t, cat.CreatePartition(path1, spec, &Partition{Comment: "other"}, true))

		checkEqual(t, must(cat.GetPartition(path1, spec)), createPartition())
		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{spec})
	})
}

func TestDropPartition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)
		success(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false))

		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{createPartitionSpec()})

		success(t, cat.DropPartition(path1, createPartitionSpec(), false))

		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{})

		// can be created again
		success(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false))
		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{createPartitionSpec()})
	})
}

// unresolvablePartitions sets up a catalog where path1 is missing, path3
// is not partitioned, path4 is a view, and path2 is partitioned without
// the partition addressed by createPartitionSpec.
func unresolvablePartitions(t *testing.T, cat *Catalog) []struct {
	name string
	path ObjectPath
	spec PartitionSpec
} {
	success(t, cat.CreateDatabase(db1, createDb(), false))
	success(t, cat.CreateDatabase(db2, createDb(), false))
	success(t, cat.CreateTable(path3, createTable(), false))
	success(t, cat.CreateTable(path4, createView(), false))
	success(t, cat.CreateTable(path2, createPartitionedTable(), false))
	success(t, cat.CreatePartition(path2, createAnotherPartitionSpec(), createPartition(), false))

	return []struct {
		name string
		path ObjectPath
		spec PartitionSpec
	}{
		{"table not exist", path1, createPartitionSpec()},
		{"database not exist", nonExistDbPath, createPartitionSpec()},
		{"table not partitioned", path3, createPartitionSpec()},
		{"view", path4, createPartitionSpec()},
		{"spec invalid", path2, createInvalidPartitionSpecSubset()},
		{"spec size not equal", path2, createAnotherPartitionSpec().With("first", "x")},
		{"partition not exist", path2, createPartitionSpec()},
	}
}

func TestDropPartition_Unresolvable(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		for _, c := range unresolvablePartitions(t, cat) {
			t.Run(c.name, func(t *testing.T) {
				failure(t, cat.DropPartition(c.path, c.spec, false), ErrPartitionNotExist,
					fmt.Sprintf("Partition %s of table %s in catalog test-catalog does not exist.", c.spec, c.path.FullName()))
				success(t, cat.DropPartition(c.path, c.spec, true))
			})
		}
		deepEqual(t, must(cat.ListPartitions(path2)), []PartitionSpec{createAnotherPartitionSpec()})
	})
}

func TestAlterPartition(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)
		success(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false))
		success(t, cat.CreatePartition(path1, createAnotherPartitionSpec(), createPartition(), false))

		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{createPartitionSpec(), createAnotherPartitionSpec()})
		cp := must(cat.GetPartition(path1, createPartitionSpec()))
		checkEqual(t, cp, createPartition())
		if _, ok := cp.Properties["k"]; ok {
			t.Fatalf("** unexpected property k")
		}

		another := &Partition{Properties: batchProperties(), Comment: "altered"}
		another.Properties["k"] = "v"
		success(t, cat.AlterPartition(path1, createPartitionSpec(), another, false))

		// position in the listing is kept
		deepEqual(t, must(cat.ListPartitions(path1)), []PartitionSpec{createPartitionSpec(), createAnotherPartitionSpec()})
		cp = must(cat.GetPartition(path1, createPartitionSpec()))
		checkEqual(t, cp, another)
		deepEqual(t, cp.Properties["k"], "v")
	})
}

func TestAlterPartition_Unresolvable(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		for _, c := range unresolvablePartitions(t, cat) {
			t.Run(c.name, func(t *testing.T) {
				failure(t, cat.AlterPartition(c.path, c.spec, createPartition(), false), ErrPartitionNotExist,
					fmt.Sprintf("Partition %s of table %s in catalog test-catalog does not exist.", c.spec, c.path.FullName()))
				success(t, cat.AlterPartition(c.path, c.spec, createPartition(), true))
				deepEqual(t, cat.PartitionExists(c.path, c.spec), false)
			})
		}
	})
}

func TestGetPartition_Unresolvable(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		for _, c := range unresolvablePartitions(t, cat) {
			t.Run(c.name, func(t *testing.T) {
				_, err := cat.GetPartition(c.path, c.spec)
				failure(t, err, ErrPartitionNotExist,
					fmt.Sprintf("Partition %s of table %s in catalog test-catalog does not exist.", c.spec, c.path.FullName()))
				_, err = cat.GetPartitionStatistics(c.path, c.spec)
				failure(t, err, ErrPartitionNotExist, "does not exist")
			})
		}
	})
}

func TestPartitionExists(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)
		success(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false))

		deepEqual(t, cat.PartitionExists(path1, createPartitionSpec()), true)
		deepEqual(t, cat.PartitionExists(path1, createPartitionSpecSubset()), false)
		deepEqual(t, cat.PartitionExists(path1, createAnotherPartitionSpec()), false)
		deepEqual(t, cat.PartitionExists(path3, createPartitionSpec()), false)
		deepEqual(t, cat.PartitionExists(nonExistDbPath, createPartitionSpec()), false)
	})
}

func TestListPartitionPartialSpec(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)
		success(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false))
		success(t, cat.CreatePartition(path1, createAnotherPartitionSpec(), createPartition(), false))

		deepEqual(t, must(cat.ListPartitionsMatching(path1, createPartitionSpecSubset())),
			[]PartitionSpec{createPartitionSpec(), createAnotherPartitionSpec()})
		deepEqual(t, must(cat.ListPartitionsMatching(path1, createAnotherPartitionSpecSubset())),
			[]PartitionSpec{createPartitionSpec()})
		deepEqual(t, must(cat.ListPartitionsMatching(path1, PartitionSpec{})),
			[]PartitionSpec{createPartitionSpec(), createAnotherPartitionSpec()})
		deepEqual(t, must(cat.ListPartitionsMatching(path1, createAnotherPartitionSpec())),
			[]PartitionSpec{createAnotherPartitionSpec()})

		// filters are not validated against the partition keys
		deepEqual(t, must(cat.ListPartitionsMatching(path1, Spec("first", "x"))), []PartitionSpec{})
		deepEqual(t, must(cat.ListPartitionsMatching(path1, Spec("second", "alice"))), []PartitionSpec{})
	})
}

func TestListPartitions_TableErrors(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		success(t, cat.CreateDatabase(db1, createDb(), false))
		success(t, cat.CreateTable(path3, createTable(), false))

		_, err := cat.ListPartitions(path1)
		failure(t, err, ErrTableNotExist, "Table (or view) db1.t1 does not exist in Catalog test-catalog.")
		_, err = cat.ListPartitionsMatching(path3, createPartitionSpecSubset())
		failure(t, err, ErrTableNotPartitioned, "Table db1.t2 in catalog test-catalog is not partitioned.")
	})
}

func TestPartitionStatistics(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		setupPartitioned(t, cat)
		spec := createPartitionSpec()
		success(t, cat.CreatePartition(path1, spec, createPartition(), false))

		checkEqual(t, must(cat.GetPartitionStatistics(path1, spec)), UnknownStatistics())

		stats := &Statistics{RowCount: 1000, FileCount: 3, TotalSize: 4096, RawDataSize: 8192}
		success(t, cat.AlterPartitionStatistics(path1, spec, stats, false))
		checkEqual(t, must(cat.GetPartitionStatistics(path1, spec)), stats)

		// altering the partition keeps its statistics
		success(t, cat.AlterPartition(path1, spec, &Partition{Comment: "new"}, false))
		checkEqual(t, must(cat.GetPartitionStatistics(path1, spec)), stats)

		// table statistics are separate
		checkEqual(t, must(cat.GetTableStatistics(path1)), UnknownStatistics())

		other := createAnotherPartitionSpec()
		failure(t, cat.AlterPartitionStatistics(path1, other, stats, false), ErrPartitionNotExist,
			fmt.Sprintf("Partition %s of table db1.t1 in catalog test-catalog does not exist.", other))
		success(t, cat.AlterPartitionStatistics(path1, other, stats, true))
		deepEqual(t, cat.PartitionExists(path1, other), false)
	})
}

func TestAlterTable_PartitionKeysInUse(t *testing.T) {
	forEachBackend(t, func(t *testing.T, cat *Catalog) {
		table := setupPartitioned(t, cat)
		success(t, cat.CreatePartition(path1, createPartitionSpec(), createPartition(), false))

		const msg = "Cannot change partition keys of table db1.t1 in Catalog test-catalog while it has partitions."
		changed := createPartitionedTable()
		changed.PartitionKeys = []string{"first"}
		failure(t, cat.AlterTable(path1, changed, false), ErrCatalog, msg)
		failure(t, cat.AlterTable(path1, createTable(), false), ErrCatalog, msg)
		checkEqual(t, getTable(t, cat, path1), table)

		// Same key set in another order, other attributes changed.
		reordered := createAnotherPartitionedTable()
		reordered.PartitionKeys = []string{"third", "second"}
		success(t, cat.AlterTable(path1, reordered, false))
		checkEqual(t, getTable(t, cat, path1), reordered)

		// Every listed partition stays addressable.
		for _, spec := range must(cat.ListPartitions(path1)) {
			deepEqual(t, cat.PartitionExists(path1, spec), true)
		}

		success(t, cat.DropPartition(path1, createPartitionSpec(), false))
		success(t, cat.AlterTable(path1, changed, false))
		checkEqual(t, getTable(t, cat, path1), changed)
		success(t, cat.AlterTable(path1, createTable(), false))
		checkEqual(t, getTable(t, cat, path1), createTable())
	})
}
