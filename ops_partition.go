package catalog

import (
	"fmt"
	"slices"
)

// storedPartition is a partition located by table path and full spec.
type storedPartition struct {
	rec    partitionRecord
	seqKey []byte
	parts  storageBucket
	specs  storageBucket
	key    []byte // canonical spec key
}

// findPartition resolves path and spec to a stored partition. A missing
// table, a table that is not partitioned, a spec that doesn't match the
// partition keys and a partition that was never created are all the same
// to it: nil.
func (tx *catalogTx) findPartition(path ObjectPath, spec PartitionSpec) *storedPartition {
	table := tx.loadTable(path)
	if table == nil || !table.isPartitioned() || !spec.MatchesKeys(table.PartitionKeys) {
		return nil
	}
	sub := partitionsSub(path)
	sp := &storedPartition{
		parts: tx.bucket(partitionsBucket, sub),
		specs: tx.bucket(partitionSpecsBucket, sub),
		key:   spec.canonicalKey(),
	}
	if sp.specs == nil || sp.parts == nil {
		return nil
	}
	sp.seqKey = slices.Clone(sp.specs.Get(sp.key))
	if sp.seqKey == nil || !tx.load(sp.parts, sp.seqKey, &sp.rec) {
		return nil
	}
	return sp
}

// partitionedTable loads the table at path for operations that distinguish
// why a partition cannot be addressed.
func (c *Catalog) partitionedTable(tx *catalogTx, path ObjectPath) (*tableRecord, error) {
	table := tx.loadTable(path)
	if table == nil {
		return nil, tableNotExist(c.name, path)
	}
	if !table.isPartitioned() {
		return nil, tableNotPartitioned(c.name, path)
	}
	return table, nil
}

// CreatePartition adds the partition identified by spec to the table at
// path. Checks run in order: the table exists, it is partitioned, the keys
// of spec are exactly its partition keys, and only then whether the
// partition already exists. ignoreIfExists only affects the last check.
func (c *Catalog) CreatePartition(path ObjectPath, spec PartitionSpec, partition *Partition, ignoreIfExists bool) error {
	if partition == nil {
		partition = &Partition{}
	}
	return c.write("create partition", func(tx *catalogTx) error {
		table, err := c.partitionedTable(tx, path)
		if err != nil {
			return err
		}
		if !spec.MatchesKeys(table.PartitionKeys) {
			return partitionSpecInvalid(c.name, path, table.PartitionKeys, spec)
		}

		sub := partitionsSub(path)
		key := spec.canonicalKey()
		switch resolve(tx.has(tx.bucket(partitionSpecsBucket, sub), key), ignoreIfExists) {
		case noop:
			return nil
		case fail:
			return partitionAlreadyExists(c.name, path, spec)
		}

		parts := tx.createBucket(partitionsBucket, sub)
		seq, err := parts.NextSequence()
		tx.check(err)
		seqKey := appendSeqKey(nil, seq)
		tx.put(parts, seqKey, &partitionRecord{
			Spec:       slices.Clone(spec),
			Properties: partition.Properties.Clone(),
			Comment:    partition.Comment,
		})
		tx.putRaw(tx.createBucket(partitionSpecsBucket, sub), key, seqKey)
		c.logMutation("create partition", "path", path.FullName(), "spec", spec.String(), "seq", seq, hexAttr("key", key))
		return nil
	})
}

// GetPartition returns a copy of the partition identified by spec. Any
// reason the partition cannot be found, including a missing or
// unpartitioned table and a malformed spec, is ErrPartitionNotExist.
func (c *Catalog) GetPartition(path ObjectPath, spec PartitionSpec) (*Partition, error) {
	var result *Partition
	err := c.read("get partition", func(tx *catalogTx) error {
		sp := tx.findPartition(path, spec)
		if sp == nil {
			return partitionNotExist(c.name, path, spec)
		}
		result = sp.rec.partition()
		return nil
	})
	return result, err
}

// AlterPartition replaces the descriptor of the partition identified by
// spec, keeping its position in listings and its statistics.
func (c *Catalog) AlterPartition(path ObjectPath, spec PartitionSpec, partition *Partition, ignoreIfNotExists bool) error {
	if partition == nil {
		partition = &Partition{}
	}
	return c.write("alter partition", func(tx *catalogTx) error {
		sp := tx.findPartition(path, spec)
		switch resolve(sp == nil, ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return partitionNotExist(c.name, path, spec)
		}
		sp.rec.Properties = partition.Properties.Clone()
		sp.rec.Comment = partition.Comment
		tx.put(sp.parts, sp.seqKey, &sp.rec)
		c.logMutation("alter partition", "path", path.FullName(), "spec", spec.String())
		return nil
	})
}

func (c *Catalog) DropPartition(path ObjectPath, spec PartitionSpec, ignoreIfNotExists bool) error {
	return c.write("drop partition", func(tx *catalogTx) error {
		sp := tx.findPartition(path, spec)
		switch resolve(sp == nil, ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return partitionNotExist(c.name, path, spec)
		}
		tx.delete(sp.parts, sp.seqKey)
		tx.delete(sp.specs, sp.key)
		c.logMutation("drop partition", "path", path.FullName(), "spec", spec.String())
		return nil
	})
}

// PartitionExists never fails.
func (c *Catalog) PartitionExists(path ObjectPath, spec PartitionSpec) bool {
	return c.exists("partition exists", func(tx *catalogTx) bool {
		return tx.findPartition(path, spec) != nil
	})
}

// ListPartitions returns the full specs of all partitions of the table at
// path in creation order.
func (c *Catalog) ListPartitions(path ObjectPath) ([]PartitionSpec, error) {
	return c.ListPartitionsMatching(path, nil)
}

// ListPartitionsMatching returns, in creation order, the full specs that
// contain every pair of partial. partial may name any subset of the
// partition keys, or keys the table doesn't have, in which case nothing
// matches; an empty partial matches all partitions.
func (c *Catalog) ListPartitionsMatching(path ObjectPath, partial PartitionSpec) ([]PartitionSpec, error) {
	result := []PartitionSpec{}
	err := c.read("list partitions", func(tx *catalogTx) error {
		if _, err := c.partitionedTable(tx, path); err != nil {
			return err
		}
		return forEach(tx.bucket(partitionsBucket, partitionsSub(path)), func(k, v []byte) error {
			var rec partitionRecord
			if err := decodeRecord(v, &rec); err != nil {
				return err
			}
			if rec.Spec.Contains(partial) {
				result = append(result, rec.Spec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPartitionStatistics returns the statistics of the partition identified
// by spec, or UnknownStatistics if none were set.
func (c *Catalog) GetPartitionStatistics(path ObjectPath, spec PartitionSpec) (*Statistics, error) {
	var result *Statistics
	err := c.read("get partition statistics", func(tx *catalogTx) error {
		sp := tx.findPartition(path, spec)
		if sp == nil {
			return partitionNotExist(c.name, path, spec)
		}
		result = statistics(sp.rec.Stats)
		return nil
	})
	return result, err
}

func (c *Catalog) AlterPartitionStatistics(path ObjectPath, spec PartitionSpec, stats *Statistics, ignoreIfNotExists bool) error {
	if stats == nil {
		return backendErr(c.name, "alter partition statistics", fmt.Errorf("nil statistics"))
	}
	return c.write("alter partition statistics", func(tx *catalogTx) error {
		sp := tx.findPartition(path, spec)
		switch resolve(sp == nil, ignoreIfNotExists) {
		case noop:
			return nil
		case fail:
			return partitionNotExist(c.name, path, spec)
		}
		sp.rec.Stats = stats.Clone()
		tx.put(sp.parts, sp.seqKey, &sp.rec)
		c.logMutation("alter partition statistics", "path", path.FullName(), "spec", spec.String(), "row_count", stats.RowCount)
		return nil
	})
}
