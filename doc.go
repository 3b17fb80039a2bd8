/*
Package catalog implements a metadata catalog: a namespace of databases, each
holding tables, views, user-defined functions and, for partitioned tables,
partitions. The catalog stores descriptors only; it never reads table data
or runs functions.

Every operation is a single call that either completes or fails with an
*Error whose Kind is one of the Err* sentinels. Mutations take an ignore
flag that turns an existence conflict (creating something that exists,
altering or dropping something that doesn't) into a successful no-op.
Ignore flags never suppress validation: a malformed partition spec fails
even with ignoreIfExists set.

# Partitions

A partitioned table declares partition keys. A partition is identified by
its table and a full spec that names exactly those keys. Creating a
partition reports precisely what is wrong with the request
(ErrTableNotExist, ErrTableNotPartitioned, ErrPartitionSpecInvalid,
ErrPartitionAlreadyExists, checked in that order). Get, alter and drop
report any unresolvable spec as ErrPartitionNotExist.

Listing takes a partial spec, any subset of pairs, and returns the full specs
containing all of them in partition creation order.

# Storage

Catalogs live in a bucketed ordered key-value store: in memory, in a Bolt
file or in a SQLite database. Each operation runs in one storage
transaction, so a failed operation leaves nothing behind, and backends allow
one writer at a time.

**Buckets.**

	("meta", "")                   name, default_database, format_version
	("databases", "")              database name => database record
	("objects", db)                object name => table or view record
	("functions", db)              object name => function record
	("partitions", db+table)       sequence => partition record
	("partition_specs", db+table)  canonical spec => sequence

The db+table bucket name is a tuple encoding of the two names.

**Partition order.**
Partitions are keyed by an 8-byte big-endian number taken from the bucket
sequence, so cursor order is creation order. Sequence values are never
reused, and renaming a table carries its sequence over.

**Canonical specs.**
A spec's pairs sorted by key, encoded as a tuple. Equal specs have equal
canonical keys regardless of entry order.

**Tuple encoding.**
Components are concatenated, followed by the lengths of all but the last
one and then the component count, each as a reverse uvarint. Decoding reads
from the end.

**Values** are msgpack-encoded records with sorted map keys.
*/
package catalog
