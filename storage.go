package catalog

import (
	"errors"
	"slices"
)

// ErrBucketNotFound is returned by storageTx.DeleteBucket when the bucket doesn't exist.
var ErrBucketNotFound = errors.New("bucket not found")

// errStorageClosed is returned by backends once Close has been called.
var errStorageClosed = errors.New("storage closed")

// storage represents a key-value storage backend (Bolt, SQLite, in-memory).
type storage interface {
	// BeginTx starts a new transaction. At most one writable transaction
	// is open at any time; BeginTx(true) blocks until the previous one ends.
	BeginTx(writable bool) (storageTx, error)
	// Close closes the storage.
	Close() error
}

// storageTx represents a storage transaction.
type storageTx interface {
	// Writable returns true if this is a writable transaction.
	Writable() bool

	// Bucket returns a bucket. Use sub="" for a root bucket, non-empty for a nested bucket.
	// Returns nil if the bucket doesn't exist.
	Bucket(name, sub string) storageBucket

	// CreateBucket creates a bucket if it doesn't exist.
	// For sub != "", it must also ensure the root bucket exists.
	CreateBucket(name, sub string) (storageBucket, error)

	// DeleteBucket deletes a nested bucket (sub must be non-empty).
	DeleteBucket(name, sub string) error

	// Commit commits the transaction.
	Commit() error

	// Rollback aborts the transaction. It should be safe to call multiple times.
	Rollback() error
}

// storageBucket represents a bucket (sorted key-value collection).
type storageBucket interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(key []byte) []byte

	// Put stores a key-value pair.
	Put(key, value []byte) error

	// Delete removes a key.
	Delete(key []byte) error

	// Cursor returns a cursor for iteration in key order.
	Cursor() storageCursor

	// KeyCount returns the number of keys in the bucket.
	KeyCount() int

	// NextSequence returns a monotonically increasing integer for the bucket.
	// Values are never reused, even after keys are deleted.
	NextSequence() (uint64, error)

	// Sequence returns the current sequence value without incrementing it.
	Sequence() uint64

	// SetSequence overwrites the sequence value.
	SetSequence(v uint64) error
}

// storageCursor iterates over a sorted bucket.
type storageCursor interface {
	// First moves to the first key-value pair.
	First() (key, value []byte)

	// Next moves to the next key-value pair.
	Next() (key, value []byte)
}

// forEach calls f for every key-value pair of buck in key order, stopping
// at the first error.
func forEach(buck storageBucket, f func(k, v []byte) error) error {
	if buck == nil {
		return nil
	}
	c := buck.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if err := f(k, v); err != nil {
			return err
		}
	}
	return nil
}

// copyBucket copies every pair of src into the (created if needed) bucket
// name/sub, carrying over src's sequence.
func copyBucket(tx storageTx, src storageBucket, name, sub string) error {
	if src == nil {
		return nil
	}
	dst, err := tx.CreateBucket(name, sub)
	if err != nil {
		return err
	}
	if err := dst.SetSequence(src.Sequence()); err != nil {
		return err
	}
	return forEach(src, func(k, v []byte) error {
		return dst.Put(slices.Clone(k), slices.Clone(v))
	})
}
