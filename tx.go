package catalog

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// catalogTx is the storage transaction of a single Catalog operation.
// Storage and decoding failures inside it are panicked as storageFailure
// and surface from Catalog.read/write as ErrCatalog errors.
type catalogTx struct {
	cat     *Catalog
	stx     storageTx
	written bool
}

func (tx *catalogTx) check(err error) {
	if err != nil {
		panic(storageFailure{err})
	}
}

func (tx *catalogTx) bucket(name, sub string) storageBucket {
	return tx.stx.Bucket(name, sub)
}

func (tx *catalogTx) createBucket(name, sub string) storageBucket {
	buck, err := tx.stx.CreateBucket(name, sub)
	tx.check(err)
	tx.written = true
	return buck
}

func (tx *catalogTx) deleteBucket(name, sub string) {
	err := tx.stx.DeleteBucket(name, sub)
	if errors.Is(err, ErrBucketNotFound) {
		return
	}
	tx.check(err)
	tx.written = true
}

// moveBucket relocates a nested bucket, keeping its sequence.
func (tx *catalogTx) moveBucket(name, from, to string) {
	src := tx.bucket(name, from)
	if src == nil {
		return
	}
	tx.check(copyBucket(tx.stx, src, name, to))
	tx.deleteBucket(name, from)
}

// load decodes the record under key into rec, returning false if there is
// no such key (or no such bucket).
func (tx *catalogTx) load(buck storageBucket, key []byte, rec any) bool {
	if buck == nil {
		return false
	}
	v := buck.Get(key)
	if v == nil {
		return false
	}
	tx.check(decodeRecord(v, rec))
	return true
}

func (tx *catalogTx) has(buck storageBucket, key []byte) bool {
	return buck != nil && buck.Get(key) != nil
}

func (tx *catalogTx) put(buck storageBucket, key []byte, rec any) {
	tx.check(buck.Put(key, encodeRecord(nil, rec)))
	tx.written = true
}

func (tx *catalogTx) putRaw(buck storageBucket, key, value []byte) {
	tx.check(buck.Put(key, value))
	tx.written = true
}

func (tx *catalogTx) delete(buck storageBucket, key []byte) {
	if buck == nil {
		return
	}
	tx.check(buck.Delete(key))
	tx.written = true
}

// keys returns all keys of buck as strings, in key order.
func (tx *catalogTx) keys(buck storageBucket) []string {
	var result []string
	tx.check(forEach(buck, func(k, v []byte) error {
		result = append(result, string(k))
		return nil
	}))
	return result
}

type panicked struct {
	reason any
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func safelyCall(fn func(*catalogTx) error, tx *catalogTx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if f, ok := p.(storageFailure); ok {
				err = f.err
			} else {
				err = panicked{p, string(debug.Stack())}
			}
		}
	}()
	return fn(tx)
}
