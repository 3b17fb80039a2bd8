package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS buckets (
	name BLOB NOT NULL,
	sub  BLOB NOT NULL,
	seq  INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (name, sub)
);
CREATE TABLE IF NOT EXISTS kv (
	name BLOB NOT NULL,
	sub  BLOB NOT NULL,
	k    BLOB NOT NULL,
	v    BLOB NOT NULL,
	PRIMARY KEY (name, sub, k)
);
`

// sqliteStorage keeps buckets as rows of a single kv table. It is meant for
// catalogs shared through a SQL metastore file rather than for speed.
//
// Bucket names are bound as blobs: nested bucket names are tuple-encoded
// and may contain any byte.
type sqliteStorage struct {
	db     *sql.DB
	closed atomic.Bool
}

func openSQLiteStorage(path string) (storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite metastore: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite metastore: %w", err)
	}

	// One connection serializes all transactions, which gives us the
	// single-writer guarantee the other backends provide.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply metastore schema: %w", err)
	}
	return &sqliteStorage{db: db}, nil
}

func (s *sqliteStorage) BeginTx(writable bool) (storageTx, error) {
	if s.closed.Load() {
		return nil, errStorageClosed
	}
	stx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	return &sqliteTx{stx: stx, writable: writable}, nil
}

func (s *sqliteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// storageFailure is panicked by backends whose interface methods cannot
// return errors; safelyCall turns it back into the wrapped error.
type storageFailure struct {
	err error
}

func (tx *sqliteTx) check(err error) {
	if err != nil {
		panic(storageFailure{err})
	}
}

type sqliteTx struct {
	stx      *sql.Tx
	writable bool
	done     bool
}

func (tx *sqliteTx) Writable() bool { return tx.writable }

func (tx *sqliteTx) Bucket(name, sub string) storageBucket {
	var one int
	err := tx.stx.QueryRow(`SELECT 1 FROM buckets WHERE name = ? AND sub = ?`, []byte(name), []byte(sub)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	tx.check(err)
	return sqliteBucket{tx: tx, name: []byte(name), sub: []byte(sub)}
}

func (tx *sqliteTx) CreateBucket(name, sub string) (storageBucket, error) {
	if !tx.writable {
		return nil, fmt.Errorf("tx not writable")
	}
	if _, err := tx.stx.Exec(`INSERT OR IGNORE INTO buckets (name, sub) VALUES (?, ?)`, []byte(name), []byte{}); err != nil {
		return nil, err
	}
	if sub != "" {
		if _, err := tx.stx.Exec(`INSERT OR IGNORE INTO buckets (name, sub) VALUES (?, ?)`, []byte(name), []byte(sub)); err != nil {
			return nil, err
		}
	}
	return sqliteBucket{tx: tx, name: []byte(name), sub: []byte(sub)}, nil
}

func (tx *sqliteTx) DeleteBucket(name, sub string) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	if sub == "" {
		return ErrBucketNotFound
	}
	res, err := tx.stx.Exec(`DELETE FROM buckets WHERE name = ? AND sub = ?`, []byte(name), []byte(sub))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrBucketNotFound
	}
	_, err = tx.stx.Exec(`DELETE FROM kv WHERE name = ? AND sub = ?`, []byte(name), []byte(sub))
	return err
}

func (tx *sqliteTx) Commit() error {
	if tx.done {
		return nil
	}
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	tx.done = true
	return tx.stx.Commit()
}

func (tx *sqliteTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	err := tx.stx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

type sqliteBucket struct {
	tx   *sqliteTx
	name []byte
	sub  []byte
}

func (b sqliteBucket) Get(key []byte) []byte {
	var v []byte
	err := b.tx.stx.QueryRow(`SELECT v FROM kv WHERE name = ? AND sub = ? AND k = ?`, b.name, b.sub, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	b.tx.check(err)
	if v == nil {
		v = []byte{}
	}
	return v
}

func (b sqliteBucket) Put(key, value []byte) error {
	if !b.tx.writable {
		return fmt.Errorf("tx not writable")
	}
	if len(key) == 0 {
		return fmt.Errorf("key required")
	}
	if value == nil {
		value = []byte{}
	}
	_, err := b.tx.stx.Exec(`INSERT INTO kv (name, sub, k, v) VALUES (?, ?, ?, ?)
		ON CONFLICT (name, sub, k) DO UPDATE SET v = excluded.v`, b.name, b.sub, key, value)
	return err
}

func (b sqliteBucket) Delete(key []byte) error {
	if !b.tx.writable {
		return fmt.Errorf("tx not writable")
	}
	_, err := b.tx.stx.Exec(`DELETE FROM kv WHERE name = ? AND sub = ? AND k = ?`, b.name, b.sub, key)
	return err
}

// Cursor reads the whole bucket up front; catalogs hold metadata, not data,
// so buckets stay small.
func (b sqliteBucket) Cursor() storageCursor {
	rows, err := b.tx.stx.Query(`SELECT k, v FROM kv WHERE name = ? AND sub = ? ORDER BY k`, b.name, b.sub)
	b.tx.check(err)
	defer rows.Close()

	mb := &memBucket{}
	for rows.Next() {
		var kv memKV
		b.tx.check(rows.Scan(&kv.key, &kv.value))
		mb.items = append(mb.items, kv)
	}
	b.tx.check(rows.Err())
	return &memCursor{b: mb, pos: -1}
}

func (b sqliteBucket) KeyCount() int {
	var n int
	b.tx.check(b.tx.stx.QueryRow(`SELECT COUNT(*) FROM kv WHERE name = ? AND sub = ?`, b.name, b.sub).Scan(&n))
	return n
}

func (b sqliteBucket) NextSequence() (uint64, error) {
	if !b.tx.writable {
		return 0, fmt.Errorf("tx not writable")
	}
	if _, err := b.tx.stx.Exec(`UPDATE buckets SET seq = seq + 1 WHERE name = ? AND sub = ?`, b.name, b.sub); err != nil {
		return 0, err
	}
	return b.Sequence(), nil
}

func (b sqliteBucket) Sequence() uint64 {
	var seq int64
	b.tx.check(b.tx.stx.QueryRow(`SELECT seq FROM buckets WHERE name = ? AND sub = ?`, b.name, b.sub).Scan(&seq))
	return uint64(seq)
}

func (b sqliteBucket) SetSequence(v uint64) error {
	if !b.tx.writable {
		return fmt.Errorf("tx not writable")
	}
	_, err := b.tx.stx.Exec(`UPDATE buckets SET seq = ? WHERE name = ? AND sub = ?`, int64(v), b.name, b.sub)
	return err
}
