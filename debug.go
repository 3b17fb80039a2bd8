package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpDatabases = DumpFlags(1 << iota)
	DumpObjects
	DumpFunctions
	DumpPartitions
	DumpStats

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the whole catalog as text for debugging. Records that fail
// to decode are reported inline rather than aborting the dump.
func (c *Catalog) Dump(f DumpFlags) (string, error) {
	var buf strings.Builder
	err := c.read("dump", func(tx *catalogTx) error {
		fmt.Fprintln(&buf, rpadf('=', "== catalog %s (default database %s) ", c.name, c.defaultDB))
		return forEach(tx.databases(), func(k, v []byte) error {
			tx.dumpDatabase(&buf, f, string(k), v)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (tx *catalogTx) dumpDatabase(w *strings.Builder, f DumpFlags, db string, v []byte) {
	if f.Contains(DumpDatabases) {
		var rec databaseRecord
		if err := decodeRecord(v, &rec); err != nil {
			fmt.Fprintf(w, "%s = ** ERROR: %v\n", db, err)
		} else {
			fmt.Fprintf(w, "%s = %s\n", db, loggable(rec))
		}
	}

	if f.Contains(DumpObjects) {
		var pos int
		tx.check(forEach(tx.objects(db), func(k, v []byte) error {
			pos++
			if pos == 1 {
				fmt.Fprintln(w, dumpSep2)
			}
			path := NewObjectPath(db, string(k))
			var rec tableRecord
			if err := decodeRecord(v, &rec); err != nil {
				fmt.Fprintf(w, "%s = ** ERROR: %v\n", path, err)
				return nil
			}
			fmt.Fprintf(w, "%s = %s\n", path, loggable(rec))
			if f.Contains(DumpPartitions) && rec.isPartitioned() {
				tx.dumpPartitions(w, f, path)
			}
			return nil
		}))
	}

	if f.Contains(DumpFunctions) {
		tx.check(forEach(tx.functions(db), func(k, v []byte) error {
			var rec functionRecord
			if err := decodeRecord(v, &rec); err != nil {
				fmt.Fprintf(w, "%s.%s() = ** ERROR: %v\n", db, k, err)
			} else {
				fmt.Fprintf(w, "%s.%s() = %s\n", db, k, loggable(rec))
			}
			return nil
		}))
	}
	fmt.Fprintln(w, dumpSep1)
}

func (tx *catalogTx) dumpPartitions(w *strings.Builder, f DumpFlags, path ObjectPath) {
	tx.check(forEach(tx.bucket(partitionsBucket, partitionsSub(path)), func(k, v []byte) error {
		seq, err := decodeSeqKey(k)
		if err != nil {
			fmt.Fprintf(w, "%s.%s = ** ERROR: %v\n", path, hexstr(k), err)
			return nil
		}
		var rec partitionRecord
		if err := decodeRecord(v, &rec); err != nil {
			fmt.Fprintf(w, "%s.%d = ** ERROR: %v\n", path, seq, err)
			return nil
		}
		stats := rec.Stats
		rec.Stats = nil
		fmt.Fprintf(w, "%s.%d %s = %s\n", path, seq, rec.Spec, loggable(rec))
		if f.Contains(DumpStats) && stats != nil {
			fmt.Fprintf(w, "%s.%d.stats = %s\n", path, seq, loggable(stats))
		}
		return nil
	}))

	tx.check(forEach(tx.bucket(partitionSpecsBucket, partitionsSub(path)), func(k, v []byte) error {
		spec, err := specFromCanonicalKey(k)
		if err != nil {
			fmt.Fprintf(w, "%s index %s = ** ERROR: %v\n", path, hexstr(k), err)
			return nil
		}
		seq, err := decodeSeqKey(v)
		if err != nil {
			fmt.Fprintf(w, "%s index %s = ** ERROR: %v\n", path, spec, err)
			return nil
		}
		fmt.Fprintf(w, "%s index %s => %d\n", path, spec, seq)
		return nil
	}))
}

func loggable(v any) string {
	return string(must(json.Marshal(v)))
}

func rpadf(pad rune, format string, args ...any) string {
	s := fmt.Sprintf(format, args...)
	return rpad(s, 80, pad)
}
