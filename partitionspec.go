package catalog

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// SpecEntry is one key=value pair of a PartitionSpec.
type SpecEntry struct {
	Key   string `msgpack:"k" yaml:"key"`
	Value string `msgpack:"v" yaml:"value"`
}

// PartitionSpec maps partition key columns to values. Values are opaque
// strings compared by equality.
//
// A full spec names exactly the partition keys of its table and identifies
// one partition. A partial spec names any subset of them and is used to
// filter listings.
//
// Entries keep the order they were given in. That order only affects
// String; Equal and Contains treat a spec as a set of pairs.
type PartitionSpec []SpecEntry

// Spec builds a PartitionSpec from alternating keys and values:
//
//	Spec("second", "bob", "third", "2000")
func Spec(kv ...string) PartitionSpec {
	if len(kv)%2 != 0 {
		panic(fmt.Errorf("Spec: odd number of arguments %d", len(kv)))
	}
	spec := make(PartitionSpec, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		spec = spec.With(kv[i], kv[i+1])
	}
	return spec
}

// SpecFromMap builds a PartitionSpec with entries sorted by key.
func SpecFromMap(m map[string]string) PartitionSpec {
	spec := make(PartitionSpec, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		spec = append(spec, SpecEntry{k, m[k]})
	}
	return spec
}

// With returns a copy of spec with key set to value. An existing entry for
// key keeps its position.
func (spec PartitionSpec) With(key, value string) PartitionSpec {
	out := slices.Clone(spec)
	for i, e := range out {
		if e.Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, SpecEntry{key, value})
}

// Get returns the value of key.
func (spec PartitionSpec) Get(key string) (string, bool) {
	for _, e := range spec {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in entry order.
func (spec PartitionSpec) Keys() []string {
	keys := make([]string, len(spec))
	for i, e := range spec {
		keys[i] = e.Key
	}
	return keys
}

// Map returns the spec as a map.
func (spec PartitionSpec) Map() map[string]string {
	m := make(map[string]string, len(spec))
	for _, e := range spec {
		m[e.Key] = e.Value
	}
	return m
}

// Equal reports whether both specs hold the same set of key=value pairs.
// This is the identity match used to find a partition.
func (spec PartitionSpec) Equal(other PartitionSpec) bool {
	if len(spec) != len(other) || spec.hasDuplicateKeys() || other.hasDuplicateKeys() {
		return false
	}
	return spec.Contains(other)
}

// Contains reports whether every pair of partial is present in spec with an
// equal value. An empty partial spec is contained in every spec.
func (spec PartitionSpec) Contains(partial PartitionSpec) bool {
	for _, e := range partial {
		if v, ok := spec.Get(e.Key); !ok || v != e.Value {
			return false
		}
	}
	return true
}

// MatchesKeys reports whether the keys of spec are exactly the given
// partition keys: same cardinality, same names, each named once.
func (spec PartitionSpec) MatchesKeys(partitionKeys []string) bool {
	if len(spec) != len(partitionKeys) || spec.hasDuplicateKeys() {
		return false
	}
	for _, k := range partitionKeys {
		if _, ok := spec.Get(k); !ok {
			return false
		}
	}
	return true
}

func (spec PartitionSpec) hasDuplicateKeys() bool {
	for i, e := range spec {
		for _, f := range spec[i+1:] {
			if e.Key == f.Key {
				return true
			}
		}
	}
	return false
}

// String renders the spec as CatalogPartitionSpec{k1=v1, k2=v2}.
func (spec PartitionSpec) String() string {
	var buf strings.Builder
	buf.WriteString("CatalogPartitionSpec{")
	for i, e := range spec {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(e.Key)
		buf.WriteByte('=')
		buf.WriteString(e.Value)
	}
	buf.WriteByte('}')
	return buf.String()
}

// canonicalKey encodes the pairs sorted by key as a tuple. Specs that are
// Equal have equal canonical keys.
func (spec PartitionSpec) canonicalKey() []byte {
	sorted := slices.SortedFunc(slices.Values(spec), func(a, b SpecEntry) int {
		return cmp.Compare(a.Key, b.Key)
	})
	tup := make(tuple, 0, 2*len(sorted))
	for _, e := range sorted {
		tup = append(tup, []byte(e.Key), []byte(e.Value))
	}
	return tup.encode(nil)
}

// specFromCanonicalKey is the inverse of canonicalKey.
func specFromCanonicalKey(key []byte) (PartitionSpec, error) {
	tup, err := decodeTuple(key)
	if err != nil {
		return nil, err
	}
	if len(tup)%2 != 0 {
		return nil, dataErrf(key, 0, nil, "canonical spec has odd number of components %d", len(tup))
	}
	spec := make(PartitionSpec, 0, len(tup)/2)
	for i := 0; i < len(tup); i += 2 {
		spec = append(spec, SpecEntry{string(tup[i]), string(tup[i+1])})
	}
	return spec, nil
}

// ParseSpecEntries parses "key=value" arguments into a spec.
func ParseSpecEntries(args []string) (PartitionSpec, error) {
	var spec PartitionSpec
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: partition spec entry %q, wanted key=value", ErrInvalidIdentifier, arg)
		}
		spec = spec.With(k, v)
	}
	return spec, nil
}

func formatKeys(keys []string) string {
	return "[" + strings.Join(keys, ", ") + "]"
}
