package catalog

import "fmt"

// Records are what the catalog keeps in buckets. Public descriptors are
// converted to and from them at the operation boundary.

type databaseRecord struct {
	Comment    string     `msgpack:"c,omitempty"`
	Properties Properties `msgpack:"p,omitempty"`
}

func newDatabaseRecord(d *Database) *databaseRecord {
	return &databaseRecord{Comment: d.Comment, Properties: d.Properties.Clone()}
}

func (r *databaseRecord) database() *Database {
	return &Database{Comment: r.Comment, Properties: r.Properties.Clone()}
}

// tableRecord stores both tables and views, discriminated by Kind.
type tableRecord struct {
	Kind          TableKind   `msgpack:"kind"`
	Schema        Schema      `msgpack:"schema,omitempty"`
	Properties    Properties  `msgpack:"p,omitempty"`
	Comment       string      `msgpack:"c,omitempty"`
	PartitionKeys []string    `msgpack:"pk,omitempty"`
	OriginalQuery string      `msgpack:"oq,omitempty"`
	ExpandedQuery string      `msgpack:"eq,omitempty"`
	Stats         *Statistics `msgpack:"stats,omitempty"`
}

func newTableRecord(t BaseTable) (*tableRecord, error) {
	switch t := t.(type) {
	case *Table:
		if t == nil {
			return nil, fmt.Errorf("nil table")
		}
		if k, dup := duplicateKey(t.PartitionKeys); dup {
			return nil, fmt.Errorf("duplicate partition key %q", k)
		}
		c := t.Clone()
		return &tableRecord{
			Kind:          KindTable,
			Schema:        c.Schema,
			Properties:    c.Properties,
			Comment:       c.Comment,
			PartitionKeys: c.PartitionKeys,
		}, nil
	case *View:
		if t == nil {
			return nil, fmt.Errorf("nil table")
		}
		c := t.Clone()
		return &tableRecord{
			Kind:          KindView,
			Schema:        c.Schema,
			Properties:    c.Properties,
			Comment:       c.Comment,
			OriginalQuery: c.OriginalQuery,
			ExpandedQuery: c.ExpandedQuery,
		}, nil
	case nil:
		return nil, fmt.Errorf("nil table")
	default:
		return nil, fmt.Errorf("unsupported table kind %q (%T)", t.Kind(), t)
	}
}

func duplicateKey(keys []string) (string, bool) {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return k, true
		}
		seen[k] = true
	}
	return "", false
}

func (r *tableRecord) isPartitioned() bool {
	return r.Kind == KindTable && len(r.PartitionKeys) > 0
}

func (r *tableRecord) baseTable() (BaseTable, error) {
	switch r.Kind {
	case KindTable:
		t := &Table{
			Schema:        r.Schema,
			Properties:    r.Properties,
			Comment:       r.Comment,
			PartitionKeys: r.PartitionKeys,
		}
		return t.Clone(), nil
	case KindView:
		v := &View{
			Schema:        r.Schema,
			Properties:    r.Properties,
			Comment:       r.Comment,
			OriginalQuery: r.OriginalQuery,
			ExpandedQuery: r.ExpandedQuery,
		}
		return v.Clone(), nil
	default:
		return nil, fmt.Errorf("stored object has unknown kind %q", r.Kind)
	}
}

type functionRecord struct {
	ClassName  string       `msgpack:"cls"`
	Kind       FunctionKind `msgpack:"kind,omitempty"`
	Properties Properties   `msgpack:"p,omitempty"`
}

func newFunctionRecord(f *Function) *functionRecord {
	return &functionRecord{ClassName: f.ClassName, Kind: f.EffectiveKind(), Properties: f.Properties.Clone()}
}

func (r *functionRecord) function() *Function {
	return &Function{ClassName: r.ClassName, Kind: r.Kind, Properties: r.Properties.Clone()}
}

// partitionRecord carries the full spec so listings can be served from
// the partitions bucket alone.
type partitionRecord struct {
	Spec       PartitionSpec `msgpack:"spec"`
	Properties Properties    `msgpack:"p,omitempty"`
	Comment    string        `msgpack:"c,omitempty"`
	Stats      *Statistics   `msgpack:"stats,omitempty"`
}

func (r *partitionRecord) partition() *Partition {
	return &Partition{Properties: r.Properties.Clone(), Comment: r.Comment}
}

// statistics returns a copy of stats, or UnknownStatistics if none are set.
func statistics(stats *Statistics) *Statistics {
	if stats == nil {
		return UnknownStatistics()
	}
	return stats.Clone()
}
