package catalog

import (
	"maps"
	"slices"
)

// Properties are free-form string settings attached to every catalog entity.
type Properties map[string]string

// Clone returns a copy that shares nothing with p. A nil map stays nil.
func (p Properties) Clone() Properties {
	return maps.Clone(p)
}

// Equal treats nil and empty as equal.
func (p Properties) Equal(other Properties) bool {
	return maps.Equal(p, other)
}

// DescriptionProperty is the property a table's description is read from.
const DescriptionProperty = "comment"

// Column is one column of a Schema. Type is opaque to the catalog.
type Column struct {
	Name string `msgpack:"n" yaml:"name"`
	Type string `msgpack:"t" yaml:"type"`
}

// Schema is an ordered list of columns.
type Schema []Column

func (s Schema) Equal(other Schema) bool {
	return slices.Equal(s, other)
}

// ColumnNames returns column names in order.
func (s Schema) ColumnNames() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Database describes a database.
type Database struct {
	Properties Properties `yaml:"properties,omitempty"`
	Comment    string     `yaml:"comment,omitempty"`
}

func (d *Database) Clone() *Database {
	return &Database{Properties: d.Properties.Clone(), Comment: d.Comment}
}

// Equal compares properties and comment.
func (d *Database) Equal(other *Database) bool {
	return d.Comment == other.Comment && d.Properties.Equal(other.Properties)
}

// TableKind discriminates the BaseTable variants.
type TableKind string

const (
	KindTable TableKind = "TABLE"
	KindView  TableKind = "VIEW"
)

// BaseTable is implemented by *Table and *View, the two kinds of objects
// that share the table namespace of a database.
type BaseTable interface {
	// Kind is compared on alter: a stored object can only be replaced by
	// one of the same kind.
	Kind() TableKind
	TableSchema() Schema
	TableProperties() Properties
	TableComment() string
	// Description returns the "comment" property, if set.
	Description() (string, bool)
}

// Table is a regular table. It is partitioned iff PartitionKeys is
// non-empty.
type Table struct {
	Schema        Schema     `yaml:"schema"`
	Properties    Properties `yaml:"properties,omitempty"`
	Comment       string     `yaml:"comment,omitempty"`
	PartitionKeys []string   `yaml:"partition_keys,omitempty"`
}

var _ BaseTable = (*Table)(nil)

func (t *Table) Kind() TableKind             { return KindTable }
func (t *Table) TableSchema() Schema         { return t.Schema }
func (t *Table) TableProperties() Properties { return t.Properties }
func (t *Table) TableComment() string        { return t.Comment }

func (t *Table) Description() (string, bool) {
	return description(t.Properties)
}

// IsPartitioned reports whether the table declares partition keys.
func (t *Table) IsPartitioned() bool {
	return len(t.PartitionKeys) > 0
}

func (t *Table) Clone() *Table {
	return &Table{
		Schema:        slices.Clone(t.Schema),
		Properties:    t.Properties.Clone(),
		Comment:       t.Comment,
		PartitionKeys: slices.Clone(t.PartitionKeys),
	}
}

func (t *Table) Equal(other *Table) bool {
	return t.Schema.Equal(other.Schema) &&
		t.Properties.Equal(other.Properties) &&
		t.Comment == other.Comment &&
		slices.Equal(t.PartitionKeys, other.PartitionKeys)
}

// View is a stored query.
type View struct {
	Schema        Schema     `yaml:"schema"`
	Properties    Properties `yaml:"properties,omitempty"`
	Comment       string     `yaml:"comment,omitempty"`
	OriginalQuery string     `yaml:"original_query"`
	ExpandedQuery string     `yaml:"expanded_query"`
}

var _ BaseTable = (*View)(nil)

func (v *View) Kind() TableKind             { return KindView }
func (v *View) TableSchema() Schema         { return v.Schema }
func (v *View) TableProperties() Properties { return v.Properties }
func (v *View) TableComment() string        { return v.Comment }

func (v *View) Description() (string, bool) {
	return description(v.Properties)
}

func (v *View) Clone() *View {
	return &View{
		Schema:        slices.Clone(v.Schema),
		Properties:    v.Properties.Clone(),
		Comment:       v.Comment,
		OriginalQuery: v.OriginalQuery,
		ExpandedQuery: v.ExpandedQuery,
	}
}

func (v *View) Equal(other *View) bool {
	return v.Schema.Equal(other.Schema) &&
		v.Properties.Equal(other.Properties) &&
		v.Comment == other.Comment &&
		v.OriginalQuery == other.OriginalQuery &&
		v.ExpandedQuery == other.ExpandedQuery
}

func description(props Properties) (string, bool) {
	s, ok := props[DescriptionProperty]
	return s, ok
}

// FunctionKind is the language a function is implemented in.
type FunctionKind string

const (
	FunctionJava   FunctionKind = "JAVA"
	FunctionScala  FunctionKind = "SCALA"
	FunctionPython FunctionKind = "PYTHON"
)

// Function is a reference to a user-defined function. The catalog stores
// the class name; it never loads or invokes it.
type Function struct {
	ClassName  string       `yaml:"class_name"`
	Kind       FunctionKind `yaml:"kind,omitempty"`
	Properties Properties   `yaml:"properties,omitempty"`
}

// EffectiveKind returns Kind, defaulting to FunctionJava.
func (f *Function) EffectiveKind() FunctionKind {
	if f.Kind == "" {
		return FunctionJava
	}
	return f.Kind
}

func (f *Function) Clone() *Function {
	return &Function{ClassName: f.ClassName, Kind: f.Kind, Properties: f.Properties.Clone()}
}

func (f *Function) Equal(other *Function) bool {
	return f.ClassName == other.ClassName &&
		f.EffectiveKind() == other.EffectiveKind() &&
		f.Properties.Equal(other.Properties)
}

// Partition describes one partition of a partitioned table. Its identity
// (table path and full spec) is not part of the descriptor.
type Partition struct {
	Properties Properties `yaml:"properties,omitempty"`
	Comment    string     `yaml:"comment,omitempty"`
}

func (p *Partition) Clone() *Partition {
	return &Partition{Properties: p.Properties.Clone(), Comment: p.Comment}
}

func (p *Partition) Equal(other *Partition) bool {
	return p.Comment == other.Comment && p.Properties.Equal(other.Properties)
}

// Statistics are table or partition level statistics. -1 means unknown.
type Statistics struct {
	RowCount    int64      `msgpack:"r" yaml:"row_count"`
	FileCount   int64      `msgpack:"f" yaml:"file_count"`
	TotalSize   int64      `msgpack:"s" yaml:"total_size"`
	RawDataSize int64      `msgpack:"d" yaml:"raw_data_size"`
	Properties  Properties `msgpack:"p,omitempty" yaml:"properties,omitempty"`
}

// UnknownStatistics is what an object reports before statistics are set.
func UnknownStatistics() *Statistics {
	return &Statistics{RowCount: -1, FileCount: -1, TotalSize: -1, RawDataSize: -1}
}

func (s *Statistics) Clone() *Statistics {
	c := *s
	c.Properties = s.Properties.Clone()
	return &c
}

func (s *Statistics) Equal(other *Statistics) bool {
	return s.RowCount == other.RowCount &&
		s.FileCount == other.FileCount &&
		s.TotalSize == other.TotalSize &&
		s.RawDataSize == other.RawDataSize &&
		s.Properties.Equal(other.Properties)
}
