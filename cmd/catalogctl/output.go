package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andreyvit/catalog"
)

// OutputFormatter renders command results as plain text or YAML.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// Names prints one name per line, or a YAML list.
func (f *OutputFormatter) Names(names []string) error {
	if f.Format == "yaml" {
		return f.yaml(names)
	}
	for _, name := range names {
		fmt.Fprintln(f.Writer, name)
	}
	return nil
}

func (f *OutputFormatter) Specs(specs []catalog.PartitionSpec) error {
	if f.Format == "yaml" {
		out := make([]map[string]string, len(specs))
		for i, spec := range specs {
			out[i] = spec.Map()
		}
		return f.yaml(out)
	}
	for _, spec := range specs {
		var buf strings.Builder
		for i, e := range spec {
			if i > 0 {
				buf.WriteByte('/')
			}
			buf.WriteString(e.Key)
			buf.WriteByte('=')
			buf.WriteString(e.Value)
		}
		fmt.Fprintln(f.Writer, buf.String())
	}
	return nil
}

type tableOutput struct {
	Path  string              `yaml:"path"`
	Kind  catalog.TableKind   `yaml:"kind"`
	Table catalog.BaseTable   `yaml:"table"`
	Stats *catalog.Statistics `yaml:"statistics,omitempty"`
}

func (f *OutputFormatter) Table(out *tableOutput) error {
	if f.Format == "yaml" {
		return f.yaml(out)
	}
	w := f.Writer
	fmt.Fprintf(w, "%s %s\n", out.Kind, out.Path)
	if c := out.Table.TableComment(); c != "" {
		fmt.Fprintf(w, "  comment: %s\n", c)
	}
	for _, col := range out.Table.TableSchema() {
		fmt.Fprintf(w, "  column %s %s\n", col.Name, col.Type)
	}
	switch t := out.Table.(type) {
	case *catalog.Table:
		if t.IsPartitioned() {
			fmt.Fprintf(w, "  partitioned by %s\n", strings.Join(t.PartitionKeys, ", "))
		}
	case *catalog.View:
		fmt.Fprintf(w, "  query: %s\n", t.OriginalQuery)
	}
	printProperties(w, out.Table.TableProperties())
	if s := out.Stats; s != nil {
		fmt.Fprintf(w, "  rows=%d files=%d size=%d raw_size=%d\n", s.RowCount, s.FileCount, s.TotalSize, s.RawDataSize)
	}
	return nil
}

func (f *OutputFormatter) Database(name string, db *catalog.Database) error {
	if f.Format == "yaml" {
		return f.yaml(map[string]*catalog.Database{name: db})
	}
	fmt.Fprintf(f.Writer, "DATABASE %s\n", name)
	if db.Comment != "" {
		fmt.Fprintf(f.Writer, "  comment: %s\n", db.Comment)
	}
	printProperties(f.Writer, db.Properties)
	return nil
}

func printProperties(w io.Writer, props catalog.Properties) {
	for _, k := range slices.Sorted(maps.Keys(props)) {
		fmt.Fprintf(w, "  %s = %s\n", k, props[k])
	}
}

func (f *OutputFormatter) yaml(v any) error {
	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
