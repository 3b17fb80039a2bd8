package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/andreyvit/catalog"
)

func newDatabasesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(opts, cmd, func(cat *catalog.Catalog) error {
				names, err := cat.ListDatabases()
				if err != nil {
					return err
				}
				return newFormatter(opts, cmd.OutOrStdout()).Names(names)
			})
		},
	}
}

func newCreateDatabaseCommand(opts *RootOptions) *cobra.Command {
	var comment string
	var props []string
	var ifNotExists bool

	cmd := &cobra.Command{
		Use:   "create-database <name>",
		Short: "Create a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			properties, err := parseProperties(props)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --property", err)
			}
			db := &catalog.Database{Comment: comment, Properties: properties}
			return withCatalog(opts, cmd, func(cat *catalog.Catalog) error {
				return cat.CreateDatabase(args[0], db, ifNotExists)
			})
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "database comment")
	cmd.Flags().StringArrayVarP(&props, "property", "p", nil, "database property as key=value (repeatable)")
	cmd.Flags().BoolVar(&ifNotExists, "if-not-exists", false, "succeed if the database already exists")
	return cmd
}

// parseProperties parses "key=value" flag values. A later value for the
// same key wins.
func parseProperties(args []string) (catalog.Properties, error) {
	props := catalog.Properties{}
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, errors.Errorf("property %q, wanted key=value", arg)
		}
		props[k] = v
	}
	return props, nil
}

func newDropDatabaseCommand(opts *RootOptions) *cobra.Command {
	var ifExists, cascade bool

	cmd := &cobra.Command{
		Use:   "drop-database <name>",
		Short: "Drop a database",
		Long: `Drop a database. A database holding tables or views is only dropped
with --cascade, which drops its tables, views, partitions and functions too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(opts, cmd, func(cat *catalog.Catalog) error {
				return cat.DropDatabase(args[0], ifExists, cascade)
			})
		},
	}
	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "succeed if the database does not exist")
	cmd.Flags().BoolVar(&cascade, "cascade", false, "drop the database contents too")
	return cmd
}

func newObjectsCommand(opts *RootOptions, use, short string, list func(*catalog.Catalog, string) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [database]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCatalog(opts, cmd, func(cat *catalog.Catalog) error {
				db := cat.DefaultDatabase()
				if len(args) > 0 {
					db = args[0]
				}
				names, err := list(cat, db)
				if err != nil {
					return err
				}
				return newFormatter(opts, cmd.OutOrStdout()).Names(names)
			})
		},
	}
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <database>|<database.object>",
		Short: "Show a database, table or view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(opts, cmd.OutOrStdout())
			return withCatalog(opts, cmd, func(cat *catalog.Catalog) error {
				path, err := catalog.ParseObjectPath(args[0])
				if err != nil {
					db, err := cat.GetDatabase(args[0])
					if err != nil {
						return err
					}
					return out.Database(args[0], db)
				}

				table, err := cat.GetTable(path)
				if err != nil {
					return err
				}
				result := &tableOutput{Path: path.FullName(), Kind: table.Kind(), Table: table}
				if table.Kind() == catalog.KindTable {
					result.Stats, err = cat.GetTableStatistics(path)
					if err != nil {
						return err
					}
				}
				return out.Table(result)
			})
		},
	}
}

func newPartitionsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "partitions <database.table> [key=value...]",
		Short: "List partitions of a table, optionally filtered by a partial spec",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := catalog.ParseObjectPath(args[0])
			if err != nil {
				return err
			}
			partial, err := catalog.ParseSpecEntries(args[1:])
			if err != nil {
				return err
			}
			return withCatalog(opts, cmd, func(cat *catalog.Catalog) error {
				specs, err := cat.ListPartitionsMatching(path, partial)
				if err != nil {
					return err
				}
				return newFormatter(opts, cmd.OutOrStdout()).Specs(specs)
			})
		},
	}
}

func newDumpCommand(opts *RootOptions) *cobra.Command {
	var noStats, noPartitions bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every record of the catalog for debugging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := catalog.DumpAll
			if noStats {
				flags &^= catalog.DumpStats
			}
			if noPartitions {
				flags &^= catalog.DumpPartitions
			}
			return withCatalog(opts, cmd, func(cat *catalog.Catalog) error {
				s, err := cat.Dump(flags)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write([]byte(s))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&noStats, "no-stats", false, "omit statistics")
	cmd.Flags().BoolVar(&noPartitions, "no-partitions", false, "omit partitions")
	return cmd
}
