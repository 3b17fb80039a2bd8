package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/andreyvit/catalog"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Backend    string
	Path       string
	Verbose    bool
	Format     string // "text" | "yaml"
}

var ValidFormats = []string{"text", "yaml"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Inspect and edit a metadata catalog",
		Long: `Inspect and edit a metadata catalog of databases, tables, views,
functions and partitions stored in a bolt or sqlite file.

The catalog is described by a YAML config (--config); --backend and --path
override it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "catalog config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (memory|bolt|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "catalog file for the bolt and sqlite backends")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log catalog mutations")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|yaml)")

	cmd.AddCommand(newDatabasesCommand(opts))
	cmd.AddCommand(newCreateDatabaseCommand(opts))
	cmd.AddCommand(newDropDatabaseCommand(opts))
	cmd.AddCommand(newObjectsCommand(opts, "tables", "List tables and views of a database", (*catalog.Catalog).ListTables))
	cmd.AddCommand(newObjectsCommand(opts, "views", "List views of a database", (*catalog.Catalog).ListViews))
	cmd.AddCommand(newObjectsCommand(opts, "functions", "List functions of a database", (*catalog.Catalog).ListFunctions))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newPartitionsCommand(opts))
	cmd.AddCommand(newDumpCommand(opts))

	return cmd
}

// config resolves the catalog config from the config file and flags.
func (opts *RootOptions) config() (*catalog.Config, error) {
	var cfg *catalog.Config
	var err error
	if opts.ConfigFile != "" {
		cfg, err = catalog.LoadConfigFile(opts.ConfigFile)
	} else {
		cfg, err = catalog.LoadConfig(strings.NewReader(""))
	}
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.Path != "" {
		cfg.Path = opts.Path
	}
	if opts.Verbose {
		cfg.Verbose = true
	}
	return cfg, errors.WithStack(cfg.Validate())
}

// withCatalog opens the configured catalog, runs f and closes it.
func withCatalog(opts *RootOptions, cmd *cobra.Command, f func(cat *catalog.Catalog) error) error {
	cfg, err := opts.config()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	cat, err := catalog.OpenConfig(cfg, logger)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open catalog", err)
	}
	defer cat.Close()

	if err := f(cat); err != nil {
		return err
	}
	logger.Debug("catalogctl: done", "command", cmd.Name(), "reads", cat.ReadCount.Load(), "writes", cat.WriteCount.Load())
	return nil
}
