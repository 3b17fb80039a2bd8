package catalog

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Config describes how to open a catalog. It is usually loaded from YAML:
//
//	name: hive
//	default_database: default
//	backend: bolt
//	path: /var/lib/catalog/catalog.db
type Config struct {
	Name            string `yaml:"name,omitempty"`
	DefaultDatabase string `yaml:"default_database,omitempty"`

	// Backend is one of "memory", "bolt" and "sqlite".
	Backend string `yaml:"backend,omitempty"`

	// Path is the database file of the bolt and sqlite backends.
	Path string `yaml:"path,omitempty"`

	Verbose bool `yaml:"verbose,omitempty"`
}

// LoadConfig parses a YAML configuration and fills in defaults. An empty
// document yields the default configuration: an in-memory catalog.
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to unmarshal catalog config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigFile loads a configuration from the file at path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

func (cfg *Config) applyDefaults() {
	if cfg.Name == "" {
		cfg.Name = DefaultCatalogName
	}
	if cfg.DefaultDatabase == "" {
		cfg.DefaultDatabase = DefaultDatabaseName
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
}

// Validate checks that the backend is known and has a path if it needs one.
func (cfg *Config) Validate() error {
	switch cfg.Backend {
	case BackendMemory:
		return nil
	case BackendBolt, BackendSQLite:
		if cfg.Path == "" {
			return errors.Errorf("catalog backend %q requires a path", cfg.Backend)
		}
		return nil
	default:
		return errors.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}

// OpenConfig opens the catalog described by cfg. Missing fields take their
// defaults; logger may be nil.
func OpenConfig(cfg *Config, logger *slog.Logger) (*Catalog, error) {
	c := *cfg
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opt := Options{
		Name:            c.Name,
		DefaultDatabase: c.DefaultDatabase,
		Logger:          logger,
		Verbose:         c.Verbose,
	}
	switch c.Backend {
	case BackendBolt:
		return OpenBolt(c.Path, opt)
	case BackendSQLite:
		return OpenSQLite(c.Path, opt)
	default:
		return NewInMemory(opt), nil
	}
}
