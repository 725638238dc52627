// Package config loads colonywork settings from a YAML file with
// COLONYWORK_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Archive drivers.
const (
	ArchiveFilesystem = "fs"
	ArchiveMemory     = "memory"
	ArchiveS3         = "s3"
)

// Config is the root of the configuration file.
type Config struct {
	Storage Storage `yaml:"storage"`
	Archive Archive `yaml:"archive"`
	Metrics Metrics `yaml:"metrics"`
	Log     Log     `yaml:"log"`
	Colony  Colony  `yaml:"colony"`
}

// Storage selects the record store backend.
type Storage struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`
}

// Archive selects where colony archives are written.
type Archive struct {
	Driver string `yaml:"driver"`
	FSRoot string `yaml:"fs_root,omitempty"`
	S3     S3     `yaml:"s3,omitempty"`
}

// S3 holds S3 / MinIO connection settings.
type S3 struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// Metrics configures the Prometheus collectors.
type Metrics struct {
	Namespace string `yaml:"namespace"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Colony describes the colony the command line host simulates.
type Colony struct {
	ID       string           `yaml:"id"`
	Citizens []Citizen        `yaml:"citizens,omitempty"`
	Orders   []map[string]any `yaml:"orders,omitempty"`
}

// Citizen is one roster entry. An empty ID is derived from the colony id and name.
type Citizen struct {
	ID    string `yaml:"id,omitempty"`
	Name  string `yaml:"name"`
	Job   string `yaml:"job"`
	Level int    `yaml:"level"`
	Busy  bool   `yaml:"busy,omitempty"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Storage: Storage{Driver: StorageSQLite, SQLitePath: "colonywork.db"},
		Archive: Archive{Driver: ArchiveFilesystem, FSRoot: "./archives"},
		Metrics: Metrics{Namespace: "colonywork"},
		Log:     Log{Level: "info", Format: "text"},
		Colony:  Colony{ID: "default"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path) // #nosec G304 -- operator supplied config path
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decode(raw, &cfg); err != nil {
			return Config{}, err
		}
	}
	ApplyEnv(&cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg with any COLONYWORK_* variables reported by lookup.
//
//	COLONYWORK_STORAGE_DRIVER      memory|sqlite|postgres
//	COLONYWORK_SQLITE_PATH         sqlite file path
//	COLONYWORK_POSTGRES_DSN        postgres DSN
//	COLONYWORK_ARCHIVE_DRIVER      fs|memory|s3
//	COLONYWORK_ARCHIVE_FS_ROOT     archive directory for fs
//	COLONYWORK_ARCHIVE_S3_BUCKET   bucket for s3
//	COLONYWORK_ARCHIVE_S3_REGION   region for s3
//	COLONYWORK_ARCHIVE_S3_ENDPOINT custom endpoint (MinIO)
//	COLONYWORK_ARCHIVE_S3_PATH_STYLE true|false
//	COLONYWORK_LOG_LEVEL           debug|info|warn|error
//	COLONYWORK_LOG_FORMAT          text|json
//	COLONYWORK_COLONY_ID           colony to simulate
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	set("COLONYWORK_STORAGE_DRIVER", &cfg.Storage.Driver)
	set("COLONYWORK_SQLITE_PATH", &cfg.Storage.SQLitePath)
	set("COLONYWORK_POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	set("COLONYWORK_ARCHIVE_DRIVER", &cfg.Archive.Driver)
	set("COLONYWORK_ARCHIVE_FS_ROOT", &cfg.Archive.FSRoot)
	set("COLONYWORK_ARCHIVE_S3_BUCKET", &cfg.Archive.S3.Bucket)
	set("COLONYWORK_ARCHIVE_S3_REGION", &cfg.Archive.S3.Region)
	set("COLONYWORK_ARCHIVE_S3_ENDPOINT", &cfg.Archive.S3.Endpoint)
	set("COLONYWORK_LOG_LEVEL", &cfg.Log.Level)
	set("COLONYWORK_LOG_FORMAT", &cfg.Log.Format)
	set("COLONYWORK_COLONY_ID", &cfg.Colony.ID)
	if v, ok := lookup("COLONYWORK_ARCHIVE_S3_PATH_STYLE"); ok && v != "" {
		cfg.Archive.S3.PathStyle = strings.EqualFold(v, "true")
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Archive.Driver {
	case ArchiveFilesystem, ArchiveMemory:
	case ArchiveS3:
		if c.Archive.S3.Bucket == "" {
			return errors.New("archive.s3.bucket required for s3 driver")
		}
	default:
		return fmt.Errorf("unknown archive driver %q", c.Archive.Driver)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if strings.TrimSpace(c.Colony.ID) == "" {
		return errors.New("colony.id required")
	}
	if strings.Contains(c.Colony.ID, "/") {
		return fmt.Errorf("colony.id %q must not contain '/'", c.Colony.ID)
	}
	for i, citizen := range c.Colony.Citizens {
		if citizen.Name == "" {
			return fmt.Errorf("colony.citizens[%d]: name required", i)
		}
		if citizen.Level < 0 {
			return fmt.Errorf("colony.citizens[%d]: negative level", i)
		}
	}
	return nil
}
