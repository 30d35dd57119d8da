// Package config builds a fully wired simplepublish.Service from declarative
// server configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/simplepub/simple-publish/pkg/simplepublish"
	memoryrepo "github.com/simplepub/simple-publish/pkg/simplepublish/repo/memory"
	postgresrepo "github.com/simplepub/simple-publish/pkg/simplepublish/repo/postgres"
	sqliterepo "github.com/simplepub/simple-publish/pkg/simplepublish/repo/sqlite"
	fsstorage "github.com/simplepub/simple-publish/pkg/simplepublish/storage/fs"
	memorystorage "github.com/simplepub/simple-publish/pkg/simplepublish/storage/memory"
	s3storage "github.com/simplepub/simple-publish/pkg/simplepublish/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		StorageType:  "memory",
		SQLitePath:   "./data/posts.db",
		FSBaseDir:    "./data/blobs",
	}
}

// ServerConfig represents server configuration for the publishing service.
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// AdminToken is the shared secret required on admin routes.
	AdminToken string

	// Database configuration
	DatabaseType string // "memory", "sqlite", "postgres"
	DatabaseURL  string // postgres connection string
	SQLitePath   string // sqlite database file

	// Storage configuration
	StorageType string // "memory", "fs", "s3"
	FSBaseDir   string
	S3          S3Config
}

// S3Config holds the credentials and addressing for an S3-compatible store.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required when using sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.FSBaseDir == "" {
			return errors.New("fs_base_dir is required when using fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// BuildService creates a Service instance from the server configuration.
func (c *ServerConfig) BuildService(logger *slog.Logger) (simplepublish.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	return simplepublish.New(
		simplepublish.WithRepository(repo),
		simplepublish.WithBlobStore(store),
		simplepublish.WithLogger(logger),
	)
}

// buildRepository creates a Repository based on the configuration.
func (c *ServerConfig) buildRepository() (simplepublish.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memoryrepo.New(), nil
	case "sqlite":
		return sqliterepo.New(c.SQLitePath)
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return postgresrepo.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildBlobStore creates a BlobStore based on the configuration.
func (c *ServerConfig) buildBlobStore() (simplepublish.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.FSBaseDir})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}

// PingPostgres verifies connectivity to Postgres before the server starts.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}

	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
