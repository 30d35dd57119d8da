package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// WithEnv applies environment variable overrides using the provided prefix.
//
// Environment variable mapping:
//
//	PORT        - Server port (default: "8080")
//	ENVIRONMENT - Runtime environment (default: "development")
//	ADMIN_TOKEN - Shared secret required on admin routes
//
//	DATABASE_URL - One of:
//	               "memory" or empty   - in-memory repository (default)
//	               "sqlite:///path.db" - SQLite database file
//	               "postgresql://..."  - PostgreSQL connection string
//
//	STORAGE_URL  - One of:
//	               "memory://" or empty             - in-memory blobs (default)
//	               "file:///path/to/data"           - filesystem blobs
//	               "s3://bucket?region=&endpoint="  - S3-compatible blobs
//	               S3 credentials come from AWS_ACCESS_KEY_ID and
//	               AWS_SECRET_ACCESS_KEY.
func WithEnv(prefix string) Option {
	return func(c *ServerConfig) error {
		if v, ok := lookupEnv(prefix, "PORT"); ok && v != "" {
			c.Port = v
		}
		if v, ok := lookupEnv(prefix, "ENVIRONMENT"); ok && v != "" {
			c.Environment = v
		}
		if v, ok := lookupEnv(prefix, "ADMIN_TOKEN"); ok && v != "" {
			c.AdminToken = v
		}

		if err := applyDatabaseEnv(prefix, c); err != nil {
			return err
		}

		return applyStorageEnv(prefix, c)
	}
}

func applyDatabaseEnv(prefix string, c *ServerConfig) error {
	dbURL, ok := lookupEnv(prefix, "DATABASE_URL")
	if !ok {
		return nil
	}
	return WithDatabaseURL(dbURL)(c)
}

func applyStorageEnv(prefix string, c *ServerConfig) error {
	storageURL, ok := lookupEnv(prefix, "STORAGE_URL")
	if !ok {
		return nil
	}
	return WithStorageURL(storageURL)(c)
}

// WithDatabaseURL selects the repository from a connection URL. An empty
// string or "memory" keeps the in-memory default.
func WithDatabaseURL(dbURL string) Option {
	return func(c *ServerConfig) error {
		if dbURL == "" || dbURL == "memory" {
			return nil
		}

		switch {
		case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
			c.DatabaseType = "postgres"
			c.DatabaseURL = dbURL
		case strings.HasPrefix(dbURL, "sqlite://"):
			path := strings.TrimPrefix(dbURL, "sqlite://")
			if path == "" {
				return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
			}
			c.DatabaseType = "sqlite"
			c.SQLitePath = path
		default:
			return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'sqlite://...', or 'postgresql://...')", dbURL)
		}

		return nil
	}
}

// WithStorageURL selects the blob store from a storage URL. An empty string
// or "memory://" keeps the in-memory default.
func WithStorageURL(storageURL string) Option {
	return func(c *ServerConfig) error {
		if storageURL == "" || storageURL == "memory" || storageURL == "memory://" {
			return nil
		}

		switch {
		case strings.HasPrefix(storageURL, "file://"):
			path := strings.TrimPrefix(storageURL, "file://")
			if path == "" {
				return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
			}
			c.StorageType = "fs"
			c.FSBaseDir = path
			return nil

		case strings.HasPrefix(storageURL, "s3://"):
			return applyS3Storage(storageURL, c)
		}

		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
	}
}

// applyS3Storage configures S3 storage from a URL of the form
// s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true
func applyS3Storage(rawURL string, c *ServerConfig) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}

	s3 := S3Config{
		Bucket: parsed.Host,
		Region: parsed.Query().Get("region"),
	}
	if s3.Region == "" {
		s3.Region = "us-east-1"
	}
	s3.Endpoint = parsed.Query().Get("endpoint")
	if v := parsed.Query().Get("path_style"); v != "" {
		pathStyle, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
		}
		s3.UsePathStyle = pathStyle
	}

	if v, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok && v != "" {
		s3.AccessKeyID = v
	}
	if v, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok && v != "" {
		s3.SecretAccessKey = v
	}
	if v, ok := os.LookupEnv("AWS_REGION"); ok && v != "" {
		s3.Region = v
	}

	c.StorageType = "s3"
	c.S3 = s3
	return nil
}

func lookupEnv(prefix, key string) (string, bool) {
	return os.LookupEnv(prefix + key)
}
