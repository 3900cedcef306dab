package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// StoreType represents the kind of document store.
type StoreType string

const (
	// StoreTypeFile stores documents as files in a local directory.
	StoreTypeFile StoreType = "file"
	// StoreTypePostgres stores documents in a PostgreSQL table.
	StoreTypePostgres StoreType = "postgres"
	// StoreTypeS3 stores documents in an S3-compatible bucket.
	StoreTypeS3 StoreType = "s3"
)

// PostgresConfig holds the connection settings for the postgres store.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// StoreConfig holds configuration for creating a document store.
type StoreConfig struct {
	Type     StoreType      // Type of store to create
	Dir      string         // Document directory (file store)
	Postgres PostgresConfig // Connection settings (postgres store)
	S3       S3Config       // Connection settings (s3 store)
	Logger   *slog.Logger   // Logger for the store
}

// NewStore creates a document store based on the provided configuration.
// Stores backed by a server are connected and their schema or bucket prepared
// before they are returned.
func NewStore(ctx context.Context, config StoreConfig) (Interface, error) {
	switch config.Type {
	case StoreTypeFile:
		return newFileStore(config)
	case StoreTypePostgres:
		return newPostgresStore(ctx, config)
	case StoreTypeS3:
		return newS3Store(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

func newFileStore(config StoreConfig) (Interface, error) {
	if config.Dir == "" {
		return nil, errors.New("document directory is required for file store")
	}

	return NewFileRepository(config.Dir, config.Logger), nil
}

func newPostgresStore(ctx context.Context, config StoreConfig) (Interface, error) {
	pgc := config.Postgres
	if pgc.Host == "" || pgc.Name == "" {
		return nil, errors.New("database host and name are required for postgres store")
	}

	pool, err := NewDatabase(ctx, pgc.Host, pgc.Port, pgc.User, pgc.Password, pgc.Name)
	if err != nil {
		return nil, err
	}

	repo := NewRepository(pool, config.Logger)
	if err = repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	return repo, nil
}

func newS3Store(ctx context.Context, config StoreConfig) (Interface, error) {
	if config.S3.Bucket == "" {
		return nil, errors.New("bucket is required for s3 store")
	}

	client, err := NewS3Client(config.S3)
	if err != nil {
		return nil, err
	}

	repo := NewS3Repository(client, config.S3.Bucket, config.S3.Prefix, config.Logger)
	if err = repo.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}
