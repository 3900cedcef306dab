package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of pgxpool.Pool used by Repository.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Repository stores collection documents in a PostgreSQL table.
type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// ParseDatabaseConfig builds the pool configuration for the given connection settings.
// Credentials are escaped, so they may contain URL delimiters.
func ParseDatabaseConfig(host, port, user, password, name string) (*pgxpool.Config, error) {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: "sslmode=disable",
	}

	config, err := pgxpool.ParseConfig(dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	return config, nil
}

// NewDatabase opens a connection pool to PostgreSQL and verifies it with a ping.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	config, err := ParseDatabaseConfig(host, port, user, password, name)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the documents table if it does not exist yet.
// The document column is json, not jsonb, so the stored text is returned unchanged.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS town_collections (
			name       TEXT PRIMARY KEY,
			document   JSON NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create town_collections table: %w", err)
	}

	return nil
}

// Put inserts the document or replaces the one stored under the same name.
// It returns the table-qualified document name as its location.
func (r *Repository) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	query := `
		INSERT INTO town_collections (name, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET
			document = EXCLUDED.document,
			updated_at = now();
	`

	if _, err := r.db.Exec(ctx, query, name, string(data)); err != nil {
		return "", fmt.Errorf("failed to upsert document: %w", err)
	}

	r.log.DebugContext(ctx, "Document stored in database", "name", name)

	return "town_collections/" + name, nil
}

// Get returns the stored text of the named document.
func (r *Repository) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	query := `
		SELECT document::text
		FROM town_collections
		WHERE name = $1;
	`

	var document string
	err := r.db.QueryRow(ctx, query, name).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return []byte(document), nil
}

// List returns the names of all stored documents ordered by name.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM town_collections
		ORDER BY name ASC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query document names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if errScan := rows.Scan(&name); errScan != nil {
			return nil, fmt.Errorf("failed to scan document name: %w", errScan)
		}
		names = append(names, name)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}
	slices.Sort(names)

	return names, nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	r.db.Close()
}
