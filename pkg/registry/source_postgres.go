// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresSource is a BackendSource backed by a catalogue table in Postgres.
// Connections are pooled and the pool is warmed up eagerly at construction
// time so a misconfigured DSN fails fast at startup rather than on the
// first refresh tick.
type PostgresSource struct {
	pool *sql.DB
}

// NewPostgresSource opens a connection pool against dsn and waits for it to
// become reachable, retrying for up to a minute.
func NewPostgresSource(dsn string) (*PostgresSource, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres source: open: %w", err)
	}
	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(5 * time.Minute)

	s := &PostgresSource{pool: pool}
	if err := s.waitReady(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresSource) waitReady() error {
	var lastErr error
	for i := 0; i < 30; i++ {
		if lastErr = s.pool.Ping(); lastErr == nil {
			return nil
		}
		time.Sleep(2 * time.Second)
	}
	return fmt.Errorf("postgres source: unreachable after 60s: %w", lastErr)
}

// List implements BackendSource, reading the full current catalogue.
func (s *PostgresSource) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.QueryContext(ctx, `
		SELECT name, tag, version, endpoint
		FROM mcp_backends
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres source: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tag, version sql.NullString
		if err := rows.Scan(&e.Name, &tag, &version, &e.Endpoint); err != nil {
			return nil, fmt.Errorf("postgres source: scan: %w", err)
		}
		e.Tag = tag.String
		e.Version = version.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying connection pool.
func (s *PostgresSource) Close() error {
	return s.pool.Close()
}
