// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/outpass/lib/sqlitepool"
)

const credentialsSchema = `CREATE TABLE IF NOT EXISTS credentials (
	key   TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
)`

// SQLite stores the record in a single table. SetAll and Clear run in
// one savepoint each.
type SQLite struct {
	pool *sqlitepool.Pool
}

var _ Backend = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, unavailable("creating "+filepath.Dir(path), err)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     path,
		PoolSize: 1,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteTransient(conn, credentialsSchema, nil)
		},
	})
	if err != nil {
		return nil, unavailable("opening "+path, err)
	}
	return &SQLite{pool: pool}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", false, unavailable("get", err)
	}
	defer s.pool.Put(conn)

	var value string
	var present bool
	err = sqlitex.Execute(conn, "SELECT value FROM credentials WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnText(0)
			present = true
			return nil
		},
	})
	if err != nil {
		return "", false, unavailable("get "+key, err)
	}
	return value, present, nil
}

func (s *SQLite) SetAll(ctx context.Context, pairs map[string]string) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return unavailable("set", err)
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)
	for key, value := range pairs {
		execErr := sqlitex.Execute(conn,
			"INSERT INTO credentials (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			&sqlitex.ExecOptions{Args: []any{key, value}})
		if execErr != nil {
			return unavailable(fmt.Sprintf("set %s", key), execErr)
		}
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context, keys ...string) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return unavailable("clear", err)
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)
	for _, key := range keys {
		execErr := sqlitex.Execute(conn, "DELETE FROM credentials WHERE key = ?",
			&sqlitex.ExecOptions{Args: []any{key}})
		if execErr != nil {
			return unavailable("clear "+key, execErr)
		}
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.pool.Close()
}
