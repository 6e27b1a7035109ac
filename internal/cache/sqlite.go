package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    txid BLOB PRIMARY KEY,
    raw BLOB NOT NULL
);
`

// SqliteCache stores raw transactions in a local sqlite database.
type SqliteCache struct {
	db *sql.DB
}

// NewSqliteCache opens (and if needed initializes) the database at path.
func NewSqliteCache(path string) (*SqliteCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init schema: %w", err)
	}
	return &SqliteCache{db: db}, nil
}

// SqliteFactory returns a Factory opening the database at path.
func SqliteFactory(path string) Factory {
	return func() (Cache, error) {
		return NewSqliteCache(path)
	}
}

func (c *SqliteCache) GetTransaction(ctx context.Context, txid [32]byte) ([]byte, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx,
		"SELECT raw FROM transactions WHERE txid = ?", txid[:]).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get transaction: %w", err)
	}
	return raw, nil
}

func (c *SqliteCache) PutTransaction(ctx context.Context, txid [32]byte, raw []byte) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO transactions (txid, raw) VALUES (?, ?)", txid[:], raw)
	if err != nil {
		return fmt.Errorf("cache: put transaction: %w", err)
	}
	return nil
}

func (c *SqliteCache) Close() error {
	return c.db.Close()
}
