// Package cache provides the transaction cache backend. Operations receive
// a Factory rather than a live handle: every invocation opens its own cache
// so no connection state is shared across concurrent requests.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the cache holds no entry for a txid.
var ErrNotFound = errors.New("cache: transaction not found")

// Cache stores raw transactions keyed by txid (internal byte order).
type Cache interface {
	GetTransaction(ctx context.Context, txid [32]byte) ([]byte, error)
	PutTransaction(ctx context.Context, txid [32]byte, raw []byte) error
	Close() error
}

// Factory creates a fresh cache handle for a single invocation.
type Factory func() (Cache, error)
