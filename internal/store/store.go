// Package store provides the durable key-value port backing order state.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store defines the durable key-value operations used for order state.
// Writes are whole-record replacements; there are no transactions or TTLs.
type Store interface {
	// Get retrieves the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any existing value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key, if any.
	Delete(ctx context.Context, key string) error

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
