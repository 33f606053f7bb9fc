// Package kv provides the string key-value stores that back the marketplace
// collections. Every collection is written as one blob per key.
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("kv store closed")

// Store is a synchronous get/set-by-key string store.
// SetMany writes all entries atomically.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, entries map[string]string) error
	Close() error
}
