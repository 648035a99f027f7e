// Package kv provides the key-value JSON document boundary the configuration
// store persists through. The engine never assumes a particular database
// engine: documents are opaque JSON blobs addressed by string keys.
package kv

import (
	"context"
	"encoding/json"
)

// Store reads and writes JSON documents by key.
type Store interface {
	// Read returns the document stored under key, or def when the key has
	// never been written.
	Read(ctx context.Context, key string, def json.RawMessage) (json.RawMessage, error)

	// Write stores the document under key, replacing any previous value.
	Write(ctx context.Context, key string, doc json.RawMessage) error

	// Close releases resources held by the store.
	Close() error
}
