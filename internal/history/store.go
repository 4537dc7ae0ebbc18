// Package history persists bootstrap run summaries between process
// lifetimes. It is a plain key-value collaborator: the scheduler reads one
// key at startup (the tuner) and writes it once when the run completes.
package history

import "context"

// SummaryKey is the well-known key under which the last run's summary is stored.
const SummaryKey = "bootstrap/last_run"

// Store defines the key-value persistence layer.
type Store interface {
	// Get returns the value for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources.
	Close() error
}
