package storage

import (
	"context"
)

// Storage is a durable key-value slot holding one serialized store per key.
type Storage interface {
	// Load returns nil data and a nil error when the key has never been saved.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}
