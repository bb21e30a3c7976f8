package storage

import (
	"context"
	"sync"
)

type MemoryStorage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		slots: make(map[string][]byte),
	}
}

func (s *MemoryStorage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.slots[key]
	if !exists {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStorage) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
