package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps records in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (b *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	v := make([]byte, len(data))
	copy(v, data)
	b.mu.Lock()
	b.data[key] = v
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	delete(b.data, key)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Name() string { return "memory" }
