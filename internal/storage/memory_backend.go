package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in process memory. Setting FailWrites makes
// every Set fail with that error, which is how persistence failures are
// simulated in tests.
type MemoryBackend struct {
	mu         sync.Mutex
	values     map[string][]byte
	writes     int
	FailWrites error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: map[string][]byte{}}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailWrites != nil {
		return b.FailWrites
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	b.values[key] = stored
	b.writes++
	return nil
}

// Writes counts successful Set calls.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *MemoryBackend) Close() error { return nil }
