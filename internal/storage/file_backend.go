package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	fileFormatVersion = "1"
	lockTimeout       = 3 * time.Second
	lockRetry         = 100 * time.Millisecond
)

var ErrLockTimeout = errors.New("storage: could not acquire file lock")

// FileBackend keeps every key in a single JSON document guarded by a
// sibling .lock file. The lock is held for one Get or Set at a time, so the
// document is never torn. A read followed by a write is not atomic across
// processes; the store assumes a single process owns the data file.
type FileBackend struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	closed bool
	now    func() time.Time
}

type fileData struct {
	Entries  map[string]string `json:"entries"`
	Metadata fileMetadata      `json:"metadata"`
}

type fileMetadata struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false, ErrClosed
	}

	unlock, err := b.acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	data, err := b.load()
	if err != nil {
		return nil, false, err
	}
	value, ok := data.Entries[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (b *FileBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	unlock, err := b.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := b.load()
	if err != nil {
		return err
	}
	now := b.now().UTC()
	if data.Metadata.CreatedAt.IsZero() {
		data.Metadata.CreatedAt = now
	}
	data.Metadata.Version = fileFormatVersion
	data.Metadata.UpdatedAt = now
	data.Entries[key] = string(value)
	return b.save(data)
}

func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *FileBackend) acquire(ctx context.Context) (func(), error) {
	if dir := filepath.Dir(b.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := b.lock.TryLockContext(lockCtx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	return func() { _ = b.lock.Unlock() }, nil
}

// load treats a missing or empty file as an empty store.
func (b *FileBackend) load() (*fileData, error) {
	data := &fileData{Entries: map[string]string{}}
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return data, nil
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}
	if data.Entries == nil {
		data.Entries = map[string]string{}
	}
	return data, nil
}

func (b *FileBackend) save(data *fileData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", b.path, err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
