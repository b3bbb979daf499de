package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

const maxIDAttempts = 64

type entity interface {
	EntityID() string
}

// loadCollection never fails: an absent key, a backend read error, or
// undecodable JSON all read as an empty collection. Only list and get use it.
func loadCollection[T entity](ctx context.Context, s *Store, key string) []T {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read collection failed", slog.String("key", key), slog.Any("err", err))
		return []T{}
	}
	return decodeCollection[T](s, key, raw, ok)
}

// readCollection loads a collection that is about to be rewritten. A backend
// read error is returned so the caller never persists over data it could not
// see; undecodable JSON still reads as empty.
func readCollection[T entity](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Error("read collection before write failed", slog.String("key", key), slog.Any("err", err))
		return nil, fmt.Errorf("%w: read %s: %w", ErrPersistence, key, err)
	}
	return decodeCollection[T](s, key, raw, ok), nil
}

func decodeCollection[T entity](s *Store, key string, raw []byte, ok bool) []T {
	if !ok || len(raw) == 0 {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Warn("decode collection failed", slog.String("key", key), slog.Any("err", err))
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func saveCollection[T entity](ctx context.Context, s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersistence, key, err)
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		s.logger.Error("persist collection failed", slog.String("key", key), slog.Any("err", err))
		return fmt.Errorf("%w: %s: %w", ErrPersistence, key, err)
	}
	s.logger.Debug("persisted collection", slog.String("key", key), slog.Int("count", len(items)))
	return nil
}

func indexOf[T entity](items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func find[T entity](items []T, id string) (T, error) {
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrNotFound, id)
}

func without[T entity](items []T, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	removed := false
	for _, item := range items {
		if item.EntityID() == id {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

func freshID[T entity](s *Store, items []T) (string, error) {
	for range maxIDAttempts {
		id := s.ids.NewID()
		if id != "" && indexOf(items, id) < 0 {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
