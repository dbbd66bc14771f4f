package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

const DefaultPrefix = "pos_"

// Record is implemented by every persisted type. Upgrade moves an older
// schema forward and rejects records that cannot be trusted.
type Record interface {
	Upgrade() error
}

// recordPtr lets generic helpers call Upgrade on *T while handing out T.
type recordPtr[T any] interface {
	*T
	Record
}

// Store is a namespaced JSON store. Failures never reach callers: reads
// fall back to the caller's default and writes are logged and dropped.
type Store struct {
	backend Backend
	prefix  string
	logger  *zap.Logger

	// serialises read-modify-write of lists within this process
	listMu sync.Mutex
}

func New(backend Backend, prefix string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		prefix:  prefix,
		logger:  logger.Named("kvstore"),
	}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) getRaw(ctx context.Context, key string) ([]byte, bool) {
	raw, err := s.backend.Get(ctx, s.key(key))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Failed to read key", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return raw, true
}

// Set serialises value under key.
func (s *Store) Set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Failed to encode value", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, s.key(key), raw); err != nil {
		s.logger.Error("Failed to write key", zap.String("key", key), zap.Error(err))
	}
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, s.key(key)); err != nil {
		s.logger.Error("Failed to remove key", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Load returns the record stored at key, or def when the key is missing,
// the JSON is corrupt, or the record fails its upgrade checks.
func Load[T any, PT recordPtr[T]](ctx context.Context, s *Store, key string, def T) T {
	raw, ok := s.getRaw(ctx, key)
	if !ok {
		return def
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logger.Warn("Corrupt record, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	if err := PT(&value).Upgrade(); err != nil {
		s.logger.Warn("Rejected record, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return value
}

// LoadList returns the list stored at key. Elements that fail to decode or
// upgrade are skipped and logged; a corrupt list reads as empty.
func LoadList[T any, PT recordPtr[T]](ctx context.Context, s *Store, key string) []T {
	elems := s.rawList(ctx, key)
	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		var value T
		if err := json.Unmarshal(elem, &value); err != nil {
			s.logger.Warn("Skipping corrupt list element", zap.String("key", key), zap.Int("index", i), zap.Error(err))
			continue
		}
		if err := PT(&value).Upgrade(); err != nil {
			s.logger.Warn("Skipping rejected list element", zap.String("key", key), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, value)
	}
	return out
}

func (s *Store) rawList(ctx context.Context, key string) []json.RawMessage {
	raw, ok := s.getRaw(ctx, key)
	if !ok {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		s.logger.Warn("Corrupt list, treating as empty", zap.String("key", key), zap.Error(err))
		return nil
	}
	return elems
}

// Append adds item to the end of the list at key and returns the new list.
// Elements this version cannot read are written back untouched.
func Append[T any, PT recordPtr[T]](ctx context.Context, s *Store, key string, item T) []T {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	elems := s.rawList(ctx, key)
	encoded, err := json.Marshal(item)
	if err != nil {
		s.logger.Error("Failed to encode list element", zap.String("key", key), zap.Error(err))
		return LoadList[T, PT](ctx, s, key)
	}
	elems = append(elems, encoded)
	s.Set(ctx, key, elems)
	return LoadList[T, PT](ctx, s, key)
}

// Upsert replaces the element whose id matches item's, or appends it.
func Upsert[T any, PT recordPtr[T]](ctx context.Context, s *Store, key string, item T, id func(T) string) []T {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	encoded, err := json.Marshal(item)
	if err != nil {
		s.logger.Error("Failed to encode list element", zap.String("key", key), zap.Error(err))
		return LoadList[T, PT](ctx, s, key)
	}

	target := id(item)
	elems := s.rawList(ctx, key)
	replaced := false
	for i, elem := range elems {
		var existing T
		if err := json.Unmarshal(elem, &existing); err != nil {
			continue
		}
		if id(existing) == target {
			elems[i] = encoded
			replaced = true
			break
		}
	}
	if !replaced {
		elems = append(elems, encoded)
	}
	s.Set(ctx, key, elems)
	return LoadList[T, PT](ctx, s, key)
}

// DeleteByID removes every element whose id equals target.
func DeleteByID[T any, PT recordPtr[T]](ctx context.Context, s *Store, key, target string, id func(T) string) []T {
	s.listMu.Lock()
	defer s.listMu.Unlock()

	elems := s.rawList(ctx, key)
	kept := make([]json.RawMessage, 0, len(elems))
	for _, elem := range elems {
		var existing T
		if err := json.Unmarshal(elem, &existing); err == nil && id(existing) == target {
			continue
		}
		kept = append(kept, elem)
	}
	s.Set(ctx, key, kept)
	return LoadList[T, PT](ctx, s, key)
}
