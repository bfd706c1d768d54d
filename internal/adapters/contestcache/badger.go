package contestcache

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/okian/leetlens/internal/domain/model"
)

const keyPrefix = "contest:"

// Option applies a configuration option to the badger store.
type Option func(*badger.Options)

// WithInMemory keeps the database off disk, used in tests.
func WithInMemory() Option {
	return func(o *badger.Options) {
		o.InMemory = true
		o.Dir = ""
		o.ValueDir = ""
	}
}

// BadgerStore implements Store on an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the cache database under dir.
func OpenBadger(dir string, opts ...Option) (*BadgerStore, error) {
	options := badger.DefaultOptions(dir).WithLogger(nil)
	for _, opt := range opts {
		opt(&options)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open contest cache at %s: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close contest cache: %w", err)
	}
	return nil
}

// Get returns the cached entry for a user.
func (s *BadgerStore) Get(_ context.Context, userID string) (*model.ContestCacheEntry, error) {
	var entry model.ContestCacheEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + userID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read contest cache for user %s: %w", userID, err)
	}
	return &entry, nil
}

// Put upserts the entry keyed by user id.
func (s *BadgerStore) Put(_ context.Context, entry *model.ContestCacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode contest cache entry: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+entry.UserID), raw)
	})
	if err != nil {
		return fmt.Errorf("write contest cache for user %s: %w", entry.UserID, err)
	}
	return nil
}
