package badger

import (
	"github.com/dgraph-io/badger"
	"github.com/vipnode/blackbird/kv/store"
)

// Open returns a store.Store implementation using Badger as the storage
// driver. The store should be .Close()'d after use.
func Open(opts badger.Options) (*badgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

var _ store.Store = &badgerStore{}

type badgerStore struct {
	db *badger.DB
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

func (s *badgerStore) Get(key string) (string, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		value, err = getValue(txn, valueKey(key))
		return err
	})
	if err == badger.ErrKeyNotFound {
		return "", store.ErrNotFound
	} else if err != nil {
		return "", err
	}
	return string(value), nil
}

func (s *badgerStore) Set(key string, value string) error {
	if key == "" {
		return store.ErrEmptyKey
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(valueKey(key), []byte(value))
	})
}

func (s *badgerStore) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(valueKey(key))
	})
}

func (s *badgerStore) Keys(prefix string) ([]string, error) {
	keys := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		return loopKeys(txn, valueKey(prefix), func(key []byte) error {
			keys = append(keys, string(key[len(valuePrefix):]))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// Badger iterates in byte order, which is already sorted.
	return keys, nil
}
