package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/vipnode/blackbird/kv/store"
)

// New implements an ephemeral in-memory store.
func New() *memoryStore {
	return &memoryStore{
		values: map[string]string{},
	}
}

// Assert Store implementation
var _ store.Store = &memoryStore{}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *memoryStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *memoryStore) Set(key string, value string) error {
	if key == "" {
		return store.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *memoryStore) Keys(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := []string{}
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *memoryStore) Close() error {
	return nil
}
