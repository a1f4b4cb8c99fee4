// Package kv implements a key-value service that can be served over an
// endpoint. Register(inbound, "kv_", service) exposes kv_get, kv_set,
// kv_delete, kv_keys and kv_waitFor.
package kv

import (
	"errors"
	"strings"
	"sync"

	"github.com/vipnode/blackbird/deferred"
	"github.com/vipnode/blackbird/endpoint"
	"github.com/vipnode/blackbird/kv/store"
)

// ErrClosed is used to reject waiters when the service is shut down.
var ErrClosed = errors.New("kv service closed")

// remoteMethods are the Service methods that Register exposes.
var remoteMethods = []string{"Get", "Set", "Delete", "Keys", "WaitFor"}

// Register adds the remote methods of s to in, named with prefix followed by
// the lowercased method name, such as kv_waitFor.
func Register(in endpoint.Inbound, prefix string, s *Service) error {
	for _, name := range remoteMethods {
		if err := in.RegisterMethod(prefix+strings.ToLower(name[:1])+name[1:], s, name); err != nil {
			return err
		}
	}
	return nil
}

// New returns a Service backed by s.
func New(s store.Store) *Service {
	return &Service{
		Store:   s,
		waiters: map[string][]*deferred.Deferred{},
	}
}

// Service exposes a store.Store as remote methods. Only the methods listed in
// remoteMethods are served, see Register.
type Service struct {
	Store store.Store

	mu      sync.Mutex
	closed  bool
	waiters map[string][]*deferred.Deferred
}

// Get returns the value of key.
func (s *Service) Get(key string) (string, error) {
	return s.Store.Get(key)
}

// Set stores value under key and wakes up anyone waiting for key.
func (s *Service) Set(key string, value string) error {
	s.mu.Lock()
	if err := s.Store.Set(key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	waiting := s.waiters[key]
	delete(s.waiters, key)
	s.mu.Unlock()

	for _, d := range waiting {
		d.Resolve(value)
	}
	return nil
}

// Delete removes key.
func (s *Service) Delete(key string) error {
	return s.Store.Delete(key)
}

// Keys returns the sorted keys that start with prefix.
func (s *Service) Keys(prefix string) ([]string, error) {
	return s.Store.Keys(prefix)
}

// WaitFor resolves with the value of key as soon as it exists. The response
// to a remote caller is deferred until then.
func (s *Service) WaitFor(key string) *deferred.Deferred {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return deferred.RejectedWith(ErrClosed)
	}
	value, err := s.Store.Get(key)
	if err == nil {
		return deferred.Resolved(value)
	} else if err != store.ErrNotFound {
		return deferred.RejectedWith(err)
	}
	d := deferred.New()
	s.waiters[key] = append(s.waiters[key], d)
	return d
}

// Close rejects all outstanding waiters with ErrClosed and closes the store.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	waiters := s.waiters
	s.waiters = map[string][]*deferred.Deferred{}
	s.mu.Unlock()

	for _, ds := range waiters {
		for _, d := range ds {
			d.Reject(ErrClosed)
		}
	}
	return s.Store.Close()
}
