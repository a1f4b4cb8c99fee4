package store

import (
	"reflect"
	"testing"
)

// TestSuite runs a suite of tests against a store implementation.
func TestSuite(t *testing.T, newStore func() Store) {
	t.Helper()
	t.Run("GetSet", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		if _, err := s.Get("a"); err != ErrNotFound {
			t.Errorf("expected not found error, got: %v", err)
		}
		if err := s.Set("", "x"); err != ErrEmptyKey {
			t.Errorf("expected empty key error, got: %v", err)
		}
		if err := s.Set("a", "1"); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if got, err := s.Get("a"); err != nil {
			t.Errorf("unexpected error: %s", err)
		} else if got != "1" {
			t.Errorf("got: %q; want: %q", got, "1")
		}
		if err := s.Set("a", "2"); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if got, err := s.Get("a"); err != nil {
			t.Errorf("unexpected error: %s", err)
		} else if got != "2" {
			t.Errorf("got: %q; want: %q", got, "2")
		}
		if err := s.Set("empty", ""); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if got, err := s.Get("empty"); err != nil || got != "" {
			t.Errorf("got: %q, %v; want empty value", got, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		if err := s.Delete("missing"); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if err := s.Set("a", "1"); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if err := s.Delete("a"); err != nil {
			t.Errorf("unexpected error: %s", err)
		}
		if _, err := s.Get("a"); err != ErrNotFound {
			t.Errorf("expected not found error, got: %v", err)
		}
	})

	t.Run("Keys", func(t *testing.T) {
		s := newStore()
		defer s.Close()

		for _, k := range []string{"user:b", "user:a", "group:a", "user:c"} {
			if err := s.Set(k, "x"); err != nil {
				t.Fatal(err)
			}
		}
		keys, err := s.Keys("user:")
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"user:a", "user:b", "user:c"}; !reflect.DeepEqual(keys, want) {
			t.Errorf("got: %q; want: %q", keys, want)
		}
		keys, err = s.Keys("")
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 4 {
			t.Errorf("got %d keys; want 4", len(keys))
		}
		keys, err = s.Keys("nope")
		if err != nil {
			t.Fatal(err)
		}
		if len(keys) != 0 {
			t.Errorf("got: %q; want no keys", keys)
		}
	})
}
