package endpoint

import (
	"encoding/json"
	"reflect"
	"sort"
	"testing"
	"time"
)

func TestPendingOldest(t *testing.T) {
	now := time.Now()
	pending := map[string]*pendingCall{
		"1": &pendingCall{timestamp: now.Add(time.Second * 1)},
		"2": &pendingCall{timestamp: now.Add(time.Second * 2)},
		"3": &pendingCall{timestamp: now.Add(time.Second * 3)},
		"4": &pendingCall{timestamp: now.Add(time.Second * 4)},
		"5": &pendingCall{timestamp: now.Add(time.Second * 5)},
	}

	keys := []string{}
	for _, item := range pendingOldest(pending, 3) {
		keys = append(keys, item.key)
	}

	if want, got := []string{"1", "2", "3"}, keys; !reflect.DeepEqual(got, want) {
		t.Errorf("got: %q; want: %q", got, want)
	}
}

func TestPendingCleanPending(t *testing.T) {
	var discarded []error
	complete := func(err error, results []json.RawMessage) {
		discarded = append(discarded, err)
	}

	p := pendingTable{
		Limit:   5,
		Discard: 3,
	}
	now := time.Now().Add(-time.Second * 100)
	p.calls = map[string]*pendingCall{
		"1": &pendingCall{timestamp: now.Add(time.Second * 1), complete: complete},
		"2": &pendingCall{timestamp: now.Add(time.Second * 2), complete: complete},
		"3": &pendingCall{timestamp: now.Add(time.Second * 3), complete: complete},
		"4": &pendingCall{timestamp: now.Add(time.Second * 4), complete: complete},
		"5": &pendingCall{timestamp: now.Add(time.Second * 5), complete: complete},
	}

	if want, got := 5, p.len(); got != want {
		t.Errorf("got: %d; want: %d", got, want)
	}

	// Should trigger a cleanup of 3, add 1.
	if err := p.register("6", complete); err != nil {
		t.Fatal(err)
	}
	if want, got := 3, p.len(); got != want {
		t.Errorf("got: %d; want: %d", got, want)
	}

	keys := []string{}
	for k := range p.calls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if want, got := []string{"4", "5", "6"}, keys; !reflect.DeepEqual(got, want) {
		t.Errorf("got: %q; want %q", got, want)
	}
	if want, got := []error{ErrPendingDiscarded, ErrPendingDiscarded, ErrPendingDiscarded}, discarded; !reflect.DeepEqual(got, want) {
		t.Errorf("got: %v; want %v", got, want)
	}
}

func TestPendingResolveOnce(t *testing.T) {
	calls := 0
	p := pendingTable{}
	if err := p.register("1", func(err error, results []json.RawMessage) {
		calls++
	}); err != nil {
		t.Fatal(err)
	}
	if err := p.register("1", nil); err != ErrDuplicateID {
		t.Errorf("got: %v; want: %v", err, ErrDuplicateID)
	}

	if !p.resolve("1", nil, nil) {
		t.Error("resolve of registered id returned false")
	}
	if p.resolve("1", nil, nil) {
		t.Error("second resolve returned true")
	}
	if p.resolve("unknown", nil, nil) {
		t.Error("resolve of unknown id returned true")
	}
	if calls != 1 {
		t.Errorf("completion ran %d times; want 1", calls)
	}
	if p.len() != 0 {
		t.Errorf("entry persisted after resolve")
	}
}

func TestPendingTimeout(t *testing.T) {
	p := pendingTable{Timeout: 10 * time.Millisecond}
	errs := make(chan error, 1)
	if err := p.register("1", func(err error, results []json.RawMessage) {
		errs <- err
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errs:
		if err != ErrCallTimeout {
			t.Errorf("got: %v; want: %v", err, ErrCallTimeout)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the call to time out")
	}
	if p.resolve("1", nil, nil) {
		t.Error("resolve after timeout returned true")
	}
}

func TestPendingDrain(t *testing.T) {
	p := pendingTable{}
	var got []error
	for _, id := range []string{"1", "2"} {
		p.register(id, func(err error, results []json.RawMessage) {
			got = append(got, err)
		})
	}
	if n := p.drain(ErrClosed); n != 2 {
		t.Errorf("drained %d; want 2", n)
	}
	if want := []error{ErrClosed, ErrClosed}; !reflect.DeepEqual(got, want) {
		t.Errorf("got: %v; want %v", got, want)
	}
	if p.len() != 0 {
		t.Error("entries persisted after drain")
	}
}
