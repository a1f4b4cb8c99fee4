package endpoint

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// completion is invoked exactly once with the outcome of an outbound call.
type completion func(err error, results []json.RawMessage)

type pendingCall struct {
	complete  completion
	timestamp time.Time
	timer     *time.Timer
}

type pendingItem struct {
	key       string
	timestamp time.Time
}

type pendingQueue []pendingItem

func (p pendingQueue) Len() int {
	return len(p)
}

func (p pendingQueue) Less(i, j int) bool {
	return p[i].timestamp.Before(p[j].timestamp)
}

func (p pendingQueue) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func pendingOldest(pending map[string]*pendingCall, num int) pendingQueue {
	if num > len(pending) {
		num = len(pending)
	}
	queue := make(pendingQueue, 0, len(pending))
	for key, p := range pending {
		queue = append(queue, pendingItem{
			key, p.timestamp,
		})
	}
	sort.Sort(queue)
	return queue[:num]
}

// pendingTable maps correlation ids to completions. An entry is removed before
// its completion runs, so no completion can run twice.
type pendingTable struct {
	// Limit is the number of calls to hold before the oldest get discarded.
	Limit int
	// Discard is the number of oldest calls that get discarded when Limit is reached.
	Discard int
	// Timeout rejects calls that are still pending after this long, if set.
	Timeout time.Duration

	mu    sync.Mutex
	calls map[string]*pendingCall
}

// cleanPending removes the num oldest entries and returns them, must hold the
// t.mu lock.
func (t *pendingTable) cleanPending(num int) []*pendingCall {
	var removed []*pendingCall
	for _, item := range pendingOldest(t.calls, num) {
		removed = append(removed, t.calls[item.key])
		delete(t.calls, item.key)
	}
	return removed
}

func (t *pendingTable) register(id string, complete completion) error {
	t.mu.Lock()
	if t.calls == nil {
		t.calls = map[string]*pendingCall{}
	}
	if _, ok := t.calls[id]; ok {
		t.mu.Unlock()
		return ErrDuplicateID
	}
	var evicted []*pendingCall
	if t.Limit > 0 && len(t.calls) >= t.Limit && t.Discard > 0 {
		evicted = t.cleanPending(t.Discard)
	}
	p := &pendingCall{
		complete:  complete,
		timestamp: time.Now(),
	}
	if t.Timeout > 0 {
		p.timer = time.AfterFunc(t.Timeout, func() {
			t.resolve(id, ErrCallTimeout, nil)
		})
	}
	t.calls[id] = p
	t.mu.Unlock()

	for _, e := range evicted {
		e.stop()
		e.complete(ErrPendingDiscarded, nil)
	}
	return nil
}

// resolve removes the entry for id and runs its completion. It returns false
// if no such entry is outstanding.
func (t *pendingTable) resolve(id string, err error, results []json.RawMessage) bool {
	t.mu.Lock()
	p, ok := t.calls[id]
	if ok {
		delete(t.calls, id)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	p.stop()
	p.complete(err, results)
	return true
}

// drain removes every entry and completes each with err.
func (t *pendingTable) drain(err error) int {
	t.mu.Lock()
	calls := t.calls
	t.calls = nil
	t.mu.Unlock()
	for _, p := range calls {
		p.stop()
		p.complete(err, nil)
	}
	return len(calls)
}

func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

func (p *pendingCall) stop() {
	if p.timer != nil {
		p.timer.Stop()
	}
}
