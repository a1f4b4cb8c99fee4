// Package httppost implements a transport that sends each message as an HTTP
// POST to the peer, and receives messages through an http.Handler.
package httppost

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/vipnode/blackbird/internal/queue"
	"github.com/vipnode/blackbird/transport"
)

const httpContentType = "application/json"

var _ transport.Transport = &Transport{}
var _ http.Handler = &Transport{}

// Transport posts outbound messages to Endpoint and delivers POST bodies it
// serves to its listeners. Both peers run a Transport pointing at each other.
type Transport struct {
	transport.Listeners

	HTTPClient http.Client

	// Endpoint is the HTTP URL of the peer's Transport handler.
	Endpoint string
	// MaxContentLength is the request size limit (optional)
	MaxContentLength int64
	// Context is used for outbound requests, if set.
	Context context.Context

	inboxOnce sync.Once
	inbox     *queue.Queue
}

// Received messages are delivered in order on a separate goroutine, so a
// listener that posts back to the peer never holds a request open.
func (t *Transport) deliver(data []byte) error {
	t.inboxOnce.Do(func() {
		t.inbox = queue.New(t.Emit)
	})
	return t.inbox.Push(data)
}

// Close stops delivering received messages.
func (t *Transport) Close() error {
	t.inboxOnce.Do(func() {
		t.inbox = queue.New(t.Emit)
	})
	t.inbox.Close()
	return nil
}

// Send posts data to the peer.
func (t *Transport) Send(data []byte) error {
	ctx := t.Context
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequest(http.MethodPost, t.Endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", httpContentType)
	req = req.WithContext(ctx)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(ioutil.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RequestError{
			Response: resp,
			Reason:   fmt.Sprintf("bad status code: %d", resp.StatusCode),
		}
	}
	return nil
}

func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if t.MaxContentLength > 0 && r.ContentLength > t.MaxContentLength {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var body io.Reader = r.Body
	if t.MaxContentLength > 0 {
		body = io.LimitReader(r.Body, t.MaxContentLength)
	}
	data, err := ioutil.ReadAll(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := t.deliver(data); err != nil {
		http.Error(w, "transport closed", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestError is used when posting a message fails at the HTTP level.
type RequestError struct {
	Response *http.Response
	Reason   string
}

func (err RequestError) Error() string {
	return fmt.Sprintf("http transport request error: %s", err.Reason)
}
