// Websocket transport using Gorilla's Websocket library
package gorilla

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vipnode/blackbird/transport"
	"github.com/vipnode/blackbird/transport/ws"
)

// Dial returns a client-side transport connected to url.
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New wraps an established websocket connection.
func New(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

var _ ws.Conn = &Conn{}

// Conn is a transport over a single websocket connection. Each message is one
// text frame.
type Conn struct {
	transport.Listeners

	muWrite sync.Mutex
	conn    *websocket.Conn
}

func (c *Conn) Send(data []byte) error {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Serve reads messages until the connection closes. A normal closure returns
// nil.
func (c *Conn) Serve() error {
	for {
		_, data, err := c.conn.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil
		} else if err != nil {
			return err
		}
		c.Emit(data)
	}
}

// Close sends a close frame and closes the connection.
func (c *Conn) Close() error {
	c.muWrite.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteMessage(websocket.CloseMessage, msg)
	c.muWrite.Unlock()
	return c.conn.Close()
}

var _ ws.Upgrader = &Upgrader{}

// Upgrader upgrades an HTTP request to a WebSocket connection and returns the
// transport for it.
type Upgrader struct {
	Upgrader websocket.Upgrader
}

func (u *Upgrader) Upgrade(r *http.Request, w http.ResponseWriter, h http.Header) (ws.Conn, error) {
	conn, err := u.Upgrader.Upgrade(w, r, h)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}
