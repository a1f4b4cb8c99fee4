package gobwas

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/vipnode/blackbird/transport"
	wstransport "github.com/vipnode/blackbird/transport/ws"
)

type rw struct {
	io.Reader
	io.Writer
}

// Dial returns a client-side transport connected to url.
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	c := clientConn(conn)
	if br != nil {
		// The server may have sent frames along with the handshake.
		c.rw = rw{io.MultiReader(br, conn), conn}
	}
	return c, nil
}

func clientConn(conn net.Conn) *Conn {
	return &Conn{
		conn:  conn,
		rw:    conn,
		state: ws.StateClientSide,
	}
}

func serverConn(conn net.Conn) *Conn {
	return &Conn{
		conn:  conn,
		rw:    conn,
		state: ws.StateServerSide,
	}
}

var _ wstransport.Conn = &Conn{}

// Conn is a transport over a single websocket connection. Each message is one
// text frame.
type Conn struct {
	transport.Listeners

	muWrite sync.Mutex
	conn    net.Conn
	rw      io.ReadWriter
	state   ws.State
}

func (c *Conn) Send(data []byte) error {
	c.muWrite.Lock()
	defer c.muWrite.Unlock()
	if c.state.ClientSide() {
		return wsutil.WriteClientMessage(c.conn, ws.OpText, data)
	}
	return wsutil.WriteServerMessage(c.conn, ws.OpText, data)
}

func (c *Conn) read() ([]byte, error) {
	if c.state.ClientSide() {
		data, _, err := wsutil.ReadServerData(c.rw)
		return data, err
	}
	data, _, err := wsutil.ReadClientData(c.rw)
	return data, err
}

// Serve reads messages until the connection closes. A close frame or EOF
// returns nil.
func (c *Conn) Serve() error {
	for {
		data, err := c.read()
		if err == io.EOF {
			return nil
		} else if _, ok := err.(wsutil.ClosedError); ok {
			return nil
		} else if err != nil {
			return err
		}
		c.Emit(data)
	}
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

var _ wstransport.Upgrader = &Upgrader{}

// Upgrader upgrades an HTTP request to a WebSocket connection and returns the
// transport for it. Response headers are configured on the inner
// ws.HTTPUpgrader; the header argument to Upgrade is ignored.
type Upgrader struct {
	Upgrader ws.HTTPUpgrader
}

func (u *Upgrader) Upgrade(r *http.Request, w http.ResponseWriter, h http.Header) (wstransport.Conn, error) {
	conn, _, _, err := u.Upgrader.Upgrade(r, w)
	if err != nil {
		return nil, err
	}
	return serverConn(conn), nil
}
