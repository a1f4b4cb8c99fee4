// Package ws contains the implementation-independent parts of the WebSocket
// transports. Implementations live in the gorilla and gobwas subpackages.
package ws

import (
	"io"
	"net/http"

	"github.com/vipnode/blackbird/transport"
)

// Conn is a WebSocket transport. Serve reads messages until the connection
// closes.
type Conn interface {
	transport.Transport
	Serve() error
	Close() error
}

// Upgrader takes an HTTP request, upgrades it to a websocket server and
// returns a transport. This allows switching between different websocket
// implementations.
type Upgrader interface {
	Upgrade(*http.Request, http.ResponseWriter, http.Header) (Conn, error)
}

// Handler upgrades each request with u and serves the connection until it
// closes. accept is called with every new connection before serving starts,
// and the io.Closer it returns, if any, is closed once the connection ends.
func Handler(u Upgrader, accept func(Conn) io.Closer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := u.Upgrade(r, w, nil)
		if err != nil {
			logger.Printf("websocket upgrade error from %s: %s", r.RemoteAddr, err)
			return
		}
		defer conn.Close()
		if closer := accept(conn); closer != nil {
			defer closer.Close()
		}
		if err := conn.Serve(); err != nil {
			logger.Printf("websocket serve error from %s: %s", r.RemoteAddr, err)
		}
	}
}
