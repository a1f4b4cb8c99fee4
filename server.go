package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/vipnode/blackbird/endpoint"
	"github.com/vipnode/blackbird/transport/ws"
)

// server gives every WebSocket connection its own endpoint serving inbound.
type server struct {
	inbound endpoint.Inbound
	ws      ws.Upgrader
	header  http.Header
	opts    []endpoint.Option
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, values := range s.header {
		for _, v := range values {
			w.Header().Set(k, v)
		}
	}
	if r.Method != http.MethodGet {
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
		return
	}
	if !strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		http.Error(w, "incorrect blackbird api handshake", http.StatusBadRequest)
		return
	}
	logger.Debugf("Accepting connection from %s", r.RemoteAddr)
	ws.Handler(s.ws, s.accept)(w, r)
	logger.Debugf("Connection closed from %s", r.RemoteAddr)
}

func (s *server) accept(conn ws.Conn) io.Closer {
	return endpoint.New(s.inbound, nil, conn, s.opts...)
}
