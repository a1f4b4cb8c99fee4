package gorilla

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vipnode/blackbird/endpoint"
	"github.com/vipnode/blackbird/transport/ws"
	"github.com/vipnode/blackbird/transport/ws/gobwas"
)

type Greeter struct{}

func (g *Greeter) Hello(name string) string {
	return "hello " + name
}

func newServer(t *testing.T, u ws.Upgrader) (*httptest.Server, string) {
	t.Helper()
	inbound := endpoint.Inbound{}
	if err := inbound.Register("", &Greeter{}); err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(ws.Handler(u, func(conn ws.Conn) io.Closer {
		return endpoint.New(inbound, nil, conn)
	}))
	return server, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestGorillaRoundTrip(t *testing.T) {
	server, url := newServer(t, &Upgrader{})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	go conn.Serve()

	client := endpoint.New(nil, []string{"hello"}, conn)
	var got string
	if err := client.Call(ctx, &got, "hello", "gorilla"); err != nil {
		t.Fatal(err)
	}
	if want := "hello gorilla"; got != want {
		t.Errorf("got: %q; want: %q", got, want)
	}
}

func TestGobwasClientGorillaServer(t *testing.T) {
	server, url := newServer(t, &Upgrader{})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := gobwas.Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	go conn.Serve()

	client := endpoint.New(nil, []string{"hello"}, conn)
	var got string
	if err := client.Call(ctx, &got, "hello", "gobwas"); err != nil {
		t.Fatal(err)
	}
	if want := "hello gobwas"; got != want {
		t.Errorf("got: %q; want: %q", got, want)
	}
}

func TestGorillaClientGobwasServer(t *testing.T) {
	server, url := newServer(t, &gobwas.Upgrader{})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := Dial(ctx, url)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	go conn.Serve()

	client := endpoint.New(nil, []string{"hello"}, conn)
	var got string
	if err := client.Call(ctx, &got, "hello", "both"); err != nil {
		t.Fatal(err)
	}
	if want := "hello both"; got != want {
		t.Errorf("got: %q; want: %q", got, want)
	}
}
