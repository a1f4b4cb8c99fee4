package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vipnode/blackbird/endpoint"
	"github.com/vipnode/blackbird/transport/ws/gobwas"
)

// parseParams decodes each argument as JSON, falling back to the raw string.
func parseParams(args []string) []interface{} {
	params := make([]interface{}, 0, len(args))
	for _, arg := range args {
		var v interface{}
		if err := json.Unmarshal([]byte(arg), &v); err != nil {
			v = arg
		}
		params = append(params, v)
	}
	return params
}

func runCall(ctx context.Context, out io.Writer, url string, method string, args []string) error {
	logger.Debugf("Connecting to: %s", url)
	conn, err := gobwas.Dial(ctx, url)
	if err != nil {
		return ErrExplain{err, "Failed to connect to the server. Make sure the URL starts with ws:// or wss://."}
	}
	defer conn.Close()

	e := endpoint.New(nil, []string{method}, conn)
	defer e.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- conn.Serve()
	}()

	var result json.RawMessage
	callErr := make(chan error, 1)
	go func() {
		callErr <- e.Call(ctx, &result, method, parseParams(args)...)
	}()

	select {
	case err := <-callErr:
		if err != nil {
			return err
		}
	case err := <-serveErr:
		if err == nil {
			err = io.EOF
		}
		return err
	}

	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	_, err = fmt.Fprintf(out, "%s\n", result)
	return err
}
