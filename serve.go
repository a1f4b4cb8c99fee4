package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/OpenPeeDeeP/xdg"
	"github.com/dgraph-io/badger"
	"github.com/vipnode/blackbird/endpoint"
	"github.com/vipnode/blackbird/kv"
	"github.com/vipnode/blackbird/kv/store"
	badgerStore "github.com/vipnode/blackbird/kv/store/badger"
	"github.com/vipnode/blackbird/kv/store/memory"
	"github.com/vipnode/blackbird/transport/stream"
	"github.com/vipnode/blackbird/transport/ws/gorilla"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"
)

var shutdownTimeout = time.Second * 5

// findDataDir returns a valid data dir, will create it if it doesn't
// exist.
func findDataDir(overridePath string) (string, error) {
	path := overridePath
	if path == "" {
		path = xdg.New("blackbird", "serve").DataHome()
	}
	err := os.MkdirAll(path, 0700)
	return path, err
}

func openStore(driver string, dataDir string) (store.Store, error) {
	switch driver {
	case "memory":
		return memory.New(), nil
	case "persist":
		fallthrough
	case "badger":
		dir, err := findDataDir(dataDir)
		if err != nil {
			return nil, err
		}
		s, err := badgerStore.Open(badger.DefaultOptions(dir))
		if err != nil {
			return nil, err
		}
		logger.Infof("Persistent store using badger backend: %s", dir)
		return s, nil
	}
	return nil, errors.New("storage driver not implemented")
}

type stdio struct {
	io.Reader
	io.Writer
}

func runServe(options Options) error {
	storeDriver, err := openStore(options.Serve.Store, options.Serve.DataDir)
	if err != nil {
		return err
	}
	svc := kv.New(storeDriver)
	defer svc.Close()

	inbound := endpoint.Inbound{}
	if err := kv.Register(inbound, "kv_", svc); err != nil {
		return err
	}

	if options.Serve.Stdio {
		logger.Infof("Serving (version %s) on stdin/stdout", Version)
		s := stream.New(stdio{os.Stdin, os.Stdout})
		e := endpoint.New(inbound, nil, s)
		err := s.Serve()
		e.Close()
		s.Close()
		return err
	}

	upgrader := &gorilla.Upgrader{}
	handler := &server{
		inbound: inbound,
		ws:      upgrader,
		header:  http.Header{},
	}
	if allowOrigin := options.Serve.AllowOrigin; allowOrigin != "" {
		handler.header.Set("Access-Control-Allow-Origin", allowOrigin)
		upgrader.Upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowOrigin == "*" || origin == "" || origin == allowOrigin
		}
	}
	srv := &http.Server{
		Addr:    options.Serve.Bind,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("Shutting down...")
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		var err error
		if options.Serve.TLSHost != "" {
			if !strings.HasSuffix(options.Serve.Bind, ":443") {
				logger.Warningf("Ignoring --bind value (%q) because it's not 443 and --tlshost is set.", options.Serve.Bind)
			}
			logger.Infof("Starting server (version %s), acquiring ACME certificate and listening on: wss://%s", Version, options.Serve.TLSHost)
			err = srv.Serve(autocert.NewListener(options.Serve.TLSHost))
			if err != nil && strings.HasSuffix(err.Error(), "bind: permission denied") {
				err = ErrExplain{err, "Serving with autocert requires CAP_NET_BIND_SERVICE capability permission to bind on low-numbered ports. See: https://superuser.com/questions/710253/allow-non-root-process-to-bind-to-port-80-and-443/892391"}
			}
		} else {
			logger.Infof("Starting server (version %s), listening on: ws://%s", Version, options.Serve.Bind)
			err = srv.ListenAndServe()
		}
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	return g.Wait()
}
