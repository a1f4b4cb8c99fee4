package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"
	"github.com/vipnode/blackbird/endpoint"
	"github.com/vipnode/blackbird/transport/stream"
	"github.com/vipnode/blackbird/transport/ws"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`

	Serve struct {
		Bind        string `long:"bind" description:"Address and port to listen on." default:"0.0.0.0:8080"`
		Store       string `long:"store" description:"Storage driver. (persist|memory)" default:"persist"`
		DataDir     string `long:"datadir" description:"Path for storing the persistent database."`
		TLSHost     string `long:"tlshost" description:"Acquire an ACME TLS cert for this host (forces bind to :443)."`
		AllowOrigin string `long:"allow-origin" description:"Set Access-Control-Allow-Origin header."`
		Stdio       bool   `long:"stdio" description:"Serve a single connection over stdin/stdout instead of listening."`
	} `command:"serve" description:"Serve the key-value service over WebSocket."`

	Call struct {
		Timeout time.Duration `long:"timeout" description:"Time to wait for the response." default:"10s"`
		Args    struct {
			URL    string   `positional-arg-name:"url" description:"WebSocket URL of the server, such as ws://localhost:8080/" required:"yes"`
			Method string   `positional-arg-name:"method" description:"Remote method name, such as kv_get" required:"yes"`
			Params []string `positional-arg-name:"args" description:"Arguments, parsed as JSON if possible, otherwise passed as strings"`
		} `positional-args:"yes"`
	} `command:"call" description:"Call a remote method and print the result."`
}

const callUsage = `Examples:
* Store and retrieve a value:
  $ blackbird call ws://localhost:8080/ kv_set greeting hello
  $ blackbird call ws://localhost:8080/ kv_get greeting
  "hello"

* Wait until a key is set by someone else:
  $ blackbird call --timeout=1m ws://localhost:8080/ kv_waitFor ready
`

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

func subcommand(cmd string, options Options) error {
	switch cmd {
	case "serve":
		return runServe(options)
	case "call":
		ctx, cancel := context.WithTimeout(context.Background(), options.Call.Timeout)
		defer cancel()
		return runCall(ctx, os.Stdout, options.Call.Args.URL, options.Call.Args.Method, options.Call.Args.Params)
	}
	return nil
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp && parser.Active != nil {
			// Print additional usage help when run with --help
			switch parser.Active.Name {
			case "call":
				exit(0, callUsage)
			}
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logWriter := os.Stderr

	SetLogger(golog.New(logWriter, logLevel))
	if logLevel == log.Debug {
		// Enable logging from subpackages
		endpoint.SetLogger(logWriter)
		stream.SetLogger(logWriter)
		ws.SetLogger(logWriter)
	}

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	cmd := parser.Active.Name
	err = subcommand(cmd, options)
	if err == nil {
		return
	}

	if err == io.EOF {
		exit(3, "Connection closed.\n")
	}

	switch err.(type) {
	case net.Error:
		err = ErrExplain{err, `Disconnected from server unexpectedly. Could be a connectivity issue or the server is down. Try again?`}
	case endpoint.RemoteError:
		err = ErrExplain{err, `The remote method returned an error.`}
	case ErrExplain:
		// All good.
	default:
		switch err {
		case endpoint.ErrCallTimeout, context.DeadlineExceeded:
			err = ErrExplain{err, `No response arrived in time. Use --timeout to wait longer.`}
		default:
			err = ErrExplain{err, fmt.Sprintf(`Error type %T is missing an explanation. Please open an issue at https://github.com/vipnode/blackbird`, err)}
		}
	}

	exit(2, "%s failed: %s\n", cmd, err)
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// ErrExplain annotates an error with an explanation.
type ErrExplain struct {
	Cause       error
	Explanation string
}

func (err ErrExplain) Error() string {
	return fmt.Sprintf("%s\n -> %s", err.Cause, err.Explanation)
}
