// Copyright (c) 2014-2020 Canonical Ltd
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License version 3 as
// published by the Free Software Foundation.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package daemon implements the HTTP transport: a gorilla/mux Command
// table routing POST /v1/{logs,traces,metrics}, GET /v1/healthz and
// GET /metrics to handlers backed by internals/dispatch and
// internals/storage.
package daemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/smithclay/otlp2parquet/internals/dispatch"
	"github.com/smithclay/otlp2parquet/internals/logger"
	"github.com/smithclay/otlp2parquet/internals/storage"
)

// Options holds the setup required to initialize a new Daemon.
type Options struct {
	// Address is the listen address for the HTTP API server, e.g. ":8080".
	Address string
}

// A Daemon listens for ingest requests and routes them to the Dispatcher.
type Daemon struct {
	Version    string
	StartTime  time.Time
	address    string
	dispatcher *dispatch.Dispatcher
	sink       storage.Sink

	listener    net.Listener
	connTracker *connTracker
	serve       *http.Server
	router      *mux.Router

	mu sync.Mutex
}

// New returns a Daemon wired to dispatcher and sink, not yet listening.
func New(opts *Options, dispatcher *dispatch.Dispatcher, sink storage.Sink) (*Daemon, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("daemon: Address is required")
	}
	return &Daemon{
		address:    opts.Address,
		dispatcher: dispatcher,
		sink:       sink,
	}, nil
}

// A ResponseFunc handles one verb of a Command.
type ResponseFunc func(*Command, *http.Request) Response

// A Command routes a request to a per-verb ResponseFunc, or directly to a
// plain http.Handler (used for the Prometheus exposition endpoint).
type Command struct {
	Path       string
	PathPrefix string

	GET  ResponseFunc
	POST ResponseFunc

	// Handler, when set, bypasses GET/POST dispatch and the Response
	// envelope entirely.
	Handler http.Handler

	d *Daemon
}

func (c *Command) Daemon() *Daemon { return c.d }

func (c *Command) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.Handler != nil {
		c.Handler.ServeHTTP(w, r)
		return
	}

	var rspf ResponseFunc
	switch r.Method {
	case "GET":
		rspf = c.GET
	case "POST":
		rspf = c.POST
	}
	if rspf == nil {
		MethodNotAllowed(fmt.Sprintf("method %q not allowed", r.Method)).ServeHTTP(w, r)
		return
	}

	rspf(c, r).ServeHTTP(w, r)
}

type wrappedWriter struct {
	w http.ResponseWriter
	s int
}

func (w *wrappedWriter) Header() http.Header { return w.w.Header() }

func (w *wrappedWriter) Write(bs []byte) (int, error) { return w.w.Write(bs) }

func (w *wrappedWriter) WriteHeader(s int) {
	w.w.WriteHeader(s)
	w.s = s
}

// Hijack is needed in case a handler ever needs to take over the
// connection.
func (w *wrappedWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.w.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying writer does not implement Hijack")
	}
	return hijacker.Hijack()
}

func (w *wrappedWriter) status() int {
	if w.s == 0 {
		return http.StatusOK
	}
	return w.s
}

func logit(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &wrappedWriter{w: w}
		t0 := time.Now()
		handler.ServeHTTP(ww, r)
		elapsed := time.Since(t0)

		// GET /v1/healthz is polled frequently by orchestrators; skip it to
		// avoid filling logs with noise.
		if r.Method == "GET" && r.URL.Path == "/v1/healthz" {
			return
		}
		logger.Debugf("%s %s %s %d", r.Method, r.URL, elapsed, ww.status())
	})
}

// exitOnPanic opts out of net/http's default panic recovery, so the
// process doesn't keep serving in a bad state (e.g. a held mutex lock).
func exitOnPanic(handler http.Handler, stderr io.Writer, exit func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				fmt.Fprintf(stderr, "panic: %v\n\n%s", err, debug.Stack())
				exit()
			}
		}()
		handler.ServeHTTP(w, r)
	})
}

func (d *Daemon) addRoutes() {
	d.router = mux.NewRouter()
	for _, c := range API {
		c.d = d
		if c.PathPrefix == "" {
			d.router.Handle(c.Path, c).Name(c.Path)
		} else {
			d.router.PathPrefix(c.PathPrefix).Handler(c).Name(c.PathPrefix)
		}
	}
	d.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFound("invalid API endpoint requested").ServeHTTP(w, r)
	})
}

type connTracker struct {
	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

func (ct *connTracker) trackConn(conn net.Conn, state http.ConnState) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if state == http.StateNew || state == http.StateActive {
		ct.conns[conn] = struct{}{}
	} else {
		delete(ct.conns, conn)
	}
}

// Init sets up routing and the listener. Don't call more than once.
func (d *Daemon) Init() error {
	listener, err := net.Listen("tcp", d.address)
	if err != nil {
		return fmt.Errorf("cannot listen on %q: %v", d.address, err)
	}
	d.listener = listener
	d.addRoutes()
	logger.Noticef("otlp2parquet daemon listening on %q.", d.address)
	return nil
}

// Start starts serving HTTP requests and the dispatcher's background
// drain loop.
func (d *Daemon) Start() error {
	d.StartTime = time.Now()
	d.connTracker = &connTracker{conns: make(map[net.Conn]struct{})}
	d.serve = &http.Server{
		Handler:   exitOnPanic(logit(d.router), os.Stderr, func() { os.Exit(1) }),
		ConnState: d.connTracker.trackConn,
	}

	d.dispatcher.Start()

	go func() {
		if err := d.serve.Serve(d.listener); err != nil && err != http.ErrServerClosed {
			logger.Noticef("HTTP server error: %v", err)
		}
	}()

	return nil
}

var shutdownTimeout = 5 * time.Second

// Stop drains all in-flight batches and shuts down the HTTP server.
func (d *Daemon) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := d.serve.Shutdown(ctx)
	d.dispatcher.Stop()
	return err
}
