package gemini

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thistlecode/gemini/log"
)

// serverState is the Server's lifecycle state, per spec.md §4.7.
type serverState int

const (
	stateIdle serverState = iota
	stateRunning
	stateShuttingDown
)

// DefaultMaxParallelConnections is the parallelism bound NewServer
// sets, and the one Start uses when MaxParallelConnections is negative.
const DefaultMaxParallelConnections = 256

// shutdownPollInterval is how often Shutdown re-samples the active
// client count while waiting for in-flight connections to finish,
// mirroring mousygem's server destructor poll loop.
const shutdownPollInterval = 10 * time.Millisecond

// Server owns the listening socket, the TLS context, and the
// lifecycle of concurrent connections. The host application supplies
// a Handler; the Server owns everything else described in spec.md.
type Server struct {
	// Host is the address to bind to, or nil to bind to all
	// interfaces (dual-stack).
	Host *string
	// Port is the TCP port to bind to.
	Port uint16
	// Handler serves accepted requests.
	Handler Handler
	// MaxParallelConnections bounds the number of connections served
	// concurrently. A negative value is treated as the default; 0
	// forces fully serial handling (no worker goroutines at all).
	MaxParallelConnections int
	// ReadTimeout/WriteTimeout bound each connection's TLS handshake,
	// request read and response write. Zero disables the bound.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	tls *TLSContext

	mu    sync.Mutex
	state serverState

	shutdownFlag atomic.Bool

	activeMu      sync.Mutex
	activeClients int

	listener *Listener
}

// Addr returns the address the Server is currently bound to, or nil
// if Start has not yet bound a listening socket.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// NewServer creates a Server bound to host:port. host is nil to bind
// to all interfaces. Call UseCertificateFile and UsePrivateKeyFile
// before Start.
func NewServer(host *string, port uint16, handler Handler) *Server {
	return &Server{
		Host:                   host,
		Port:                   port,
		Handler:                handler,
		MaxParallelConnections: DefaultMaxParallelConnections,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           30 * time.Second,
		tls:                    NewTLSContext(),
	}
}

// UseCertificateFile sets the PEM certificate file. Must be called
// before Start.
func (s *Server) UseCertificateFile(path string) {
	s.tls.UseCertificateFile(path)
}

// UsePrivateKeyFile sets the PEM private key file. Must be called
// before Start.
func (s *Server) UsePrivateKeyFile(path string) {
	s.tls.UsePrivateKeyFile(path)
}

// UseCertificateForHost registers a certificate/key pair to present
// when a client's SNI server name matches host, letting one Server
// serve several virtual hosts. Must be called before Start.
func (s *Server) UseCertificateForHost(host, certFile, keyFile string) {
	s.tls.UseCertificateForHost(host, certFile, keyFile)
}

// Start begins accepting connections and blocks until ctx is done or
// Shutdown is called, returning once every in-flight connection has
// completed. It returns ErrAlreadyRunning if the Server is not Idle.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateIdle {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.state = stateRunning
	s.mu.Unlock()
	s.shutdownFlag.Store(false)

	defer func() {
		s.mu.Lock()
		s.state = stateIdle
		s.listener = nil
		s.mu.Unlock()
	}()

	tlsConfig, err := s.tls.Config()
	if err != nil {
		return err
	}

	ln, err := NewListener(s.Host, s.Port)
	if err != nil {
		return err
	}
	defer ln.Close()

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	log.Info("gemini: listening", log.String("addr", ln.Addr().String()))

	maxParallel := s.MaxParallelConnections
	if maxParallel < 0 {
		maxParallel = DefaultMaxParallelConnections
	}
	var sem chan struct{}
	if maxParallel > 0 {
		sem = make(chan struct{}, maxParallel)
	}

	var wg sync.WaitGroup
	for !s.shutdownFlag.Load() {
		if ctx.Err() != nil {
			s.shutdownFlag.Store(true)
			break
		}

		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			log.Warn("gemini: accept failed", log.String("reason", err.Error()))
			continue
		}

		s.incActive()
		if sem == nil {
			serveConnection(ctx, conn, tlsConfig, s.Handler, s.ReadTimeout, s.WriteTimeout)
			s.decActive()
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer s.decActive()
			serveConnection(ctx, conn, tlsConfig, s.Handler, s.ReadTimeout, s.WriteTimeout)
		}()
	}

	wg.Wait()
	log.Info("gemini: stopped", log.String("addr", ln.Addr().String()))
	return ErrServerClosed
}

func (s *Server) incActive() {
	s.activeMu.Lock()
	s.activeClients++
	s.activeMu.Unlock()
}

func (s *Server) decActive() {
	s.activeMu.Lock()
	s.activeClients--
	s.activeMu.Unlock()
}

func (s *Server) activeCount() int {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return s.activeClients
}

// Shutdown signals the accept loop to stop and blocks until every
// in-flight connection has completed, or ctx is done first. Calling
// Shutdown on an Idle Server is a no-op. It must never be called from
// within a Handler's Respond, which would deadlock waiting on itself.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state == stateIdle {
		s.mu.Unlock()
		return nil
	}
	s.state = stateShuttingDown
	s.mu.Unlock()

	s.shutdownFlag.Store(true)

	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()
	for {
		if s.activeCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ListenAndServe loads certFile/keyFile and starts a Server serving
// handler, blocking until ctx is done or Shutdown is called elsewhere.
func ListenAndServe(ctx context.Context, host *string, port uint16, certFile, keyFile string, handler Handler) error {
	s := NewServer(host, port, handler)
	s.UseCertificateFile(certFile)
	s.UsePrivateKeyFile(keyFile)
	return s.Start(ctx)
}
