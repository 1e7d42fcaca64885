package gemini

import "errors"

// Startup errors, returned by Server.Start/ListenAndServe.
var (
	// ErrResolveFailed is returned when the configured bind host
	// cannot be resolved to an address.
	ErrResolveFailed = errors.New("gemini: failed to resolve bind address")
	// ErrBindFailed is returned when the listening socket fails to bind.
	ErrBindFailed = errors.New("gemini: failed to bind listening socket")
	// ErrListenFailed is returned when the listening socket fails to
	// enter the listen state.
	ErrListenFailed = errors.New("gemini: failed to listen")
	// ErrTLSInitFailed is returned when the TLS context cannot be
	// built, e.g. because the certificate and key do not match.
	ErrTLSInitFailed = errors.New("gemini: failed to initialise TLS context")
	// ErrAlreadyRunning is returned by Start when the server is
	// already accepting connections.
	ErrAlreadyRunning = errors.New("gemini: server is already running")
)

// ErrBadState is returned by Client.IPAddress when the client has no
// recorded peer address.
var ErrBadState = errors.New("gemini: client has no address")

// ErrServerClosed is returned by Start once shutdown has completed
// normally.
var ErrServerClosed = errors.New("gemini: server closed")
