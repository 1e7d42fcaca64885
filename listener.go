package gemini

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Listener binds a TCP listening socket for the Server. When bound to
// "any" (a nil host), it binds as IPv6 with IPV6_V6ONLY disabled so it
// accepts both IPv4 and IPv6 connections (dual-stack); when given a
// host it resolves and binds to whatever family that host is.
// SO_REUSEADDR is always set so restarts don't stall on TIME_WAIT.
type Listener struct {
	tcp *net.TCPListener
}

// acceptPollInterval bounds how long Accept blocks before Listener
// rechecks the caller's shutdown condition. Short enough that
// Server.Shutdown is responsive, long enough to not busy-loop.
const acceptPollInterval = 100 * time.Microsecond

// NewListener binds a listening socket. host is nil to bind to all
// interfaces (dual-stack), or a specific hostname/IP to bind to one
// family.
func NewListener(host *string, port uint16) (*Listener, error) {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var controlErr error
			err := c.Control(func(fd uintptr) {
				controlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
				if controlErr != nil {
					return
				}
				if network == "tcp6" {
					controlErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 0)
				}
			})
			if err != nil {
				return err
			}
			return controlErr
		},
	}

	network := "tcp"
	addr := net.JoinHostPort("", strconv.Itoa(int(port)))
	if host != nil {
		addr = net.JoinHostPort(*host, strconv.Itoa(int(port)))
		if _, err := net.ResolveTCPAddr(network, addr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolveFailed, err)
		}
	} else {
		// Bind explicitly as IPv6 so the Control callback above can
		// clear IPV6_V6ONLY and accept v4-mapped addresses too.
		network = "tcp6"
		addr = net.JoinHostPort("::", strconv.Itoa(int(port)))
	}

	ln, err := lc.Listen(context.Background(), network, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBindFailed, err)
	}
	tcpLn, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		return nil, fmt.Errorf("%w: listener is not a TCP listener", ErrListenFailed)
	}
	return &Listener{tcp: tcpLn}, nil
}

// errAcceptTimeout is returned by Accept when no connection arrived
// within acceptPollInterval; it implements net.Error so callers can
// distinguish it from a real accept failure with errors.As or a type
// assertion to net.Error and Timeout().
type errAcceptTimeout struct{ error }

func (errAcceptTimeout) Timeout() bool   { return true }
func (errAcceptTimeout) Temporary() bool { return true }

// Accept waits for and returns the next connection, or an error
// satisfying net.Error with Timeout() true if none arrived within
// acceptPollInterval. Callers (the Server's accept loop) should treat
// a timeout as "check shutdown and try again".
func (l *Listener) Accept() (net.Conn, error) {
	if err := l.tcp.SetDeadline(time.Now().Add(acceptPollInterval)); err != nil {
		return nil, err
	}
	conn, err := l.tcp.Accept()
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, errAcceptTimeout{err}
		}
		return nil, err
	}
	return conn, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.tcp.Addr()
}

// Close closes the listening socket.
func (l *Listener) Close() error {
	return l.tcp.Close()
}
