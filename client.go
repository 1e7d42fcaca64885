package gemini

import (
	"fmt"
	"net"
)

// Client is the per-connection context passed to a Handler. It is
// created by the Server when a connection is accepted and is only
// valid for the lifetime of that connection's Handler.Respond call.
//
// This is distinct from Dialer, which is a Gemini-requesting client
// used to drive requests *at* a server (for the CLI, the reference
// TUI browser, and integration tests).
type Client struct {
	addr net.Addr

	certificate []byte
	verified    bool
}

// IPAddress returns the string form of the peer's address. It returns
// ErrBadState if the client was constructed without an address, which
// should not happen for a Client obtained from a live connection.
func (c *Client) IPAddress() (string, error) {
	if c.addr == nil {
		return "", ErrBadState
	}
	host, _, err := net.SplitHostPort(c.addr.String())
	if err != nil {
		// Addr didn't carry a port (e.g. a test double); fall back to
		// the raw string form.
		return c.addr.String(), nil
	}
	return host, nil
}

// Certificate returns the DER bytes of the certificate the peer
// presented during the TLS handshake, and true if one was presented.
func (c *Client) Certificate() ([]byte, bool) {
	if c.certificate == nil {
		return nil, false
	}
	return c.certificate, true
}

// CertificateVerified reports whether the presented certificate was
// verified against a CA pool. The core never configures client CA
// verification itself (see Non-goals); this simply surfaces whatever
// tls.ConnectionState reported.
func (c *Client) CertificateVerified() bool {
	return c.verified
}

func (c *Client) String() string {
	addr, err := c.IPAddress()
	if err != nil {
		return fmt.Sprintf("client(%v)", err)
	}
	return addr
}
