package gemini

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DialResponse is the response a Dialer receives from a Gemini server:
// a parsed status line followed by the raw body stream.
type DialResponse struct {
	Code Code
	Meta string
	Body io.ReadCloser
}

// ErrInvalidStatus is returned if the server's response did not match
// the expected "<code> <meta>\r\n" format.
var ErrInvalidStatus = errors.New("gemini: server status did not match the expected format")

// ErrInvalidCode is returned if the server returns a code outside 10-69.
var ErrInvalidCode = errors.New("gemini: invalid code")

// ErrInvalidMeta is returned if the server's meta exceeds 1024 bytes.
var ErrInvalidMeta = errors.New("gemini: invalid meta")

// ErrCrLfNotFoundWithinMaxLength is returned if no CRLF terminator is
// found within the maximum allowed header length.
var ErrCrLfNotFoundWithinMaxLength = errors.New("gemini: invalid header - CRLF not found within maximum length")

func readDialResponse(r io.ReadCloser) (resp *DialResponse, err error) {
	statusLine, ok, err := readUntilCrLf(r, 1029)
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to read status line: %w", err)
	}
	if !ok {
		return nil, ErrCrLfNotFoundWithinMaxLength
	}
	parts := strings.SplitN(string(statusLine), " ", 2)
	if len(parts) != 1 && len(parts) != 2 {
		return nil, ErrInvalidStatus
	}
	n, parseErr := strconv.Atoi(parts[0])
	if parseErr != nil || n < 10 || n > 69 {
		return nil, ErrInvalidCode
	}
	resp = &DialResponse{Code: Code(n), Body: r}
	if len(parts) > 1 {
		if len(parts[1]) > 1024 {
			return nil, ErrInvalidMeta
		}
		resp.Meta = parts[1]
	}
	return resp, nil
}

// readUntilCrLf reads src byte by byte until a CRLF sequence is found
// (not included in output) or maxLength bytes have been read.
func readUntilCrLf(src io.Reader, maxLength int) (output []byte, ok bool, err error) {
	var previousIsCr bool
	buffer := make([]byte, 1)
	for i := 0; i < maxLength; i++ {
		if _, err = src.Read(buffer); err != nil {
			return
		}
		current := buffer[0]
		if current == '\n' && previousIsCr {
			output = output[:len(output)-1]
			ok = true
			return
		}
		previousIsCr = current == '\r'
		output = append(output, buffer[0])
	}
	return
}

// Dialer is a Gemini-requesting client: it drives requests at a
// Gemini server, optionally presenting a client certificate and
// pinning server certificates by hash (trust-on-first-use). It is
// used by the "request" CLI subcommand, the reference TUI browser in
// browse, and the integration tests that exercise Server
// end to end over real TLS connections.
type Dialer struct {
	prefixToCertificate            map[string]tls.Certificate
	domainToAllowedCertificateHash map[string]map[string]struct{}

	// Insecure disables server certificate hash checking.
	Insecure     bool
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

// NewDialer creates a Dialer with sane default timeouts.
func NewDialer() *Dialer {
	return &Dialer{
		prefixToCertificate:            make(map[string]tls.Certificate),
		domainToAllowedCertificateHash: make(map[string]map[string]struct{}),
		WriteTimeout:                   time.Second * 5,
		ReadTimeout:                    time.Second * 5,
	}
}

// AddClientCertificate registers cert to be presented when the
// requested URL starts with prefix.
func (d *Dialer) AddClientCertificate(prefix string, cert tls.Certificate) {
	d.prefixToCertificate[prefix] = cert
}

// TrustServerCertificate pins host to a known-good certificate hash,
// used by RequestURL's trust-on-first-use check.
func (d *Dialer) TrustServerCertificate(host, certificateHash string) {
	host = strings.ToLower(host)
	if d.domainToAllowedCertificateHash[host] == nil {
		d.domainToAllowedCertificateHash[host] = make(map[string]struct{})
	}
	d.domainToAllowedCertificateHash[host][certificateHash] = struct{}{}
}

func (d *Dialer) certificateFor(u *url.URL) (cert tls.Certificate, ok bool) {
	for prefix, c := range d.prefixToCertificate {
		if strings.HasPrefix(u.String(), prefix) {
			return c, true
		}
	}
	return tls.Certificate{}, false
}

// Request parses rawURL and performs a request against it.
func (d *Dialer) Request(ctx context.Context, rawURL string) (resp *DialResponse, certificates []string, trusted bool, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, false, err
	}
	return d.RequestURL(ctx, u)
}

// RequestURL performs a TLS Gemini request against u. trusted is true
// if the server's certificate hash is already pinned via
// TrustServerCertificate. If it is not pinned, the request is only
// made when Insecure is set, and trusted is still false.
func (d *Dialer) RequestURL(ctx context.Context, u *url.URL) (resp *DialResponse, certificates []string, trusted bool, err error) {
	tlsDialer := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: d.ReadTimeout},
		Config:    &tls.Config{InsecureSkipVerify: true},
	}
	if cert, ok := d.certificateFor(u); ok {
		tlsDialer.Config.Certificates = []tls.Certificate{cert}
	}

	port := u.Port()
	if port == "" {
		port = "1965"
	}
	cn, err := tlsDialer.DialContext(ctx, "tcp", net.JoinHostPort(u.Hostname(), port))
	if err != nil {
		return nil, nil, false, fmt.Errorf("gemini: error connecting: %w", err)
	}
	conn := cn.(*tls.Conn)

	allowed := d.domainToAllowedCertificateHash[strings.ToLower(u.Host)]
	now := time.Now()
	for _, cert := range conn.ConnectionState().PeerCertificates {
		if now.Before(cert.NotBefore) {
			conn.Close()
			return nil, nil, false, fmt.Errorf("gemini: server certificate not yet valid")
		}
		if now.After(cert.NotAfter) {
			conn.Close()
			return nil, nil, false, fmt.Errorf("gemini: server certificate has expired")
		}
		hash := base64.StdEncoding.EncodeToString(sha256sum(cert.Raw))
		certificates = append(certificates, hash)
		if _, ok := allowed[hash]; ok {
			trusted = true
			break
		}
	}
	if !trusted && !d.Insecure {
		conn.Close()
		return nil, certificates, false, nil
	}

	resp, err = d.RequestConn(ctx, conn, u)
	return resp, certificates, trusted, err
}

func sha256sum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

type readerCtx struct {
	ctx context.Context
	r   io.ReadCloser
}

func (r *readerCtx) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

func (r *readerCtx) Close() error { return r.r.Close() }

// RequestConn performs a request over an already-established
// connection, allowing a caller to dial without TLS for local testing.
func (d *Dialer) RequestConn(ctx context.Context, conn net.Conn, u *url.URL) (resp *DialResponse, err error) {
	conn.SetWriteDeadline(time.Now().Add(d.WriteTimeout))
	if _, err = conn.Write([]byte(u.String() + "\r\n")); err != nil {
		return nil, fmt.Errorf("gemini: error writing request: %w", err)
	}
	conn.SetReadDeadline(time.Now().Add(d.ReadTimeout))
	return readDialResponse(&readerCtx{ctx: ctx, r: conn})
}
