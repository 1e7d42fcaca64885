package gemini

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
)

// TLSContext is a scoped, server-side TLS configuration. It mirrors
// mousygem's SSLContext: certificate and private key files are set
// independently (as with OpenSSL's SSL_CTX_use_certificate_file and
// SSL_CTX_use_PrivateKey_file), and the underlying *tls.Config is
// assembled lazily the first time both are present.
//
// A context can also hold one certificate per virtual host (see
// UseCertificateForHost), in which case the built *tls.Config picks
// between them using the TLS ClientHello's SNI server name, falling
// back to the default certificate set via UseCertificateFile.
//
// TLS library initialisation itself is assumed to have happened
// before a TLSContext is constructed; NewTLSContext only creates the
// scoped configuration value.
type TLSContext struct {
	mu       sync.Mutex
	certFile string
	keyFile  string
	hostCert map[string]hostKeyPair
	built    *tls.Config
}

type hostKeyPair struct {
	certFile string
	keyFile  string
}

// NewTLSContext creates an empty TLS context. Call UseCertificateFile
// and UsePrivateKeyFile before the context is used by a Server.
func NewTLSContext() *TLSContext {
	return &TLSContext{hostCert: make(map[string]hostKeyPair)}
}

// UseCertificateFile sets the default PEM certificate file to use.
func (t *TLSContext) UseCertificateFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.certFile = path
	t.built = nil
}

// UsePrivateKeyFile sets the default PEM private key file to use.
func (t *TLSContext) UsePrivateKeyFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keyFile = path
	t.built = nil
}

// UseCertificateForHost registers a certificate/key pair to serve
// when a ClientHello's SNI server name matches host (case-insensitive).
func (t *TLSContext) UseCertificateForHost(host, certFile, keyFile string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hostCert[strings.ToLower(host)] = hostKeyPair{certFile: certFile, keyFile: keyFile}
	t.built = nil
}

// Config builds (if necessary) and returns the *tls.Config backing
// this context. It fails with ErrTLSInitFailed if no certificate/key
// pair has been configured (default or per-host) or if any pair
// doesn't load.
func (t *TLSContext) Config() (*tls.Config, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.built != nil {
		return t.built, nil
	}
	if t.certFile == "" && len(t.hostCert) == 0 {
		return nil, fmt.Errorf("%w: no certificate configured", ErrTLSInitFailed)
	}

	hostCerts := make(map[string]tls.Certificate, len(t.hostCert))
	for host, pair := range t.hostCert {
		cert, err := tls.LoadX509KeyPair(pair.certFile, pair.keyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: host %q: %v", ErrTLSInitFailed, host, err)
		}
		hostCerts[host] = cert
	}

	var defaultCert *tls.Certificate
	if t.certFile != "" {
		cert, err := tls.LoadX509KeyPair(t.certFile, t.keyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTLSInitFailed, err)
		}
		defaultCert = &cert
	}

	t.built = &tls.Config{
		MinVersion: tls.VersionTLS12,
		// Gemini servers request, but do not require, a client
		// certificate: surfacing it is the core's job, validating it
		// is the host's (see Non-goals).
		ClientAuth: tls.RequestClientCert,
		GetCertificate: func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
			if cert, ok := hostCerts[strings.ToLower(hello.ServerName)]; ok {
				return &cert, nil
			}
			if defaultCert != nil {
				return defaultCert, nil
			}
			return nil, fmt.Errorf("gemini: no certificate configured for host %q", hello.ServerName)
		},
	}
	return t.built, nil
}

// Close releases this context's resources. Safe to call multiple
// times; subsequent Config calls will fail until reconfigured.
func (t *TLSContext) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.certFile = ""
	t.keyFile = ""
	t.hostCert = make(map[string]hostKeyPair)
	t.built = nil
}
