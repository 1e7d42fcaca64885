package gemini

import (
	"context"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thistlecode/gemini/cert"
)

func TestServerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	certPEM, keyPEM, err := cert.Generate("gemini-test", "localhost", "localhost,127.0.0.1", 24*time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test certificate: %v", err)
	}

	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	if err := os.WriteFile(certFile, certPEM, 0o600); err != nil {
		t.Fatalf("failed to write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}

	handler := HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		return NewResponseText(CodeSuccess, DefaultMIMEType, "# Hello")
	})

	host := "127.0.0.1"
	srv := NewServer(&host, 0, handler)
	srv.UseCertificateFile(certFile)
	srv.UsePrivateKeyFile(keyFile)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Addr() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	addr := srv.Addr()
	if addr == nil {
		cancel()
		t.Fatalf("server did not bind a listening address in time")
	}

	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
		cancel()
		<-errCh
	}()

	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		t.Fatalf("failed to split listener address %q: %v", addr.String(), err)
	}

	dialer := NewDialer()
	dialer.Insecure = true

	u, err := url.Parse("gemini://" + host + ":" + port + "/")
	if err != nil {
		t.Fatalf("failed to parse request url: %v", err)
	}

	resp, _, _, err := dialer.RequestURL(ctx, u)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.Code != CodeSuccess {
		t.Errorf("expected CodeSuccess, got %v", resp.Code)
	}
}
