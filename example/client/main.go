package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"

	"github.com/thistlecode/gemini"
)

func main() {
	// Run the server example and ensure that the following lines are in your host file (e.g. /etc/hosts) to allow
	// the server to listen locally for the two domains.
	// 127.0.0.1	a.gemini
	// 127.0.0.1	b.gemini
	ctx := context.Background()
	dialer := gemini.NewDialer()

	// Make a request to the server without accepting its certificate.
	r, certificates, trusted, err := dialer.Request(ctx, "gemini://a.gemini/require_cert")
	if err != nil {
		log.Printf("Request failed: %v", err)
		return
	}
	if !trusted {
		log.Printf("Request won't be allowed unless the following certificates are accepted: %v", certificates)
	}

	// Try again with the certificate set.
	log.Println("Trying again with the certificate added manually.")
	dialer.TrustServerCertificate("a.gemini", certificates[0])

	// Try to access the authenticated area without a client certificate.
	r, _, trusted, err = dialer.Request(ctx, "gemini://a.gemini/require_cert")
	if err != nil {
		log.Fatalf("It should work with the certificate added, but got error %v", err)
	}
	if !trusted {
		log.Fatalf("It should have worked with the certificate added, but got trusted %v", trusted)
	}
	if r.Code != gemini.CodeCertificateRequired {
		log.Printf("Expected code %v, but got %v", gemini.CodeCertificateRequired, r.Code)
	} else {
		log.Println("The request was rejected because a client certificate is required. Let's try again...")
	}

	// Enable client authentication.
	clientCert, err := tls.LoadX509KeyPair("client.pem", "client.key")
	if err != nil {
		log.Fatalf("Failed to load keys: %v", err)
	}
	dialer.AddClientCertificate("gemini://a.gemini", clientCert)

	r, _, trusted, err = dialer.Request(ctx, "gemini://a.gemini/require_cert")
	if err != nil {
		log.Fatalf("Failed to access a.gemini with client certificate: %v", err)
	}
	fmt.Println("Trusted:", trusted)
	fmt.Println("Code:", r.Code)
	fmt.Println("Meta:", r.Meta)
	fmt.Println("")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Fatalf("failed to read body: %v", err)
	}
	fmt.Println(string(body))

	fmt.Println("Now attempting to access b.gemini...")
	dialer.TrustServerCertificate("b.gemini", certificates[0])
	r, certificates, trusted, err = dialer.Request(ctx, "gemini://b.gemini")
	if err != nil {
		log.Fatalf("Failed to access b.gemini: %v", err)
	}
	if !trusted {
		log.Fatalf("No known certificate for b.gemini, the server provided certificates: %v", certificates)
	}
	fmt.Printf("Received code %v, meta %q\n", r.Code, r.Meta)
	bdy, err := io.ReadAll(r.Body)
	if err != nil {
		log.Fatalf("Failed to read body: %v", err)
	}
	fmt.Println(string(bdy))
}
