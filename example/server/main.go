package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/thistlecode/gemini"
	"github.com/thistlecode/gemini/mux"
)

func main() {
	// Handlers for a domain (a.gemini).
	okHandler := gemini.HandlerFunc(func(ctx context.Context, u *gemini.URI, client *gemini.Client) gemini.Response {
		return gemini.NewResponseText(gemini.CodeSuccess, gemini.DefaultMIMEType, "OK")
	})

	helloHandler := gemini.HandlerFunc(func(ctx context.Context, u *gemini.URI, client *gemini.Client) gemini.Response {
		cert, ok := client.Certificate()
		if !ok {
			return gemini.NewResponseText(gemini.CodeSuccess, gemini.DefaultMIMEType, "# Hello, user!\n\nYou're not authenticated.\n")
		}
		return gemini.NewResponseText(gemini.CodeSuccess, gemini.DefaultMIMEType,
			fmt.Sprintf("# Hello, user!\n\nCertificate: %x\n", cert))
	})

	// Router for gemini://a.gemini/require_cert and gemini://a.gemini/public
	routerA := mux.NewMux()
	routerA.AddRoute("/require_cert", gemini.RequireCertificateHandler(helloHandler, nil))
	routerA.AddRoute("/public", okHandler)

	// File system handler for gemini://b.gemini/{path}
	handlerB := gemini.FileSystemHandler(gemini.Dir("./content"))

	domains := gemini.NewDomainHandler()
	domains.AddDomain("a.gemini", routerA)
	domains.AddDomain("b.gemini", handlerB)

	srv := gemini.NewServer(nil, 1965, domains)
	srv.UseCertificateForHost("a.gemini", "a.crt", "a.key")
	srv.UseCertificateForHost("b.gemini", "b.crt", "b.key")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		log.Fatal("error:", err)
	}
}
