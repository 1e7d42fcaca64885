package gemini

import (
	"context"
	"strings"
)

// DomainHandler routes requests to a per-host Handler based on the
// request URI's Host, enabling one Server (and the TLSContext's SNI
// certificate selection) to serve several virtual hosts.
type DomainHandler struct {
	domains         map[string]Handler
	NotFoundHandler Handler
}

// NewDomainHandler creates an empty DomainHandler; register hosts with
// AddDomain.
func NewDomainHandler() *DomainHandler {
	return &DomainHandler{
		domains:         make(map[string]Handler),
		NotFoundHandler: NotFoundHandler,
	}
}

// AddDomain registers handler to serve requests whose Host matches
// domain, case-insensitively.
func (d *DomainHandler) AddDomain(domain string, handler Handler) {
	d.domains[strings.ToLower(domain)] = handler
}

// Respond implements Handler, dispatching by u.Host().
func (d *DomainHandler) Respond(ctx context.Context, u *URI, client *Client) Response {
	h, ok := d.domains[strings.ToLower(u.Host())]
	if !ok {
		return d.NotFoundHandler.Respond(ctx, u, client)
	}
	return h.Respond(ctx, u, client)
}
