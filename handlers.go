package gemini

import (
	"context"
	"strings"
)

// RedirectTemporaryHandler returns a handler that issues a temporary
// redirect (30) to the given URI.
func RedirectTemporaryHandler(to string) Handler {
	return HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		return NewResponse(CodeRedirect, to)
	})
}

// RedirectPermanentHandler returns a handler that issues a permanent
// redirect (31) to the given URI.
func RedirectPermanentHandler(to string) Handler {
	return HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		return NewResponse(CodeRedirectPermanent, to)
	})
}

// StripPrefixHandler strips prefix from the incoming request's path
// before delegating to h. If the path doesn't carry prefix, it
// responds with NotFoundHandler instead of calling h.
func StripPrefixHandler(prefix string, h Handler) Handler {
	if prefix == "" {
		return h
	}
	return HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		raw := u.RawPath()
		p := strings.TrimPrefix(raw, prefix)
		if len(p) == len(raw) {
			return NotFoundHandler.Respond(ctx, u, client)
		}
		stripped, err := NewURI(u.withRawPath(p))
		if err != nil {
			return NotFoundHandler.Respond(ctx, u, client)
		}
		return h.Respond(ctx, stripped, client)
	})
}

// Authoriser decides whether a client bearing the given certificate is
// allowed to use a RequireCertificateHandler.
type Authoriser func(certificate []byte, verified bool) bool

// AuthoriserAllowAll allows any client that presented a certificate.
func AuthoriserAllowAll(certificate []byte, verified bool) bool {
	return true
}

// RequireCertificateHandler wraps h so that a client presenting no
// certificate gets CodeCertificateRequired, and one rejected by
// authoriser (AuthoriserAllowAll if nil) gets
// CodeCertificateNotAuthorised.
func RequireCertificateHandler(h Handler, authoriser Authoriser) Handler {
	if authoriser == nil {
		authoriser = AuthoriserAllowAll
	}
	return HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		cert, ok := client.Certificate()
		if !ok {
			return NewResponse(CodeCertificateRequired, "client certificate required")
		}
		if !authoriser(cert, client.CertificateVerified()) {
			return NewResponse(CodeCertificateNotAuthorised, "client certificate not authorised")
		}
		return h.Respond(ctx, u, client)
	})
}
