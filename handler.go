package gemini

import "context"

// Handler is the single abstraction a host application implements to
// serve Gemini content. It is the one polymorphism point the core
// depends on: everything else (socket lifecycle, TLS, framing) is
// owned by the Server.
type Handler interface {
	Respond(ctx context.Context, u *URI, client *Client) Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, u *URI, client *Client) Response

// Respond calls f.
func (f HandlerFunc) Respond(ctx context.Context, u *URI, client *Client) Response {
	return f(ctx, u, client)
}

// NotFoundHandler is a Handler that always responds with CodeNotFound.
var NotFoundHandler Handler = HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
	return NewResponse(CodeNotFound, "not found")
})

// BadRequestHandler is a Handler that always responds with CodeBadRequest.
var BadRequestHandler Handler = HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
	return NewResponse(CodeBadRequest, "bad request")
})
