package mux

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/thistlecode/gemini"
)

func TestMux(t *testing.T) {
	var tests = []struct {
		name          string
		routeHandlers []*RouteHandler
		requestURL    string
		expectedCode  gemini.Code
		expectedMeta  string
		expectedBody  string
	}{
		{
			name:          "if no routes match, the NotFoundHandler is used",
			routeHandlers: []*RouteHandler{},
			requestURL:    "gemini://example.com/not_found",
			expectedCode:  gemini.CodeNotFound,
			expectedMeta:  "not found",
		},
		{
			name: "matching routes go to the correct handler",
			routeHandlers: []*RouteHandler{
				{
					Route: NewRoute("/route/a"),
					Handler: gemini.HandlerFunc(func(ctx context.Context, u *gemini.URI, c *gemini.Client) gemini.Response {
						return gemini.NewResponseText(gemini.CodeSuccess, gemini.DefaultMIMEType, "a")
					}),
				},
				{
					Route: NewRoute("/route/b"),
					Handler: gemini.HandlerFunc(func(ctx context.Context, u *gemini.URI, c *gemini.Client) gemini.Response {
						return gemini.NewResponseText(gemini.CodeSuccess, gemini.DefaultMIMEType, "b")
					}),
				},
			},
			requestURL:   "gemini://example.com/route/b",
			expectedCode: gemini.CodeSuccess,
			expectedMeta: gemini.DefaultMIMEType,
			expectedBody: "b",
		},
		{
			name: "route information is available to the handler",
			routeHandlers: []*RouteHandler{
				{
					Route: NewRoute("/user/{id}/{section}"),
					Handler: gemini.HandlerFunc(func(ctx context.Context, u *gemini.URI, c *gemini.Client) gemini.Response {
						mr, ok := GetMatchedRoute(ctx)
						if !ok {
							t.Fatalf("failed to get matched route")
						}
						output := fmt.Sprintf("%v\n%v", mr.Pattern, mr.PathVars)
						return gemini.NewResponseText(gemini.CodeSuccess, gemini.DefaultMIMEType, output)
					}),
				},
			},
			requestURL:   "gemini://example.com/user/user213/settings",
			expectedCode: gemini.CodeSuccess,
			expectedMeta: gemini.DefaultMIMEType,
			expectedBody: "/user/{id}/{section}\nmap[id:user213 section:settings]",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := NewMux()
			h.RouteHandlers = tt.routeHandlers
			u, err := gemini.NewURI(tt.requestURL)
			if err != nil {
				t.Fatalf("failed to parse URL %q: %v", tt.requestURL, err)
			}
			resp := h.Respond(context.Background(), u, nil)
			if tt.expectedCode != resp.Code() {
				t.Errorf("expected code %v, got %v", tt.expectedCode, resp.Code())
			}
			if tt.expectedMeta != resp.Meta() {
				t.Errorf("expected meta %q, got %q", tt.expectedMeta, resp.Meta())
			}
			var bdy []byte
			if br := resp.BodyReader(); br != nil {
				bdy, err = io.ReadAll(br)
				if err != nil {
					t.Fatalf("unexpected error reading body: %v", err)
				}
			}
			if tt.expectedBody != string(bdy) {
				t.Errorf("expected\n%v\nactual\n%v", tt.expectedBody, string(bdy))
			}
		})
	}
}

func TestAddRoute(t *testing.T) {
	m := NewMux()
	m.AddRoute("/test", gemini.HandlerFunc(func(ctx context.Context, u *gemini.URI, c *gemini.Client) gemini.Response {
		return gemini.NewResponseText(gemini.CodeSuccess, gemini.DefaultMIMEType, "Hello")
	}))
	if len(m.RouteHandlers) != 1 {
		t.Errorf("expected 1 route handler to be added, got %d", len(m.RouteHandlers))
	}
}
