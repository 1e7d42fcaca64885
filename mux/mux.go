package mux

import (
	"context"

	"github.com/thistlecode/gemini"
)

// Mux routes Gemini requests to the appropriate handler based on the
// request URI's path.
type Mux struct {
	RouteHandlers   []*RouteHandler
	NotFoundHandler gemini.Handler
}

// NewMux creates a new Mux for routing requests.
func NewMux() *Mux {
	return &Mux{
		RouteHandlers:   make([]*RouteHandler, 0),
		NotFoundHandler: gemini.NotFoundHandler,
	}
}

// AddRoute to the mux.
func (m *Mux) AddRoute(pattern string, handler gemini.Handler) {
	rh := &RouteHandler{
		Route:   NewRoute(pattern),
		Handler: handler,
	}
	m.RouteHandlers = append(m.RouteHandlers, rh)
}

// RouteHandler is the Handler to use for a given Route.
type RouteHandler struct {
	Route   *Route
	Handler gemini.Handler
}

// contextKey used to store the route handler in the request context.
type contextKey string

// matchedRouteContextKey is the key stored in the context.
const matchedRouteContextKey = contextKey("matchedRoute")

// MatchedRoute is provided in the context to Gemini handlers that use the router.
type MatchedRoute struct {
	Pattern  string
	PathVars map[string]string
}

// Respond implements gemini.Handler, dispatching to the first route
// whose pattern matches u's path.
func (m *Mux) Respond(ctx context.Context, u *gemini.URI, client *gemini.Client) gemini.Response {
	for _, rh := range m.RouteHandlers {
		v, ok := rh.Route.MatchURI(u)
		if ok {
			mr := MatchedRoute{
				Pattern:  rh.Route.Pattern,
				PathVars: v,
			}
			ctx = context.WithValue(ctx, matchedRouteContextKey, mr)
			return rh.Handler.Respond(ctx, u, client)
		}
	}
	return m.NotFoundHandler.Respond(ctx, u, client)
}

// GetMatchedRoute returns the route that was matched by the router, along with any path variables extracted from the URL.
func GetMatchedRoute(ctx context.Context) (mr MatchedRoute, ok bool) {
	mr, ok = ctx.Value(matchedRouteContextKey).(MatchedRoute)
	return mr, ok
}
