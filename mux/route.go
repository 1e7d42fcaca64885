package mux

import (
	"strings"

	"github.com/thistlecode/gemini"
)

// Route is a Gemini request path pattern split into segments, e.g.
// "/users/{userid}" splits into the literal "users" and the variable
// "{userid}".
type Route struct {
	Pattern  string
	Segments []*Segment
}

// NewRoute creates a route based on a pattern, e.g. "/users/{userid}"
// or "/static/*".
func NewRoute(pattern string) *Route {
	var r Route
	r.Pattern = pattern

	trimmed := strings.TrimSuffix(pattern, "/")
	trimmed = strings.TrimPrefix(trimmed, "/")

	for _, seg := range strings.Split(trimmed, "/") {
		ps := &Segment{
			Name: seg,
		}
		if seg == "*" {
			ps.IsWildcard = true
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			ps.IsVariable = true
			ps.Name = strings.TrimSuffix(strings.TrimPrefix(seg, "{"), "}")
		}
		r.Segments = append(r.Segments, ps)
	}

	return &r
}

// MatchURI reports whether r matches u's decoded path, splitting it
// into segments the way Mux.Respond needs them.
func (r Route) MatchURI(u *gemini.URI) (vars map[string]string, ok bool) {
	p := strings.TrimSuffix(u.Path(), "/")
	p = strings.TrimPrefix(p, "/")
	return r.Match(strings.Split(p, "/"))
}

// Match returns whether the route was matched against segments (a
// request path already split on "/"), and extracts any captured
// variables. A matched wildcard segment additionally captures every
// path element it consumed, in request order joined by "/", under the
// "*" key.
func (r Route) Match(segments []string) (vars map[string]string, ok bool) {
	vars = make(map[string]string)
	var wildcardTail []string
	var wildcard bool
	for i := 0; i < len(r.Segments); i++ {
		routeSegment := r.Segments[len(r.Segments)-1-i]
		inputSegmentIndex := len(segments) - 1 - i
		var inputSegment string
		if inputSegmentIndex > -1 {
			inputSegment = segments[inputSegmentIndex]
		}
		name, capture, wildcardMatch, matches := routeSegment.Match(inputSegment)
		if matches {
			if wildcardMatch {
				wildcard = true
			} else {
				wildcard = false
			}
		}
		if wildcard {
			matches = true
		}
		if !matches {
			return
		}
		if capture {
			if wildcardMatch {
				if inputSegmentIndex > -1 {
					wildcardTail = append([]string{inputSegment}, wildcardTail...)
				}
				continue
			}
			vars[name] = inputSegment
		}
	}
	if len(wildcardTail) > 0 {
		vars["*"] = strings.Join(wildcardTail, "/")
	}
	ok = true
	return
}
