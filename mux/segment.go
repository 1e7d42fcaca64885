package mux

import (
	"fmt"
	"strings"
)

// Segment is one element of a Route's pattern, e.g. in
// "/users/{userid}/*" there are three segments: "users" (a literal),
// "{userid}" (a variable, captured under its own name) and "*" (a
// wildcard, captured under the "*" key with every path element it
// consumed).
type Segment struct {
	Name       string
	IsVariable bool
	IsWildcard bool
}

// String pretty prints the segment, for debugging.
func (ps *Segment) String() string {
	return fmt.Sprintf("{ Name: %v, IsVariable: %v, IsWildcard: %v }",
		ps.Name, ps.IsVariable, ps.IsWildcard)
}

// Match reports whether s, one element of a Gemini URI's decoded
// path, satisfies this route segment.
func (ps *Segment) Match(s string) (name string, capture bool, wildcard bool, matches bool) {
	if ps.IsWildcard {
		wildcard = true
		matches = true
		name = "*"
		capture = true
		return
	}
	if ps.IsVariable {
		name = ps.Name
		capture = true
		matches = true
		return
	}
	if strings.EqualFold(s, ps.Name) {
		matches = true
		return
	}
	return
}
