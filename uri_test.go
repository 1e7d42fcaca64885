package gemini

import "testing"

func TestURIScenarios(t *testing.T) {
	var tests = []struct {
		input    string
		scheme   string
		host     string
		port     uint16
		hasPort  bool
		path     string
		input2   string
		hasInput bool
	}{
		{
			input:  "gemini://snowymouse.com",
			scheme: "gemini",
			host:   "snowymouse.com",
			path:   "",
		},
		{
			input:   "gemini://snowymouse.com:1965/post/9-this-site-is-now-live-on-geminispace",
			scheme:  "gemini",
			host:    "snowymouse.com",
			port:    1965,
			hasPort: true,
			path:    "/post/9-this-site-is-now-live-on-geminispace",
		},
		{
			input:    "gemini://snowymouse.com:1965/some/form?test%20value",
			scheme:   "gemini",
			host:     "snowymouse.com",
			port:     1965,
			hasPort:  true,
			path:     "/some/form",
			input2:   "test value",
			hasInput: true,
		},
		{
			input:  "file:///",
			scheme: "file",
			host:   "",
			path:   "/",
		},
		{
			input:  "gemini://[::1]",
			scheme: "gemini",
			host:   "[::1]",
			path:   "",
		},
		{
			input:   "gemini://[::1]:1965",
			scheme:  "gemini",
			host:    "[::1]",
			port:    1965,
			hasPort: true,
			path:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			u, err := NewURI(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := u.Scheme(); got != tt.scheme {
				t.Errorf("Scheme() = %q, want %q", got, tt.scheme)
			}
			if got := u.Host(); got != tt.host {
				t.Errorf("Host() = %q, want %q", got, tt.host)
			}
			if got, ok := u.Port(); got != tt.port || ok != tt.hasPort {
				t.Errorf("Port() = (%d, %v), want (%d, %v)", got, ok, tt.port, tt.hasPort)
			}
			if got := u.Path(); got != tt.path {
				t.Errorf("Path() = %q, want %q", got, tt.path)
			}
			if got, ok := u.Input(); got != tt.input2 || ok != tt.hasInput {
				t.Errorf("Input() = (%q, %v), want (%q, %v)", got, ok, tt.input2, tt.hasInput)
			}
			if got := u.String(); got != tt.input {
				t.Errorf("String() = %q, want %q (round-trip)", got, tt.input)
			}
		})
	}
}

func TestURIRejections(t *testing.T) {
	var rejected = []string{
		"asdf",
		"gemini:/snowymouse.com",
		"gemini://snowymouse.com::1965",
		"gemini://[::1",
		"gemini://[::1:1965",
		"gemini://snowymouse.com:65536",
		"gemini://snowymouse.com:-1234",
		"gemini://snowymouse.com:notarealport",
		"gemini://snowymouse.com:1234notarealport",
	}
	for _, in := range rejected {
		t.Run(in, func(t *testing.T) {
			if _, err := NewURI(in); err == nil {
				t.Errorf("NewURI(%q) succeeded, want ErrInvalidURI", in)
			}
		})
	}
}

func TestURISchemeHasNoColon(t *testing.T) {
	u, err := NewURI("gemini://snowymouse.com:1965/path")
	if err != nil {
		t.Fatal(err)
	}
	scheme := u.Scheme()
	for _, c := range scheme {
		if c == ':' {
			t.Fatalf("scheme %q contains a colon", scheme)
		}
	}
}

func TestURIDecodeIdempotentWithoutPercent(t *testing.T) {
	if got := decodePercent("already/decoded/path"); got != "already/decoded/path" {
		t.Errorf("decodePercent modified a string with no %%: %q", got)
	}
}

func TestURIInvalidEscapeLeftLiteral(t *testing.T) {
	if got := decodePercent("100%-off"); got != "100%-off" {
		t.Errorf("decodePercent(%q) = %q, want unchanged", "100%-off", got)
	}
}

func TestURIAssignReplacesInPlace(t *testing.T) {
	u, err := NewURI("gemini://a.example/")
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Assign("gemini://b.example/path"); err != nil {
		t.Fatal(err)
	}
	if got := u.Host(); got != "b.example" {
		t.Errorf("Host() = %q after reassignment, want b.example", got)
	}
}

func TestURIAssignRejectsLeaveUriUnchanged(t *testing.T) {
	u, err := NewURI("gemini://a.example/")
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Assign("not-a-uri"); err == nil {
		t.Fatal("expected error")
	}
	if got := u.Host(); got != "a.example" {
		t.Errorf("Host() = %q after failed reassignment, want unchanged a.example", got)
	}
}

func TestURIEqual(t *testing.T) {
	a, _ := NewURI("gemini://a.example/")
	b, _ := NewURI("gemini://a.example/")
	c, _ := NewURI("gemini://b.example/")
	if !a.Equal(b) {
		t.Error("expected a.Equal(b)")
	}
	if a.Equal(c) {
		t.Error("expected !a.Equal(c)")
	}
	if !a.EqualString("gemini://a.example/") {
		t.Error("expected a.EqualString to match raw input")
	}
}
