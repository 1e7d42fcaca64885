package gemini

import (
	"context"
	"testing"
)

func TestRedirectHandlers(t *testing.T) {
	tests := []struct {
		name         string
		handler      Handler
		expectedCode Code
	}{
		{"temporary", RedirectTemporaryHandler("/new"), CodeRedirect},
		{"permanent", RedirectPermanentHandler("/new"), CodeRedirectPermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := respond(t, tt.handler, "gemini://example.com/old")
			if resp.Code() != tt.expectedCode {
				t.Errorf("expected code %v, got %v", tt.expectedCode, resp.Code())
			}
			if resp.Meta() != "/new" {
				t.Errorf("expected meta %q, got %q", "/new", resp.Meta())
			}
		})
	}
}

func TestStripPrefixHandler(t *testing.T) {
	inner := HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		return NewResponseText(CodeSuccess, DefaultMIMEType, u.Path())
	})

	tests := []struct {
		name         string
		prefix       string
		url          string
		expectedCode Code
		expectedBody string
	}{
		{"empty prefix passes through unchanged", "", "gemini://example.com/foo/bar", CodeSuccess, "/foo/bar"},
		{"matching prefix is stripped", "/foo", "gemini://example.com/foo/bar", CodeSuccess, "/bar"},
		{"non-matching prefix falls back to not found", "/other", "gemini://example.com/foo/bar", CodeNotFound, ""},
		{"prefix survives a percent-escaped path", "/foo", "gemini://example.com/foo/a%2Fb", CodeSuccess, "/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := StripPrefixHandler(tt.prefix, inner)
			resp := respond(t, h, tt.url)
			if resp.Code() != tt.expectedCode {
				t.Errorf("expected code %v, got %v", tt.expectedCode, resp.Code())
			}
			if body := readBody(t, resp); body != tt.expectedBody {
				t.Errorf("expected body %q, got %q", tt.expectedBody, body)
			}
		})
	}
}

func TestRequireCertificateHandler(t *testing.T) {
	protected := HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		return NewResponseText(CodeSuccess, DefaultMIMEType, "secret")
	})

	t.Run("no certificate presented", func(t *testing.T) {
		h := RequireCertificateHandler(protected, nil)
		resp := h.Respond(context.Background(), mustURI(t, "gemini://example.com/"), &Client{})
		if resp.Code() != CodeCertificateRequired {
			t.Errorf("expected code %v, got %v", CodeCertificateRequired, resp.Code())
		}
	})

	t.Run("authoriser rejects", func(t *testing.T) {
		client := &Client{certificate: []byte("der-bytes")}
		h := RequireCertificateHandler(protected, func(certificate []byte, verified bool) bool { return false })
		resp := h.Respond(context.Background(), mustURI(t, "gemini://example.com/"), client)
		if resp.Code() != CodeCertificateNotAuthorised {
			t.Errorf("expected code %v, got %v", CodeCertificateNotAuthorised, resp.Code())
		}
	})

	t.Run("default authoriser allows any certificate", func(t *testing.T) {
		client := &Client{certificate: []byte("der-bytes")}
		h := RequireCertificateHandler(protected, nil)
		resp := h.Respond(context.Background(), mustURI(t, "gemini://example.com/"), client)
		if resp.Code() != CodeSuccess {
			t.Errorf("expected code %v, got %v", CodeSuccess, resp.Code())
		}
	})
}

func mustURI(t *testing.T, s string) *URI {
	t.Helper()
	u, err := NewURI(s)
	if err != nil {
		t.Fatalf("failed to parse URI %q: %v", s, err)
	}
	return u
}
