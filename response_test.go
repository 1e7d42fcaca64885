package gemini

import (
	"bytes"
	"io"
	"testing"
)

func TestResponseHasBody(t *testing.T) {
	r := NewResponse(CodeNotFound, "not found")
	if r.HasBody() {
		t.Fatal("expected no body")
	}

	r2 := NewResponseText(CodeSuccess, "text/gemini", "hello")
	if !r2.HasBody() {
		t.Fatal("expected body")
	}

	r3 := NewResponseStream(CodeSuccess, "text/gemini", bytes.NewReader([]byte("hi")))
	if !r3.HasBody() {
		t.Fatal("expected body")
	}
}

func TestResponseClearBody(t *testing.T) {
	r := NewResponseText(CodeSuccess, "text/gemini", "hello")
	r.ClearBody()
	if r.HasBody() {
		t.Fatal("expected body cleared")
	}
}

func TestResponseSetters(t *testing.T) {
	r := NewResponse(CodeTemporaryFailure, "oops")
	r.SetCode(CodeSlowDown)
	r.SetMeta("60")
	if r.Code() != CodeSlowDown || r.Meta() != "60" {
		t.Fatalf("got (%v,%v)", r.Code(), r.Meta())
	}
}

func TestCodeIsSuccess(t *testing.T) {
	for code := Code(10); code <= 62; code++ {
		want := code >= 20 && code <= 29
		if got := code.IsSuccess(); got != want {
			t.Errorf("Code(%d).IsSuccess() = %v, want %v", code, got, want)
		}
	}
}

func TestCodeRangePredicates(t *testing.T) {
	tests := []struct {
		code                   Code
		input, redirect, certRequired bool
	}{
		{CodeInput, true, false, false},
		{CodeSensitiveInput, true, false, false},
		{CodeSuccess, false, false, false},
		{CodeRedirect, false, true, false},
		{CodeRedirectPermanent, false, true, false},
		{CodeTemporaryFailure, false, false, false},
		{CodePermanentFailure, false, false, false},
		{CodeCertificateRequired, false, false, true},
		{CodeCertificateNotValid, false, false, true},
	}
	for _, tt := range tests {
		if got := tt.code.IsInput(); got != tt.input {
			t.Errorf("Code(%d).IsInput() = %v, want %v", tt.code, got, tt.input)
		}
		if got := tt.code.IsRedirect(); got != tt.redirect {
			t.Errorf("Code(%d).IsRedirect() = %v, want %v", tt.code, got, tt.redirect)
		}
		if got := tt.code.IsCertificateRequired(); got != tt.certRequired {
			t.Errorf("Code(%d).IsCertificateRequired() = %v, want %v", tt.code, got, tt.certRequired)
		}
	}
}

func TestResponseBodyReader(t *testing.T) {
	r := NewResponse(CodeNotFound, "not found")
	if r.BodyReader() != nil {
		t.Fatal("expected nil reader for bodyless response")
	}

	r2 := NewResponseText(CodeSuccess, "text/gemini", "hello")
	b, err := readAll(r2.BodyReader())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("got %q, want %q", b, "hello")
	}

	r3 := NewResponseStream(CodeSuccess, "text/gemini", bytes.NewReader([]byte("hi")))
	b, err = readAll(r3.BodyReader())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "hi" {
		t.Fatalf("got %q, want %q", b, "hi")
	}
}

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}
