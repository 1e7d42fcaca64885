package gemini

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestReadRequestURI(t *testing.T) {
	tests := []struct {
		name        string
		request     string
		expectErr   bool
		expectedRaw string
	}{
		{
			name:        "a well formed request is parsed",
			request:     "gemini://example.com/\r\n",
			expectedRaw: "gemini://example.com/",
		},
		{
			name:      "a non-gemini scheme is rejected",
			request:   "https://example.com/\r\n",
			expectErr: true,
		},
		{
			name:      "a request with no CRLF within the limit is rejected",
			request:   longString("a", maxRequestLine+10),
			expectErr: true,
		},
		{
			name:      "an invalid URI is rejected",
			request:   "not a uri\r\n",
			expectErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			u, err := readRequestURI(strings.NewReader(tt.request))
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.String() != tt.expectedRaw {
				t.Errorf("expected %q, got %q", tt.expectedRaw, u.String())
			}
		})
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	u, err := NewURI("gemini://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		panic("handler blew up")
	})
	resp := dispatch(context.Background(), h, u, &Client{})
	if resp.Code() != CodeBadRequest {
		t.Errorf("expected CodeBadRequest, got %v", resp.Code())
	}
}

func TestWriteResponseHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	writeResponse(&buf, NewResponse(CodeInput, "what's your name?"))
	expected := "10 what's your name?\r\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestWriteResponseWithBody(t *testing.T) {
	var buf bytes.Buffer
	writeResponse(&buf, NewResponseText(CodeSuccess, "text/gemini", "# hi"))
	expected := "20 text/gemini\r\n# hi"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestWriteResponseStreamingBody(t *testing.T) {
	var buf bytes.Buffer
	writeResponse(&buf, NewResponseStream(CodeSuccess, "text/gemini", strings.NewReader("streamed")))
	expected := "20 text/gemini\r\nstreamed"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestWriteResponseProtocolViolations(t *testing.T) {
	tests := []struct {
		name   string
		resp   Response
		reason string
	}{
		{
			name:   "a body on a non-success code is rejected",
			resp:   NewResponseText(CodeTemporaryFailure, "oops", "body"),
			reason: "carries a body",
		},
		{
			name:   "an empty meta is rejected",
			resp:   NewResponse(CodeSuccess, ""),
			reason: "meta is empty",
		},
		{
			name:   "an oversized header is rejected",
			resp:   NewResponse(CodeSuccess, longString("a", maxHeaderLine)),
			reason: "byte limit",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			original := OnProtocolViolation
			defer func() { OnProtocolViolation = original }()

			var gotReason string
			called := false
			OnProtocolViolation = func(reason string) {
				called = true
				gotReason = reason
			}

			var buf bytes.Buffer
			writeResponse(&buf, tt.resp)

			if !called {
				t.Fatalf("expected OnProtocolViolation to be invoked")
			}
			if !strings.Contains(gotReason, tt.reason) {
				t.Errorf("expected reason to mention %q, got %q", tt.reason, gotReason)
			}
			if buf.Len() != 0 {
				t.Errorf("expected nothing written to the wire, got %q", buf.String())
			}
		})
	}
}

func TestWriteResponseStreamIsClosed(t *testing.T) {
	rc := &closeTrackingReader{Reader: strings.NewReader("data")}
	var buf bytes.Buffer
	writeResponse(&buf, NewResponseStream(CodeSuccess, "text/gemini", rc))
	if !rc.closed {
		t.Errorf("expected the stream to be closed after writing")
	}
}

type closeTrackingReader struct {
	io.Reader
	closed bool
}

func (c *closeTrackingReader) Close() error {
	c.closed = true
	return nil
}

func TestServerAlreadyRunning(t *testing.T) {
	s := NewServer(nil, 0, NotFoundHandler)
	s.mu.Lock()
	s.state = stateRunning
	s.mu.Unlock()

	err := s.Start(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestServerShutdownIdleIsNoop(t *testing.T) {
	s := NewServer(nil, 0, NotFoundHandler)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("unexpected error shutting down an idle server: %v", err)
	}
}

func longString(of string, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(of)
	}
	return sb.String()
}
