package gemini

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %q: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %q: %v", path, err)
	}
}

func newFixtureDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a", "index.gmi"), "# a/index.gmi\n")
	mustWriteFile(t, filepath.Join(root, "b", "not_index"), "not the index\n")
	mustWriteFile(t, filepath.Join(root, "b", "c", "inner.gmi"), "# inner\n")
	return root
}

func respond(t *testing.T, h Handler, rawURL string) Response {
	t.Helper()
	u, err := NewURI(rawURL)
	if err != nil {
		t.Fatalf("failed to parse URI %q: %v", rawURL, err)
	}
	return h.Respond(context.Background(), u, &Client{})
}

func readBody(t *testing.T, resp Response) string {
	t.Helper()
	if resp.bodyBytes != nil {
		return string(resp.bodyBytes)
	}
	if resp.bodyStream == nil {
		return ""
	}
	data, err := io.ReadAll(resp.bodyStream)
	if err != nil {
		t.Fatalf("unexpected error reading body: %v", err)
	}
	return string(data)
}

func TestFileSystemHandler(t *testing.T) {
	root := newFixtureDir(t)
	h := FileSystemHandler(Dir(root))

	tests := []struct {
		name         string
		url          string
		expectedCode Code
		expectedMeta string
		expectedBody string
	}{
		{
			name:         "directories without a trailing slash are redirected",
			url:          "gemini://example.com/a",
			expectedCode: CodeRedirectPermanent,
			expectedMeta: "/a/",
		},
		{
			name:         "if a directory contains index.gmi, it is used",
			url:          "gemini://example.com/a/",
			expectedCode: CodeSuccess,
			expectedMeta: DefaultMIMEType,
			expectedBody: "# a/index.gmi\n",
		},
		{
			name:         "files can be accessed directly",
			url:          "gemini://example.com/a/index.gmi",
			expectedCode: CodeSuccess,
			expectedMeta: DefaultMIMEType,
			expectedBody: "# a/index.gmi\n",
		},
		{
			name:         "non-existent files return a 51 status code",
			url:          "gemini://example.com/a/non-existent.gmi",
			expectedCode: CodeNotFound,
			expectedMeta: "not found",
		},
		{
			name:         "if a directory does not contain an index, a listing is returned",
			url:          "gemini://example.com/b/",
			expectedCode: CodeSuccess,
			expectedMeta: DefaultMIMEType,
			expectedBody: "# Index of /b/\n=> ../\n=> c/\n=> not_index\n",
		},
		{
			name:         "directory traversal attacks are deflected",
			url:          "gemini://example.com/../a/index.gmi",
			expectedCode: CodeBadRequest,
			expectedMeta: "invalid path",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp := respond(t, h, tt.url)
			if resp.Code() != tt.expectedCode {
				t.Errorf("expected code %v, got %v", tt.expectedCode, resp.Code())
			}
			if resp.Meta() != tt.expectedMeta {
				t.Errorf("expected meta %q, got %q", tt.expectedMeta, resp.Meta())
			}
			if body := readBody(t, resp); body != tt.expectedBody {
				t.Errorf("expected body\n%v\nactual\n%v", tt.expectedBody, body)
			}
		})
	}
}
