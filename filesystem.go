package gemini

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thistlecode/gemini/gemtext"
	"github.com/thistlecode/gemini/log"
)

// Dir implements FileSystem using os.Open, opening files for reading
// rooted and relative to the directory d.
type Dir string

// Open opens name, rooted at d.
func (d Dir) Open(name string) (File, error) {
	dir := string(d)
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return os.Open(fullName)
}

// A FileSystem implements access to a collection of named files.
// The elements in a file path are separated by slash ('/', U+002F)
// characters, regardless of host operating system convention.
type FileSystem interface {
	Open(name string) (File, error)
}

// A File is returned by a FileSystem's Open method and can be served
// by FileSystemHandler. The methods should behave the same as those
// on an *os.File.
type File interface {
	io.Closer
	io.Reader
	Readdir(count int) ([]os.FileInfo, error)
	Stat() (os.FileInfo, error)
}

// DirectoryListingHandler serves a generated text/gemini index of f's
// contents, the files sorted by name. It closes f before returning.
func DirectoryListingHandler(urlPath string, f File) Handler {
	return HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		defer f.Close()
		files, err := f.Readdir(-1)
		if err != nil {
			log.Warn("DirectoryListingHandler: readdir failed", log.String("reason", err.Error()), log.String("path", urlPath))
			return NewResponse(CodeTemporaryFailure, "readdir failed")
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })
		doc := gemtext.NewBuilder()
		doc.AddH1Header("Index of " + urlPath)
		doc.AddRawLink("../")
		for _, ff := range files {
			name := ff.Name()
			if ff.IsDir() {
				name += "/"
			}
			doc.AddRawLink(name)
		}
		return NewResponseBytes(CodeSuccess, DefaultMIMEType, doc.Build())
	})
}

// FileContentHandler streams f's content, guessing its MIME type from
// name's extension (falling back to DefaultMIMEType). f is left open;
// the Response's bodyStream is closed by the connection writer once
// the body has been sent in full.
func FileContentHandler(name string, f File) Handler {
	return HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		mType := mime.TypeByExtension(path.Ext(name))
		if mType == "" {
			mType = DefaultMIMEType
		}
		return NewResponseStream(CodeSuccess, mType, f)
	})
}

// FileSystemHandler serves static files and directory listings out of
// fs, redirecting directory requests missing a trailing slash and
// preferring an index.gmi over a generated listing.
func FileSystemHandler(fs FileSystem) Handler {
	return HandlerFunc(func(ctx context.Context, u *URI, client *Client) Response {
		reqPath := u.Path()
		if strings.Contains(reqPath, "..") {
			return NewResponse(CodeBadRequest, "invalid path")
		}
		if !strings.HasPrefix(reqPath, "/") {
			reqPath = "/" + reqPath
		}
		f, err := fs.Open(reqPath)
		if errors.Is(err, os.ErrNotExist) {
			return NotFoundHandler.Respond(ctx, u, client)
		}
		if err != nil {
			log.Warn("FileSystemHandler: file open failed", log.String("reason", err.Error()), log.String("path", reqPath))
			return NewResponse(CodeTemporaryFailure, "file open failed")
		}
		stat, err := f.Stat()
		if err != nil {
			f.Close()
			log.Warn("FileSystemHandler: file stat failed", log.String("reason", err.Error()), log.String("path", reqPath))
			return NewResponse(CodeTemporaryFailure, "file stat failed")
		}
		if stat.IsDir() {
			if !strings.HasSuffix(reqPath, "/") {
				f.Close()
				return RedirectPermanentHandler(reqPath + "/").Respond(ctx, u, client)
			}
			index, err := fs.Open(reqPath + "index.gmi")
			if errors.Is(err, os.ErrNotExist) {
				return DirectoryListingHandler(reqPath, f).Respond(ctx, u, client)
			}
			f.Close()
			return FileContentHandler("index.gmi", index).Respond(ctx, u, client)
		}
		return FileContentHandler(stat.Name(), f).Respond(ctx, u, client)
	})
}
