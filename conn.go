package gemini

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/thistlecode/gemini/log"
)

// maxRequestLine is the maximum number of bytes read while looking
// for the request's terminating "\r\n": 1024 bytes of URI plus the
// two-byte terminator itself.
const maxRequestLine = 1026

// streamBufferSize is the chunk size used when copying a streaming
// response body to the wire, per spec.md §4.6 ("buffered reads... a
// safe upper bound like 4 KiB").
const streamBufferSize = 4096

// maxHeaderLine is the maximum number of bytes the framed
// "<code> <meta>\r\n" header may occupy on the wire.
const maxHeaderLine = 1024

// OnProtocolViolation is invoked when a Handler returns a Response
// that would violate the wire protocol (a body on a non-2x code, an
// empty meta, or a header longer than maxHeaderLine). The original
// implementation terminates the process outright, reasoning that
// sending malformed bytes is always a host-application bug that
// should surface immediately; this hook preserves that default while
// letting callers substitute a log-and-drop policy (or, in tests,
// something that records the call instead of exiting).
var OnProtocolViolation = func(reason string) {
	log.Error("gemini: refusing to send malformed response", nil, log.String("reason", reason))
	os.Exit(70) // EX_SOFTWARE
}

// serveConnection drives one accepted connection through the
// Accepted -> Handshake -> Reading -> Dispatch -> Respond -> Teardown
// state machine described in spec.md §4.6. It always returns after
// the connection has been fully torn down.
func serveConnection(ctx context.Context, raw net.Conn, tlsConfig *tls.Config, handler Handler, readTimeout, writeTimeout time.Duration) {
	defer raw.Close()

	tlsConn := tls.Server(raw, tlsConfig)
	defer tlsConn.Close()

	if readTimeout > 0 {
		tlsConn.SetReadDeadline(time.Now().Add(readTimeout))
	}
	if writeTimeout > 0 {
		tlsConn.SetWriteDeadline(time.Now().Add(writeTimeout))
	}

	if err := tlsConn.Handshake(); err != nil {
		log.Warn("gemini: TLS handshake failed", log.String("peer", raw.RemoteAddr().String()), log.String("reason", err.Error()))
		return
	}

	client := &Client{addr: raw.RemoteAddr()}
	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) > 0 {
		client.certificate = state.PeerCertificates[0].Raw
		client.verified = len(state.VerifiedChains) > 0
	}

	uri, err := readRequestURI(tlsConn)
	var resp Response
	if err != nil {
		resp = NewResponse(CodeBadRequest, "invalid uri")
	} else {
		resp = dispatch(ctx, handler, uri, client)
	}

	writeResponse(tlsConn, resp)
}

// readRequestURI reads bytes until "\r\n" (or maxRequestLine bytes
// without one), parses them as a Gemini URI, and rejects any scheme
// other than "gemini". Bytes following the terminator, if a malformed
// client were to send any, are never read off the wire.
func readRequestURI(r io.Reader) (*URI, error) {
	buf := make([]byte, maxRequestLine)
	total := 0
	for total < maxRequestLine {
		n, err := r.Read(buf[total : total+1])
		total += n
		if total >= 2 && buf[total-2] == '\r' && buf[total-1] == '\n' {
			uri, parseErr := NewURI(string(buf[:total-2]))
			if parseErr != nil {
				return nil, parseErr
			}
			if uri.Scheme() != "gemini" {
				return nil, ErrInvalidURI
			}
			return uri, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, ErrInvalidURI
}

// dispatch invokes the handler, converting a panic into a Bad Request
// response rather than crashing the connection's goroutine. The
// underlying C++ server wraps URI construction and the handler call in
// a single try/catch (server.cpp) and returns Bad Request uniformly for
// either failure; Go's recover gives the same contract without taking
// the whole process down on a host bug.
func dispatch(ctx context.Context, handler Handler, uri *URI, client *Client) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("gemini: handler panicked", nil, log.String("uri", uri.String()), log.Interface("panic", p))
			resp = NewResponse(CodeBadRequest, "bad request")
		}
	}()
	return handler.Respond(ctx, uri, client)
}

// writeResponse frames and writes resp's header, then its body if
// present. A spec-compliance violation (body on a non-2x code, empty
// meta, oversized header) invokes OnProtocolViolation instead of
// writing anything.
func writeResponse(w io.Writer, resp Response) {
	if resp.HasBody() && !resp.code.IsSuccess() {
		OnProtocolViolation(fmt.Sprintf("response with code %d carries a body", resp.code))
		return
	}
	if resp.meta == "" {
		OnProtocolViolation("response meta is empty")
		return
	}
	header := fmt.Sprintf("%d %s\r\n", resp.code, resp.meta)
	if len(header) > maxHeaderLine {
		OnProtocolViolation(fmt.Sprintf("header is %d bytes, exceeding the %d byte limit", len(header), maxHeaderLine))
		return
	}
	if _, err := io.WriteString(w, header); err != nil {
		log.Warn("gemini: failed to write response header", log.String("reason", err.Error()))
		return
	}

	if !resp.HasBody() {
		return
	}
	if resp.bodyBytes != nil {
		if err := writeAll(w, resp.bodyBytes); err != nil {
			log.Warn("gemini: failed to write response body", log.String("reason", err.Error()))
		}
		return
	}
	if closer, ok := resp.bodyStream.(io.Closer); ok {
		defer closer.Close()
	}
	buf := make([]byte, streamBufferSize)
	if _, err := io.CopyBuffer(w, resp.bodyStream, buf); err != nil {
		log.Warn("gemini: failed to stream response body", log.String("reason", err.Error()))
	}
}

// writeAll writes all of data, chunking at a size safe for a single
// Write call to an underlying TLS connection, per spec.md §4.6.
func writeAll(w io.Writer, data []byte) error {
	const maxChunk = 1<<31 - 1
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunk {
			chunk = chunk[:maxChunk]
		}
		n, err := w.Write(chunk)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}
