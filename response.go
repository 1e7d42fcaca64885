package gemini

import (
	"bytes"
	"io"
)

// Code is a Gemini response status code.
type Code int

// Response codes recognized by the core, per the Gemini specification.
const (
	CodeInput                    Code = 10
	CodeSensitiveInput           Code = 11
	CodeSuccess                  Code = 20
	CodeRedirect                 Code = 30
	CodeRedirectPermanent        Code = 31
	CodeTemporaryFailure         Code = 40
	CodeServerUnavailable        Code = 41
	CodeCGIError                 Code = 42
	CodeProxyError               Code = 43
	CodeSlowDown                 Code = 44
	CodePermanentFailure         Code = 50
	CodeNotFound                 Code = 51
	CodeGone                     Code = 52
	CodeProxyRequestRefused      Code = 53
	CodeBadRequest               Code = 59
	CodeCertificateRequired      Code = 60
	CodeCertificateNotAuthorised Code = 61
	CodeCertificateNotValid      Code = 62
)

// DefaultMIMEType is the meta used for a success response whose
// handler didn't specify one explicitly.
const DefaultMIMEType = "text/gemini; charset=utf-8"

// IsSuccess reports whether code is in the [20,29] success range,
// the only range for which a response may carry a body.
func (c Code) IsSuccess() bool {
	return c >= 20 && c <= 29
}

// IsInput reports whether code is in the [10,19] input range.
func (c Code) IsInput() bool {
	return c >= 10 && c <= 19
}

// IsRedirect reports whether code is in the [30,39] redirect range.
func (c Code) IsRedirect() bool {
	return c >= 30 && c <= 39
}

// IsCertificateRequired reports whether code is in the [60,69] client
// certificate range.
func (c Code) IsCertificateRequired() bool {
	return c >= 60 && c <= 69
}

// Response is the value a Handler returns: a status code, a meta line,
// and (only for success codes) an optional body. It performs no I/O
// itself; conn.go is responsible for framing and writing it.
type Response struct {
	code Code
	meta string

	bodyBytes  []byte
	bodyStream io.Reader
}

// NewResponse creates a response with no body.
func NewResponse(code Code, meta string) Response {
	return Response{code: code, meta: meta}
}

// NewResponseBytes creates a response carrying an in-memory body.
// Only valid for success (2x) codes; see HasBody.
func NewResponseBytes(code Code, meta string, data []byte) Response {
	return Response{code: code, meta: meta, bodyBytes: data}
}

// NewResponseText creates a response carrying an in-memory text body.
func NewResponseText(code Code, meta string, data string) Response {
	return NewResponseBytes(code, meta, []byte(data))
}

// NewResponseStream creates a response carrying a streaming body that
// is read to EOF when the response is sent.
func NewResponseStream(code Code, meta string, data io.Reader) Response {
	return Response{code: code, meta: meta, bodyStream: data}
}

// Code returns the response's status code.
func (r Response) Code() Code { return r.code }

// SetCode sets the response's status code.
func (r *Response) SetCode(code Code) { r.code = code }

// Meta returns the response's meta line.
func (r Response) Meta() string { return r.meta }

// SetMeta sets the response's meta line.
func (r *Response) SetMeta(meta string) { r.meta = meta }

// HasBody reports whether the response carries a body of either kind.
func (r Response) HasBody() bool {
	return r.bodyBytes != nil || r.bodyStream != nil
}

// SetBodyBytes attaches an in-memory body, replacing any existing body.
func (r *Response) SetBodyBytes(data []byte) {
	r.bodyBytes = data
	r.bodyStream = nil
}

// SetBodyStream attaches a streaming body, replacing any existing body.
func (r *Response) SetBodyStream(data io.Reader) {
	r.bodyStream = data
	r.bodyBytes = nil
}

// ClearBody removes any attached body.
func (r *Response) ClearBody() {
	r.bodyBytes = nil
	r.bodyStream = nil
}

// BodyReader returns a reader over the response's body, or nil if it
// has none. Callers outside the gemini package (tests, mux) use this
// instead of reaching for the unexported body fields directly.
func (r Response) BodyReader() io.Reader {
	if r.bodyBytes != nil {
		return bytes.NewReader(r.bodyBytes)
	}
	return r.bodyStream
}
