package cloudstack

import (
	"mime"
	"net/http"
	"strings"

	"github.com/lestrrat-go/sfv"
)

// RawResponse is what a Connection hands back: the transport level view of
// the HTTP response with the body already read.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Response is the immutable result of a call.
type Response struct {
	status      int
	header      http.Header
	body        []byte
	contentType string
	charset     string
}

// NewResponse wraps raw. Header keys are canonicalized so that lookups are
// case-insensitive regardless of how the connection spelled them.
func NewResponse(raw *RawResponse) *Response {
	if raw == nil {
		raw = &RawResponse{}
	}

	header := make(http.Header, len(raw.Header))
	for k, values := range raw.Header {
		for _, v := range values {
			header.Add(k, v)
		}
	}

	body := make([]byte, len(raw.Body))
	copy(body, raw.Body)

	ct, charset := parseContentType(header.Get("Content-Type"))
	return &Response{
		status:      raw.StatusCode,
		header:      header,
		body:        body,
		contentType: ct,
		charset:     charset,
	}
}

// Success reports whether the status is 2xx.
func (r *Response) Success() bool {
	return r.status >= 200 && r.status < 300
}

// Status returns the HTTP status code.
func (r *Response) Status() int {
	return r.status
}

// Header returns the first value of the named header.
func (r *Response) Header(name string) string {
	return r.header.Get(name)
}

// Headers returns a copy of all response headers.
func (r *Response) Headers() http.Header {
	return r.header.Clone()
}

// Body returns a copy of the response body.
func (r *Response) Body() []byte {
	body := make([]byte, len(r.body))
	copy(body, r.body)
	return body
}

// ContentType returns the media type without parameters, e.g.
// "text/javascript" for "text/javascript; charset=UTF-8".
func (r *Response) ContentType() string {
	return r.contentType
}

// Charset returns the charset parameter of the content type, if present.
func (r *Response) Charset() string {
	return r.charset
}

// parseContentType splits a Content-Type header into media type and
// charset. The header is read as a structured field item (a token with
// parameters) first, which keeps parameters mime rejects, such as a bare
// flag after the charset. Headers sfv refuses, like upper-case parameter
// names, go through mime.
func parseContentType(value string) (string, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ""
	}

	if mediaType, charset, ok := parseContentTypeItem(value); ok {
		return mediaType, charset
	}

	if mediaType, params, err := mime.ParseMediaType(value); err == nil {
		return mediaType, params["charset"]
	}

	mediaType, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(mediaType)), ""
}

func parseContentTypeItem(value string) (string, string, bool) {
	item, err := sfv.ParseItem([]byte(value))
	if err != nil {
		return "", "", false
	}

	var mediaType string
	if err := item.GetValue(&mediaType); err != nil || mediaType == "" {
		return "", "", false
	}

	var charset string
	if params := item.Parameters(); params != nil {
		var bare sfv.BareItem
		if err := params.Get("charset", &bare); err == nil {
			if err := bare.GetValue(&charset); err != nil {
				return "", "", false
			}
		}
	}
	return strings.ToLower(mediaType), charset, true
}
