// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"errors"
	"fmt"
	"net/http"
)

// hopHeaders lists standard hop-by-hop headers that must be stripped before
// a request is proxied so the upstream connection semantics remain correct.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Proxy-Connection":    {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// copyHeaders appends all headers from src into dst.
func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// cleanHopHeaders removes hop-by-hop headers that should not be forwarded.
func cleanHopHeaders(h http.Header) {
	for k := range hopHeaders {
		h.Del(k)
	}
}

// writeResponseHeaders copies src into dst, stripping content-length and
// transfer-encoding, then forces chunked transfer-encoding and a
// keep-alive connection, per the response header hygiene every handler
// must apply to upstream responses.
func writeResponseHeaders(dst, src http.Header) {
	copyHeaders(dst, src)
	dst.Del("Content-Length")
	dst.Del("Transfer-Encoding")
	dst.Set("Transfer-Encoding", "chunked")
	dst.Set("Connection", "keep-alive")
}

// httpError wraps a status code with the underlying cause, letting handlers
// surface a specific status while still logging the real error.
type httpError struct {
	Status int
	Err    error
}

func (e *httpError) Error() string {
	return fmt.Sprintf("status %d: %v", e.Status, e.Err)
}

func (e *httpError) Unwrap() error {
	return e.Err
}

// statusOf resolves err's carried HTTP status, defaulting to 500 when err
// does not wrap an *httpError.
func statusOf(err error) int {
	var herr *httpError
	if errors.As(err, &herr) {
		return herr.Status
	}
	return http.StatusInternalServerError
}

// writeError writes err's message with its resolved status and returns the
// status so the caller can feed it to its proxied-request metric.
func writeError(w http.ResponseWriter, err error) int {
	status := statusOf(err)
	http.Error(w, err.Error(), status)
	return status
}
