// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/go-core-stack/mcp-registry-proxy/pkg/config"
)

// NewClient builds the process-wide outbound HTTP client shared by the
// connect and message services. Connections are pooled per origin so
// repeated calls to the same backend reuse a warm TCP/TLS session.
func NewClient(cfg config.Config) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     false,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, // nolint:gosec
		},
	}

	// No client-wide Timeout: the connect service holds a long-lived SSE
	// response body open indefinitely. Callers that want a deadline apply it
	// through the request context instead.
	return &http.Client{
		Transport: transport,
	}
}
