// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package proxy hosts the SSE-aware reverse-proxy data plane: the connect
// and message HTTP handlers that front a dynamic fleet of MCP backends.
// Both handlers resolve their target through a registry.Cache and share one
// pooled HTTPS client; the connect handler additionally rewrites the
// backend's SSE endpoint frame in transit so clients always talk back
// through the proxy.
package proxy
