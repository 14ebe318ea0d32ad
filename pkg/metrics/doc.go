// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package metrics exposes the proxy's Prometheus instrumentation: registry
// refresh outcomes, active SSE connections, and proxied request counts.
package metrics
