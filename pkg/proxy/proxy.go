// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/go-core-stack/mcp-registry-proxy/pkg/config"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/metrics"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/registry"
)

// New builds the HTTP handler that fronts the registry-backed MCP fleet:
// chi routes /proxy/connect/* and /proxy/message/* to their respective
// services and /metrics to the Prometheus registry, everything else 404s.
func New(cfg config.Config, cache *registry.Cache, m *metrics.Metrics, logger zerolog.Logger) http.Handler {
	client := NewClient(cfg)

	connect := NewConnectService(cache, client, m, logger)
	message := NewMessageService(cache, client, m, logger)

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Get("/proxy/connect/{name}/{tag}", connect.ServeHTTP)
	r.Get("/proxy/connect/{name}/{tag}/*", connect.ServeHTTP)
	r.HandleFunc("/proxy/message/{name}/{tag}/*", message.ServeHTTP)
	r.HandleFunc("/proxy/message/{name}/{tag}", message.ServeHTTP)

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	return r
}
