// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-core-stack/mcp-registry-proxy/pkg/endpoint"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/metrics"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/registry"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/route"
)

// MessageService handles /proxy/message/{name}/{tag}/{subPath}: it forwards
// a client-initiated JSON-RPC message to the backend that owns the SSE
// session named by the sessionId query parameter, streaming the response
// back unmodified.
type MessageService struct {
	cache   *registry.Cache
	client  *http.Client
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewMessageService constructs a MessageService. metrics may be nil.
func NewMessageService(cache *registry.Cache, client *http.Client, m *metrics.Metrics, logger zerolog.Logger) *MessageService {
	return &MessageService{
		cache:   cache,
		client:  client,
		metrics: m,
		logger:  logger.With().Str("component", "message").Logger(),
	}
}

func (s *MessageService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	msg, err := route.MatchMessage(r.URL.Path)
	if err != nil {
		status := writeError(w, &httpError{Status: http.StatusInternalServerError, Err: fmt.Errorf("parse message path: %w", err)})
		s.observeStatus(status)
		return
	}

	event := s.logger.With().
		Str("name", msg.Name).
		Str("tag", msg.Tag).
		Str("request_id", r.Header.Get(requestIDHeader)).
		Logger()

	info, ok := s.cache.Lookup(msg.Name, msg.Tag)
	if !ok {
		err := &httpError{Status: http.StatusInternalServerError, Err: fmt.Errorf("Failed to load server info for %s %s", msg.Name, msg.Tag)}
		status := writeError(w, err)
		event.Warn().Msg("lookup miss on message")
		s.observeStatus(status)
		return
	}

	targetURL := buildUpstreamURL(info, msg.SubPath, r.URL.RawQuery)

	resp, err := s.dial(r, targetURL, info)
	if err != nil {
		status := writeError(w, err)
		event.Error().Err(err).Msg("upstream message request failed")
		s.observeStatus(status)
		return
	}
	defer resp.Body.Close()

	writeResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		event.Warn().Err(err).Msg("stream message response failed")
	}

	s.observeStatus(resp.StatusCode)
}

// dial builds and performs the upstream message request, classifying
// transport failures the same way ConnectService.dial does.
func (s *MessageService) dial(r *http.Request, targetURL string, info endpoint.BackendInfo) (*http.Response, error) {
	upstreamReq, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, r.Body)
	if err != nil {
		return nil, &httpError{Status: http.StatusInternalServerError, Err: fmt.Errorf("build upstream request: %w", err)}
	}
	copyHeaders(upstreamReq.Header, r.Header)
	cleanHopHeaders(upstreamReq.Header)
	upstreamReq.Host = info.Host

	resp, err := s.client.Do(upstreamReq)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, &httpError{Status: http.StatusGatewayTimeout, Err: err}
		default:
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil, &httpError{Status: http.StatusGatewayTimeout, Err: err}
			}
		}
		return nil, &httpError{Status: http.StatusInternalServerError, Err: fmt.Errorf("perform upstream request: %w", err)}
	}
	return resp, nil
}

// buildUpstreamURL reconstructs scheme://host:port/subPath[?query] from a
// resolved BackendInfo, a message sub-path (with or without its leading
// slash) and the raw query string of the client's request.
func buildUpstreamURL(info endpoint.BackendInfo, subPath, rawQuery string) string {
	trimmed := strings.Trim(subPath, "/")
	target := fmt.Sprintf("%s://%s:%s/%s", info.Scheme, info.Host, info.Port, trimmed)
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

func (s *MessageService) observeStatus(status int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveProxiedRequest("message", fmt.Sprintf("%d", status))
}
