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

	"github.com/rs/zerolog"

	"github.com/go-core-stack/mcp-registry-proxy/pkg/endpoint"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/metrics"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/registry"
	"github.com/go-core-stack/mcp-registry-proxy/pkg/route"
)

// frameChannelCapacity is the bounded queue depth between the upstream
// reader goroutine and the client writer. A full channel makes the reader
// block on send, which in turn blocks its next upstream Read — propagating
// backpressure to the backend.
const frameChannelCapacity = 100

const readChunkSize = 32 * 1024

// ConnectService handles GET /proxy/connect/{name}/{tag}: it opens an SSE
// stream to the resolved backend, rewrites every chunk that carries a
// recognisable endpoint frame, and otherwise forwards bytes unchanged. It
// keeps no record of earlier rewrites.
type ConnectService struct {
	cache   *registry.Cache
	client  *http.Client
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewConnectService constructs a ConnectService. metrics may be nil.
func NewConnectService(cache *registry.Cache, client *http.Client, m *metrics.Metrics, logger zerolog.Logger) *ConnectService {
	return &ConnectService{
		cache:   cache,
		client:  client,
		metrics: m,
		logger:  logger.With().Str("component", "connect").Logger(),
	}
}

func (s *ConnectService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := route.MatchConnect(r.URL.Path)
	if err != nil {
		status := writeError(w, &httpError{Status: http.StatusInternalServerError, Err: fmt.Errorf("parse connect path: %w", err)})
		s.observeStatus(status)
		return
	}

	event := s.logger.With().
		Str("name", conn.Name).
		Str("tag", conn.Tag).
		Str("request_id", r.Header.Get(requestIDHeader)).
		Logger()

	info, ok := s.cache.Lookup(conn.Name, conn.Tag)
	if !ok {
		err := &httpError{Status: http.StatusInternalServerError, Err: fmt.Errorf("Failed to load server info for %s %s", conn.Name, conn.Tag)}
		status := writeError(w, err)
		event.Warn().Msg("lookup miss on connect")
		s.observeStatus(status)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		status := writeError(w, &httpError{Status: http.StatusInternalServerError, Err: errors.New("streaming unsupported")})
		s.observeStatus(status)
		return
	}

	resp, err := s.dial(r, info)
	if err != nil {
		status := writeError(w, err)
		event.Error().Err(err).Msg("upstream connect request failed")
		s.observeStatus(status)
		return
	}
	defer resp.Body.Close()

	writeResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	flusher.Flush()

	if s.metrics != nil {
		s.metrics.IncConnections()
		defer s.metrics.DecConnections()
	}

	s.stream(r, w, flusher, resp.Body, conn, event)
	s.observeStatus(resp.StatusCode)
}

// dial builds and performs the upstream connect request, classifying
// transport failures into the httpError status a caller should surface:
// a cancelled/timed-out context or a timing-out net.Error becomes a 504,
// anything else a 500.
func (s *ConnectService) dial(r *http.Request, info endpoint.BackendInfo) (*http.Response, error) {
	upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodGet, info.Endpoint, nil)
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

// stream pipes resp.Body to w through a bounded channel of frames, rewriting
// each chunk that carries a recognisable SSE endpoint frame along the way.
func (s *ConnectService) stream(r *http.Request, w http.ResponseWriter, flusher http.Flusher, body io.Reader, conn route.Connect, event zerolog.Logger) {
	frames := make(chan []byte, frameChannelCapacity)
	readErr := make(chan error, 1)

	go func() {
		defer close(frames)
		buf := make([]byte, readChunkSize)
		for {
			n, err := body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case frames <- chunk:
				case <-r.Context().Done():
					readErr <- r.Context().Err()
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
					event.Warn().Err(err).Msg("upstream read error mid-stream")
				}
				return
			}
		}
	}()

	for chunk := range frames {
		s.writeChunk(w, chunk, conn, event)
		flusher.Flush()
	}

	select {
	case err := <-readErr:
		if err != nil {
			event.Warn().Err(err).Msg("connect stream ended with error")
		}
	default:
	}

	event.Info().Msg("connect stream closed")
}

func (s *ConnectService) writeChunk(w http.ResponseWriter, chunk []byte, conn route.Connect, event zerolog.Logger) {
	if path, sid, ok := route.ParseEndpointFrame(string(chunk)); ok {
		rewritten := fmt.Sprintf("event: endpoint\ndata: %s\r\n\r\n", route.BuildProxyMessagePath(conn.Name, conn.Tag, path, sid))
		if _, err := io.WriteString(w, rewritten); err != nil {
			event.Error().Err(err).Msg("write rewritten endpoint frame failed")
		}
		return
	}

	if _, err := w.Write(chunk); err != nil {
		event.Error().Err(err).Msg("write upstream chunk failed")
	}
}

func (s *ConnectService) observeStatus(status int) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveProxiedRequest("connect", fmt.Sprintf("%d", status))
}
