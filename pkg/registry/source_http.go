// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-core-stack/mcp-registry-proxy/pkg/auth"
)

// HTTPSource is a BackendSource backed by a remote catalogue API. Outbound
// requests are HMAC-signed with signer the same way the original proxy
// signed inbound gateway traffic.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Signer *auth.Signer
}

// NewHTTPSource constructs an HTTPSource. client may be nil, in which case
// http.DefaultClient is used.
func NewHTTPSource(url string, client *http.Client, signer *auth.Signer) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{URL: url, Client: client, Signer: signer}
}

type httpSourceEntry struct {
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	Version  string `json:"version"`
	Endpoint string `json:"endpoint"`
}

type httpSourceResponse struct {
	Backends []httpSourceEntry `json:"backends"`
}

// List implements BackendSource by GETing the catalogue endpoint and
// decoding a JSON object whose "backends" array holds the backend
// descriptors.
func (s *HTTPSource) List(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("http source: build request: %w", err)
	}

	if s.Signer != nil {
		if err := s.Signer.AttachSignature(req); err != nil {
			return nil, fmt.Errorf("http source: sign request: %w", err)
		}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http source: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http source: unexpected status %d", resp.StatusCode)
	}

	var body httpSourceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("http source: decode response: %w", err)
	}

	entries := make([]Entry, 0, len(body.Backends))
	for _, b := range body.Backends {
		entries = append(entries, Entry{
			Name:     b.Name,
			Tag:      b.Tag,
			Version:  b.Version,
			Endpoint: b.Endpoint,
		})
	}
	return entries, nil
}
