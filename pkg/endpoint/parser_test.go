// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package endpoint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want BackendInfo
	}{
		{
			name: "bare host defaults port and path",
			in:   "http://h",
			want: BackendInfo{Endpoint: "http://h", Scheme: "http", Host: "h", Port: "80", Path: "/"},
		},
		{
			name: "https with explicit port and path",
			in:   "https://h:8443/a",
			want: BackendInfo{Endpoint: "https://h:8443/a", Scheme: "https", Host: "h", Port: "8443", Path: "/a"},
		},
		{
			name: "query string is kept glued to the path",
			in:   "http://h/a/b?q=1",
			want: BackendInfo{Endpoint: "http://h/a/b?q=1", Scheme: "http", Host: "h", Port: "80", Path: "/a/b?q=1"},
		},
		{
			name: "https default port",
			in:   "https://backend",
			want: BackendInfo{Endpoint: "https://backend", Scheme: "https", Host: "backend", Port: "443", Path: "/"},
		},
		{
			name: "explicit path and port retained for http",
			in:   "http://backend:3000/mcp",
			want: BackendInfo{Endpoint: "http://backend:3000/mcp", Scheme: "http", Host: "backend", Port: "3000", Path: "/mcp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "unsupported scheme", in: "ftp://x"},
		{name: "missing host", in: "http:///a"},
		{name: "no scheme at all", in: "backend:3000/mcp"},
		{name: "empty string", in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			require.Error(t, err)
			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
		})
	}
}

// P1: parsing the endpoint string of an already-parsed BackendInfo preserves
// host/port/path/scheme.
func TestParseIsIdempotentOnEndpointField(t *testing.T) {
	inputs := []string{
		"http://h",
		"https://h:8443/a",
		"http://h/a/b?q=1",
		"https://backend:9443/api/sse",
	}

	for _, in := range inputs {
		first, err := Parse(in)
		require.NoError(t, err)

		second, err := Parse(first.Endpoint)
		require.NoError(t, err)

		assert.Equal(t, first.Scheme, second.Scheme)
		assert.Equal(t, first.Host, second.Host)
		assert.Equal(t, first.Port, second.Port)
		assert.Equal(t, first.Path, second.Path)
	}
}

func TestBackendInfoEqualIgnoresEndpointString(t *testing.T) {
	a := BackendInfo{Endpoint: "http://h:80/p", Scheme: "http", Host: "h", Port: "80", Path: "/p"}
	b := BackendInfo{Endpoint: "http://h/p", Scheme: "http", Host: "h", Port: "80", Path: "/p"}
	assert.True(t, a.Equal(b))

	c := BackendInfo{Endpoint: "http://h/p2", Scheme: "http", Host: "h", Port: "80", Path: "/p2"}
	assert.False(t, a.Equal(c))
}
