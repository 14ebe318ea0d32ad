// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLSourceListParsesServers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backends.toml")

	doc := `
[[mcp_servers]]
name = "fetch"
tag = "1.0.0"
endpoint = "http://backend:3000/mcp"

[[mcp_servers]]
name = "search"
version = "2024-01-01"
endpoint = "https://search-backend:8443/sse"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	src := NewTOMLSource(path)
	entries, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "fetch", entries[0].Name)
	assert.Equal(t, "1.0.0", entries[0].Tag)
	assert.Equal(t, "http://backend:3000/mcp", entries[0].Endpoint)

	assert.Equal(t, "search", entries[1].Name)
	assert.Equal(t, "2024-01-01", entries[1].Version)
	assert.Equal(t, "2024-01-01", entries[1].ResolveTag())
}

func TestTOMLSourceListMissingFileErrors(t *testing.T) {
	src := NewTOMLSource("/nonexistent/path/backends.toml")
	_, err := src.List(context.Background())
	require.Error(t, err)
}
