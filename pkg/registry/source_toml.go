// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// tomlDocument is the on-disk shape of a static backend list: a single
// top-level array of tables, each describing one (name, tag) backend.
type tomlDocument struct {
	McpServers []tomlServer `toml:"mcp_servers"`
}

type tomlServer struct {
	Name     string `toml:"name"`
	Tag      string `toml:"tag"`
	Version  string `toml:"version"`
	Endpoint string `toml:"endpoint"`
}

// TOMLSource is a BackendSource backed by a static TOML file on disk. It
// re-reads the file on every List call, so edits to the file take effect on
// the next refresh tick without a restart.
type TOMLSource struct {
	Path string
}

// NewTOMLSource constructs a TOMLSource reading from path.
func NewTOMLSource(path string) *TOMLSource {
	return &TOMLSource{Path: path}
}

// List implements BackendSource.
func (s *TOMLSource) List(ctx context.Context) ([]Entry, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("toml source: read %s: %w", s.Path, err)
	}

	var doc tomlDocument
	if err := toml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("toml source: decode %s: %w", s.Path, err)
	}

	entries := make([]Entry, 0, len(doc.McpServers))
	for _, srv := range doc.McpServers {
		entries = append(entries, Entry{
			Name:     srv.Name,
			Tag:      srv.Tag,
			Version:  srv.Version,
			Endpoint: srv.Endpoint,
		})
	}
	return entries, nil
}
