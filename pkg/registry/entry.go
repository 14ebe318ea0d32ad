// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package registry

import "context"

// Entry is the upstream's view of one backend before parsing. Tag is
// resolved from Tag, falling back to Version, falling back to "default".
type Entry struct {
	Name     string
	Tag      string
	Version  string
	Endpoint string
}

// ResolveTag applies the tag selection order: explicit Tag if set, else
// Version, else the literal "default".
func (e Entry) ResolveTag() string {
	if e.Tag != "" {
		return e.Tag
	}
	if e.Version != "" {
		return e.Version
	}
	return "default"
}

// BackendSource is the capability interface the registry cache polls for
// the current set of known backends. Concrete implementations (TOML file,
// Postgres catalogue, remote HTTP API) live in this package but are
// external collaborators from the cache's point of view: it only ever
// calls List.
type BackendSource interface {
	List(ctx context.Context) ([]Entry, error)
}
