// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package endpoint

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// regexEndpoint mirrors the original registry cache's hand-rolled endpoint
// grammar: scheme, host (up to the first '/' or ':'), optional port, and a
// path that is kept verbatim — including any query string.
var regexEndpoint = regexp.MustCompile(`^(?P<scheme>https?)://(?P<host>[^/:]+)(?::(?P<port>\d+))?(?P<path>/.*)?$`)

// Sentinel parse failures. Wrap with additional context via fmt.Errorf and
// %w so callers can still errors.Is against these.
var (
	ErrMalformed         = errors.New("endpoint: malformed url")
	ErrUnsupportedScheme = errors.New("endpoint: unsupported scheme")
	ErrBadHost           = errors.New("endpoint: empty host")
)

// BackendInfo is the resolved, cached view of one backend. Equality for
// cache-staleness checks is defined over (Host, Port, Path) only; Endpoint
// is the raw registered URL, which the connect service requests verbatim.
type BackendInfo struct {
	Endpoint string
	Scheme   string
	Host     string
	Port     string
	Path     string
}

// Equal compares two BackendInfo values the way the registry cache does for
// staleness checks: host, port, and path only. The raw endpoint string is
// deliberately excluded.
func (b BackendInfo) Equal(other BackendInfo) bool {
	return b.Host == other.Host && b.Port == other.Port && b.Path == other.Path
}

// ParseError wraps a parse failure with the offending input so logs can
// name the endpoint that was rejected.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse endpoint %q: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse applies the anchored endpoint grammar to raw, defaulting the port
// per scheme and the path to "/" when absent. The query string, if present,
// is kept glued to the path rather than split out — this is the reason the
// parser is a hand-rolled regex instead of net/url.Parse.
func Parse(raw string) (BackendInfo, error) {
	caps := regexEndpoint.FindStringSubmatch(raw)
	if caps == nil {
		reason := ErrMalformed
		if scheme, rest, found := strings.Cut(raw, "://"); found {
			switch {
			case scheme != "http" && scheme != "https":
				reason = ErrUnsupportedScheme
			case rest == "" || rest[0] == '/' || rest[0] == ':':
				reason = ErrBadHost
			}
		}
		return BackendInfo{}, &ParseError{Endpoint: raw, Err: reason}
	}

	names := regexEndpoint.SubexpNames()
	group := make(map[string]string, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		group[name] = caps[i]
	}

	scheme := group["scheme"]
	host := group["host"]
	port := group["port"]
	path := group["path"]

	if host == "" {
		return BackendInfo{}, &ParseError{Endpoint: raw, Err: ErrBadHost}
	}

	if port == "" {
		switch scheme {
		case "http":
			port = "80"
		case "https":
			port = "443"
		default:
			return BackendInfo{}, &ParseError{Endpoint: raw, Err: ErrUnsupportedScheme}
		}
	}

	if path == "" {
		path = "/"
	}

	return BackendInfo{
		Endpoint: raw,
		Scheme:   scheme,
		Host:     host,
		Port:     port,
		Path:     path,
	}, nil
}
