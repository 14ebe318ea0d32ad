// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package route

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	regexConnect = regexp.MustCompile(`^/proxy/connect/([^/]+)/([^/]+)(/.*)?$`)
	regexMessage = regexp.MustCompile(`^/proxy/message/([^/]+)/([^/]+)(/.*)?$`)
	regexSession = regexp.MustCompile(`^(?P<path>[^?]+)\?sessionId=(?P<sid>[0-9a-fA-F-]+)`)
)

// Connect identifies the backend a GET /proxy/connect/{name}/{tag} request
// targets. Any trailing path segment is ignored: the backend's own path
// lives on the registered endpoint, not the client URL.
type Connect struct {
	Name string
	Tag  string
}

// Message identifies the backend and sub-path a
// /proxy/message/{name}/{tag}/{subPath} request targets. The session id
// travels in the query string, which MatchMessage does not inspect.
type Message struct {
	Name    string
	Tag     string
	SubPath string
}

// MatchConnect parses a connect URI. An unmatched path is reported with an
// error so the caller can translate it into a 404 or 500 per context.
func MatchConnect(uri string) (Connect, error) {
	caps := regexConnect.FindStringSubmatch(uri)
	if caps == nil {
		return Connect{}, fmt.Errorf("route: can't parse connect uri %q", uri)
	}
	return Connect{Name: caps[1], Tag: caps[2]}, nil
}

// MatchMessage parses a message URI. The sub-path capture includes its
// leading slash, or is empty when omitted.
func MatchMessage(uri string) (Message, error) {
	caps := regexMessage.FindStringSubmatch(uri)
	if caps == nil {
		return Message{}, fmt.Errorf("route: can't parse message uri %q", uri)
	}
	return Message{Name: caps[1], Tag: caps[2], SubPath: caps[3]}, nil
}

// ParseEndpointFrame locates the session id and backend-advertised path
// inside a raw SSE chunk. The chunk may be preceded by "event: endpoint\n"
// framing; only the "data:" line (if any) is fed to the session regex. If
// no data line is present the whole chunk is tried verbatim. Returns false
// when the chunk doesn't carry a recognisable endpoint frame — the caller
// should forward the chunk unchanged in that case.
func ParseEndpointFrame(chunk string) (path, sessionID string, ok bool) {
	line := chunk
	for _, candidate := range strings.Split(chunk, "\n") {
		trimmed := strings.TrimSpace(candidate)
		if strings.HasPrefix(trimmed, "data:") {
			line = strings.TrimSpace(strings.TrimPrefix(trimmed, "data:"))
			break
		}
	}

	caps := regexSession.FindStringSubmatch(line)
	if caps == nil {
		return "", "", false
	}

	names := regexSession.SubexpNames()
	group := make(map[string]string, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		group[name] = caps[i]
	}

	return group["path"], group["sid"], true
}

// BuildProxyMessagePath builds the stable client-visible path the proxy
// rewrites the backend's endpoint frame into.
func BuildProxyMessagePath(name, tag, backendPath, sessionID string) string {
	trimmed := strings.TrimPrefix(backendPath, "/")
	return fmt.Sprintf("/proxy/message/%s/%s/%s?sessionId=%s", name, tag, trimmed, sessionID)
}
