// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchConnect(t *testing.T) {
	tests := []struct {
		uri     string
		want    Connect
		wantErr bool
	}{
		{uri: "/proxy/connect/mcp-test/1.0.0", want: Connect{Name: "mcp-test", Tag: "1.0.0"}},
		{uri: "/proxy/connect/another-app/2.3.4", want: Connect{Name: "another-app", Tag: "2.3.4"}},
		{uri: "/proxy/connect/fetch/1.0.0/ignored/trailing", want: Connect{Name: "fetch", Tag: "1.0.0"}},
		{uri: "/proxy/connect/mcp-test", wantErr: true},
		{uri: "/wrong/xxx/yyy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := MatchConnect(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchMessage(t *testing.T) {
	tests := []struct {
		uri     string
		want    Message
		wantErr bool
	}{
		{
			uri:  "/proxy/message/mcp-test/1.0.0/api/sse/message",
			want: Message{Name: "mcp-test", Tag: "1.0.0", SubPath: "/api/sse/message"},
		},
		{
			uri:  "/proxy/message/mcp-test/1.0.0/message",
			want: Message{Name: "mcp-test", Tag: "1.0.0", SubPath: "/message"},
		},
		{
			uri:  "/proxy/message/fetch/1.0.0",
			want: Message{Name: "fetch", Tag: "1.0.0", SubPath: ""},
		},
		{uri: "/invalid/uri", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := MatchMessage(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// P6: parse_message on the documented input shape returns (path, sid).
func TestParseEndpointFrame(t *testing.T) {
	tests := []struct {
		name      string
		chunk     string
		wantPath  string
		wantSID   string
		wantFound bool
	}{
		{
			name:      "event + data framing",
			chunk:     "event: endpoint\ndata: /message?sessionId=36f34c7e-ec0c-4f6d-8451-38b4488ff4e4\r\n\r\n",
			wantPath:  "/message",
			wantSID:   "36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
			wantFound: true,
		},
		{
			name:      "bare data line",
			chunk:     "data: /msg?sessionId=36f34c7e-ec0c-4f6d-8451-38b4488ff4e4\r\n",
			wantPath:  "/msg",
			wantSID:   "36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
			wantFound: true,
		},
		{
			name:      "no framing at all",
			chunk:     "/message?sessionId=36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
			wantPath:  "/message",
			wantSID:   "36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
			wantFound: true,
		},
		{
			name:      "nested backend path",
			chunk:     "event: endpoint\ndata: /api/sse/message?sessionId=2e029713-f2e5-41db-bdb7-a9255efaa586\r\n\r\n",
			wantPath:  "/api/sse/message",
			wantSID:   "2e029713-f2e5-41db-bdb7-a9255efaa586",
			wantFound: true,
		},
		{
			name:      "missing session id",
			chunk:     "data: /message/no-session-id\r\n",
			wantFound: false,
		},
		{
			name:      "empty chunk",
			chunk:     "",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, sid, ok := ParseEndpointFrame(tt.chunk)
			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				assert.Equal(t, tt.wantPath, path)
				assert.Equal(t, tt.wantSID, sid)
			}
		})
	}
}

// P7: build_proxy_message_path always yields the documented shape.
func TestBuildProxyMessagePath(t *testing.T) {
	tests := []struct {
		name, tag, path, sid, want string
	}{
		{
			name: "mcp-test", tag: "1.0.0", path: "/api/v1/message",
			sid:  "36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
			want: "/proxy/message/mcp-test/1.0.0/api/v1/message?sessionId=36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
		},
		{
			name: "service", tag: "v2", path: "path/to/msg",
			sid:  "36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
			want: "/proxy/message/service/v2/path/to/msg?sessionId=36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
		},
		{
			name: "test", tag: "0.1", path: "/",
			sid:  "36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
			want: "/proxy/message/test/0.1/?sessionId=36f34c7e-ec0c-4f6d-8451-38b4488ff4e4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := BuildProxyMessagePath(tt.name, tt.tag, tt.path, tt.sid)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Scenario 1: connect happy path rewrite end-to-end via the two helpers.
func TestScenarioConnectHappyPathRewrite(t *testing.T) {
	backendFrame := "event: endpoint\ndata: /message?sessionId=49b420bb-adc1-4231-917a-08822da1e8f3\r\n\r\n"
	path, sid, ok := ParseEndpointFrame(backendFrame)
	require.True(t, ok)

	got := BuildProxyMessagePath("fetch", "1.0.0", path, sid)
	want := "/proxy/message/fetch/1.0.0/message?sessionId=49b420bb-adc1-4231-917a-08822da1e8f3"
	assert.Equal(t, want, got)
}
