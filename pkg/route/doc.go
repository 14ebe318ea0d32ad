// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package route classifies incoming proxy URIs into connect/message
// requests and parses the session id the backend advertises in its SSE
// endpoint frame.
package route
