// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package registry maintains the in-memory (name, tag) -> BackendInfo map
// that the connection and message services consult on every request. It is
// kept fresh by a periodic BackendSource poll and by consuming mutation
// events off an EventBus.
package registry
