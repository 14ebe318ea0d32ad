// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package endpoint parses backend URL strings into the normalised
// {scheme, host, port, path} form the registry cache stores and the
// proxy uses to build upstream requests.
package endpoint
