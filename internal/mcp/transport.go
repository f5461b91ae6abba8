package mcp

import (
	"strings"
)

// TransportType names an MCP transport.
type TransportType string

const (
	TransportStdio TransportType = "stdio"
	TransportHTTP  TransportType = "http"
)

// DetectTransport picks the transport from, in priority order, command line
// flags (--stdio, --http), the MCP_TRANSPORT environment variable and the
// configured value. Anything unrecognised falls through to stdio.
func DetectTransport(args []string, getenv func(string) string, configured string) TransportType {
	for _, arg := range args {
		switch arg {
		case "--stdio", "-stdio":
			return TransportStdio
		case "--http", "-http":
			return TransportHTTP
		}
	}

	if t, ok := parseTransport(getenv("MCP_TRANSPORT")); ok {
		return t
	}
	if t, ok := parseTransport(configured); ok {
		return t
	}
	return TransportStdio
}

func parseTransport(v string) (TransportType, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "stdio":
		return TransportStdio, true
	case "http", "streamable-http":
		return TransportHTTP, true
	default:
		return "", false
	}
}
