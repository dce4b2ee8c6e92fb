// Package server holds the shared server context and the HTTP plumbing
// around the MCP server: the SSE listener with its health, capability,
// metrics, and OAuth callback routes, and the standalone callback
// listener used in stdio mode.
//
// The OAuth callback logic is a single handler mounted on whichever
// listener the transport mode provides, so both modes behave
// identically.
package server
