// Package cmd implements the command-line interface for calmcp.
//
// This package provides the following commands:
//   - serve: Start the MCP calendar server (default command)
//   - cleanup: Remove expired credential records that cannot be refreshed
//   - version: Display version information
package cmd
