// Package calendar_tools registers the MCP tools for calendar access:
// a read tool backed by the API-key client, a write tool backed by the
// per-user OAuth credentials, and the token exchange tool that
// completes the authorization flow.
//
// Tool results are JSON envelopes so LLM clients can branch on fields
// like success and authUrl instead of parsing prose.
package calendar_tools
