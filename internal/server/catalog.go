package server

import (
	"encoding/json"
	"net/http"

	"github.com/teemow/calmcp/internal/logging"
)

type toolDescriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Arguments   []string `json:"arguments"`
}

var toolCatalog = []toolDescriptor{
	{
		Name:        "getMyCalendarDataByDate",
		Description: "List calendar events for a single day",
		Arguments:   []string{"date"},
	},
	{
		Name:        "createCalendarEvent",
		Description: "Create a calendar event in the authorized user's calendar",
		Arguments:   []string{"summary", "startDateTime", "endDateTime"},
	},
	{
		Name:        "setGoogleOAuthTokens",
		Description: "Exchange a Google OAuth authorization code and store the credentials",
		Arguments:   []string{"code"},
	},
}

// ToolCatalogHandler serves a static description of the MCP tools for
// clients that want to inspect the surface without opening an MCP
// session.
func ToolCatalogHandler(sc *ServerContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"tools": toolCatalog}); err != nil {
			sc.Logger().Error("failed to write tool catalog", logging.Err(err))
		}
	}
}
