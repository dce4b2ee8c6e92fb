package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/teemow/calmcp/internal/calendar"
	"github.com/teemow/calmcp/internal/logging"
	"github.com/teemow/calmcp/internal/server"
)

const dateLayout = "2006-01-02"

type readResult struct {
	Date     string   `json:"date"`
	Meetings []string `json:"meetings"`
}

type writeResult struct {
	Success  bool   `json:"success"`
	EventID  string `json:"eventId,omitempty"`
	HTMLLink string `json:"htmlLink,omitempty"`
	Created  string `json:"created,omitempty"`
	Error    string `json:"error,omitempty"`
	AuthURL  string `json:"authUrl,omitempty"`
	Message  string `json:"message,omitempty"`
}

type tokenResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// RegisterCalendarTools registers the calendar tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	readTool := mcp.NewTool("getMyCalendarDataByDate",
		mcp.WithDescription("List the user's calendar events for a single day"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("The day to query in YYYY-MM-DD format (e.g., '2025-06-15')"),
		),
	)

	s.AddTool(readTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return instrumented(ctx, sc, "getMyCalendarDataByDate", request, handleGetCalendarDataByDate)
	})

	createTool := mcp.NewTool("createCalendarEvent",
		mcp.WithDescription("Create an event in the authorized user's Google Calendar"),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("startDateTime",
			mcp.Required(),
			mcp.Description("Start time (RFC3339 format, e.g., '2025-06-15T14:00:00Z')"),
		),
		mcp.WithString("endDateTime",
			mcp.Required(),
			mcp.Description("End time (RFC3339 format, must be after start)"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
	)

	s.AddTool(createTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return instrumented(ctx, sc, "createCalendarEvent", request, handleCreateCalendarEvent)
	})

	tokenTool := mcp.NewTool("setGoogleOAuthTokens",
		mcp.WithDescription("Exchange a Google OAuth authorization code for tokens and store them"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The authorization code shown on the OAuth callback page"),
		),
	)

	s.AddTool(tokenTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return instrumented(ctx, sc, "setGoogleOAuthTokens", request, handleSetOAuthTokens)
	})

	return nil
}

type toolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

func instrumented(ctx context.Context, sc *server.ServerContext, tool string, request mcp.CallToolRequest, handler toolHandler) (*mcp.CallToolResult, error) {
	start := time.Now()
	result, err := handler(ctx, request, sc)

	status := logging.StatusSuccess
	if err != nil || (result != nil && result.IsError) {
		status = logging.StatusError
	}
	sc.Metrics().Record(ctx, tool, status, time.Since(start))
	sc.Logger().Debug("tool call finished",
		logging.Tool(tool),
		logging.Status(status),
		slog.Duration("elapsed", time.Since(start)))
	return result, err
}

func handleGetCalendarDataByDate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	dateStr, ok := args["date"].(string)
	if !ok || dateStr == "" {
		return mcp.NewToolResultError("date is required"), nil
	}
	day, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid date %q: expected YYYY-MM-DD", dateStr)), nil
	}

	events, err := sc.Reader().ListDay(ctx, sc.Config().CalendarID, day)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}

	meetings := make([]string, 0, len(events))
	for _, event := range events {
		meetings = append(meetings, calendar.FormatEventLine(event))
	}

	return jsonResult(readResult{Date: day.Format(dateLayout), Meetings: meetings})
}

func handleCreateCalendarEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	startStr, ok := args["startDateTime"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("startDateTime is required"), nil
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid startDateTime format: %v", err)), nil
	}

	endStr, ok := args["endDateTime"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("endDateTime is required"), nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid endDateTime format: %v", err)), nil
	}

	// Validation precedes any credential or provider access so an
	// unauthorized user with a bad request learns about the bad
	// request first.
	start, end = start.UTC(), end.UTC()
	if !start.Before(end) {
		return mcp.NewToolResultError("startDateTime must be strictly before endDateTime"), nil
	}

	userID := sc.Config().DefaultUserID
	authorized, authURL := sc.Manager().EnsureAuthorized(ctx, userID)
	if !authorized {
		return jsonResult(writeResult{
			Success: false,
			Error:   "Authentication required",
			AuthURL: authURL,
			Message: "Open the URL, grant calendar access, then pass the code to setGoogleOAuthTokens.",
		})
	}

	writer, err := sc.WriterFor(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create calendar client: %v", err)), nil
	}

	event := &calendarapi.Event{
		Summary: summary,
		Start:   &calendarapi.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: "UTC"},
		End:     &calendarapi.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: "UTC"},
	}
	if desc, ok := args["description"].(string); ok {
		event.Description = desc
	}
	if loc, ok := args["location"].(string); ok {
		event.Location = loc
	}

	created, err := writer.Insert(ctx, sc.Config().CalendarID, event)
	if err != nil {
		return jsonResult(writeResult{
			Success: false,
			Error:   fmt.Sprintf("Failed to create event: %v", err),
		})
	}

	return jsonResult(writeResult{
		Success:  true,
		EventID:  created.Id,
		HTMLLink: created.HtmlLink,
		Created:  created.Created,
		Message:  fmt.Sprintf("Created event %q", created.Summary),
	})
}

func handleSetOAuthTokens(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	code, ok := args["code"].(string)
	if !ok || code == "" {
		return mcp.NewToolResultError("code is required"), nil
	}

	userID := sc.Config().DefaultUserID
	if err := sc.Manager().CompleteAuthorization(ctx, userID, code); err != nil {
		return jsonResult(tokenResult{
			Success: false,
			Error:   fmt.Sprintf("Token exchange failed: %v", err),
		})
	}

	return jsonResult(tokenResult{
		Success: true,
		Message: "Google Calendar connected. Calendar events can now be created.",
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
