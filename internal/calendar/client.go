package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps a Google Calendar service for either the API-key read
// path or the OAuth write path.
type Client struct {
	svc     *calendar.Service
	timeout time.Duration
}

// NewReadClient creates a calendar client authenticated with an API
// key. Suitable only for reads.
func NewReadClient(ctx context.Context, apiKey string, timeout time.Duration) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Client{svc: svc, timeout: timeout}, nil
}

// NewWriteClient creates a calendar client authenticated with the
// user's OAuth token source.
func NewWriteClient(ctx context.Context, ts oauth2.TokenSource, timeout time.Duration) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Client{svc: svc, timeout: timeout}, nil
}

// ListDay returns up to MaxEventsPerDay events in the UTC day window
// containing day, ordered by start time.
func (c *Client) ListDay(ctx context.Context, calendarID string, day time.Time) ([]*calendar.Event, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	start, end := DayWindow(day)
	events, err := c.svc.Events.List(calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(MaxEventsPerDay).
		Context(ctx).
		Do()
	if err != nil {
		return nil, providerError("list events", err)
	}

	return events.Items, nil
}

// Insert creates event in calendarID and returns the created event.
func (c *Client) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	ctx, cancel := c.boundedContext(ctx)
	defer cancel()

	created, err := c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, providerError("create event", err)
	}

	return created, nil
}

func (c *Client) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// providerError distinguishes a timed-out call from a provider
// rejection so operators see which one they are debugging.
func providerError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("calendar request timed out: %s: %w", op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
