package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	calendar "google.golang.org/api/calendar/v3"
)

func TestDayWindow(t *testing.T) {
	day := time.Date(2025, 9, 3, 17, 45, 12, 0, time.UTC)
	start, end := DayWindow(day)

	assert.Equal(t, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 9, 4, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestDayWindowNormalizesZone(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	day := time.Date(2025, 9, 3, 1, 0, 0, 0, zone)

	// The window is anchored on the date as given, in UTC
	start, _ := DayWindow(day)
	assert.Equal(t, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), start)
}

func TestFormatEventLine(t *testing.T) {
	tests := []struct {
		name     string
		event    *calendar.Event
		expected string
	}{
		{
			name: "timed event",
			event: &calendar.Event{
				Summary: "Standup",
				Start:   &calendar.EventDateTime{DateTime: "2025-09-03T09:00:00Z"},
			},
			expected: "Standup at 2025-09-03T09:00:00Z",
		},
		{
			name: "all-day event",
			event: &calendar.Event{
				Summary: "Company Holiday",
				Start:   &calendar.EventDateTime{Date: "2025-09-03"},
			},
			expected: "Company Holiday at 2025-09-03",
		},
		{
			name: "timed start wins over date",
			event: &calendar.Event{
				Summary: "Review",
				Start: &calendar.EventDateTime{
					DateTime: "2025-09-03T14:00:00Z",
					Date:     "2025-09-03",
				},
			},
			expected: "Review at 2025-09-03T14:00:00Z",
		},
		{
			name:     "no start at all",
			event:    &calendar.Event{Summary: "Mystery Meeting"},
			expected: "Mystery Meeting at Unknown time",
		},
		{
			name: "empty start fields",
			event: &calendar.Event{
				Summary: "Another Mystery",
				Start:   &calendar.EventDateTime{},
			},
			expected: "Another Mystery at Unknown time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEventLine(tt.event))
		})
	}
}

func TestProviderError(t *testing.T) {
	timeoutErr := providerError("list events", context.DeadlineExceeded)
	assert.Contains(t, timeoutErr.Error(), "timed out")
	assert.True(t, errors.Is(timeoutErr, context.DeadlineExceeded))

	plainErr := providerError("create event", errors.New("403 forbidden"))
	assert.NotContains(t, plainErr.Error(), "timed out")
	assert.Contains(t, plainErr.Error(), "failed to create event")
}

func TestBoundedContext(t *testing.T) {
	c := &Client{timeout: time.Minute}
	ctx, cancel := c.boundedContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)

	// Zero timeout leaves the context unbounded
	unbounded := &Client{}
	ctx, cancel = unbounded.boundedContext(context.Background())
	defer cancel()
	_, ok = ctx.Deadline()
	assert.False(t, ok)
}
