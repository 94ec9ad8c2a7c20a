// Package calendar builds, encodes and publishes the generated calendar events.
package calendar

import (
	"time"
)

// Event represents a calendar event.
type Event struct {
	// UID is the unique identifier for this event.
	UID string

	// Summary is the event title.
	Summary string

	// Start is when the event begins.
	Start time.Time

	// End is when the event ends.
	End time.Time
}
