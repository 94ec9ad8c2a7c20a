package calendar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	ics "github.com/emersion/go-ical"
)

// DefaultProductID identifies the generator in written calendars.
const DefaultProductID = "-//JesperEs/fulldatechart 1.0//EN"

// floatingFormat is a DATE-TIME without zone: the same wall clock everywhere.
const floatingFormat = "20060102T150405"

// Meta holds calendar level properties.
type Meta struct {
	ProductID string

	// Stamp is written as DTSTAMP of every event (default: current time).
	Stamp time.Time
}

// NewCalendar returns a VCALENDAR holding one VEVENT per event.
func NewCalendar(events []Event, meta Meta) *ics.Calendar {
	productID := meta.ProductID
	if productID == "" {
		productID = DefaultProductID
	}

	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropProductID, productID)
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropCalendarScale, "GREGORIAN")

	stamp := meta.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}
	stamp = stamp.UTC()
	for _, event := range events {
		cal.Children = append(cal.Children, eventComponent(event, stamp))
	}

	return cal
}

// eventComponent converts an Event to a VEVENT component.
func eventComponent(event Event, stamp time.Time) *ics.Component {
	comp := ics.NewComponent(ics.CompEvent)

	comp.Props.SetText(ics.PropUID, event.UID)
	comp.Props.SetText(ics.PropSummary, event.Summary)

	// DTSTAMP is required by RFC 5545
	comp.Props.SetDateTime(ics.PropDateTimeStamp, stamp)

	setDateTime(comp, ics.PropDateTimeStart, event.Start)
	setDateTime(comp, ics.PropDateTimeEnd, event.End)

	return comp
}

// setDateTime writes t as UTC when it is in UTC and as floating local time
// otherwise; no VTIMEZONE is emitted.
func setDateTime(comp *ics.Component, name string, t time.Time) {
	if t.Location() == time.UTC {
		comp.Props.SetDateTime(name, t)
		return
	}
	prop := ics.NewProp(name)
	prop.Value = t.Format(floatingFormat)
	comp.Props.Set(prop)
}

// Encode writes events as a single iCalendar stream to w.
func Encode(w io.Writer, events []Event, meta Meta) error {
	if err := ics.NewEncoder(w).Encode(NewCalendar(events, meta)); err != nil {
		return fmt.Errorf("encode ICS: %w", err)
	}
	return nil
}

// WriteICS writes events to an ICS file atomically.
// It writes to a temp file first, then renames to the final path.
func WriteICS(path string, events []Event, meta Meta) error {
	// Encode to buffer so that encoding errors never touch the disk
	var buf bytes.Buffer
	if err := Encode(&buf, events, meta); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Write to temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up temp file on error
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
