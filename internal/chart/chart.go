// Package chart computes the calendar days a cacher has never logged a find
// on and turns them into upcoming calendar events.
package chart

import (
	"log/slog"
	"time"

	"github.com/jesperes/fulldatechart/internal/calendar"
	"github.com/jesperes/fulldatechart/internal/filter"
	"github.com/jesperes/fulldatechart/internal/gpx"
	"github.com/jesperes/fulldatechart/internal/slot"
)

// Occurrence is the next date an empty slot falls on.
type Occurrence struct {
	Slot slot.Key
	Date time.Time // civil date, midnight UTC
}

// Result is the outcome of one run.
type Result struct {
	// Empty holds the slots without any qualifying log, sorted.
	Empty []slot.Key

	// Occurrences and Events are parallel to each other and follow Empty,
	// leaving out skipped slots.
	Occurrences []Occurrence
	Events      []calendar.Event
}

// Reduce returns the slots of the universe that no accepted entry maps to,
// ordered by slot.Compare. The timestamp of every accepted entry must parse.
func Reduce(entries []gpx.LogEntry, f *filter.Filter, n slot.Normalizer) ([]slot.Key, error) {
	empty := slot.NewSet(slot.Universe())

	accepted := 0
	for _, e := range entries {
		if !f.Accepts(e) {
			continue
		}
		accepted++

		k, err := n.Normalize(e.Date)
		if err != nil {
			return nil, err
		}
		if empty.Remove(k) {
			slog.Debug("slot covered", "slot", k, "date", e.Date, "cache", e.CacheCode)
		}
	}

	slog.Info("reduced log", "owner", f.Owner(), "entries", len(entries), "accepted", accepted, "empty", empty.Len())
	return empty.Sorted(), nil
}

// Chart runs the whole computation.
type Chart struct {
	Filter     *filter.Filter
	Normalizer slot.Normalizer
	Builder    *calendar.Builder

	// Skip holds slots that never get an event (may be nil).
	Skip *slot.Set

	// Now returns the reference moment for projection (default time.Now).
	Now func() time.Time
}

// Run reduces entries to empty slots and builds one event per slot.
func (c *Chart) Run(entries []gpx.LogEntry) (Result, error) {
	empty, err := Reduce(entries, c.Filter, c.Normalizer)
	if err != nil {
		return Result{}, err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	ref := now()

	res := Result{
		Empty:       empty,
		Occurrences: make([]Occurrence, 0, len(empty)),
		Events:      make([]calendar.Event, 0, len(empty)),
	}
	for _, k := range empty {
		if c.Skip != nil && c.Skip.Contains(k) {
			slog.Debug("skipping slot", "slot", k)
			continue
		}
		date := slot.Project(k, ref)
		res.Occurrences = append(res.Occurrences, Occurrence{Slot: k, Date: date})
		res.Events = append(res.Events, c.Builder.Build(date))
	}

	return res, nil
}
