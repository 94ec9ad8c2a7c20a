// Package gpx extracts geocache log entries from a Groundspeak GPX export.
package gpx

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element names used by the Groundspeak cache extension.
const (
	elemDate   = "groundspeak:date"
	elemType   = "groundspeak:type"
	elemFinder = "groundspeak:finder"
)

// LogEntry is a single log on a cache.
type LogEntry struct {
	// Date is the raw log timestamp, e.g. "2023-01-01T10:00:00Z".
	Date string

	// Type is the log type label, e.g. "Found it" or "Attended".
	Type string

	// FinderID is the numeric account id of the logger.
	FinderID string

	// Finder is the display name of the logger.
	Finder string

	// CacheCode is the GC code of the cache the log belongs to, if known.
	CacheCode string
}

// ReadFile parses the GPX file at path.
func ReadFile(path string) ([]LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read gpx file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads all log entries from a GPX document.
// Missing sibling elements leave the corresponding fields empty.
func Parse(r io.Reader) ([]LogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse gpx: %w", err)
	}

	var entries []LogEntry
	named(doc.Find("*"), elemDate).Each(func(_ int, date *goquery.Selection) {
		siblings := date.Siblings()
		finder := named(siblings, elemFinder).First()
		id, _ := finder.Attr("id")

		entries = append(entries, LogEntry{
			Date:      strings.TrimSpace(date.Text()),
			Type:      strings.TrimSpace(named(siblings, elemType).First().Text()),
			FinderID:  id,
			Finder:    strings.TrimSpace(finder.Text()),
			CacheCode: strings.TrimSpace(date.Closest("wpt").ChildrenFiltered("name").First().Text()),
		})
	})

	return entries, nil
}

// named filters sel down to elements with the given (namespaced) tag name.
// The HTML parser keeps prefixes as part of the name, which CSS selectors
// cannot address without escaping.
func named(sel *goquery.Selection, name string) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return goquery.NodeName(s) == name
	})
}
