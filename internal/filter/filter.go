// Package filter decides which log entries count as a visit by the owner.
package filter

import (
	"errors"
	"fmt"

	"github.com/jesperes/fulldatechart/internal/config"
	"github.com/jesperes/fulldatechart/internal/gpx"
)

// Log type labels that count as a visit.
const (
	TypeFound    = "Found it"
	TypeAttended = "Attended"
)

// DefaultTypes are the log types accepted when none are configured.
var DefaultTypes = []string{TypeFound, TypeAttended}

// Filter accepts log entries of the configured types written by one finder.
type Filter struct {
	owner string
	types map[string]struct{}
}

// New creates a filter for ownerID from configuration.
// Matching is exact; no case folding or trimming is applied.
func New(cfg config.FilterConfig, ownerID string) (*Filter, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is empty")
	}

	types := cfg.Types
	if len(types) == 0 {
		types = DefaultTypes
	}

	f := &Filter{
		owner: ownerID,
		types: make(map[string]struct{}, len(types)),
	}
	for i, t := range types {
		if t == "" {
			return nil, fmt.Errorf("type %d: empty log type", i)
		}
		f.types[t] = struct{}{}
	}

	return f, nil
}

// Owner returns the finder id the filter matches.
func (f *Filter) Owner() string {
	return f.owner
}

// Accepts reports whether entry is a qualifying visit.
func (f *Filter) Accepts(entry gpx.LogEntry) bool {
	if _, ok := f.types[entry.Type]; !ok {
		return false
	}
	return entry.FinderID == f.owner
}
