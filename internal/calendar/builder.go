package calendar

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Defaults for generated events.
const (
	DefaultTitle     = "Cache-day"
	DefaultHour      = 19
	DefaultNamespace = "fulldatechart"
	DefaultDuration  = time.Hour
)

// UID returns the identifier of the n-th event generated under namespace.
// It is a name-based (SHA-1) UUID, so equal inputs give equal UIDs.
func UID(namespace string, n uint64) string {
	ns := uuid.NewSHA1(uuid.NameSpaceOID, []byte(namespace))
	return uuid.NewSHA1(ns, []byte(strconv.FormatUint(n, 10))).String()
}

// UIDGenerator hands out distinct UIDs within one run.
// It is not safe for concurrent use.
type UIDGenerator struct {
	namespace string
	next      uint64
}

// NewUIDGenerator returns a generator seeded with namespace.
func NewUIDGenerator(namespace string) *UIDGenerator {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &UIDGenerator{namespace: namespace, next: 1}
}

// Next returns a UID that has not been returned before by this generator.
func (g *UIDGenerator) Next() string {
	n := g.next
	g.next++
	return UID(g.namespace, n)
}

// BuilderOptions configures a Builder. Zero values select the defaults.
type BuilderOptions struct {
	Title    string
	Hour     int
	Duration time.Duration

	// Location is the nominal zone of the event start (default time.Local).
	Location *time.Location

	// UIDs generates event identifiers (default: DefaultNamespace).
	UIDs *UIDGenerator
}

// Builder turns projected dates into calendar events.
type Builder struct {
	title    string
	hour     int
	duration time.Duration
	loc      *time.Location
	uids     *UIDGenerator
}

// NewBuilder creates a Builder. Hour is used as given, so callers wanting the
// default must set DefaultHour themselves.
func NewBuilder(opts BuilderOptions) *Builder {
	b := &Builder{
		title:    opts.Title,
		hour:     opts.Hour,
		duration: opts.Duration,
		loc:      opts.Location,
		uids:     opts.UIDs,
	}
	if b.title == "" {
		b.title = DefaultTitle
	}
	if b.duration <= 0 {
		b.duration = DefaultDuration
	}
	if b.loc == nil {
		b.loc = time.Local
	}
	if b.uids == nil {
		b.uids = NewUIDGenerator(DefaultNamespace)
	}
	return b
}

// Build returns the event marking date. Only the year, month and day of date
// are used; the start is placed in the builder's location.
func (b *Builder) Build(date time.Time) Event {
	start := time.Date(date.Year(), date.Month(), date.Day(), b.hour, 0, 0, 0, b.loc)
	return Event{
		UID:     b.uids.Next(),
		Summary: b.title,
		Start:   start,
		End:     start.Add(b.duration),
	}
}
