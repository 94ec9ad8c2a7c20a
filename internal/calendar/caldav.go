package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ics "github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

// maxEvents bounds the UIDs a namespace can produce: one per day of a leap year.
const maxEvents = 366

// Publisher uploads events to a CalDAV calendar collection.
type Publisher struct {
	client    *caldav.Client
	namespace string
	meta      Meta
}

// NewPublisher creates a publisher for the collection at url. Events it
// manages carry UIDs generated under namespace.
func NewPublisher(url, username, password, namespace string, meta Meta) (*Publisher, error) {
	// Create HTTP client with basic auth
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
	}
	if username != "" {
		httpClient.Transport = &basicAuthTransport{
			username: username,
			password: password,
			base:     http.DefaultTransport,
		}
	}

	client, err := caldav.NewClient(httpClient, url)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}

	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Publisher{client: client, namespace: namespace, meta: meta}, nil
}

// Publish stores each event as its own calendar object named after its UID,
// then removes objects left over from earlier runs. It stops at the first
// failure.
func (p *Publisher) Publish(ctx context.Context, events []Event) error {
	for i, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := event.UID + ".ics"
		cal := NewCalendar([]Event{event}, p.meta)
		if _, err := p.client.PutCalendarObject(ctx, path, cal); err != nil {
			return fmt.Errorf("put calendar object %s: %w", path, err)
		}
		slog.Debug("published event", "uid", event.UID, "start", event.Start, "n", i+1)
	}

	removed, err := p.prune(ctx, events)
	if err != nil {
		return err
	}

	slog.Info("published events", "count", len(events), "removed", removed)
	return nil
}

// prune deletes objects holding a UID of this namespace that is not among
// keep. Objects created by anyone else are left alone.
func (p *Publisher) prune(ctx context.Context, keep []Event) (int, error) {
	current := make(map[string]struct{}, len(keep))
	for _, e := range keep {
		current[e.UID] = struct{}{}
	}
	stale := make(map[string]struct{})
	for n := uint64(1); n <= maxEvents; n++ {
		uid := UID(p.namespace, n)
		if _, ok := current[uid]; !ok {
			stale[uid] = struct{}{}
		}
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{{
				Name:  "VEVENT",
				Props: []string{"UID"},
			}},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}
	objects, err := p.client.QueryCalendar(ctx, "", query)
	if err != nil {
		return 0, fmt.Errorf("query calendar: %w", err)
	}

	removed := 0
	for _, obj := range objects {
		if obj.Data == nil || !holdsUID(obj.Data, stale) {
			continue
		}
		if err := p.client.RemoveAll(ctx, obj.Path); err != nil {
			return removed, fmt.Errorf("remove calendar object %s: %w", obj.Path, err)
		}
		slog.Debug("removed stale event", "path", obj.Path)
		removed++
	}

	return removed, nil
}

// holdsUID reports whether any VEVENT of cal has a UID in uids.
func holdsUID(cal *ics.Calendar, uids map[string]struct{}) bool {
	for _, comp := range cal.Children {
		if comp.Name != ics.CompEvent {
			continue
		}
		uid, err := comp.Props.Text(ics.PropUID)
		if err != nil {
			continue
		}
		if _, ok := uids[uid]; ok {
			return true
		}
	}
	return false
}

// basicAuthTransport adds basic auth to HTTP requests.
type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
