// fulldatechart writes a calendar of the days of the year a geocacher has
// never found a cache on.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jesperes/fulldatechart/internal/calendar"
	"github.com/jesperes/fulldatechart/internal/chart"
	"github.com/jesperes/fulldatechart/internal/config"
	"github.com/jesperes/fulldatechart/internal/filter"
	"github.com/jesperes/fulldatechart/internal/gpx"
	"github.com/jesperes/fulldatechart/internal/slot"
)

// ErrUsage is returned when the command line is malformed.
var ErrUsage = errors.New("usage error")

const usage = "Usage: fulldatechart [flags] /path/to/myfinds.gpx <myuserid>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses the command line and executes the app. It returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fulldatechart", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "path to config file (default: ~/.config/fulldatechart/config.yaml)")
		output     = fs.String("o", "", "output calendar file (default: fulldatechart.ics)")
		verbose    = fs.Bool("v", false, "verbose logging")
	)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprintln(stdout, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	// Setup logging
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if *output != "" {
		cfg.Output = *output
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &App{cfg: cfg, out: stdout, now: time.Now}
	if err := app.Run(ctx, fs.Args()); err != nil {
		if errors.Is(err, ErrUsage) {
			fs.Usage()
			return 1
		}
		slog.Error("fulldatechart failed", "error", err)
		return 1
	}
	return 0
}

// App is one invocation of fulldatechart.
type App struct {
	cfg *config.Config
	out io.Writer
	now func() time.Time
}

// Run executes the whole pipeline for args (input path, owner id).
// The output file is only written once every event has been built.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: expected 2 arguments, got %d", ErrUsage, len(args))
	}
	input, owner := args[0], args[1]

	f, err := filter.New(a.cfg.Filter, owner)
	if err != nil {
		return fmt.Errorf("create filter: %w", err)
	}

	skip, err := a.cfg.Event.SkipSlots()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Parsing: %s\n", input)
	entries, err := gpx.ReadFile(input)
	if err != nil {
		return err
	}
	slog.Debug("parsed gpx", "path", input, "entries", len(entries))

	now := a.now()
	c := &chart.Chart{
		Filter:     f,
		Normalizer: slot.Normalizer{Shift: a.cfg.Normalize.Shift},
		Builder: calendar.NewBuilder(calendar.BuilderOptions{
			Title: a.cfg.Event.Title,
			Hour:  a.cfg.Event.Hour,
			UIDs:  calendar.NewUIDGenerator(a.cfg.Event.UIDNamespace),
		}),
		Skip: slot.NewSet(skip),
		Now:  func() time.Time { return now },
	}

	res, err := c.Run(entries)
	if err != nil {
		return err
	}

	for _, occ := range res.Occurrences {
		fmt.Fprintf(a.out, "Next occurrence of empty slot: %s -> %s\n", occ.Slot, occ.Date.Format("2006-01-02"))
	}

	meta := calendar.Meta{ProductID: a.cfg.Calendar.ProductID, Stamp: now}
	if err := calendar.WriteICS(a.cfg.Output, res.Events, meta); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}

	abs, err := filepath.Abs(a.cfg.Output)
	if err != nil {
		abs = a.cfg.Output
	}
	fmt.Fprintf(a.out, "Calendar written to %s\n", abs)

	if a.cfg.Publish.CalDAV.Enabled() {
		if err := a.publish(ctx, res.Events, meta); err != nil {
			return fmt.Errorf("publish calendar: %w", err)
		}
	}

	return nil
}

// publish uploads events to the configured CalDAV collection.
func (a *App) publish(ctx context.Context, events []calendar.Event, meta calendar.Meta) error {
	dav := a.cfg.Publish.CalDAV

	password, err := dav.GetPassword()
	if err != nil {
		return err
	}

	p, err := calendar.NewPublisher(dav.URL, dav.Username, password, a.cfg.Event.UIDNamespace, meta)
	if err != nil {
		return err
	}

	slog.Info("publishing events", "url", dav.URL, "count", len(events))
	return p.Publish(ctx, events)
}
