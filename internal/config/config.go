// Package config provides configuration loading for fulldatechart.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jesperes/fulldatechart/internal/calendar"
	"github.com/jesperes/fulldatechart/internal/slot"
)

// DefaultOutput is the calendar file written when no output is configured.
const DefaultOutput = "fulldatechart.ics"

// Environment variables that override file values.
const (
	EnvOutput         = "FULLDATECHART_OUTPUT"
	EnvCalDAVURL      = "FULLDATECHART_CALDAV_URL"
	EnvCalDAVUsername = "FULLDATECHART_CALDAV_USERNAME"
	EnvCalDAVPassword = "FULLDATECHART_CALDAV_PASSWORD"
)

// Config is the root configuration structure.
type Config struct {
	Output    string          `yaml:"output"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Filter    FilterConfig    `yaml:"filter"`
	Event     EventConfig     `yaml:"event"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Publish   PublishConfig   `yaml:"publish"`
}

// NormalizeConfig configures how log timestamps are mapped to days.
type NormalizeConfig struct {
	Shift time.Duration `yaml:"shift"`
}

// FilterConfig configures which logs count as a visit.
type FilterConfig struct {
	Types []string `yaml:"types"` // Accepted log types (default: "Found it", "Attended")
}

// EventConfig configures the generated calendar events.
type EventConfig struct {
	Title        string   `yaml:"title"`
	Hour         int      `yaml:"hour"`
	UIDNamespace string   `yaml:"uid_namespace"`
	Skip         []string `yaml:"skip"` // Days ("MM-DD") that never get an event
}

// SkipSlots parses the skip list.
func (c *EventConfig) SkipSlots() ([]slot.Key, error) {
	keys := make([]slot.Key, 0, len(c.Skip))
	for _, s := range c.Skip {
		k, err := slot.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("event skip: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// CalendarConfig configures calendar level properties.
type CalendarConfig struct {
	ProductID string `yaml:"product_id"`
}

// PublishConfig configures optional upload of the generated events.
type PublishConfig struct {
	CalDAV CalDAVConfig `yaml:"caldav"`
}

// CalDAVConfig configures a CalDAV collection to publish events to.
type CalDAVConfig struct {
	URL         string `yaml:"url"` // Calendar collection URL
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	PasswordCmd string `yaml:"password_cmd,omitempty"`
}

// Enabled reports whether a CalDAV collection is configured.
func (c *CalDAVConfig) Enabled() bool {
	return c.URL != ""
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Output:    DefaultOutput,
		Normalize: NormalizeConfig{Shift: slot.DefaultShift},
		Event: EventConfig{
			Title:        calendar.DefaultTitle,
			Hour:         calendar.DefaultHour,
			UIDNamespace: calendar.DefaultNamespace,
		},
		Calendar: CalendarConfig{ProductID: calendar.DefaultProductID},
	}
}

// Load reads configuration from the default location
// (~/.config/fulldatechart/config.yaml). A missing file yields defaults.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}

	path := filepath.Join(configDir, "fulldatechart", "config.yaml")
	cfg, err := LoadFrom(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", path)
		cfg = Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return cfg, err
}

// LoadFrom reads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if c.Event.Hour < 0 || c.Event.Hour > 23 {
		return fmt.Errorf("event hour %d out of range 0-23", c.Event.Hour)
	}
	if c.Normalize.Shift < 0 || c.Normalize.Shift >= 24*time.Hour {
		return fmt.Errorf("normalize shift %s out of range [0, 24h)", c.Normalize.Shift)
	}
	if _, err := c.Event.SkipSlots(); err != nil {
		return err
	}
	return nil
}

// applyDefaults sets default values for options left empty in the file.
func (c *Config) applyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if c.Event.Title == "" {
		c.Event.Title = calendar.DefaultTitle
	}
	if c.Event.UIDNamespace == "" {
		c.Event.UIDNamespace = calendar.DefaultNamespace
	}
	if c.Calendar.ProductID == "" {
		c.Calendar.ProductID = calendar.DefaultProductID
	}
	c.Output = expandPath(c.Output)
}

// applyEnv loads a .env file from the working directory, if any, and lets
// FULLDATECHART_* variables override file values.
func (c *Config) applyEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = expandPath(v)
	}
	if v := os.Getenv(EnvCalDAVURL); v != "" {
		c.Publish.CalDAV.URL = v
	}
	if v := os.Getenv(EnvCalDAVUsername); v != "" {
		c.Publish.CalDAV.Username = v
	}
	if v := os.Getenv(EnvCalDAVPassword); v != "" {
		c.Publish.CalDAV.Password = v
	}
}

// GetPassword returns the CalDAV password, executing password_cmd if needed.
func (c *CalDAVConfig) GetPassword() (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}
	if c.PasswordCmd == "" {
		return "", nil
	}

	cmd := exec.Command("sh", "-c", c.PasswordCmd)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("execute password_cmd: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// UnmarshalYAML implements custom unmarshaling for the shift duration.
// An absent shift keeps the current value; "0" disables shifting.
func (c *NormalizeConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Shift string `yaml:"shift"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	if raw.Shift != "" {
		d, err := parseDuration(raw.Shift)
		if err != nil {
			return fmt.Errorf("parse shift: %w", err)
		}
		c.Shift = d
	}
	return nil
}

// parseDuration accepts Go durations plus a bare number of hours.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Hour, nil
	}
	return time.ParseDuration(s)
}
