// Package slot provides year-independent calendar day keys and the set of
// days that have not been covered by any log entry.
package slot

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// referenceYear is a leap year so that the universe includes February 29.
const referenceYear = 2012

// Key identifies a calendar day independent of the year.
type Key struct {
	Month time.Month
	Day   int
}

// FromTime returns the key of t's month and day.
func FromTime(t time.Time) Key {
	return Key{Month: t.Month(), Day: t.Day()}
}

// ParseKey parses a key in "MM-DD" form.
func ParseKey(s string) (Key, error) {
	var m, d int
	if _, err := fmt.Sscanf(s, "%02d-%02d", &m, &d); err != nil {
		return Key{}, fmt.Errorf("parse slot %q: %w", s, err)
	}
	k := Key{Month: time.Month(m), Day: d}
	if !k.Valid() {
		return Key{}, fmt.Errorf("parse slot %q: no such day", s)
	}
	return k, nil
}

// Valid reports whether the day exists in the month in at least one year.
func (k Key) Valid() bool {
	if k.Month < time.January || k.Month > time.December || k.Day < 1 {
		return false
	}
	t := time.Date(referenceYear, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
	return t.Month() == k.Month && t.Day() == k.Day
}

// String returns the canonical "MM-DD" form.
func (k Key) String() string {
	return fmt.Sprintf("%02d-%02d", int(k.Month), k.Day)
}

// Compare orders keys by month, then day.
func Compare(a, b Key) int {
	if c := cmp.Compare(a.Month, b.Month); c != 0 {
		return c
	}
	return cmp.Compare(a.Day, b.Day)
}

// Universe returns all 366 keys in calendar order.
func Universe() []Key {
	start := time.Date(referenceYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	keys := make([]Key, 0, 366)
	for i := 0; i < 366; i++ {
		keys = append(keys, FromTime(start.AddDate(0, 0, i)))
	}
	return keys
}

// Set is a shrink-only set of keys.
type Set struct {
	keys map[Key]struct{}
}

// NewSet returns a set holding keys.
func NewSet(keys []Key) *Set {
	s := &Set{keys: make(map[Key]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Remove deletes k from the set. Removing an absent key is a no-op.
// It reports whether k was present.
func (s *Set) Remove(k Key) bool {
	if _, ok := s.keys[k]; !ok {
		return false
	}
	delete(s.keys, k)
	return true
}

// Contains reports whether k is in the set.
func (s *Set) Contains(k Key) bool {
	_, ok := s.keys[k]
	return ok
}

// Len returns the number of keys in the set.
func (s *Set) Len() int {
	return len(s.keys)
}

// Sorted returns the keys ordered by Compare.
func (s *Set) Sorted() []Key {
	out := make([]Key, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	slices.SortFunc(out, Compare)
	return out
}
