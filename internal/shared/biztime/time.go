// Package biztime holds the display timezone used when showing record
// timestamps to chat users and operators. Records store UTC unix seconds.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "UTC"

// DisplayLayout is the layout used in chat replies and mails.
const DisplayLayout = "2006-01-02 15:04:05 MST"

var (
	location   *time.Location
	locationMu sync.RWMutex
)

// Init sets the display timezone. An empty name selects UTC.
func Init(tz string) error {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", tz, err)
	}
	locationMu.Lock()
	location = loc
	locationMu.Unlock()
	return nil
}

// Location returns the display timezone, UTC until Init succeeds.
func Location() *time.Location {
	locationMu.RLock()
	defer locationMu.RUnlock()
	if location == nil {
		return time.UTC
	}
	return location
}

// NowUTC returns the current time in UTC truncated to whole seconds,
// the resolution records are persisted with.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// FromUnix converts persisted unix seconds back to a UTC time.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// Format renders t in the display timezone.
func Format(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(Location()).Format(DisplayLayout)
}
