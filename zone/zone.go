// Package zone owns every conversion between UTC instants and calendar
// dates of the reference time zone used for conversation segmentation and
// weekly reporting.
package zone

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultName = "America/Argentina/Buenos_Aires"

	fallbackName   = "UTC-03:00"
	fallbackOffset = -3 * 60 * 60
)

// Zone is an immutable reference time zone.
type Zone struct {
	loc  *time.Location
	name string
}

// Load resolves name from the time zone database. When the database is
// unavailable or does not know name, a fixed UTC-3 offset is used instead.
func Load(name string) *Zone {
	if name == "" {
		name = DefaultName
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().
			Err(err).
			Str("zone", name).
			Str("fallback", fallbackName).
			Msg("Time zone not available, using fixed offset")
		return Fixed()
	}
	return &Zone{loc: loc, name: name}
}

// Fixed returns the UTC-3 fallback zone.
func Fixed() *Zone {
	return &Zone{loc: time.FixedZone(fallbackName, fallbackOffset), name: fallbackName}
}

func (z *Zone) Name() string {
	return z.name
}

func (z *Zone) Location() *time.Location {
	return z.loc
}

// Date returns the local calendar date of t.
func (z *Zone) Date(t time.Time) Date {
	y, m, d := t.In(z.loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the local calendar date of now.
func (z *Zone) Today(now time.Time) Date {
	return z.Date(now)
}

// Midnight returns the UTC instant at which d starts locally.
func (z *Zone) Midnight(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, z.loc).UTC()
}

// WeekOf returns the Monday to Sunday week containing d.
func (z *Zone) WeekOf(d Date) Week {
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDays(-offset)
	return Week{Start: start, End: start.AddDays(6)}
}

// Bounds converts w to the half-open UTC interval [from, to), where to is
// the local midnight following Sunday.
func (z *Zone) Bounds(w Week) (from, to time.Time) {
	return z.Midnight(w.Start), z.Midnight(w.End.AddDays(1))
}

// Date is a civil date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}, nil
}

func (d Date) civil() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	y, m, day := d.civil().AddDate(0, 0, n).Date()
	return Date{Year: y, Month: m, Day: day}
}

func (d Date) Weekday() time.Weekday {
	return d.civil().Weekday()
}

func (d Date) Before(other Date) bool {
	return d.civil().Before(other.civil())
}

func (d Date) String() string {
	return d.civil().Format(time.DateOnly)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Week is a Monday to Sunday range of local dates, both inclusive.
type Week struct {
	Start Date
	End   Date
}

// Previous returns the week immediately before w.
func (w Week) Previous() Week {
	return Week{Start: w.Start.AddDays(-7), End: w.Start.AddDays(-1)}
}

// Days lists every date of w in order.
func (w Week) Days() []Date {
	var days []Date
	for d := w.Start; !w.End.Before(d); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
