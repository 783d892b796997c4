// Package calendar builds the month calendar view: every day cell shows up
// to four event glyphs arranged by a fixed layout table.
package calendar

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/bjorngylling/flowviz/errors"
)

const dateLayout = "2006-01-02"

// Day is one calendar cell. Events holds glyph indices, possibly repeated.
type Day struct {
	Date   time.Time
	Events []int
}

// Value encodes the events the way the custom series stores them, "0|3|1".
func (d Day) Value() string {
	parts := make([]string, len(d.Events))
	for i, e := range d.Events {
		parts[i] = strconv.Itoa(e)
	}
	return strings.Join(parts, "|")
}

// ParseValue is the inverse of Day.Value.
func ParseValue(v string) ([]int, error) {
	if v == "" {
		return nil, nil
	}
	parts := strings.Split(v, "|")
	events := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, errors.Wrapf(err, "event %d of %q", i, v)
		}
		events[i] = n
	}
	return events, nil
}

// Generate fills every day in [from, to) with 0..glyphs random events, each
// a glyph index in [0, glyphs).
func Generate(from, to time.Time, r *rand.Rand, glyphs int) []Day {
	var days []Day
	for d := truncateDay(from); d.Before(to); d = d.AddDate(0, 0, 1) {
		n := r.Intn(glyphs + 1)
		events := make([]int, n)
		for i := range events {
			events[i] = r.Intn(glyphs)
		}
		days = append(days, Day{Date: d, Events: events})
	}
	return days
}

// MonthRange returns the first day of month and the first day of the next.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, errors.WithHint(errors.Wrapf(err, "month %q", month), "months are written as YYYY-MM")
	}
	return start, start.AddDate(0, 1, 0), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
