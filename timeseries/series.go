// Package timeseries loads the line series shown on the time-series view.
package timeseries

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/bjorngylling/flowviz/errors"
)

type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is one line, named after the query that produced it.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Range is a closed time window.
type Range struct {
	From time.Time
	To   time.Time
}

// DefaultWindow is the range used when a request names none.
const DefaultWindow = 6 * time.Hour

// ParseRange reads "from" and "to" as epoch milliseconds. Missing values
// default to the DefaultWindow ending at now.
func ParseRange(q url.Values, now time.Time) (Range, error) {
	r := Range{From: now.Add(-DefaultWindow), To: now}
	if v := q.Get("from"); v != "" {
		t, err := parseMillis(v)
		if err != nil {
			return Range{}, errors.Wrap(err, "from")
		}
		r.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := parseMillis(v)
		if err != nil {
			return Range{}, errors.Wrap(err, "to")
		}
		r.To = t
	}
	if !r.From.Before(r.To) {
		return Range{}, errors.Newf("empty range %s..%s", r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	}
	return r, nil
}

func parseMillis(v string) (time.Time, error) {
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Round2 rounds to two decimals, the precision the chart displays.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Source produces the series for a time range.
type Source interface {
	Query(ctx context.Context, r Range) ([]Series, error)
}

// FileSource serves series from a JSON fixture, clipped to the range.
type FileSource struct {
	Path string
}

func (s FileSource) Query(_ context.Context, r Range) ([]Series, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var all []Series
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.Path)
	}
	out := make([]Series, 0, len(all))
	for _, series := range all {
		clipped := Series{Name: series.Name, Points: []Point{}}
		for _, p := range series.Points {
			if p.Time.Before(r.From) || p.Time.After(r.To) {
				continue
			}
			clipped.Points = append(clipped.Points, Point{Time: p.Time, Value: Round2(p.Value)})
		}
		sort.Slice(clipped.Points, func(i, j int) bool { return clipped.Points[i].Time.Before(clipped.Points[j].Time) })
		out = append(out, clipped)
	}
	return out, nil
}
