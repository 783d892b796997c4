package timeseries

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/bjorngylling/flowviz/errors"
)

// Query is one named flux filter; each becomes one series.
type Query struct {
	Ref         string
	Measurement string
	Field       string
}

type InfluxOptions struct {
	URL     string
	Token   string
	Org     string
	Bucket  string
	Queries []Query
	// Every is the aggregation window; zero disables aggregation.
	Every time.Duration
}

// InfluxSource runs one flux query per configured ref.
type InfluxSource struct {
	client influxdb2.Client
	query  api.QueryAPI
	opts   InfluxOptions
}

func NewInfluxSource(opts InfluxOptions) *InfluxSource {
	client := influxdb2.NewClient(opts.URL, opts.Token)
	return &InfluxSource{client: client, query: client.QueryAPI(opts.Org), opts: opts}
}

func (s *InfluxSource) Close() {
	s.client.Close()
}

// Ready reports whether the server answers its health check.
func (s *InfluxSource) Ready(ctx context.Context) error {
	health, err := s.client.Health(ctx)
	if err != nil {
		return err
	}
	if health.Status != "pass" {
		return errors.Newf("influxdb health status %q", string(health.Status))
	}
	return nil
}

func (s *InfluxSource) Query(ctx context.Context, r Range) ([]Series, error) {
	out := make([]Series, 0, len(s.opts.Queries))
	for _, q := range s.opts.Queries {
		result, err := s.query.Query(ctx, FluxQuery(s.opts.Bucket, q, r, s.opts.Every))
		if err != nil {
			return nil, errors.Wrapf(err, "influxdb query %s", q.Ref)
		}
		series := Series{Name: q.Ref, Points: []Point{}}
		for result.Next() {
			record := result.Record()
			v, ok := toFloat(record.Value())
			if !ok {
				continue
			}
			series.Points = append(series.Points, Point{Time: record.Time(), Value: Round2(v)})
		}
		err = result.Err()
		result.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "influxdb result %s", q.Ref)
		}
		out = append(out, series)
	}
	return out, nil
}

// FluxQuery builds the flux script for one ref.
func FluxQuery(bucket string, q Query, r Range, every time.Duration) string {
	flux := fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s, stop: %s)
  |> filter(fn: (r) => r._measurement == %q)
  |> filter(fn: (r) => r._field == %q)`,
		bucket, r.From.UTC().Format(time.RFC3339), r.To.UTC().Format(time.RFC3339), q.Measurement, q.Field)
	if every > 0 {
		flux += fmt.Sprintf("\n  |> aggregateWindow(every: %ds, fn: mean, createEmpty: false)", int64(every/time.Second))
	}
	return flux + "\n  |> sort(columns: [\"_time\"])"
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
