// Package datadog implements a Datadog backend for internal/metrics.
//
// Observations are buffered in memory and submitted on Flush: periodically
// from a background ticker for longer runs, and once more on Close so a
// short-lived report run still lands its tail. Credentials come from the
// standard DD_API_KEY environment handled by the official client.
package datadog

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"shootings/internal/metrics"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// submitter is the slice of the Datadog API the backend needs. The concrete
// *datadogV2.MetricsApi satisfies it; tests substitute a fake to avoid real
// submission.
type submitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Options configures the backend.
type Options struct {
	// JobName becomes the "job:<name>" tag on every series. Empty defaults
	// to "shootings-report".
	JobName string
	// Tags are appended to every series, e.g. []string{"env:dev"}.
	Tags []string
	// FlushEvery controls the background flush cadence. <= 0 means 60s.
	FlushEvery time.Duration

	// Unexported test seams; production code leaves them nil.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter submitter
}

// Backend implements metrics.Backend against the Datadog intake API.
type Backend struct {
	api submitter
	ctx context.Context

	baseTags  []string
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	stopCh chan struct{}
	doneCh chan struct{}

	mu        sync.Mutex
	counters  map[seriesKey]float64
	durations map[seriesKey][]float64
}

// seriesKey identifies one buffered series: metric name plus canonical tags.
type seriesKey struct {
	name string
	tags string
}

func keyFor(name string, labels metrics.Labels) seriesKey {
	if len(labels) == 0 {
		return seriesKey{name: name}
	}
	tags := make([]string, 0, len(labels))
	for k, v := range labels {
		tags = append(tags, k+":"+v)
	}
	sort.Strings(tags)
	return seriesKey{name: name, tags: strings.Join(tags, ",")}
}

func (k seriesKey) tagList() []string {
	if k.tags == "" {
		return nil
	}
	return strings.Split(k.tags, ",")
}

// NewBackend constructs a running backend. Network errors surface from
// Flush/Close, not from construction.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "shootings-report"
	}
	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	tickerFn := opts.newTicker
	if tickerFn == nil {
		tickerFn = time.NewTicker
	}

	api := opts.submitter
	if api == nil {
		client := dd.NewAPIClient(dd.NewConfiguration())
		api = datadogV2.NewMetricsApi(client)
	}

	b := &Backend{
		api:       api,
		ctx:       dd.NewDefaultContext(parent),
		baseTags:  append([]string{"job:" + job}, opts.Tags...),
		now:       nowFn,
		newTicker: tickerFn,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		counters:  make(map[seriesKey]float64),
		durations: make(map[seriesKey][]float64),
	}
	go b.loop(flushEvery)
	return b, nil
}

func (b *Backend) loop(every time.Duration) {
	defer close(b.doneCh)
	t := b.newTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

// IncCounter implements metrics.Backend.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta == 0 {
		return
	}
	k := keyFor(name, labels)
	b.mu.Lock()
	b.counters[k] += delta
	b.mu.Unlock()
}

// ObserveDuration implements metrics.Backend.
func (b *Backend) ObserveDuration(name string, d time.Duration, labels metrics.Labels) {
	if d < 0 {
		return
	}
	k := keyFor(name, labels)
	b.mu.Lock()
	b.durations[k] = append(b.durations[k], d.Seconds())
	b.mu.Unlock()
}

// Flush submits buffered series and resets the buffers. Buffers reset even
// when submission fails; delivery is best effort.
func (b *Backend) Flush() error {
	b.mu.Lock()
	counters := b.counters
	durations := b.durations
	b.counters = make(map[seriesKey]float64)
	b.durations = make(map[seriesKey][]float64)
	b.mu.Unlock()

	if len(counters) == 0 && len(durations) == 0 {
		return nil
	}

	series := b.buildSeries(counters, durations, b.now().Unix())
	_, _, err := b.api.SubmitMetrics(b.ctx, datadogV2.MetricPayload{Series: series}, *datadogV2.NewSubmitMetricsOptionalParameters())
	if err != nil {
		return fmt.Errorf("submit metrics: %w", err)
	}
	return nil
}

// buildSeries is pure (no locks, clocks, or network) so tests can assert the
// exact payload shape.
func (b *Backend) buildSeries(counters map[seriesKey]float64, durations map[seriesKey][]float64, nowUnix int64) []datadogV2.MetricSeries {
	point := func(v float64) []datadogV2.MetricPoint {
		return []datadogV2.MetricPoint{{Timestamp: dd.PtrInt64(nowUnix), Value: dd.PtrFloat64(v)}}
	}

	series := make([]datadogV2.MetricSeries, 0, len(counters)+len(durations))
	for k, v := range counters {
		series = append(series, datadogV2.MetricSeries{
			Metric: k.name,
			Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
			Points: point(v),
			Tags:   append(append([]string{}, b.baseTags...), k.tagList()...),
		})
	}
	for k, samples := range durations {
		var max, sum float64
		for _, s := range samples {
			sum += s
			if s > max {
				max = s
			}
		}
		tags := append(append([]string{}, b.baseTags...), k.tagList()...)
		series = append(series,
			datadogV2.MetricSeries{
				Metric: k.name + ".max",
				Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
				Points: point(max),
				Tags:   tags,
			},
			datadogV2.MetricSeries{
				Metric: k.name + ".avg",
				Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
				Points: point(sum / float64(len(samples))),
				Tags:   tags,
			},
		)
	}

	// Deterministic order keeps payloads diffable in tests and logs.
	sort.Slice(series, func(i, j int) bool { return series[i].Metric < series[j].Metric })
	return series
}

// Close stops the flush loop and performs a final Flush. Close once.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}
