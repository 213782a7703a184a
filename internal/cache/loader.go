// Package cache memoizes the fetched and parsed dataset.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"phddash/adapters/source"
	"phddash/adapters/tsv"
	"phddash/domain/dataset"
	"phddash/internal/errors"
	"phddash/internal/logging"
)

var logger = logging.For("Loader")

// Stats is a snapshot of loader activity
type Stats struct {
	Hits       int64     `json:"hits"`
	Fetches    int64     `json:"fetches"`
	Failures   int64     `json:"failures"`
	Cached     bool      `json:"cached"`
	Rows       int       `json:"rows"`
	LoadID     string    `json:"load_id,omitempty"`
	LastLoadAt time.Time `json:"last_load_at"`
}

// Loader fetches and parses the dataset at most once per memoization
// period. Concurrent callers share the in-flight fetch. Failures are never
// memoized.
type Loader struct {
	fetcher  source.Fetcher
	location string
	ttl      time.Duration
	timeout  time.Duration
	now      func() time.Time
	metrics  *Metrics

	group singleflight.Group

	mu         sync.RWMutex
	table      *dataset.Table
	generation uint64

	hits     atomic.Int64
	fetches  atomic.Int64
	failures atomic.Int64
}

// Option configures a Loader
type Option func(*Loader)

// WithTTL expires the memoized table after ttl. Zero means never.
func WithTTL(ttl time.Duration) Option {
	return func(l *Loader) { l.ttl = ttl }
}

// WithFetchTimeout bounds each shared fetch. The fetch does not inherit
// cancellation from the caller that started it.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(l *Loader) { l.timeout = timeout }
}

// WithMetrics reports loader activity to m
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// NewLoader creates a loader for location
func NewLoader(fetcher source.Fetcher, location string, opts ...Option) *Loader {
	l := &Loader{
		fetcher:  fetcher,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Location returns the source the loader reads
func (l *Loader) Location() string {
	return l.location
}

// Load returns the memoized table, fetching it when absent or expired
func (l *Loader) Load(ctx context.Context) (*dataset.Table, error) {
	if table := l.cached(); table != nil {
		l.hits.Add(1)
		logger.Debugf("Cache hit for %s (load %s)", l.location, table.LoadID)
		if l.metrics != nil {
			l.metrics.hits.Inc()
		}
		return table, nil
	}

	ch := l.group.DoChan(l.location, func() (interface{}, error) {
		// Another caller may have stored the table while we waited to enter.
		if table := l.cached(); table != nil {
			return table, nil
		}
		fetchCtx, cancel := l.fetchContext(ctx)
		defer cancel()
		return l.fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*dataset.Table), nil
	case <-ctx.Done():
		// Only this caller gives up; the shared fetch keeps running for the rest.
		return nil, errors.Wrap(errors.FetchError(l.location, ctx.Err()), "abandoned dataset load")
	}
}

func (l *Loader) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if l.timeout > 0 {
		return context.WithTimeout(detached, l.timeout)
	}
	return context.WithCancel(detached)
}

// Invalidate drops the memoized table. A fetch already in flight still
// completes for its callers but is not stored.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.table = nil
	l.generation++
	l.mu.Unlock()
	l.group.Forget(l.location)
	logger.Infof("Cache invalidated for %s", l.location)
}

// Stats returns current counters
func (l *Loader) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stats := Stats{
		Hits:     l.hits.Load(),
		Fetches:  l.fetches.Load(),
		Failures: l.failures.Load(),
		Cached:   l.table != nil,
	}
	if l.table != nil {
		stats.Rows = l.table.Len()
		stats.LoadID = l.table.LoadID
		stats.LastLoadAt = l.table.LoadedAt
	}
	return stats
}

func (l *Loader) cached() *dataset.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.table == nil {
		return nil
	}
	if l.ttl > 0 && l.now().Sub(l.table.LoadedAt) >= l.ttl {
		return nil
	}
	return l.table
}

func (l *Loader) fetch(ctx context.Context) (*dataset.Table, error) {
	l.mu.RLock()
	generation := l.generation
	l.mu.RUnlock()

	start := l.now()
	l.fetches.Add(1)
	table, err := l.fetchAndParse(ctx)
	elapsed := l.now().Sub(start)
	if l.metrics != nil {
		l.metrics.duration.Observe(elapsed.Seconds())
	}
	if err != nil {
		l.failures.Add(1)
		if l.metrics != nil {
			l.metrics.loads.WithLabelValues("failure").Inc()
		}
		logger.Errorf("Failed to load %s: %v", l.location, err)
		return nil, err
	}

	table.Source = l.location
	table.LoadID = uuid.NewString()
	table.LoadedAt = l.now()

	l.mu.Lock()
	if l.generation == generation {
		l.table = table
	}
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.loads.WithLabelValues("success").Inc()
		l.metrics.rows.Set(float64(table.Len()))
	}
	logger.Infof("Loaded %d rows from %s in %.2fms (digest %.12s)",
		table.Len(), l.location, float64(elapsed.Nanoseconds())/1e6, table.Digest)
	return table, nil
}

func (l *Loader) fetchAndParse(ctx context.Context) (*dataset.Table, error) {
	body, err := l.fetcher.Fetch(ctx, l.location)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch dataset")
	}
	defer body.Close()

	table, err := tsv.Parse(body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse dataset from %s", l.location)
	}
	return table, nil
}
