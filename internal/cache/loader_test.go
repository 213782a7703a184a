package cache

import (
	"bytes"
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phddash/internal/errors"
	"phddash/internal/testkit"
)

const location = "https://example.org/phds.tsv"

// countingFetcher serves a fixed body and counts calls. When gate is set,
// each Fetch blocks until it is closed or its context ends.
type countingFetcher struct {
	body    []byte
	err     error
	calls   atomic.Int32
	gate    chan struct{}
	entered chan struct{}
}

func (f *countingFetcher) Fetch(ctx context.Context, loc string) (io.ReadCloser, error) {
	f.calls.Add(1)
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.body)), nil
}

func fixture() []byte {
	return testkit.NewPhDDataGenerator(testkit.DefaultPhDConfig()).TSV()
}

func TestLoader_MemoizesForProcessLifetime(t *testing.T) {
	fetcher := &countingFetcher{body: fixture()}
	loader := NewLoader(fetcher, location)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, location, first.Source)
	assert.NotEmpty(t, first.LoadID)

	stats := loader.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Fetches)
	assert.True(t, stats.Cached)
	assert.Equal(t, first.Len(), stats.Rows)
}

func TestLoader_ConcurrentCallersShareOneFetch(t *testing.T) {
	fetcher := &countingFetcher{
		body:    fixture(),
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	loader := NewLoader(fetcher, location)

	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := loader.Load(context.Background())
			if err == nil {
				results[i] = table.Len()
			}
		}(i)
	}

	<-fetcher.entered
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	for i, n := range results {
		assert.Equal(t, 60, n, "caller %d", i)
	}
}

func TestLoader_CanceledCallerDoesNotFailJoinedCallers(t *testing.T) {
	fetcher := &countingFetcher{
		body:    fixture(),
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	loader := NewLoader(fetcher, location, WithFetchTimeout(time.Minute))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := loader.Load(firstCtx)
		firstErr <- err
	}()
	<-fetcher.entered

	type result struct {
		table int
		err   error
	}
	second := make(chan result, 1)
	go func() {
		table, err := loader.Load(context.Background())
		if err != nil {
			second <- result{err: err}
			return
		}
		second <- result{table: table.Len()}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.CodeFetchError, errors.GetCode(err))

	close(fetcher.gate)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 60, res.table)

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.True(t, loader.Stats().Cached)
	assert.Equal(t, int64(0), loader.Stats().Failures)
}

func TestLoader_FetchTimeoutBoundsSharedFetch(t *testing.T) {
	fetcher := &countingFetcher{body: fixture(), gate: make(chan struct{})}
	defer close(fetcher.gate)
	loader := NewLoader(fetcher, location, WithFetchTimeout(20*time.Millisecond))

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, loader.Stats().Cached)
	assert.Equal(t, int64(1), loader.Stats().Failures)
}

func TestLoader_FailuresAreNotMemoized(t *testing.T) {
	fetcher := &countingFetcher{err: errors.FetchError(location, io.ErrUnexpectedEOF)}
	loader := NewLoader(fetcher, location)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeFetchError, errors.GetCode(err))

	fetcher.err = nil
	fetcher.body = fixture()
	table, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60, table.Len())

	assert.Equal(t, int32(2), fetcher.calls.Load())
	assert.Equal(t, int64(1), loader.Stats().Failures)
}

func TestLoader_ParseErrorPropagates(t *testing.T) {
	loader := NewLoader(&countingFetcher{body: []byte("not\ta\tdataset\n")}, location)

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
	assert.False(t, loader.Stats().Cached)
}

func TestLoader_Invalidate(t *testing.T) {
	fetcher := &countingFetcher{body: fixture()}
	loader := NewLoader(fetcher, location)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	loader.Invalidate()
	assert.False(t, loader.Stats().Cached)

	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetcher.calls.Load())
	assert.NotEqual(t, first.LoadID, second.LoadID)
	assert.True(t, first.Equal(second), "refetching the same source yields identical data")
	assert.Equal(t, first.Digest, second.Digest)
}

func TestLoader_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	fetcher := &countingFetcher{body: fixture()}
	loader := NewLoader(fetcher, location, WithTTL(time.Minute), WithClock(clock))

	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	now = now.Add(time.Second)
	_, err = loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestLoader_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	loader := NewLoader(&countingFetcher{body: fixture()}, location, WithMetrics(metrics))

	for i := 0; i < 3; i++ {
		_, err := loader.Load(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.loads.WithLabelValues("success")))
	assert.Equal(t, 60.0, testutil.ToFloat64(metrics.rows))

	count, err := testutil.GatherAndCount(reg, "phddash_dataset_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
