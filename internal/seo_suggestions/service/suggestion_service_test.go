package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/blogcraftai/blogcraft-backend/internal/metrics"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	calls   atomic.Int32
	release chan struct{}
	result  []domain.Suggestion
	err     error
}

func (g *stubGenerator) Generate(ctx context.Context, title, summary, content string) ([]domain.Suggestion, error) {
	g.calls.Add(1)
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, domain.NewProviderError("provider timed out")
		}
	}
	return g.result, g.err
}

type memoryHistory struct {
	mu   sync.Mutex
	runs []domain.SuggestionRun
}

func (h *memoryHistory) SaveRun(_ context.Context, run *domain.SuggestionRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runs = append(h.runs, *run)
	return nil
}

func (h *memoryHistory) ListByUser(_ context.Context, userID string, _ int) ([]domain.SuggestionRun, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []domain.SuggestionRun{}
	for _, r := range h.runs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (h *memoryHistory) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.runs[:0]
	var n int64
	for _, r := range h.runs {
		if r.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	h.runs = kept
	return n, nil
}

func (h *memoryHistory) snapshot() []domain.SuggestionRun {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.SuggestionRun(nil), h.runs...)
}

func setupCache(t *testing.T) (*repository.CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return repository.NewCacheRepository(client, time.Hour), mr
}

var sampleInput = domain.SuggestionInput{Title: "Go maps", Summary: "Internals", Content: "Buckets and hashing"}

func TestSuggest_ClientErrorSkipsProviderAndCache(t *testing.T) {
	gen := &stubGenerator{}
	history := &memoryHistory{}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewSuggestionService(gen, nil, history, m, Options{})

	_, err := svc.Suggest(context.Background(), Request{UserID: "u1", Input: domain.SuggestionInput{Title: "t"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrClientInput)
	assert.Equal(t, int32(0), gen.calls.Load())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.SuggestionCacheMiss))

	runs := history.snapshot()
	require.Len(t, runs, 1)
	assert.Equal(t, domain.OutcomeClientError, runs[0].Outcome)
	assert.Empty(t, runs[0].InputHash)
}

func TestSuggest_CachesSuccessfulResults(t *testing.T) {
	cache, _ := setupCache(t)
	gen := &stubGenerator{result: []domain.Suggestion{{Heading: "h", Description: "d", Keywords: []string{}, Risks: []string{}}}}
	history := &memoryHistory{}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewSuggestionService(gen, cache, history, m, Options{})
	ctx := context.Background()

	first, err := svc.Suggest(ctx, Request{UserID: "u1", Input: sampleInput})
	require.NoError(t, err)

	padded := domain.SuggestionInput{Title: " Go maps ", Summary: "Internals\n", Content: "Buckets and hashing"}
	second, err := svc.Suggest(ctx, Request{UserID: "u1", PostSlug: "go-maps", Input: padded})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SuggestionCacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SuggestionCacheMiss))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProviderCallsTotal.WithLabelValues(metrics.OutcomeOK)))

	runs := history.snapshot()
	require.Len(t, runs, 2)
	assert.False(t, runs[0].Cached)
	assert.True(t, runs[1].Cached)
	assert.Equal(t, "go-maps", runs[1].PostSlug)
	assert.Equal(t, runs[0].InputHash, runs[1].InputHash)
}

func TestSuggest_ProviderErrorsAreNotCached(t *testing.T) {
	cache, _ := setupCache(t)
	gen := &stubGenerator{err: domain.NewProviderError("provider error: HTTP 500")}
	history := &memoryHistory{}
	svc := NewSuggestionService(gen, cache, history, nil, Options{})

	for i := 0; i < 2; i++ {
		_, err := svc.Suggest(context.Background(), Request{UserID: "u1", Input: sampleInput})
		require.Error(t, err)
		var provErr *domain.ProviderError
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, "provider error: HTTP 500", provErr.Message)
	}
	assert.Equal(t, int32(2), gen.calls.Load())

	runs := history.snapshot()
	require.Len(t, runs, 2)
	assert.Equal(t, domain.OutcomeProviderError, runs[1].Outcome)
	assert.Equal(t, "provider error: HTTP 500", runs[1].Error)
}

func TestSuggest_CacheOutageFallsBackToProvider(t *testing.T) {
	cache, mr := setupCache(t)
	mr.SetError("LOADING")
	gen := &stubGenerator{result: []domain.Suggestion{}}
	svc := NewSuggestionService(gen, cache, nil, nil, Options{})

	got, err := svc.Suggest(context.Background(), Request{UserID: "u1", Input: sampleInput})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestSuggest_CollapsesConcurrentIdenticalRequests(t *testing.T) {
	gen := &stubGenerator{
		release: make(chan struct{}),
		result:  []domain.Suggestion{{Heading: "shared"}},
	}
	svc := NewSuggestionService(gen, nil, nil, nil, Options{})

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]domain.Suggestion, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Suggest(context.Background(), Request{Input: sampleInput})
		}(i)
	}

	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// Give the remaining callers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(gen.release)
	wg.Wait()

	assert.Equal(t, int32(1), gen.calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i][0].Heading)
	}
}

func TestSuggest_CancelledCallerDoesNotFailOthers(t *testing.T) {
	gen := &stubGenerator{
		release: make(chan struct{}),
		result:  []domain.Suggestion{{Heading: "shared"}},
	}
	history := &memoryHistory{}
	svc := NewSuggestionService(gen, nil, history, nil, Options{})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Suggest(firstCtx, Request{UserID: "u1", Input: sampleInput})
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		got []domain.Suggestion
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		got, err := svc.Suggest(context.Background(), Request{UserID: "u2", Input: sampleInput})
		second <- outcome{got, err}
	}()
	// Let the second caller join the in-flight call.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProvider)
		assert.EqualError(t, err, "request cancelled")
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(gen.release)
	res := <-second
	require.NoError(t, res.err)
	require.Len(t, res.got, 1)
	assert.Equal(t, "shared", res.got[0].Heading)
	assert.Equal(t, int32(1), gen.calls.Load())

	require.Eventually(t, func() bool { return len(history.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	byUser := map[string]domain.SuggestionRun{}
	for _, r := range history.snapshot() {
		byUser[r.UserID] = r
	}
	assert.Equal(t, domain.OutcomeProviderError, byUser["u1"].Outcome)
	assert.Equal(t, domain.OutcomeOK, byUser["u2"].Outcome)
}

func TestSuggest_CallerDeadlineReportsTimeout(t *testing.T) {
	gen := &stubGenerator{release: make(chan struct{}), result: []domain.Suggestion{}}
	defer close(gen.release)
	svc := NewSuggestionService(gen, nil, nil, nil, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Suggest(ctx, Request{Input: sampleInput})
	require.Error(t, err)
	assert.EqualError(t, err, "provider timed out")
}

func TestSuggest_RateLimitExceeded(t *testing.T) {
	gen := &stubGenerator{result: []domain.Suggestion{}}
	svc := NewSuggestionService(gen, nil, nil, nil, Options{RequestsPerSec: 0.001, Burst: 1})

	_, err := svc.Suggest(context.Background(), Request{Input: sampleInput})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	other := domain.SuggestionInput{Title: "Other", Summary: "s", Content: "c"}
	_, err = svc.Suggest(ctx, Request{Input: other})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.EqualError(t, err, "provider rate limit exceeded")
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestHistoryAndPurge(t *testing.T) {
	history := &memoryHistory{runs: []domain.SuggestionRun{
		{ID: "old", UserID: "u1", CreatedAt: time.Now().Add(-48 * time.Hour)},
		{ID: "new", UserID: "u1", CreatedAt: time.Now()},
		{ID: "other", UserID: "u2", CreatedAt: time.Now()},
	}}
	svc := NewSuggestionService(&stubGenerator{}, nil, history, nil, Options{})
	ctx := context.Background()

	runs, err := svc.History(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	n, err := svc.PurgeHistory(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	runs, err = svc.History(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].ID)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, domain.OutcomeOK, outcomeOf(nil))
	assert.Equal(t, domain.OutcomeClientError, outcomeOf(domain.NewClientInputError("bad")))
	assert.Equal(t, domain.OutcomeProviderError, outcomeOf(domain.NewProviderError("down")))
	assert.Equal(t, domain.OutcomeProviderError, outcomeOf(errors.New("unexpected")))
}
