package service

import (
	"context"
	"errors"
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/logging"
	"github.com/blogcraftai/blogcraft-backend/internal/metrics"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/seo_suggestions/repository"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Generator produces suggestions for one post. *provider.Client implements it.
type Generator interface {
	Generate(ctx context.Context, title, summary, content string) ([]domain.Suggestion, error)
}

// Cache stores successful results by input hash.
type Cache interface {
	Get(ctx context.Context, inputHash string) ([]domain.Suggestion, error)
	Set(ctx context.Context, inputHash string, suggestions []domain.Suggestion) error
}

// HistoryStore records every suggestion run.
type HistoryStore interface {
	SaveRun(ctx context.Context, run *domain.SuggestionRun) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.SuggestionRun, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DefaultCallTimeout bounds one shared provider call, including the wait for
// a rate-limit token.
const DefaultCallTimeout = 30 * time.Second

// Options tune outbound call pacing.
type Options struct {
	RequestsPerSec float64
	Burst          int
	CallTimeout    time.Duration
}

// Request identifies who asked for suggestions and for what.
type Request struct {
	UserID   string
	PostSlug string
	Input    domain.SuggestionInput
}

// SuggestionService fronts the provider adapter with rate limiting, caching,
// request collapsing and run history. Cache and history are optional.
type SuggestionService struct {
	generator Generator
	cache     Cache
	history   HistoryStore
	metrics   *metrics.Metrics
	limiter   *rate.Limiter
	group     singleflight.Group
	timeout   time.Duration
}

// NewSuggestionService creates a SuggestionService. Non-positive rate options
// disable limiting.
func NewSuggestionService(generator Generator, cache Cache, history HistoryStore, m *metrics.Metrics, opts Options) *SuggestionService {
	limit := rate.Inf
	burst := opts.Burst
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
		if burst <= 0 {
			burst = 1
		}
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &SuggestionService{
		generator: generator,
		cache:     cache,
		history:   history,
		metrics:   m,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   timeout,
	}
}

// Suggest returns suggestions for req.Input. Errors keep the adapter's
// taxonomy: *domain.ClientInputError or *domain.ProviderError.
func (s *SuggestionService) Suggest(ctx context.Context, req Request) ([]domain.Suggestion, error) {
	logger := logging.NewLogger(ctx)

	run := &domain.SuggestionRun{UserID: req.UserID, PostSlug: req.PostSlug}
	defer s.record(ctx, run)

	in, err := req.Input.Normalize()
	if err != nil {
		run.Outcome = domain.OutcomeClientError
		run.Error = err.Error()
		return nil, err
	}
	run.InputHash = repository.InputHash(in)

	if cached, ok := s.lookup(ctx, run.InputHash); ok {
		run.Outcome = domain.OutcomeOK
		run.Cached = true
		run.Suggestions = cached
		return cached, nil
	}

	// The shared call is detached from every caller so one caller giving up
	// never fails the others waiting on the same input.
	ch := s.group.DoChan(run.InputHash, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.generate(callCtx, run.InputHash, in)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := abandoned(ctx.Err())
		logger.LogWarnf("seo_suggest", "caller stopped waiting for %s: %v", run.InputHash, ctx.Err())
		run.Outcome = outcomeOf(err)
		run.Error = err.Error()
		return nil, err
	}
	if res.Shared {
		logger.LogDebugf("seo_suggest", "collapsed concurrent request for %s", run.InputHash)
	}
	if res.Err != nil {
		run.Outcome = outcomeOf(res.Err)
		run.Error = res.Err.Error()
		return nil, res.Err
	}

	suggestions := res.Val.([]domain.Suggestion)
	run.Outcome = domain.OutcomeOK
	run.Suggestions = suggestions
	return suggestions, nil
}

func (s *SuggestionService) lookup(ctx context.Context, inputHash string) ([]domain.Suggestion, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, inputHash)
	if err == nil {
		s.metrics.RecordCacheLookup(true)
		return cached, true
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		logging.NewLogger(ctx).LogWarnf("seo_cache_get", "cache lookup failed: %v", err)
	}
	s.metrics.RecordCacheLookup(false)
	return nil, false
}

func (s *SuggestionService) generate(ctx context.Context, inputHash string, in domain.SuggestionInput) ([]domain.Suggestion, error) {
	logger := logging.NewLogger(ctx)

	if err := s.limiter.Wait(ctx); err != nil {
		logger.LogWarnf("seo_generate", "rate limiter refused call: %v", err)
		s.metrics.RecordProviderCall(0, metrics.OutcomeProviderError)
		return nil, domain.NewProviderError("provider rate limit exceeded")
	}

	start := time.Now()
	suggestions, err := s.generator.Generate(ctx, in.Title, in.Summary, in.Content)
	s.metrics.RecordProviderCall(time.Since(start), outcomeOf(err))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, inputHash, suggestions); err != nil {
			logger.LogWarnf("seo_cache_set", "failed to cache suggestions: %v", err)
		}
	}
	return suggestions, nil
}

func (s *SuggestionService) record(ctx context.Context, run *domain.SuggestionRun) {
	if s.history == nil || run.UserID == "" {
		return
	}
	// Recording must outlive a cancelled request.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.history.SaveRun(ctx, run); err != nil {
		logging.NewLogger(ctx).LogError("seo_history_save", err)
	}
}

// History returns the caller's recent runs, newest first.
func (s *SuggestionService) History(ctx context.Context, userID string, limit int) ([]domain.SuggestionRun, error) {
	if s.history == nil {
		return []domain.SuggestionRun{}, nil
	}
	return s.history.ListByUser(ctx, userID, limit)
}

// PurgeHistory deletes runs older than retainFor.
func (s *SuggestionService) PurgeHistory(ctx context.Context, retainFor time.Duration) (int64, error) {
	if s.history == nil {
		return 0, nil
	}
	return s.history.PurgeOlderThan(ctx, time.Now().Add(-retainFor))
}

// abandoned reports a caller that stopped waiting for the shared call.
func abandoned(err error) *domain.ProviderError {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewProviderError("provider timed out")
	}
	return domain.NewProviderError("request cancelled")
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return domain.OutcomeOK
	case errors.Is(err, domain.ErrClientInput):
		return domain.OutcomeClientError
	default:
		return domain.OutcomeProviderError
	}
}
