// Package search implements the school search pipeline: deterministic
// filtering, optional compatibility scoring fan-out, ranking, and publishing.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/kindermatch/internal/domain"
	"github.com/kailas-cloud/kindermatch/internal/logger"
)

const defaultMaxConcurrent = 8

// Service runs the search pipeline.
type Service struct {
	catalog       CatalogReader
	scorer        Scorer // nil when no scorer credential is configured
	results       ResultStore
	maxConcurrent int
	scoreTimeout  time.Duration // 0 = no per-call deadline
	limiter       *rate.Limiter // nil = unlimited
}

// New creates a search service. scorer may be nil: unscored searches still
// work, scoring requests fail with domain.ErrScorerNotConfigured.
func New(catalog CatalogReader, scorer Scorer, results ResultStore) *Service {
	return &Service{
		catalog:       catalog,
		scorer:        scorer,
		results:       results,
		maxConcurrent: defaultMaxConcurrent,
	}
}

// WithConcurrency bounds the scorer fan-out within one run.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.maxConcurrent = n
	}
	return s
}

// WithScoreTimeout bounds each individual scorer call. A call that exceeds
// the deadline fails like any other scorer error: that record stays unscored
// and the run continues.
func (s *Service) WithScoreTimeout(d time.Duration) *Service {
	if d > 0 {
		s.scoreTimeout = d
	}
	return s
}

// WithRateLimit throttles scorer calls across all runs. perSec <= 0 disables
// the limiter.
func (s *Service) WithRateLimit(perSec float64, burst int) *Service {
	if perSec > 0 {
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
	return s
}

// Run executes one search: fetch catalog, filter, optionally score, rank,
// publish under the session key. Catalog failures abort the run with nothing
// published; scorer failures degrade individual records to unscored.
func (s *Service) Run(ctx context.Context, sessionID string, criteria domain.Criteria) (domain.ResultSet, error) {
	if criteria.WantsScoring() && s.scorer == nil {
		return nil, domain.ErrScorerNotConfigured
	}

	schools, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	survivors := make(domain.ResultSet, 0, len(schools))
	for _, school := range schools {
		if criteria.Matches(school) {
			survivors = append(survivors, domain.MatchResult{School: school})
		}
	}

	if criteria.WantsScoring() && len(survivors) > 0 {
		s.scoreAll(ctx, criteria.Personality, survivors)
		survivors.Rank()
	}

	if err := s.results.Set(ctx, sessionID, survivors); err != nil {
		return nil, fmt.Errorf("publish results: %w", err)
	}

	return survivors, nil
}

// Results returns the session's last published result set, empty when none.
func (s *Service) Results(ctx context.Context, sessionID string) (domain.ResultSet, error) {
	rs, err := s.results.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return rs, nil
}

// Clear drops the session's published result set ahead of its TTL.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.results.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// scoreAll fans out one scorer call per survivor and joins on all of them.
// Each failure is local: the record stays unscored and the error is logged,
// never aborting the join.
func (s *Service) scoreAll(ctx context.Context, personality string, survivors domain.ResultSet) {
	log := logger.FromContext(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i := range survivors {
		g.Go(func() error {
			if s.limiter != nil {
				if err := s.limiter.Wait(gctx); err != nil {
					log.Warn("scorer rate wait aborted",
						zap.String("school", survivors[i].School.Name),
						zap.Error(err),
					)
					return nil
				}
			}

			school := survivors[i].School
			score, err := s.scoreOne(gctx, personality, school)
			if err != nil {
				// Degrade to unscored; observability only.
				log.Warn("scoring failed",
					zap.String("school", school.Name),
					zap.Error(err),
				)
				return nil
			}

			survivors[i].Score = &score
			return nil
		})
	}

	// Tasks never return errors; Wait is purely the join point.
	_ = g.Wait()
}

// scoreOne issues a single scorer call under the per-call deadline.
func (s *Service) scoreOne(ctx context.Context, personality string, school domain.School) (domain.Score, error) {
	if s.scoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.scoreTimeout)
		defer cancel()
	}
	return s.scorer.Score(ctx,
		personality,
		school.Curriculum,
		school.Features,
		school.TeachingMethods,
		school.LearningExperience,
	)
}
