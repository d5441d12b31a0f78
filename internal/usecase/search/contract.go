package search

import (
	"context"

	"github.com/kailas-cloud/kindermatch/internal/domain"
)

// CatalogReader provides the full school catalog (whole-catalog scan per run).
type CatalogReader interface {
	Catalog(ctx context.Context) ([]domain.School, error)
}

// Scorer estimates personality-to-school compatibility for one school.
type Scorer interface {
	Score(
		ctx context.Context,
		personality, curriculum, features, teachingMethods, learningExperience string,
	) (domain.Score, error)
}

// ResultStore holds the last published result set per session.
type ResultStore interface {
	Set(ctx context.Context, sessionID string, rs domain.ResultSet) error
	Get(ctx context.Context, sessionID string) (domain.ResultSet, error)
	Delete(ctx context.Context, sessionID string) error
}
