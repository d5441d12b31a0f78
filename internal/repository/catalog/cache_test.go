package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/kindermatch/internal/domain"
)

type mockFetcher struct {
	schools []domain.School
	err     error
	calls   int
}

func (m *mockFetcher) Fetch(_ context.Context) ([]domain.School, error) {
	m.calls++
	return m.schools, m.err
}

func TestCatalog_CachesSnapshot(t *testing.T) {
	f := &mockFetcher{schools: []domain.School{{Name: "a"}, {Name: "b"}}}
	c := New(f, time.Minute, nil)

	for i := 0; i < 3; i++ {
		schools, err := c.Catalog(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(schools) != 2 {
			t.Fatalf("expected 2 schools, got %d", len(schools))
		}
	}

	if f.calls != 1 {
		t.Errorf("expected 1 upstream fetch, got %d", f.calls)
	}
}

func TestCatalog_PropagatesFetchError(t *testing.T) {
	f := &mockFetcher{err: domain.ErrCatalogUnavailable}
	c := New(f, time.Minute, nil)

	_, err := c.Catalog(context.Background())
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("got %v, want domain.ErrCatalogUnavailable", err)
	}
}

func TestCatalog_InvalidateForcesRefetch(t *testing.T) {
	f := &mockFetcher{schools: []domain.School{{Name: "a"}}}
	c := New(f, time.Minute, nil)

	if _, err := c.Catalog(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Invalidate()
	if _, err := c.Catalog(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.calls != 2 {
		t.Errorf("expected 2 upstream fetches, got %d", f.calls)
	}
}
