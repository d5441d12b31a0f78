package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kindermatch/internal/domain"
	advicetuc "github.com/kailas-cloud/kindermatch/internal/usecase/advice"
	healthuc "github.com/kailas-cloud/kindermatch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kindermatch/internal/usecase/search"
)

// --- Mocks ---

type mockCatalog struct {
	schools []domain.School
	err     error
}

func (m *mockCatalog) Catalog(_ context.Context) ([]domain.School, error) {
	return m.schools, m.err
}

func (m *mockCatalog) HealthCheck(_ context.Context) error { return m.err }

type mockScorer struct {
	score domain.Score
	err   error
}

func (m *mockScorer) Score(_ context.Context, _, _, _, _, _ string) (domain.Score, error) {
	if m.err != nil {
		return domain.Score{}, m.err
	}
	return m.score, nil
}

type memResults struct {
	sets map[string]domain.ResultSet
}

func newMemResults() *memResults {
	return &memResults{sets: make(map[string]domain.ResultSet)}
}

func (m *memResults) Set(_ context.Context, sessionID string, rs domain.ResultSet) error {
	m.sets[sessionID] = rs
	return nil
}

func (m *memResults) Get(_ context.Context, sessionID string) (domain.ResultSet, error) {
	return m.sets[sessionID], nil
}

func (m *memResults) Delete(_ context.Context, sessionID string) error {
	delete(m.sets, sessionID)
	return nil
}

type mockAdvisor struct {
	answer string
	pros   []string
	cons   []string
	err    error
}

func (m *mockAdvisor) DraftAnswer(_ context.Context, _, _, _ string) (string, error) {
	return m.answer, m.err
}

func (m *mockAdvisor) Summarize(_ context.Context, _, _ string) ([]string, []string, error) {
	return m.pros, m.cons, m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type testEnv struct {
	router  chi.Router
	catalog *mockCatalog
	results *memResults
}

func newTestEnv(t *testing.T, scorer searchuc.Scorer, advisor advicetuc.Advisor) *testEnv {
	t.Helper()

	catalog := &mockCatalog{schools: []domain.School{
		{Name: "Alpha", Address: "Central", Curriculum: "Montessori"},
		{Name: "Beta", Address: "Kowloon", Curriculum: "Local curriculum"},
	}}
	results := newMemResults()

	searchSvc := searchuc.New(catalog, scorer, results)
	adviceSvc := advicetuc.New(advisor)
	healthSvc := healthuc.New(&mockPinger{}, catalog, nil)

	server := NewServer(searchSvc, adviceSvc, catalog, healthSvc, zap.NewNop())
	r := chi.NewRouter()
	server.Routes(r)

	return &testEnv{router: r, catalog: catalog, results: results}
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any, session string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if session != "" {
		req = req.WithContext(contextWithSession(req.Context(), session))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestRunSearch_PublishesAndResultsReadsBack(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := doJSON(t, env.router, http.MethodPost, "/search",
		map[string]any{"curriculum": "Montessori"}, "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("search: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, env.router, http.MethodGet, "/search/results", nil, "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("results: got %d", rec.Code)
	}

	var resp struct {
		Schools []struct {
			Name            string `json:"name"`
			MatchPercentage *int   `json:"matchPercentage"`
		} `json:"schools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Schools) != 1 || resp.Schools[0].Name != "Alpha" {
		t.Errorf("got %+v", resp.Schools)
	}
	if resp.Schools[0].MatchPercentage != nil {
		t.Error("unscored search must not carry a percentage")
	}
}

func TestRunSearch_InvalidBody(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestRunSearch_CatalogDownMapsTo502(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.catalog.err = domain.ErrCatalogUnavailable

	rec := doJSON(t, env.router, http.MethodPost, "/search", map[string]any{}, "s1")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("got %d, want 502", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != codeCatalogUnavailable {
		t.Errorf("got code %q", resp.Code)
	}
}

func TestRunSearch_ScorerNotConfiguredMapsTo503(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := doJSON(t, env.router, http.MethodPost, "/search",
		map[string]any{"personality": "shy"}, "s1")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("got %d, want 503", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != codeScorerNotConfigured {
		t.Errorf("got code %q", resp.Code)
	}
}

func TestRunSearch_ScoredFlowRanksResults(t *testing.T) {
	scorer := &mockScorer{score: domain.Score{IsMatch: true, Percentage: 77, Explanation: "fits"}}
	env := newTestEnv(t, scorer, nil)

	rec := doJSON(t, env.router, http.MethodPost, "/search",
		map[string]any{"personality": "shy, creative"}, "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, env.router, http.MethodGet, "/search/results", nil, "s1")
	var resp struct {
		Schools []struct {
			MatchPercentage  *int    `json:"matchPercentage"`
			MatchExplanation *string `json:"matchExplanation"`
		} `json:"schools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Schools) != 2 {
		t.Fatalf("expected 2 schools, got %d", len(resp.Schools))
	}
	for _, sc := range resp.Schools {
		if sc.MatchPercentage == nil || *sc.MatchPercentage != 77 {
			t.Errorf("got %+v", sc)
		}
	}
}

func TestSearchResults_SessionIsolation(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := doJSON(t, env.router, http.MethodPost, "/search",
		map[string]any{"curriculum": "Montessori"}, "alice")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}

	rec = doJSON(t, env.router, http.MethodGet, "/search/results", nil, "bob")
	var resp struct {
		Schools []json.RawMessage `json:"schools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Schools) != 0 {
		t.Errorf("bob must not see alice's results, got %d", len(resp.Schools))
	}
}

func TestClearSearchResults(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := doJSON(t, env.router, http.MethodPost, "/search",
		map[string]any{"curriculum": "Montessori"}, "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("search: got %d", rec.Code)
	}

	rec = doJSON(t, env.router, http.MethodDelete, "/search/results", nil, "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: got %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, env.router, http.MethodGet, "/search/results", nil, "s1")
	var resp struct {
		Schools []json.RawMessage `json:"schools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Schools) != 0 {
		t.Errorf("expected no results after clear, got %d", len(resp.Schools))
	}
}

func TestListSchools(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := doJSON(t, env.router, http.MethodGet, "/schools", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}

	var resp struct {
		Schools []schoolJSON `json:"schools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Schools) != 2 {
		t.Errorf("expected full catalog, got %d", len(resp.Schools))
	}
}

func TestInterviewPrep(t *testing.T) {
	env := newTestEnv(t, nil, &mockAdvisor{answer: "drafted"})

	rec := doJSON(t, env.router, http.MethodPost, "/interview-prep",
		map[string]any{"schoolName": "Alpha", "vision": "whole-child"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Answers []prepAnswerJSON `json:"answers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Answers) != 5 {
		t.Errorf("expected 5 answers, got %d", len(resp.Answers))
	}
}

func TestInterviewPrep_MissingVisionMapsTo400(t *testing.T) {
	env := newTestEnv(t, nil, &mockAdvisor{})

	rec := doJSON(t, env.router, http.MethodPost, "/interview-prep",
		map[string]any{"schoolName": "Alpha"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestSummarizeReviews(t *testing.T) {
	env := newTestEnv(t, nil, &mockAdvisor{pros: []string{"caring"}, cons: nil})

	rec := doJSON(t, env.router, http.MethodPost, "/reviews/summary",
		map[string]any{"schoolName": "Alpha", "comments": "teachers are caring"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Pros []string `json:"pros"`
		Cons []string `json:"cons"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Pros) != 1 {
		t.Errorf("got pros %v", resp.Pros)
	}
	if resp.Cons == nil {
		t.Error("cons must encode as an empty array, not null")
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := doJSON(t, env.router, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}

	var resp struct {
		Status string                          `json:"status"`
		Checks map[string]healthuc.CheckResult `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != string(healthuc.Healthy) {
		t.Errorf("got %q", resp.Status)
	}
	if resp.Checks["advisor"] != healthuc.CheckNotConfigured {
		t.Errorf("got %+v", resp.Checks)
	}
}
