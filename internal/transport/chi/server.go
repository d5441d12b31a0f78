// Package chi implements the HTTP API transport.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kindermatch/internal/domain"
	advicetuc "github.com/kailas-cloud/kindermatch/internal/usecase/advice"
	healthuc "github.com/kailas-cloud/kindermatch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/kindermatch/internal/usecase/search"
)

// Error codes returned in JSON error responses.
const (
	codeBadRequest          = "bad_request"
	codeValidationFailed    = "validation_failed"
	codeUnauthorized        = "unauthorized"
	codeCatalogUnavailable  = "catalog_unavailable"
	codeScorerNotConfigured = "scorer_not_configured"
	codeScoringUnavailable  = "scoring_unavailable"
	codeInternalError       = "internal_error"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires use case services to HTTP handlers.
type Server struct {
	search        *searchuc.Service
	advice        *advicetuc.Service
	catalog       searchuc.CatalogReader
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	advice *advicetuc.Service,
	catalog searchuc.CatalogReader,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		advice:  advice,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusBadGateway, codeCatalogUnavailable),
		sentinelHandler(domain.ErrScorerNotConfigured, http.StatusServiceUnavailable, codeScorerNotConfigured),
		sentinelHandler(domain.ErrScoringUnavailable, http.StatusBadGateway, codeScoringUnavailable),
		sentinelHandler(domain.ErrScoringMalformed, http.StatusBadGateway, codeScoringUnavailable),
	}
	return s
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/search", s.runSearch)
	r.Get("/search/results", s.getSearchResults)
	r.Delete("/search/results", s.clearSearchResults)
	r.Get("/schools", s.listSchools)
	r.Post("/interview-prep", s.interviewPrep)
	r.Post("/reviews/summary", s.summarizeReviews)
	r.Get("/health", s.healthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// searchRequest mirrors the search form submission.
type searchRequest struct {
	Gender            string   `json:"gender"`
	Personality       string   `json:"personality"`
	PreferredLocation string   `json:"preferredLocation"`
	Curriculum        string   `json:"curriculum"`
	TeachingMethods   []string `json:"teachingMethods"`
}

// runSearch handles POST /search.
func (s *Server) runSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	criteria := domain.Criteria{
		Gender:            req.Gender,
		Personality:       req.Personality,
		PreferredLocation: req.PreferredLocation,
		Curriculum:        req.Curriculum,
		TeachingMethods:   req.TeachingMethods,
	}

	sessionID := SessionFromContext(r.Context())
	if _, err := s.search.Run(r.Context(), sessionID, criteria); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// getSearchResults handles GET /search/results.
func (s *Server) getSearchResults(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionFromContext(r.Context())
	rs, err := s.search.Results(r.Context(), sessionID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"schools": resultSetToJSON(rs)})
}

// clearSearchResults handles DELETE /search/results.
func (s *Server) clearSearchResults(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionFromContext(r.Context())
	if err := s.search.Clear(r.Context(), sessionID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// listSchools handles GET /schools: the full catalog, unfiltered.
func (s *Server) listSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := s.catalog.Catalog(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]schoolJSON, len(schools))
	for i, sc := range schools {
		out[i] = schoolToJSON(sc)
	}
	writeJSON(w, http.StatusOK, map[string]any{"schools": out})
}

// interviewPrepRequest carries the school context for answer drafting.
type interviewPrepRequest struct {
	SchoolName string `json:"schoolName"`
	Vision     string `json:"vision"`
}

type prepAnswerJSON struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
}

// interviewPrep handles POST /interview-prep.
func (s *Server) interviewPrep(w http.ResponseWriter, r *http.Request) {
	var req interviewPrepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	answers, err := s.advice.InterviewPrep(r.Context(), req.SchoolName, req.Vision)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make([]prepAnswerJSON, len(answers))
	for i, a := range answers {
		out[i] = prepAnswerJSON{Question: a.Question, Answer: a.Answer, Failed: a.Failed}
	}
	writeJSON(w, http.StatusOK, map[string]any{"answers": out})
}

// summarizeRequest carries the comments to digest.
type summarizeRequest struct {
	SchoolName string `json:"schoolName"`
	Comments   string `json:"comments"`
}

// summarizeReviews handles POST /reviews/summary.
func (s *Server) summarizeReviews(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	summary, err := s.advice.SummarizeComments(r.Context(), req.SchoolName, req.Comments)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pros": emptyIfNil(summary.Pros),
		"cons": emptyIfNil(summary.Cons),
	})
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleDomainError maps a use case error through the handler chain, falling
// back to a generic 500 with a safe message.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "Something went wrong")
}

// sentinelHandler builds an errorHandler for one sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// schoolJSON is the wire representation of a catalog row.
type schoolJSON struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	Phone              string `json:"phone,omitempty"`
	Website            string `json:"website,omitempty"`
	TeachingMethods    string `json:"teachingMethods,omitempty"`
	Features           string `json:"features,omitempty"`
	Curriculum         string `json:"curriculum,omitempty"`
	LearningExperience string `json:"learningExperience,omitempty"`
	Gender             string `json:"gender,omitempty"`
}

// matchResultJSON extends schoolJSON with the optional compatibility verdict.
type matchResultJSON struct {
	schoolJSON
	PersonalityMatch *bool   `json:"personalityMatch,omitempty"`
	MatchPercentage  *int    `json:"matchPercentage,omitempty"`
	MatchExplanation *string `json:"matchExplanation,omitempty"`
}

func schoolToJSON(s domain.School) schoolJSON {
	return schoolJSON{
		Name:               s.Name,
		Address:            s.Address,
		Phone:              s.Phone,
		Website:            s.Website,
		TeachingMethods:    s.TeachingMethods,
		Features:           s.Features,
		Curriculum:         s.Curriculum,
		LearningExperience: s.LearningExperience,
		Gender:             s.Gender,
	}
}

func resultSetToJSON(rs domain.ResultSet) []matchResultJSON {
	out := make([]matchResultJSON, len(rs))
	for i, r := range rs {
		out[i] = matchResultJSON{schoolJSON: schoolToJSON(r.School)}
		if r.Score != nil {
			isMatch := r.Score.IsMatch
			pct := r.Score.Percentage
			expl := r.Score.Explanation
			out[i].PersonalityMatch = &isMatch
			out[i].MatchPercentage = &pct
			out[i].MatchExplanation = &expl
		}
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
