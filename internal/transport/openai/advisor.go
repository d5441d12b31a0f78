// Package openai implements the LLM advisor over any OpenAI-compatible
// chat-completion API (the production deployment points it at x.ai).
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kindermatch/internal/domain"
	"github.com/kailas-cloud/kindermatch/internal/metrics"
)

// Operation labels for metrics.
const (
	opScore     = "score"
	opDraft     = "draft_answer"
	opSummarize = "summarize"
)

// Advisor wraps chat completions for compatibility scoring, interview answer
// drafting, and comment summarization.
type Advisor struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// Config holds the advisor settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewAdvisor creates an OpenAI-compatible advisor.
func NewAdvisor(cfg *Config) *Advisor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Advisor{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// scoreReply mirrors the strict JSON shape the model is instructed to return.
type scoreReply struct {
	IsMatch         bool   `json:"isMatch"`
	MatchPercentage int    `json:"matchPercentage"`
	Explanation     string `json:"explanation"`
}

// Score asks the model whether a child with the given personality fits a
// school. API failures map to domain.ErrScoringUnavailable, unparseable
// replies to domain.ErrScoringMalformed; both are per-record conditions the
// pipeline degrades on.
func (a *Advisor) Score(
	ctx context.Context,
	personality, curriculum, features, teachingMethods, learningExperience string,
) (domain.Score, error) {
	prompt := fmt.Sprintf(`Analyze if a child with the following personality: %q
would be a good fit for a school with these characteristics:

Curriculum: %s
Features: %s
Teaching Methods: %s
Learning Experience: %s

Provide a match percentage (0-100) and a brief explanation of why this is or isn't a good match.
Format your response as JSON with the following structure:
{
  "isMatch": boolean,
  "matchPercentage": number,
  "explanation": string
}`, personality, curriculum, features, teachingMethods, learningExperience)

	content, err := a.complete(ctx, opScore, prompt, a.temperature)
	if err != nil {
		return domain.Score{}, err
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		metrics.AdvisorErrorsTotal.WithLabelValues(a.model, opScore, "malformed_response").Inc()
		return domain.Score{}, fmt.Errorf("extract score JSON: %v: %w", err, domain.ErrScoringMalformed)
	}

	var reply scoreReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		metrics.AdvisorErrorsTotal.WithLabelValues(a.model, opScore, "malformed_response").Inc()
		return domain.Score{}, fmt.Errorf("decode score JSON: %v: %w", err, domain.ErrScoringMalformed)
	}

	return domain.Score{
		IsMatch:     reply.IsMatch,
		Percentage:  clampPercentage(reply.MatchPercentage),
		Explanation: reply.Explanation,
	}, nil
}

// DraftAnswer drafts an interview answer for one question, incorporating the
// school's vision.
func (a *Advisor) DraftAnswer(ctx context.Context, schoolName, vision, question string) (string, error) {
	prompt := fmt.Sprintf(`You are helping a parent prepare for a kindergarten interview at %q.
The school's vision is: %q

Please draft a thoughtful answer (in Traditional Chinese) for the following interview question, incorporating the school's vision where appropriate:

Question: %s

Your answer should be concise (around 100-150 words), authentic, and show that you've done your research about the school.`,
		schoolName, vision, question)

	content, err := a.complete(ctx, opDraft, prompt, a.temperature)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// summaryReply mirrors the JSON shape requested from the model.
type summaryReply struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}

// summarizeTemperature is deliberately low: the summary must stick to the
// supplied comments, not get creative.
const summarizeTemperature = 0.3

// Summarize produces a balanced pros/cons summary from parent comments.
func (a *Advisor) Summarize(ctx context.Context, schoolName, comments string) (pros, cons []string, err error) {
	prompt := fmt.Sprintf(`You are an AI assistant helping parents understand school reviews.
Based ONLY on the following parents' comments about %q, provide a balanced summary of pros and cons.
DO NOT fabricate or add any information not present in these comments.
If the comments don't contain enough information for either pros or cons, just mention that there's limited information.

Parents' comments:
%s

Format your response as a JSON object with two arrays: "pros" and "cons", each containing 3-5 points.`,
		schoolName, comments)

	content, err := a.complete(ctx, opSummarize, prompt, summarizeTemperature)
	if err != nil {
		return nil, nil, err
	}

	raw, err := extractJSONObject(content)
	if err != nil {
		metrics.AdvisorErrorsTotal.WithLabelValues(a.model, opSummarize, "malformed_response").Inc()
		return nil, nil, fmt.Errorf("extract summary JSON: %v: %w", err, domain.ErrScoringMalformed)
	}

	var reply summaryReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		metrics.AdvisorErrorsTotal.WithLabelValues(a.model, opSummarize, "malformed_response").Inc()
		return nil, nil, fmt.Errorf("decode summary JSON: %v: %w", err, domain.ErrScoringMalformed)
	}

	return reply.Pros, reply.Cons, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Advisor) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// complete issues one chat completion with transport-level metrics.
func (a *Advisor) complete(ctx context.Context, op, prompt string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   a.maxTokens,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.AdvisorRequestsTotal.WithLabelValues(a.model, op, "error").Inc()
		metrics.AdvisorErrorsTotal.WithLabelValues(a.model, op, "api_error").Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.AdvisorRequestsTotal.WithLabelValues(a.model, op, "error").Inc()
		metrics.AdvisorErrorsTotal.WithLabelValues(a.model, op, "empty_response").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrScoringUnavailable)
	}

	metrics.AdvisorRequestsTotal.WithLabelValues(a.model, op, "success").Inc()
	metrics.AdvisorRequestDuration.WithLabelValues(a.model, op).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.AdvisorTokensTotal.WithLabelValues(a.model, op, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.AdvisorTokensTotal.WithLabelValues(a.model, op, "completion").
			Add(float64(resp.Usage.CompletionTokens))
	}

	return resp.Choices[0].Message.Content, nil
}

func clampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrScoringUnavailable for correct
// degrade-to-unscored handling upstream.
func parseAPIError(err error) error {
	wrap := domain.ErrScoringUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("advisor API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("advisor API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("advisor request failed: %v: %w", err, wrap)
}
