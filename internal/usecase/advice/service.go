// Package advice implements the LLM-assisted parent features: interview
// answer drafting and parent-comment summarization.
package advice

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/kindermatch/internal/domain"
	"github.com/kailas-cloud/kindermatch/internal/logger"
)

// interviewQuestions is the fixed set of standard kindergarten interview
// questions parents prepare for.
var interviewQuestions = []string{
	"為甚麼選擇這間幼稚園？",
	"覺得孩子有甚麼優點或缺點？",
	"照顧孩子遇到甚麼困難？會怎樣處理？",
	"對孩子有什麼期望？",
	"希望孩子在學校學到什麼？",
}

// PrepAnswer is one drafted interview answer. Failed is true when the draft
// for this question could not be generated; the rest of the set is unaffected.
type PrepAnswer struct {
	Question string
	Answer   string
	Failed   bool
}

// CommentSummary is the balanced pros/cons digest of parent comments.
type CommentSummary struct {
	Pros []string
	Cons []string
}

// Service coordinates advisor calls.
type Service struct {
	advisor       Advisor // nil when no advisor credential is configured
	maxConcurrent int
}

// New creates an advice service. advisor may be nil.
func New(advisor Advisor) *Service {
	return &Service{advisor: advisor, maxConcurrent: len(interviewQuestions)}
}

// WithConcurrency bounds the per-question fan-out.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.maxConcurrent = n
	}
	return s
}

// Questions returns the standard interview question set.
func Questions() []string {
	out := make([]string, len(interviewQuestions))
	copy(out, interviewQuestions)
	return out
}

// InterviewPrep drafts answers for every standard question, fanning out one
// advisor call per question. A failed question yields a Failed entry; it
// never fails the whole request.
func (s *Service) InterviewPrep(ctx context.Context, schoolName, vision string) ([]PrepAnswer, error) {
	if s.advisor == nil {
		return nil, domain.ErrScorerNotConfigured
	}
	if strings.TrimSpace(schoolName) == "" {
		return nil, fmt.Errorf("school name is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(vision) == "" {
		return nil, fmt.Errorf("school vision is required: %w", domain.ErrInvalidInput)
	}

	log := logger.FromContext(ctx)
	answers := make([]PrepAnswer, len(interviewQuestions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, question := range interviewQuestions {
		answers[i].Question = question
		g.Go(func() error {
			answer, err := s.advisor.DraftAnswer(gctx, schoolName, vision, question)
			if err != nil {
				log.Warn("interview answer draft failed",
					zap.String("school", schoolName),
					zap.String("question", question),
					zap.Error(err),
				)
				answers[i].Failed = true
				return nil
			}
			answers[i].Answer = answer
			return nil
		})
	}
	_ = g.Wait()

	return answers, nil
}

// SummarizeComments produces a pros/cons summary of parent comments.
func (s *Service) SummarizeComments(ctx context.Context, schoolName, comments string) (CommentSummary, error) {
	if s.advisor == nil {
		return CommentSummary{}, domain.ErrScorerNotConfigured
	}
	if strings.TrimSpace(schoolName) == "" {
		return CommentSummary{}, fmt.Errorf("school name is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(comments) == "" {
		return CommentSummary{}, fmt.Errorf("comments are required: %w", domain.ErrInvalidInput)
	}

	pros, cons, err := s.advisor.Summarize(ctx, schoolName, comments)
	if err != nil {
		return CommentSummary{}, fmt.Errorf("summarize comments: %w", err)
	}
	return CommentSummary{Pros: pros, Cons: cons}, nil
}
