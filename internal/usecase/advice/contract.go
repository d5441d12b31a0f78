package advice

import "context"

// Advisor is the LLM contract for interview prep and comment summarization.
type Advisor interface {
	DraftAnswer(ctx context.Context, schoolName, vision, question string) (string, error)
	Summarize(ctx context.Context, schoolName, comments string) (pros, cons []string, err error)
}
