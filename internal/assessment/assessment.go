// Package assessment puts a question-answering capability in front of a
// portfolio.
package assessment

import (
	"context"
	"fmt"

	"portfolio_assist/internal/models"
)

// QuestionAnswerer answers free-text questions, usually backed by an LLM.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (string, error)
}

// ContextSeeder is implemented by answerers that can take background text
// without producing an answer.
type ContextSeeder interface {
	Seed(ctx context.Context, text string) error
}

// Assessment forwards questions about one portfolio.
type Assessment struct {
	qa        QuestionAnswerer
	portfolio *models.Portfolio
}

// New wraps qa. When portfolio is non-nil its summary is pushed to qa once,
// through Seed when available, otherwise as a first question whose answer is
// discarded.
func New(ctx context.Context, qa QuestionAnswerer, portfolio *models.Portfolio) (*Assessment, error) {
	a := &Assessment{qa: qa, portfolio: portfolio}
	if portfolio == nil {
		return a, nil
	}

	summary := Summarize(portfolio)
	if seeder, ok := qa.(ContextSeeder); ok {
		if err := seeder.Seed(ctx, summary); err != nil {
			return nil, fmt.Errorf("seed portfolio summary: %w", err)
		}
		return a, nil
	}
	if _, err := qa.Ask(ctx, summary); err != nil {
		return nil, fmt.Errorf("seed portfolio summary: %w", err)
	}
	return a, nil
}

// Ask returns the answer to question verbatim.
func (a *Assessment) Ask(ctx context.Context, question string) (string, error) {
	return a.qa.Ask(ctx, question)
}

// Portfolio is the portfolio the assessment was built with, possibly nil.
func (a *Assessment) Portfolio() *models.Portfolio { return a.portfolio }
