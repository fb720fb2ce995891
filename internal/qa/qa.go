// Package qa turns extracted text into organized markdown and answers
// questions about it, splitting chart descriptors out of the answers.
package qa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/smartextract/internal/chart"
	"github.com/dgallion1/smartextract/internal/llm"
)

var (
	ErrEmptyQuestion = errors.New("qa: question is empty")
	ErrUnknownAction = errors.New("qa: unknown quick action")
)

// Answer is one answered question.
type Answer struct {
	Question string
	Text     string
	Chart    *chart.Spec
	// ChartDropped is set when the model sent a chart block that could not
	// be decoded. ChartErr holds the reason.
	ChartDropped bool
	ChartErr     error
}

// Assistant makes one model call per Reorganize or Answer. Calls are never
// retried.
type Assistant struct {
	provider llm.Provider
	log      *slog.Logger
}

func New(provider llm.Provider, log *slog.Logger) *Assistant {
	return &Assistant{provider: provider, log: log}
}

// Reorganize asks the model to restructure raw text as markdown. The result
// is not checked for completeness against the input.
func (a *Assistant) Reorganize(ctx context.Context, raw string) (string, error) {
	ctx = llm.WithOperation(ctx, "reorganize")
	out, err := a.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: reorganizeSystemPrompt},
		{Role: llm.RoleUser, Content: reorganizeUserPrefix + raw},
	})
	if err != nil {
		return "", fmt.Errorf("reorganize: %w", err)
	}
	organized := stripCodeFence(out)
	a.log.Info("qa.reorganized", "input_chars", len(raw), "output_chars", len(organized))
	return organized, nil
}

// Answer asks a question about content. An empty question is rejected
// without calling the model.
func (a *Assistant) Answer(ctx context.Context, content, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	ctx = llm.WithOperation(ctx, "answer")
	out, err := a.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: BuildAnswerPrompt(content)},
		{Role: llm.RoleUser, Content: question},
	})
	if err != nil {
		return nil, fmt.Errorf("answer: %w", err)
	}

	split := SplitChart(out)
	ans := &Answer{
		Question:     question,
		Text:         split.Text,
		Chart:        split.Chart,
		ChartDropped: split.Dropped != nil,
		ChartErr:     split.Dropped,
	}
	if ans.ChartDropped {
		a.log.Warn("qa.chart.dropped", "error", split.Dropped)
	}
	return ans, nil
}
