package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/smartextract/internal/archive"
	"github.com/dgallion1/smartextract/internal/config"
	"github.com/dgallion1/smartextract/internal/extract"
	"github.com/dgallion1/smartextract/internal/llm"
	"github.com/dgallion1/smartextract/internal/ocr"
	"github.com/dgallion1/smartextract/internal/parser"
	"github.com/dgallion1/smartextract/internal/qa"
	"github.com/dgallion1/smartextract/internal/tokens"
)

// Components are the long-lived clients behind a Service.
type Components struct {
	Service *Service
	Model   *llm.Instrumented
	Parse   *ocr.Client
}

// Close releases the hosted-service clients.
func (c *Components) Close() {
	c.Model.Close()
	c.Parse.Close()
}

// Build wires a Service from configuration.
func Build(ctx context.Context, cfg config.Config, log *slog.Logger) (*Components, error) {
	llmCfg := llm.Config{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		APIKey:   cfg.LLMAPIKey(),
		Timeout:  cfg.LLMTimeout,
	}
	if cfg.LLMProvider == "openai" {
		llmCfg.BaseURL = cfg.OpenAIBaseURL
	}
	provider, err := llm.New(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	model := llm.Instrument(provider, llm.NewStats(cfg.StatsWindow), log)

	parse := ocr.NewClient(ocr.Config{
		APIKey:       cfg.LlamaParseAPIKey,
		BaseURL:      cfg.LlamaParseBaseURL,
		PollInterval: cfg.LlamaParsePollInterval,
		MaxPolls:     cfg.LlamaParseMaxPolls,
	}, log)

	store, err := archive.New(ctx, archive.Config{
		Bucket:    cfg.ArchiveBucket,
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Endpoint:  cfg.ArchiveEndpoint,
	}, log)
	if err != nil {
		model.Close()
		return nil, fmt.Errorf("archive: %w", err)
	}

	ex := extract.New(extract.NewStructured(parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}), parse, log)
	svc := NewService(ex, qa.New(model, log), tokens.NewCounter(cfg.TokenizerModel, log), store, log)

	return &Components{Service: svc, Model: model, Parse: parse}, nil
}
