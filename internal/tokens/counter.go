// Package tokens estimates how many model tokens a text costs.
//
// Counts use the tokenizer of a fixed model profile (gpt-4-turbo by
// default). The answering model is a different model, so the count is an
// approximation of what it will actually bill.
package tokens

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultModel is the tokenizer profile used when none is configured.
const DefaultModel = "gpt-4-turbo"

var offlineLoader sync.Once

// Counter counts tokens with a BPE encoding, or estimates them when the
// encoding is unavailable.
type Counter struct {
	model string
	enc   *tiktoken.Tiktoken
}

// NewCounter loads the encoding for model from the embedded BPE tables. On
// failure it logs a warning and returns a counter that estimates.
func NewCounter(model string, log *slog.Logger) *Counter {
	if model == "" {
		model = DefaultModel
	}
	offlineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		log.Warn("tokenizer unavailable, estimating token counts", "model", model, "error", err)
		return &Counter{model: model}
	}
	return &Counter{model: model, enc: enc}
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.enc == nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Exact reports whether counts come from the tokenizer rather than the
// word-based estimate.
func (c *Counter) Exact() bool {
	return c.enc != nil
}

// Model returns the tokenizer profile name.
func (c *Counter) Model() string {
	return c.model
}

// Estimate approximates tokens as 1.33 per whitespace-separated word.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
