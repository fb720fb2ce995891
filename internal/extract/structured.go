package extract

import (
	"context"
	"fmt"

	"github.com/dgallion1/smartextract/internal/parser"
)

// Structured converts a file to markdown through the parser registry.
type Structured struct {
	opts parser.Options
}

func NewStructured(opts parser.Options) *Structured {
	return &Structured{opts: opts}
}

// Convert parses the file at path. Parser panics on malformed input are
// reported as errors so the fallback still runs.
func (s *Structured) Convert(ctx context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("structured parser panic: %v", r)
		}
	}()

	p, err := parser.ForFile(path, s.opts)
	if err != nil {
		return "", err
	}
	tree, err := p.Parse(ctx, path)
	if err != nil {
		return "", err
	}
	return tree.Markdown(), nil
}
