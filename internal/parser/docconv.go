package parser

import (
	"context"
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"
	"github.com/dgallion1/smartextract/internal/doctree"
)

// DocconvParser covers legacy and less common office formats through
// docconv. The result is flat text with no heading structure.
type DocconvParser struct{}

func (p *DocconvParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mimeType := docconv.MimeTypeByExtension(path)
	res, err := docconv.Convert(f, mimeType, false)
	if err != nil {
		return nil, fmt.Errorf("docconv %s: %w", mimeType, err)
	}

	tree := &doctree.DocTree{Title: baseTitle(path)}
	if body := strings.TrimSpace(res.Body); body != "" {
		tree.Children = []*doctree.DocNode{{Text: body}}
	}
	return tree, ctx.Err()
}
