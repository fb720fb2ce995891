package parser

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/dgallion1/smartextract/internal/doctree"
)

// TextParser handles plain text files. Blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	tree := &doctree.DocTree{Title: baseTitle(path)}
	var para []string
	flush := func() {
		if len(para) > 0 {
			tree.Children = append(tree.Children, &doctree.DocNode{Text: strings.Join(para, "\n")})
			para = para[:0]
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		para = append(para, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return tree, ctx.Err()
}
