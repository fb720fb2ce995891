package parser

import (
	"bytes"
	"context"
	"os"
	"strings"

	"github.com/dgallion1/smartextract/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings build the
// tree and keep their source level and raw inline text. Everything between two
// headings is kept as raw markdown source so lists, tables, thematic breaks and
// code fences survive extraction unchanged.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	tree := &doctree.DocTree{Title: baseTitle(path)}

	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}
	root := &doctree.DocNode{}
	stack := []stackEntry{{node: root, level: 0}}

	runStart := 0
	closeRun := func(end int) {
		if end < runStart {
			return
		}
		t := strings.TrimSpace(string(src[runStart:end]))
		if t == "" {
			return
		}
		top := stack[len(stack)-1].node
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		lines := heading.Lines()
		if lines == nil || lines.Len() == 0 {
			// An empty heading has no source position; it stays in the raw run.
			continue
		}
		first, last := lines.At(0), lines.At(lines.Len()-1)
		hStart := lineStart(src, first.Start)
		closeRun(hStart)

		hEnd := lineEnd(src, max(last.Stop-1, last.Start))
		if !bytes.ContainsRune(src[hStart:first.Start], '#') {
			// Setext heading: the underline is the next line.
			hEnd = lineEnd(src, hEnd)
		}
		runStart = hEnd

		title := make([]string, 0, lines.Len())
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			title = append(title, strings.TrimSpace(string(seg.Value(src))))
		}
		newNode := &doctree.DocNode{
			Title: strings.TrimSpace(strings.Join(title, " ")),
			Level: heading.Level,
		}
		for len(stack) > 1 && stack[len(stack)-1].level >= heading.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, newNode)
		stack = append(stack, stackEntry{node: newNode, level: heading.Level})
	}
	closeRun(len(src))

	tree.Children = root.Children
	if root.Text != "" {
		// Preamble before the first heading keeps its position.
		tree.Children = append([]*doctree.DocNode{{Text: root.Text}}, tree.Children...)
	}

	return tree, ctx.Err()
}

func lineStart(src []byte, pos int) int {
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd returns the offset just past the newline ending the line that
// contains pos, or len(src) on the last line.
func lineEnd(src []byte, pos int) int {
	for pos < len(src) && src[pos] != '\n' {
		pos++
	}
	if pos < len(src) {
		pos++
	}
	return pos
}
