package parser

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/smartextract/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading styles build the tree; tables are
// rendered as markdown tables in document order.
type DOCXParser struct{}

func (p *DOCXParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}
	root := &doctree.DocNode{}
	stack := []stackEntry{{node: root, level: 0}}
	var blocks []string

	flush := func() {
		if len(blocks) == 0 {
			return
		}
		top := stack[len(stack)-1].node
		t := strings.Join(blocks, "\n\n")
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
		blocks = blocks[:0]
	}

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(it)
			if text == "" {
				continue
			}
			level := docxHeadingLevel(it)
			if level == 0 {
				blocks = append(blocks, text)
				continue
			}
			flush()
			newNode := &doctree.DocNode{Title: text}
			for len(stack) > 1 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, newNode)
			stack = append(stack, stackEntry{node: newNode, level: level})
		case *docx.Table:
			if t := markdownTable(docxTableRows(it)); t != "" {
				blocks = append(blocks, t)
			}
		}
	}
	flush()

	tree := &doctree.DocTree{Title: baseTitle(path), Children: root.Children}
	if root.Text != "" {
		tree.Children = append([]*doctree.DocNode{{Text: root.Text}}, tree.Children...)
	}
	return tree, ctx.Err()
}

var headingStyleRe = regexp.MustCompile(`(?i)^heading\s*([1-6])$`)

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.TrimSpace(para.Properties.Style.Val)
	if strings.EqualFold(style, "Title") {
		return 1
	}
	if m := headingStyleRe.FindStringSubmatch(style); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var sb strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				sb.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func docxTableRows(table *docx.Table) [][]string {
	var rows [][]string
	for _, tr := range table.TableRows {
		var row []string
		for _, tc := range tr.TableCells {
			var parts []string
			for _, para := range tc.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			row = append(row, strings.Join(parts, " "))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
