package parser

import (
	"context"
	"fmt"

	"github.com/dgallion1/smartextract/internal/doctree"
	"github.com/xuri/excelize/v2"
)

// XLSXParser renders each non-empty worksheet as a titled markdown table.
type XLSXParser struct{}

func (p *XLSXParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	tree := &doctree.DocTree{Title: baseTitle(path)}
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: sheet,
			Text:  markdownTable(rows),
		})
	}
	return tree, nil
}
