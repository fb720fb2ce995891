package parser

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/dgallion1/smartextract/internal/doctree"
)

// CSVParser renders a CSV file as a single markdown table. The first record
// is the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &doctree.DocTree{Title: baseTitle(path)}
	if len(records) == 0 {
		return tree, nil
	}

	tree.Children = []*doctree.DocNode{{Text: markdownTable(records)}}
	return tree, ctx.Err()
}
