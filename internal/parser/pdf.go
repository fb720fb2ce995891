package parser

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dgallion1/smartextract/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts the text layer of a PDF with ledongthuc/pdf, optionally
// falling back to pdftotext. Scanned PDFs have no text layer and come back
// empty, which sends the extractor to OCR.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(ctx context.Context, path string) (*doctree.DocTree, error) {
	pages, err := readPDFPages(path)
	if (err != nil || blankPages(pages)) && p.FallbackPdftotext {
		if alt, altErr := pdftotextPages(ctx, path); altErr == nil {
			pages, err = alt, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	tree := &doctree.DocTree{Title: baseTitle(path)}
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		tree.Children = append(tree.Children, &doctree.DocNode{
			Title: fmt.Sprintf("Page %d", i+1),
			Text:  page,
			Page:  i + 1,
		})
	}
	return tree, nil
}

func readPDFPages(path string) (pages []string, err error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func pdftotextPages(ctx context.Context, path string) ([]string, error) {
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext separates pages with form feeds.
	return strings.Split(string(out), "\f"), nil
}

func blankPages(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}
