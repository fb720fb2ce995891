package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/smartextract/internal/doctree"
)

// ErrUnsupported is returned by ForFile when no structured parser handles an
// extension. Callers treat it like any other structured failure.
var ErrUnsupported = errors.New("no structured parser for file type")

// Parser converts a document on disk into a DocTree without network access.
type Parser interface {
	Parse(ctx context.Context, path string) (*doctree.DocTree, error)
}

// Options tunes parser construction.
type Options struct {
	PDFFallbackPdftotext bool
}

// docconvExtensions are handled by docconv, which shells out to system tools
// for some of them. A missing tool surfaces as a parse error.
var docconvExtensions = map[string]bool{
	".doc":   true,
	".odt":   true,
	".rtf":   true,
	".pages": true,
	".pptx":  true,
	".xml":   true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".text", ".log":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".xlsx", ".xlsm":
		return &XLSXParser{}, nil
	}
	if docconvExtensions[ext] {
		return &DocconvParser{}, nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
}

// IsStructured reports whether a filename has a structured parser.
func IsStructured(filename string) bool {
	_, err := ForFile(filename, Options{})
	return err == nil
}

// baseTitle strips the directory and extension from a path.
func baseTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
