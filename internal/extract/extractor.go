// Package extract turns an uploaded file into plain text. Structured parsing
// runs first; the hosted parse service is the fallback for blank or failed
// structured results.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/smartextract/internal/ocr"
)

// Method records which path produced the text.
type Method string

const (
	MethodStructured Method = "structured"
	MethodOCR        Method = "ocr"
)

var (
	ErrBlank       = errors.New("extraction produced no text")
	ErrNoDocuments = errors.New("parse service returned no documents")
)

// Converter performs offline structured extraction.
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Fallback is the hosted parse service.
type Fallback interface {
	Parse(ctx context.Context, path string) ([]ocr.Document, error)
}

// Result is a successful extraction.
type Result struct {
	Text   string
	Method Method
	// StructuredErr is why the structured path was abandoned when the
	// fallback produced the text.
	StructuredErr error
}

// Error reports that both extraction paths failed.
type Error struct {
	Structured error
	Fallback   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed: structured: %v; fallback: %v", e.Structured, e.Fallback)
}

func (e *Error) Unwrap() []error {
	return []error{e.Structured, e.Fallback}
}

// Extractor runs structured extraction and falls back at most once.
type Extractor struct {
	structured Converter
	fallback   Fallback
	log        *slog.Logger
}

func New(structured Converter, fallback Fallback, log *slog.Logger) *Extractor {
	return &Extractor{structured: structured, fallback: fallback, log: log}
}

// Extract returns the document text or an *Error. Non-blank structured text
// is returned verbatim and the fallback is not contacted.
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	log := e.log.With("file", filepath.Base(path))

	text, err := e.structured.Convert(ctx, path)
	if err == nil && strings.TrimSpace(text) != "" {
		log.Info("extract.structured.ok", "chars", len(text))
		return &Result{Text: text, Method: MethodStructured}, nil
	}
	if err == nil {
		err = ErrBlank
	}
	log.Info("extract.fallback", "reason", err.Error())

	docs, ferr := e.fallback.Parse(ctx, path)
	switch {
	case ferr != nil:
	case len(docs) == 0:
		ferr = ErrNoDocuments
	case strings.TrimSpace(docs[0].Text) == "":
		ferr = ErrBlank
	}
	if ferr != nil {
		log.Warn("extract.failed", "structured_error", err.Error(), "fallback_error", ferr.Error())
		return nil, &Error{Structured: err, Fallback: ferr}
	}

	log.Info("extract.fallback.ok", "chars", len(docs[0].Text), "documents", len(docs))
	return &Result{Text: docs[0].Text, Method: MethodOCR, StructuredErr: err}, nil
}
