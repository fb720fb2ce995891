// Package pipeline runs extraction, reorganization and question answering
// against a session.
package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/smartextract/internal/archive"
	"github.com/dgallion1/smartextract/internal/extract"
	"github.com/dgallion1/smartextract/internal/parser"
	"github.com/dgallion1/smartextract/internal/qa"
	"github.com/dgallion1/smartextract/internal/session"
)

// Extractor turns a file on disk into text.
type Extractor interface {
	Extract(ctx context.Context, path string) (*extract.Result, error)
}

// Assistant makes the model calls.
type Assistant interface {
	Reorganize(ctx context.Context, raw string) (string, error)
	Answer(ctx context.Context, content, question string) (*qa.Answer, error)
}

// TokenCounter sizes extracted text.
type TokenCounter interface {
	Count(text string) int
}

// Service coordinates one call at a time per session. Calls on different
// sessions run concurrently.
type Service struct {
	extractor Extractor
	assistant Assistant
	tokens    TokenCounter
	archive   archive.Store
	log       *slog.Logger

	// TempDir holds uploads while they are extracted. Empty means the
	// system default.
	TempDir string
}

func NewService(ex Extractor, as Assistant, tc TokenCounter, store archive.Store, log *slog.Logger) *Service {
	return &Service{
		extractor: ex,
		assistant: as,
		tokens:    tc,
		archive:   store,
		log:       log,
	}
}

// ExtractOutcome describes a successful extraction.
type ExtractOutcome struct {
	Document session.Document
	// StructuredErr is why structured parsing was skipped when the
	// fallback produced the text.
	StructuredErr error
}

// Extract stores r in a temp file named with the upload's extension, runs
// the extractor on it and removes the file before returning. On failure
// the session keeps its previous content.
func (s *Service) Extract(ctx context.Context, sess *session.Session, filename string, r io.Reader) (*ExtractOutcome, error) {
	if err := sess.BeginExtract(); err != nil {
		return nil, err
	}
	log := s.log.With("session", sess.ID, "file", filename)
	log.Info("pipeline.extract.start", "structured_parser", parser.IsStructured(filename))

	path, hash, err := s.spool(filename, r)
	if err != nil {
		sess.Abort()
		return nil, err
	}
	defer os.Remove(path)

	res, err := s.extractor.Extract(ctx, path)
	if err != nil {
		sess.Abort()
		log.Warn("pipeline.extract.failed", "error", err)
		return nil, err
	}

	doc := session.Document{
		Filename:    filename,
		ContentHash: hash,
		Method:      res.Method,
		Chars:       len([]rune(res.Text)),
		Tokens:      s.tokens.Count(res.Text),
		ExtractedAt: time.Now(),
	}
	if err := sess.FinishExtract(doc, res.Text); err != nil {
		return nil, err
	}
	log.Info("pipeline.extract.done", "method", res.Method, "chars", doc.Chars, "tokens", doc.Tokens)
	return &ExtractOutcome{Document: doc, StructuredErr: res.StructuredErr}, nil
}

// spool copies r to a temp file and returns its path and content hash.
func (s *Service) spool(filename string, r io.Reader) (string, string, error) {
	f, err := os.CreateTemp(s.TempDir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	h := sha256.New()
	_, err = io.Copy(io.MultiWriter(f, h), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", "", fmt.Errorf("write temp file: %w", err)
	}
	return f.Name(), fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Reorganize rewrites the session's raw extraction as organized markdown.
func (s *Service) Reorganize(ctx context.Context, sess *session.Session) (string, error) {
	raw, err := sess.BeginOrganize()
	if err != nil {
		return "", err
	}
	organized, err := s.assistant.Reorganize(ctx, raw)
	if err != nil {
		sess.Abort()
		s.log.Warn("pipeline.reorganize.failed", "session", sess.ID, "error", err)
		return "", err
	}
	if err := sess.FinishOrganize(organized); err != nil {
		return "", err
	}
	return organized, nil
}

// AskOutcome is an answered question as stored in the history.
type AskOutcome struct {
	Record       session.Record
	ChartDropped bool
}

// Ask answers a question about the session's content and appends it to the
// history. An empty question is rejected before the session is touched.
func (s *Service) Ask(ctx context.Context, sess *session.Session, question string) (*AskOutcome, error) {
	if strings.TrimSpace(question) == "" {
		return nil, qa.ErrEmptyQuestion
	}
	content, err := sess.BeginAnswer()
	if err != nil {
		return nil, err
	}
	ans, err := s.assistant.Answer(ctx, content, question)
	if err != nil {
		sess.Abort()
		s.log.Warn("pipeline.ask.failed", "session", sess.ID, "error", err)
		return nil, err
	}
	rec, err := sess.FinishAnswer(question, ans.Text, ans.Chart)
	if err != nil {
		return nil, err
	}
	s.log.Info("pipeline.ask.done", "session", sess.ID, "index", rec.Index, "chart", rec.ChartKey, "chart_dropped", ans.ChartDropped)
	return &AskOutcome{Record: rec, ChartDropped: ans.ChartDropped}, nil
}

// Quick asks the canned question behind a quick action.
func (s *Service) Quick(ctx context.Context, sess *session.Session, action string) (*AskOutcome, error) {
	q, err := qa.QuickQuestion(action)
	if err != nil {
		return nil, err
	}
	return s.Ask(ctx, sess, q)
}

// Archived is an organized artifact in object storage.
type Archived struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Archive uploads the session's organized content.
func (s *Service) Archive(ctx context.Context, sess *session.Session) (*Archived, error) {
	text, err := sess.OrganizedText()
	if err != nil {
		return nil, err
	}
	name := ArtifactName(time.Now())
	url, err := s.archive.Put(ctx, archive.Key(sess.ID, name), []byte(text), "text/plain; charset=utf-8")
	if err != nil {
		return nil, err
	}
	s.log.Info("pipeline.archive.done", "session", sess.ID, "url", url)
	return &Archived{Name: name, URL: url}, nil
}

// ArtifactName is the download name for organized content produced at t.
func ArtifactName(t time.Time) string {
	return "organized_content_" + t.Format("20060102_150405") + ".txt"
}

// CountTokens sizes text with the service's token counter.
func (s *Service) CountTokens(text string) int {
	return s.tokens.Count(text)
}
