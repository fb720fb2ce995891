// Package session holds the per-user working context: the extracted
// document, its organized rewrite, the question history and the usage
// counters, guarded by a small state machine that allows one model or
// extraction call at a time.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/smartextract/internal/chart"
	"github.com/dgallion1/smartextract/internal/extract"
)

// State is the session's position in the processing flow.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateExtracted  State = "extracted"
	StateOrganizing State = "organizing"
	StateOrganized  State = "organized"
	StateAnswering  State = "answering"
)

// Transient reports whether a call is in flight in this state.
func (s State) Transient() bool {
	return s == StateExtracting || s == StateOrganizing || s == StateAnswering
}

var (
	ErrBusy        = errors.New("session: another operation is in progress")
	ErrNoContent   = errors.New("session: no extracted content")
	ErrNoOrganized = errors.New("session: no organized content")
	ErrNotFound    = errors.New("session: not found")
	ErrNoRecord    = errors.New("session: no such history record")
	ErrNotStarted  = errors.New("session: operation was not started")
)

// Document describes the most recent successful extraction.
type Document struct {
	Filename    string         `json:"filename"`
	ContentHash string         `json:"content_hash"`
	Method      extract.Method `json:"method"`
	Chars       int            `json:"chars"`
	Tokens      int            `json:"tokens"`
	ExtractedAt time.Time      `json:"extracted_at"`
}

// Counters are per-session usage totals. They only ever increase.
type Counters struct {
	FilesProcessed    int `json:"files_processed"`
	QuestionsAnswered int `json:"questions_answered"`
}

// Record is one answered question. Records are never modified once
// appended.
type Record struct {
	Index     int         `json:"index"`
	Question  string      `json:"question"`
	Answer    string      `json:"answer"`
	Chart     *chart.Spec `json:"chart,omitempty"`
	ChartKey  string      `json:"chart_key,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Session is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	updatedAt time.Time

	state State
	prev  State

	document  *Document
	raw       string
	organized string

	history  []Record
	viewFrom int
	chartSeq int
	counters Counters
}

// New returns an idle session.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		updatedAt: now,
		state:     StateIdle,
	}
}

// begin moves into a transient state. Caller holds mu.
func (s *Session) begin(next State, needContent bool) error {
	if s.state.Transient() {
		return ErrBusy
	}
	if needContent && s.state == StateIdle {
		return ErrNoContent
	}
	s.prev = s.state
	s.state = next
	s.updatedAt = time.Now()
	return nil
}

// finish leaves the transient state want. Caller holds mu.
func (s *Session) finish(want, next State) error {
	if s.state != want {
		return fmt.Errorf("%w: state is %s", ErrNotStarted, s.state)
	}
	s.state = next
	s.updatedAt = time.Now()
	return nil
}

// BeginExtract starts an extraction. Every attempt counts as a processed
// file, whether or not it succeeds.
func (s *Session) BeginExtract() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateExtracting, false); err != nil {
		return err
	}
	s.counters.FilesProcessed++
	return nil
}

// FinishExtract stores newly extracted text. Any previous organized text
// belongs to the old document and is dropped.
func (s *Session) FinishExtract(doc Document, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finish(StateExtracting, StateExtracted); err != nil {
		return err
	}
	s.document = &doc
	s.raw = raw
	s.organized = ""
	return nil
}

// BeginOrganize starts a reorganization and returns the raw extraction to
// reorganize. The organized text is never used as input.
func (s *Session) BeginOrganize() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateOrganizing, true); err != nil {
		return "", err
	}
	return s.raw, nil
}

// FinishOrganize stores the organized text.
func (s *Session) FinishOrganize(organized string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finish(StateOrganizing, StateOrganized); err != nil {
		return err
	}
	s.organized = organized
	return nil
}

// BeginAnswer starts a question and returns the content to answer from:
// the organized text when present, otherwise the raw extraction.
func (s *Session) BeginAnswer() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(StateAnswering, true); err != nil {
		return "", err
	}
	if s.organized != "" {
		return s.organized, nil
	}
	return s.raw, nil
}

// FinishAnswer appends the answer to the history and returns the new
// record. A chart gets a key unique within the session.
func (s *Session) FinishAnswer(question, answer string, spec *chart.Spec) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.finish(StateAnswering, s.prev); err != nil {
		return Record{}, err
	}

	rec := Record{
		Index:     len(s.history) + 1,
		Question:  question,
		Answer:    answer,
		Chart:     spec,
		Timestamp: time.Now(),
	}
	if spec != nil {
		s.chartSeq++
		kind := string(spec.Kind())
		if kind == "" {
			kind = "chart"
		}
		rec.ChartKey = fmt.Sprintf("%s_%d", kind, s.chartSeq)
	}
	s.history = append(s.history, rec)
	s.counters.QuestionsAnswered++
	return rec, nil
}

// Abort returns a failed call to the state it started from. Content from
// before the call is left untouched.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Transient() {
		return
	}
	s.state = s.prev
	s.updatedAt = time.Now()
}

// Recent returns up to n visible records, newest first.
func (s *Session) Recent(n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	visible := s.history[s.viewFrom:]
	if n <= 0 || n > len(visible) {
		n = len(visible)
	}
	out := make([]Record, 0, n)
	for i := len(visible) - 1; i >= len(visible)-n; i-- {
		out = append(out, visible[i])
	}
	return out
}

// All returns every record in the order asked, including cleared ones.
func (s *Session) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.history))
	copy(out, s.history)
	return out
}

// Record returns the record with the given 1-based index.
func (s *Session) Record(index int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 1 || index > len(s.history) {
		return Record{}, ErrNoRecord
	}
	return s.history[index-1], nil
}

// ClearView hides the current history from Recent. The records stay
// available through All and Record.
func (s *Session) ClearView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewFrom = len(s.history)
	s.updatedAt = time.Now()
}

// RawText returns the latest extraction.
func (s *Session) RawText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.document == nil {
		return "", ErrNoContent
	}
	return s.raw, nil
}

// OrganizedText returns the latest reorganization.
func (s *Session) OrganizedText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.organized == "" {
		return "", ErrNoOrganized
	}
	return s.organized, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Counters returns the usage totals.
func (s *Session) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// UpdatedAt returns the time of the last state change.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID             string    `json:"session_id"`
	State          State     `json:"state"`
	Document       *Document `json:"document,omitempty"`
	HasOrganized   bool      `json:"has_organized"`
	OrganizedChars int       `json:"organized_chars"`
	HistoryLen     int       `json:"history_len"`
	Counters       Counters  `json:"counters"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var doc *Document
	if s.document != nil {
		d := *s.document
		doc = &d
	}
	return Snapshot{
		ID:             s.ID,
		State:          s.state,
		Document:       doc,
		HasOrganized:   s.organized != "",
		OrganizedChars: len([]rune(s.organized)),
		HistoryLen:     len(s.history),
		Counters:       s.counters,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.updatedAt,
	}
}
