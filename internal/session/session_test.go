package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dgallion1/smartextract/internal/chart"
)

func extracted(t *testing.T, raw string) *Session {
	t.Helper()
	s := New("test")
	if err := s.BeginExtract(); err != nil {
		t.Fatalf("BeginExtract: %v", err)
	}
	if err := s.FinishExtract(Document{Filename: "a.txt"}, raw); err != nil {
		t.Fatalf("FinishExtract: %v", err)
	}
	return s
}

func answer(t *testing.T, s *Session, q string, spec *chart.Spec) Record {
	t.Helper()
	if _, err := s.BeginAnswer(); err != nil {
		t.Fatalf("BeginAnswer: %v", err)
	}
	rec, err := s.FinishAnswer(q, "answer to "+q, spec)
	if err != nil {
		t.Fatalf("FinishAnswer: %v", err)
	}
	return rec
}

func TestSession_StateTransitions(t *testing.T) {
	s := New("fsm")
	if s.State() != StateIdle {
		t.Fatalf("expected state %q, got %q", StateIdle, s.State())
	}

	steps := []struct {
		do   func() error
		want State
	}{
		{s.BeginExtract, StateExtracting},
		{func() error { return s.FinishExtract(Document{}, "raw") }, StateExtracted},
		{func() error { _, err := s.BeginOrganize(); return err }, StateOrganizing},
		{func() error { return s.FinishOrganize("organized") }, StateOrganized},
		{func() error { _, err := s.BeginAnswer(); return err }, StateAnswering},
		{func() error { _, err := s.FinishAnswer("q", "a", nil); return err }, StateOrganized},
	}
	for i, st := range steps {
		before := s.UpdatedAt()
		time.Sleep(time.Millisecond)
		if err := st.do(); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if s.State() != st.want {
			t.Errorf("step %d: expected state %q, got %q", i, st.want, s.State())
		}
		if !s.UpdatedAt().After(before) {
			t.Errorf("step %d: expected UpdatedAt to advance", i)
		}
	}
}

func TestSession_NoContentFromIdle(t *testing.T) {
	s := New("idle")
	if _, err := s.BeginOrganize(); !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent from BeginOrganize, got %v", err)
	}
	if _, err := s.BeginAnswer(); !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent from BeginAnswer, got %v", err)
	}
	if _, err := s.RawText(); !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent from RawText, got %v", err)
	}
}

func TestSession_BusyWhileInFlight(t *testing.T) {
	s := extracted(t, "raw")
	if _, err := s.BeginOrganize(); err != nil {
		t.Fatalf("BeginOrganize: %v", err)
	}
	if err := s.BeginExtract(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy from BeginExtract, got %v", err)
	}
	if _, err := s.BeginAnswer(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy from BeginAnswer, got %v", err)
	}
	if _, err := s.BeginOrganize(); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy from BeginOrganize, got %v", err)
	}
}

func TestSession_FinishWithoutBegin(t *testing.T) {
	s := New("x")
	if err := s.FinishOrganize("text"); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
}

func TestSession_FailedExtractKeepsPreviousContent(t *testing.T) {
	s := extracted(t, "first document")
	if _, err := s.BeginOrganize(); err != nil {
		t.Fatal(err)
	}
	if err := s.FinishOrganize("# first"); err != nil {
		t.Fatal(err)
	}

	if err := s.BeginExtract(); err != nil {
		t.Fatal(err)
	}
	s.Abort()

	if s.State() != StateOrganized {
		t.Errorf("expected state %q after abort, got %q", StateOrganized, s.State())
	}
	raw, _ := s.RawText()
	if raw != "first document" {
		t.Errorf("expected raw text kept, got %q", raw)
	}
	if got := s.Counters().FilesProcessed; got != 2 {
		t.Errorf("expected 2 files processed, got %d", got)
	}
}

func TestSession_NewExtractionClearsOrganized(t *testing.T) {
	s := extracted(t, "one")
	s.BeginOrganize()
	s.FinishOrganize("# one")

	s.BeginExtract()
	if err := s.FinishExtract(Document{Filename: "b.txt"}, "two"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.OrganizedText(); !errors.Is(err, ErrNoOrganized) {
		t.Errorf("expected ErrNoOrganized, got %v", err)
	}
	if s.Snapshot().Document.Filename != "b.txt" {
		t.Errorf("expected document b.txt, got %q", s.Snapshot().Document.Filename)
	}
}

func TestSession_OrganizeReadsRaw(t *testing.T) {
	s := extracted(t, "raw text")
	for i := 0; i < 2; i++ {
		in, err := s.BeginOrganize()
		if err != nil {
			t.Fatal(err)
		}
		if in != "raw text" {
			t.Errorf("pass %d: expected raw input, got %q", i, in)
		}
		s.FinishOrganize("organized pass")
	}
}

func TestSession_AnswerPrefersOrganized(t *testing.T) {
	s := extracted(t, "raw text")
	content, _ := s.BeginAnswer()
	if content != "raw text" {
		t.Errorf("expected raw content, got %q", content)
	}
	s.Abort()

	s.BeginOrganize()
	s.FinishOrganize("organized text")
	content, _ = s.BeginAnswer()
	if content != "organized text" {
		t.Errorf("expected organized content, got %q", content)
	}
}

func TestSession_FailedAnswerNotCounted(t *testing.T) {
	s := extracted(t, "raw")
	s.BeginAnswer()
	s.Abort()
	if got := s.Counters().QuestionsAnswered; got != 0 {
		t.Errorf("expected 0 questions answered, got %d", got)
	}
	if len(s.All()) != 0 {
		t.Errorf("expected empty history, got %d", len(s.All()))
	}
}

func TestSession_HistoryRecentNewestFirst(t *testing.T) {
	s := extracted(t, "raw")
	for _, q := range []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"} {
		answer(t, s, q, nil)
	}

	recent := s.Recent(5)
	if len(recent) != 5 {
		t.Fatalf("expected 5 recent, got %d", len(recent))
	}
	if recent[0].Question != "q7" || recent[4].Question != "q3" {
		t.Errorf("expected q7..q3, got %q..%q", recent[0].Question, recent[4].Question)
	}
	all := s.All()
	if len(all) != 7 || all[0].Question != "q1" {
		t.Errorf("expected all 7 records in order, got %d starting %q", len(all), all[0].Question)
	}
	if got := s.Counters().QuestionsAnswered; got != 7 {
		t.Errorf("expected 7 questions answered, got %d", got)
	}
}

func TestSession_ClearViewRetainsRecords(t *testing.T) {
	s := extracted(t, "raw")
	answer(t, s, "old", nil)
	s.ClearView()

	if got := s.Recent(5); len(got) != 0 {
		t.Errorf("expected empty view after clear, got %d", len(got))
	}
	answer(t, s, "new", nil)
	recent := s.Recent(5)
	if len(recent) != 1 || recent[0].Question != "new" {
		t.Errorf("expected only the new record, got %+v", recent)
	}
	if len(s.All()) != 2 {
		t.Errorf("expected 2 retained records, got %d", len(s.All()))
	}
	rec, err := s.Record(1)
	if err != nil || rec.Question != "old" {
		t.Errorf("expected record 1 to be %q, got %q (%v)", "old", rec.Question, err)
	}
	if _, err := s.Record(3); !errors.Is(err, ErrNoRecord) {
		t.Errorf("expected ErrNoRecord, got %v", err)
	}
}

func TestSession_ChartKeysUniquePerSession(t *testing.T) {
	s := extracted(t, "raw")
	pie, err := chart.Decode([]byte(`{"type":"pie","labels":["a"],"values":[1]}`))
	if err != nil {
		t.Fatal(err)
	}
	bar, err := chart.Decode([]byte(`{"type":"Bar","x":["a"],"y":[1]}`))
	if err != nil {
		t.Fatal(err)
	}

	r1 := answer(t, s, "q1", pie)
	r2 := answer(t, s, "q2", nil)
	r3 := answer(t, s, "q3", bar)
	r4 := answer(t, s, "q4", pie)

	if r1.ChartKey != "pie_1" {
		t.Errorf("expected key pie_1, got %q", r1.ChartKey)
	}
	if r2.ChartKey != "" {
		t.Errorf("expected no key without chart, got %q", r2.ChartKey)
	}
	if r3.ChartKey != "bar_2" {
		t.Errorf("expected key bar_2, got %q", r3.ChartKey)
	}
	if r4.ChartKey != "pie_3" {
		t.Errorf("expected key pie_3, got %q", r4.ChartKey)
	}
}

func TestSession_SnapshotJSON(t *testing.T) {
	s := extracted(t, "raw")
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["state"] != "extracted" {
		t.Errorf("expected state extracted, got %v", m["state"])
	}
	if m["has_organized"] != false {
		t.Errorf("expected has_organized false, got %v", m["has_organized"])
	}
}
