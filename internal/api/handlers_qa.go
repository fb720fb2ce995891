package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/smartextract/internal/chart"
	"github.com/dgallion1/smartextract/internal/pipeline"
	"github.com/dgallion1/smartextract/internal/session"
	"github.com/go-chi/chi/v5"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Record       session.Record   `json:"record"`
	ChartDropped bool             `json:"chart_dropped"`
	ChartURL     string           `json:"chart_url,omitempty"`
	Counters     session.Counters `json:"counters"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	out, err := s.service.Ask(r.Context(), sess, req.Question)
	s.writeAnswer(w, r, sess, out, err)
}

func (s *Server) handleQuick(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	out, err := s.service.Quick(r.Context(), sess, chi.URLParam(r, "action"))
	s.writeAnswer(w, r, sess, out, err)
}

func (s *Server) writeAnswer(w http.ResponseWriter, r *http.Request, sess *session.Session, out *pipeline.AskOutcome, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	resp := askResponse{
		Record:       out.Record,
		ChartDropped: out.ChartDropped,
		Counters:     sess.Counters(),
	}
	if out.Record.Chart != nil {
		resp.ChartURL = "/api/sessions/" + sess.ID + "/history/" + strconv.Itoa(out.Record.Index) + "/chart"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	all := sess.All()

	records := all
	if r.URL.Query().Get("all") != "true" {
		records = sess.Recent(s.cfg.HistoryDisplay)
	}
	if records == nil {
		records = []session.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(all),
	})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).ClearView()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "history index must be a number", http.StatusBadRequest)
		return
	}
	rec, err := sessionFrom(r).Record(index)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec.Chart == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	fig, err := chart.Build(*rec.Chart)
	if err != nil {
		writeError(w, err)
		return
	}
	if fig == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, fig, rec.ChartKey); err != nil {
		s.log.Error("chart render failed", "error", err, "key", rec.ChartKey)
		jsonError(w, "failed to render chart", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
