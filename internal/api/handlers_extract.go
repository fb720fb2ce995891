package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/smartextract/internal/pipeline"
	"github.com/dgallion1/smartextract/internal/session"
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	filename := sanitizeFilename(header.Filename)
	out, err := s.service.Extract(r.Context(), sess, filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{
		"document": out.Document,
		"counters": sess.Counters(),
	}
	if out.StructuredErr != nil {
		resp["structured_error"] = out.StructuredErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReorganize(w http.ResponseWriter, r *http.Request) {
	organized, err := s.service.Reorganize(r.Context(), sessionFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"organized": organized,
		"chars":     len([]rune(organized)),
		"tokens":    s.service.CountTokens(organized),
	})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	view := r.URL.Query().Get("view")

	var (
		text string
		err  error
	)
	switch view {
	case "", "raw":
		view = "raw"
		text, err = sess.RawText()
	case "organized":
		text, err = sess.OrganizedText()
	default:
		jsonError(w, "view must be raw or organized", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"view":   view,
		"text":   text,
		"chars":  len([]rune(text)),
		"tokens": s.service.CountTokens(text),
	})
}

func (s *Server) handleDownloadOrganized(w http.ResponseWriter, r *http.Request) {
	text, err := sessionFrom(r).OrganizedText()
	if err != nil {
		writeError(w, err)
		return
	}
	name := pipeline.ArtifactName(time.Now())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Write([]byte(text))
}

func (s *Server) handleArchiveOrganized(w http.ResponseWriter, r *http.Request) {
	out, err := s.service.Archive(r.Context(), sessionFrom(r))
	if err != nil {
		if !errors.Is(err, session.ErrNoOrganized) {
			s.log.Warn("archive failed", "error", err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
