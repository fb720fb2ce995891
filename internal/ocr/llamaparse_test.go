package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScan(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0o600))
	return path
}

func newTestClient(baseURL, key string) *Client {
	return NewClient(Config{
		APIKey:       key,
		BaseURL:      baseURL,
		PollInterval: time.Millisecond,
		MaxPolls:     5,
	}, testLogger())
}

func TestParse_UploadThenPollUntilDone(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload":
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "scan.png", header.Filename)
			assert.Equal(t, "fake image bytes", string(data))
			assert.Equal(t, "markdown", r.FormValue("result_type"))
			json.NewEncoder(w).Encode(map[string]string{"id": "job-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/job/job-1/result/markdown":
			if polls.Add(1) < 3 {
				w.WriteHeader(http.StatusAccepted)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"markdown": "# Scanned\n\nHello"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	docs, err := newTestClient(srv.URL, "secret").Parse(context.Background(), writeScan(t))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "# Scanned\n\nHello", docs[0].Text)
	assert.Equal(t, int32(3), polls.Load())
}

func TestParse_MissingKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "").Parse(context.Background(), writeScan(t))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, hits.Load())
}

func TestParse_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "bad").Parse(context.Background(), writeScan(t))
	var se *StatusError
	require.True(t, errors.As(err, &se), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestParse_PollTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "slow"})
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "secret").Parse(context.Background(), writeScan(t))
	assert.ErrorIs(t, err, ErrJobTimeout)
}

func TestParse_EmptyResultReturnsNoDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "blank"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"markdown": "  \n"})
	}))
	defer srv.Close()

	docs, err := newTestClient(srv.URL, "secret").Parse(context.Background(), writeScan(t))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestParse_JobFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(map[string]string{"id": "broken"})
			return
		}
		http.Error(w, "job failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, "secret").Parse(context.Background(), writeScan(t))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
}
