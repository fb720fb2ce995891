package archive

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_DisabledWithoutBucket(t *testing.T) {
	store, err := New(context.Background(), Config{}, testLogger())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "k", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewS3_ConfigErrors(t *testing.T) {
	_, err := NewS3(context.Background(), Config{Bucket: "b"})
	assert.Error(t, err)

	_, err = NewS3(context.Background(), Config{Bucket: "b", Region: "us-east-1", AccessKey: "only-key"})
	assert.Error(t, err)
}

func TestS3_URL(t *testing.T) {
	c := &S3{bucket: "docs", region: "eu-west-1"}
	assert.Equal(t, "https://docs.s3.eu-west-1.amazonaws.com/sessions/abc/a.txt", c.url(Key("abc", "a.txt")))

	c.endpoint = "http://localhost:9000"
	assert.Equal(t, "http://localhost:9000/docs/sessions/abc/a.txt", c.url(Key("abc", "a.txt")))
}

func TestS3_PutAgainstCompatibleEndpoint(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		ctype  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path, ctype = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"abc123"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := New(context.Background(), Config{
		Bucket:    "docs",
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
		Endpoint:  srv.URL,
	}, testLogger())
	require.NoError(t, err)

	url, err := store.Put(context.Background(), Key("s1", "organized.txt"), []byte("# Title"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/docs/sessions/s1/organized.txt", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/docs/sessions/s1/organized.txt", path)
	assert.Equal(t, "text/plain; charset=utf-8", ctype)
}
