package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/smartextract/internal/ocr"
	"github.com/dgallion1/smartextract/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverter struct {
	text  string
	err   error
	calls int
}

func (f *fakeConverter) Convert(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeFallback struct {
	docs  []ocr.Document
	err   error
	calls int
}

func (f *fakeFallback) Parse(ctx context.Context, path string) ([]ocr.Document, error) {
	f.calls++
	return f.docs, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract_StructuredSuccessSkipsFallback(t *testing.T) {
	conv := &fakeConverter{text: "  # Title\n\nbody  "}
	fb := &fakeFallback{docs: []ocr.Document{{Text: "ocr"}}}

	res, err := New(conv, fb, testLogger()).Extract(context.Background(), "doc.md")
	require.NoError(t, err)
	assert.Equal(t, "  # Title\n\nbody  ", res.Text, "structured text must be returned verbatim")
	assert.Equal(t, MethodStructured, res.Method)
	assert.Zero(t, fb.calls)
}

func TestExtract_FallbackInvokedOnceForBlankOrError(t *testing.T) {
	tests := []struct {
		name string
		conv *fakeConverter
		want error
	}{
		{"blank", &fakeConverter{text: ""}, ErrBlank},
		{"whitespace", &fakeConverter{text: " \n\t "}, ErrBlank},
		{"error", &fakeConverter{err: parser.ErrUnsupported}, parser.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeFallback{docs: []ocr.Document{{Text: "from ocr"}, {Text: "second"}}}

			res, err := New(tt.conv, fb, testLogger()).Extract(context.Background(), "scan.pdf")
			require.NoError(t, err)
			assert.Equal(t, 1, fb.calls)
			assert.Equal(t, "from ocr", res.Text, "first document wins")
			assert.Equal(t, MethodOCR, res.Method)
			assert.ErrorIs(t, res.StructuredErr, tt.want)
		})
	}
}

func TestExtract_TotalFailure(t *testing.T) {
	upstream := errors.New("service unavailable")
	tests := []struct {
		name string
		fb   *fakeFallback
		want error
	}{
		{"fallback error", &fakeFallback{err: upstream}, upstream},
		{"no documents", &fakeFallback{}, ErrNoDocuments},
		{"blank document", &fakeFallback{docs: []ocr.Document{{Text: "   "}}}, ErrBlank},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &fakeConverter{err: parser.ErrUnsupported}

			res, err := New(conv, tt.fb, testLogger()).Extract(context.Background(), "scan.png")
			assert.Nil(t, res)

			var extErr *Error
			require.ErrorAs(t, err, &extErr)
			assert.ErrorIs(t, err, parser.ErrUnsupported)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, tt.fb.calls)
		})
	}
}

func TestStructured_ConvertsThroughRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload-123.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\n- one\n- two\n"), 0o600))

	text, err := NewStructured(parser.Options{}).Convert(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "# Notes\n\n- one\n- two", text)
}

func TestStructured_UnsupportedExtension(t *testing.T) {
	_, err := NewStructured(parser.Options{}).Convert(context.Background(), "photo.jpg")
	assert.ErrorIs(t, err, parser.ErrUnsupported)
}
