package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	reply string
	err   error
	seen  [][]Message
}

func (s *scriptedProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	s.seen = append(s.seen, messages)
	return s.reply, s.err
}
func (s *scriptedProvider) Model() string { return "scripted" }
func (s *scriptedProvider) Close() error  { return nil }

func TestInstrumented_RecordsPerOperation(t *testing.T) {
	inner := &scriptedProvider{reply: "ok"}
	p := Instrument(inner, NewStats(time.Hour), testLogger())

	ctx := WithOperation(context.Background(), "reorganize")
	out, err := p.Chat(ctx, conversation)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Len(t, inner.seen, 1)

	_, err = p.Chat(context.Background(), conversation)
	require.NoError(t, err)

	snap := p.Stats().Snapshot()
	assert.Equal(t, 1, snap["reorganize"].Count)
	assert.Equal(t, 1, snap["chat"].Count)
	assert.Equal(t, "scripted", p.Model())
}

func TestInstrumented_CountsErrors(t *testing.T) {
	boom := errors.New("boom")
	p := Instrument(&scriptedProvider{err: boom}, NewStats(time.Hour), testLogger())

	_, err := p.Chat(WithOperation(context.Background(), "answer"), conversation)
	assert.ErrorIs(t, err, boom)

	snap := p.Stats().Operation("answer")
	assert.Equal(t, 0, snap.Count)
	assert.Equal(t, 1, snap.Errors)
}

func TestOperationFrom_Default(t *testing.T) {
	assert.Equal(t, "chat", OperationFrom(context.Background()))
	assert.Equal(t, "x", OperationFrom(WithOperation(context.Background(), "x")))
}
