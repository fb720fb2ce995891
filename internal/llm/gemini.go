package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini calls Google's generative language API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// errNoUserTurn is returned when a conversation does not end on the user.
var errNoUserTurn = errors.New("llm: gemini conversation must end with a user message")

// NewGemini creates the client only when a key is present so that a
// missing key surfaces at call time like the other providers.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	g := &Gemini{model: cfg.Model, timeout: cfg.Timeout}
	if cfg.APIKey == "" {
		return g, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g.client = cl
	return g, nil
}

func (g *Gemini) Chat(ctx context.Context, messages []Message) (string, error) {
	if g.client == nil {
		return "", ErrMissingAPIKey
	}

	system, rest := splitSystem(messages)
	m := g.client.GenerativeModel(g.model)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	history, last, err := geminiTurns(rest)
	if err != nil {
		return "", err
	}

	// The genai client has no per-request timeout of its own.
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cs := m.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, last...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}

// geminiTurns maps a conversation onto genai chat history. Assistant turns
// become "model" content and consecutive messages from one side are merged.
// The trailing user turn is returned separately as the message to send.
func geminiTurns(messages []Message) ([]*genai.Content, []genai.Part, error) {
	var turns []*genai.Content
	for _, msg := range messages {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		if n := len(turns); n > 0 && turns[n-1].Role == role {
			turns[n-1].Parts = append(turns[n-1].Parts, genai.Text(msg.Content))
			continue
		}
		turns = append(turns, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return nil, nil, errNoUserTurn
	}
	last := turns[len(turns)-1]
	return turns[:len(turns)-1], last.Parts, nil
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
