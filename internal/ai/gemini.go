// Package ai answers portfolio questions with Gemini.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"

	// SystemInstruction frames every conversation.
	SystemInstruction = "You are a professional portfolio risk and allocation analyst."

	seedAck = "Understood. I will use this portfolio as context for your questions."
)

// ErrAssistantUnavailable wraps every failure to reach or use the model.
var ErrAssistantUnavailable = errors.New("assistant unavailable")

// Config selects the model. Empty fields use the defaults.
type Config struct {
	APIKey            string
	Model             string
	SystemInstruction string
}

// chatSession is the part of *genai.Chat a Gemini needs.
type chatSession interface {
	Send(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error)
}

type chatStarter func(ctx context.Context, history []*genai.Content) (chatSession, error)

// Gemini is a stateful chat with one model. Seeded text becomes the opening
// history of the conversation. Safe for use by one caller at a time; calls are
// serialized.
type Gemini struct {
	start   chatStarter
	log     zerolog.Logger
	mu      sync.Mutex
	history []*genai.Content
	chat    chatSession
}

// NewGemini connects to the Gemini API.
func NewGemini(ctx context.Context, cfg Config, log zerolog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrAssistantUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SystemInstruction == "" {
		cfg.SystemInstruction = SystemInstruction
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssistantUnavailable, err)
	}

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
	}
	start := func(ctx context.Context, history []*genai.Content) (chatSession, error) {
		return client.Chats.Create(ctx, cfg.Model, genCfg, history)
	}
	return newGemini(start, log.With().Str("component", "ai").Str("model", cfg.Model).Logger()), nil
}

func newGemini(start chatStarter, log zerolog.Logger) *Gemini {
	return &Gemini{start: start, log: log}
}

// Seed adds background text to the conversation. Before the first question it
// only extends the opening history; afterwards it is sent and the reply dropped.
func (g *Gemini) Seed(ctx context.Context, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chat == nil {
		g.history = append(g.history,
			genai.NewContentFromText(text, genai.RoleUser),
			genai.NewContentFromText(seedAck, genai.RoleModel),
		)
		g.log.Debug().Int("chars", len(text)).Msg("context seeded")
		return nil
	}
	_, err := g.send(ctx, text)
	return err
}

// Ask sends question and returns the model's text answer.
func (g *Gemini) Ask(ctx context.Context, question string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chat == nil {
		chat, err := g.start(ctx, g.history)
		if err != nil {
			return "", fmt.Errorf("%w: start chat: %w", ErrAssistantUnavailable, err)
		}
		g.chat = chat
	}
	return g.send(ctx, question)
}

func (g *Gemini) send(ctx context.Context, text string) (string, error) {
	resp, err := g.chat.Send(ctx, &genai.Part{Text: text})
	if err != nil {
		g.log.Error().Err(err).Msg("gemini request failed")
		return "", fmt.Errorf("%w: %w", ErrAssistantUnavailable, err)
	}
	answer, err := firstText(resp)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssistantUnavailable, err)
	}
	return answer, nil
}

// firstText joins the text parts of the first candidate.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates in response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty response")
	}
	return sb.String(), nil
}
