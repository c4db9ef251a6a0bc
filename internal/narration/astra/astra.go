// Package astra talks to OpenAI as Astra-Glow, the narrator persona.
package astra

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/narration"
)

const systemPrompt = `You are Astra-Glow, a gentle cosmic narrator guiding someone through a proposal made of shared memories.
Reply with 2 or 3 sentences, warm and poetic, addressed to the partner by name.
Never mention that you are an AI and never use lists or markdown.`

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
}

// Client generates narration lines and synthesizes speech.
type Client struct {
	api   openai.Client
	model string
	voice string
	log   *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "nova"
	}
	return &Client{api: openai.NewClient(opts...), model: model, voice: voice, log: log}
}

func prompt(caption, partnerName string) string {
	return fmt.Sprintf("Narrate this memory for %s: %q", partnerName, caption)
}

// Generate implements narration.Generator.
func (c *Client) Generate(ctx context.Context, caption, partnerName string) (string, error) {
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt(caption, partnerName)),
		},
		Temperature:         openai.Float(0.9),
		MaxCompletionTokens: openai.Int(150),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return narration.EmptyResponse, nil
	}
	return narration.Clean(resp.Choices[0].Message.Content), nil
}

// Synthesize returns mp3 audio for text. The caller closes the reader.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(c.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("speech: unexpected status %d", resp.StatusCode)
	}
	c.log.Debug("speech synthesized", zap.Int("chars", len(text)))
	return resp.Body, nil
}
