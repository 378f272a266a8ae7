package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/ragchat/generator"
	"google.golang.org/api/iterator"
	genaiopt "google.golang.org/api/option"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, messages []generator.Message, temperature float32) (string, error) {
	model, parts := g.prepare(messages, temperature)

	rsp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}

	text := flatten(rsp)
	if len(text) == 0 {
		return "", fmt.Errorf("%w: no response from Google", generator.ErrUnavailable)
	}

	return text, nil
}

func (g *googleGenerator) GenerateStream(ctx context.Context, messages []generator.Message, temperature float32) (<-chan generator.StreamChunk, error) {
	model, parts := g.prepare(messages, temperature)

	iter := model.GenerateContentStream(ctx, parts...)

	ch := make(chan generator.StreamChunk, 16)

	go func() {
		defer close(ch)

		var sb strings.Builder

		for {
			rsp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				ch <- generator.StreamChunk{Done: true, FullText: sb.String()}
				return
			}
			if err != nil {
				ch <- generator.StreamChunk{Done: true, FullText: sb.String(), Err: fmt.Errorf("%w: %v", generator.ErrUnavailable, err)}
				return
			}
			if delta := flatten(rsp); len(delta) > 0 {
				sb.WriteString(delta)
				ch <- generator.StreamChunk{Delta: delta}
			}
		}
	}()

	return ch, nil
}

// prepare folds the ordered message list into a single multi-part turn.
// Gemini takes system text via SystemInstruction rather than as a message.
func (g *googleGenerator) prepare(messages []generator.Message, temperature float32) (*genai.GenerativeModel, []genai.Part) {
	model := g.client.GenerativeModel(g.options.Model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(g.options.MaxTokens))

	var system []genai.Part
	var parts []genai.Part

	for _, msg := range messages {
		if msg.Role == generator.RoleSystem {
			system = append(system, genai.Text(msg.Content))
			continue
		}
		parts = append(parts, genai.Text(fmt.Sprintf("[%s]: %s", msg.Role, msg.Content)))
	}

	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}

	return model, parts
}

func flatten(rsp *genai.GenerateContentResponse) string {
	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		options.Context,
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to create google generator client"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	g.client = client

	return g
}
