package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/w-h-a/ragchat/generator"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, messages []generator.Message, temperature float32) (string, error) {
	rsp, err := g.client.Messages.New(ctx, g.toParams(messages, temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", fmt.Errorf("%w: no response from Anthropic", generator.ErrUnavailable)
	}

	return result, nil
}

func (g *anthropicGenerator) GenerateStream(ctx context.Context, messages []generator.Message, temperature float32) (<-chan generator.StreamChunk, error) {
	stream := g.client.Messages.NewStreaming(ctx, g.toParams(messages, temperature))

	ch := make(chan generator.StreamChunk, 16)

	go func() {
		defer close(ch)
		defer stream.Close()

		var sb strings.Builder

		for stream.Next() {
			event := stream.Current()
			if evt, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent); ok {
				if delta, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok && len(delta.Text) > 0 {
					sb.WriteString(delta.Text)
					ch <- generator.StreamChunk{Delta: delta.Text}
				}
			}
		}

		if err := stream.Err(); err != nil {
			ch <- generator.StreamChunk{Done: true, FullText: sb.String(), Err: fmt.Errorf("%w: %v", generator.ErrUnavailable, err)}
			return
		}

		ch <- generator.StreamChunk{Done: true, FullText: sb.String()}
	}()

	return ch, nil
}

// toParams lifts system-role messages into the system param, which is where
// the Messages API expects them.
func (g *anthropicGenerator) toParams(messages []generator.Message, temperature float32) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case generator.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case generator.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(g.options.Model),
		MaxTokens:   int64(g.options.MaxTokens),
		System:      system,
		Messages:    turns,
		Temperature: anthropic.Float(float64(temperature)),
	}
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &anthropicGenerator{
		options: options,
	}

	client := anthropic.NewClient(
		anthropicopt.WithAPIKey(options.ApiKey),
	)

	g.client = &client

	return g
}
