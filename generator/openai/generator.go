package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/ragchat/generator"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, messages []generator.Message, temperature float32) (string, error) {
	rsp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.options.Model,
		Messages:    toChatMessages(messages),
		MaxTokens:   g.options.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", fmt.Errorf("%w: no response from OpenAI", generator.ErrUnavailable)
	}

	return rsp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) GenerateStream(ctx context.Context, messages []generator.Message, temperature float32) (<-chan generator.StreamChunk, error) {
	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       g.options.Model,
		Messages:    toChatMessages(messages),
		MaxTokens:   g.options.MaxTokens,
		Temperature: temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generator.ErrUnavailable, err)
	}

	ch := make(chan generator.StreamChunk, 16)

	go func() {
		defer close(ch)
		defer stream.Close()

		var sb strings.Builder

		for {
			rsp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				ch <- generator.StreamChunk{Done: true, FullText: sb.String()}
				return
			}
			if err != nil {
				ch <- generator.StreamChunk{Done: true, FullText: sb.String(), Err: fmt.Errorf("%w: %v", generator.ErrUnavailable, err)}
				return
			}
			if len(rsp.Choices) == 0 {
				continue
			}
			if delta := rsp.Choices[0].Delta.Content; len(delta) > 0 {
				sb.WriteString(delta)
				ch <- generator.StreamChunk{Delta: delta}
			}
		}
	}()

	return ch, nil
}

func toChatMessages(messages []generator.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return out
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	client := openai.NewClient(options.ApiKey)

	g.client = client

	return g
}
