package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	documentstore "github.com/w-h-a/ragchat/document_store"
	documentmemory "github.com/w-h-a/ragchat/document_store/memory"
	documentpostgres "github.com/w-h-a/ragchat/document_store/postgres"
	"github.com/w-h-a/ragchat/embedder"
	googleembedder "github.com/w-h-a/ragchat/embedder/google"
	openaiembedder "github.com/w-h-a/ragchat/embedder/openai"
	"github.com/w-h-a/ragchat/extractor/text"
	"github.com/w-h-a/ragchat/generator"
	anthropicgenerator "github.com/w-h-a/ragchat/generator/anthropic"
	googlegenerator "github.com/w-h-a/ragchat/generator/google"
	openaigenerator "github.com/w-h-a/ragchat/generator/openai"
	historystore "github.com/w-h-a/ragchat/history_store"
	historymemory "github.com/w-h-a/ragchat/history_store/memory"
	historypostgres "github.com/w-h-a/ragchat/history_store/postgres"
	"github.com/w-h-a/ragchat/internal/service/chat"
	"github.com/w-h-a/ragchat/internal/service/document"
	httpserver "github.com/w-h-a/ragchat/server/http"
)

var (
	cfg struct {
		// Server config
		Address string `help:"Address for the http server" default:":8080"`

		// Store config
		DocumentLocation string `help:"Location of the document store; a postgres url or 'memory'" default:"memory"`
		HistoryLocation  string `help:"Location of the history store; a postgres url or 'memory'" default:"memory"`
		Dimension        int    `help:"Embedding dimension enforced by the document store" default:"1536"`

		// Embedder config
		Embedder      string `help:"Embedding provider" enum:"openai,google" default:"openai"`
		EmbedderKey   string `help:"API key for the embedding provider" env:"EMBEDDER_API_KEY" default:""`
		EmbedderModel string `help:"Model identifier for embeddings" default:"text-embedding-3-small"`

		// Generator config
		Generator      string `help:"Generation provider" enum:"openai,anthropic,google" default:"openai"`
		GeneratorKey   string `help:"API key for the generation provider" env:"GENERATOR_API_KEY" default:""`
		GeneratorModel string `help:"Model identifier for generation" default:"gpt-3.5-turbo"`
		MaxTokens      int    `help:"Completion token cap per generation" default:"500"`
	}
)

func main() {
	// Parse inputs
	godotenv.Load()
	_ = kong.Parse(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create embedder
	var emb embedder.Embedder
	switch cfg.Embedder {
	case "google":
		emb = googleembedder.NewEmbedder(
			embedder.WithApiKey(cfg.EmbedderKey),
			embedder.WithModel(cfg.EmbedderModel),
		)
	default:
		emb = openaiembedder.NewEmbedder(
			embedder.WithApiKey(cfg.EmbedderKey),
			embedder.WithModel(cfg.EmbedderModel),
		)
	}

	// Create generator
	var gen generator.Generator
	switch cfg.Generator {
	case "anthropic":
		gen = anthropicgenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.GeneratorModel),
			generator.WithMaxTokens(cfg.MaxTokens),
		)
	case "google":
		gen = googlegenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.GeneratorModel),
			generator.WithMaxTokens(cfg.MaxTokens),
		)
	default:
		gen = openaigenerator.NewGenerator(
			generator.WithApiKey(cfg.GeneratorKey),
			generator.WithModel(cfg.GeneratorModel),
			generator.WithMaxTokens(cfg.MaxTokens),
		)
	}

	// Create stores
	var documents documentstore.Store
	if strings.HasPrefix(cfg.DocumentLocation, "postgres") {
		documents = documentpostgres.NewStore(
			documentstore.WithLocation(cfg.DocumentLocation),
			documentstore.WithDimension(cfg.Dimension),
		)
	} else {
		documents = documentmemory.NewStore(
			documentstore.WithDimension(cfg.Dimension),
		)
	}

	var history historystore.Store
	if strings.HasPrefix(cfg.HistoryLocation, "postgres") {
		history = historypostgres.NewStore(
			historystore.WithLocation(cfg.HistoryLocation),
		)
	} else {
		history = historymemory.NewStore()
	}

	// Create services
	documentService := document.New(documents, emb, text.NewExtractor())
	chatService := chat.New(documentService, gen, history)

	// Create server
	srv := httpserver.NewServer(
		chatService,
		documentService,
		httpserver.WithAddress(cfg.Address),
	)

	if err := srv.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "server exited", "error", err)
		os.Exit(1)
	}
}
