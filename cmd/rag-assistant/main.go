package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rag-assistant/internal/assistant"
	"rag-assistant/internal/chatlog"
	"rag-assistant/internal/chunker"
	"rag-assistant/internal/config"
	"rag-assistant/internal/domain"
	"rag-assistant/internal/embedding/hashtf"
	openaiembed "rag-assistant/internal/embedding/openai"
	"rag-assistant/internal/generator"
	"rag-assistant/internal/loader"
	"rag-assistant/internal/prompt"
	"rag-assistant/internal/store"
	"rag-assistant/internal/tui"
	"rag-assistant/internal/vectorstore"
	"rag-assistant/internal/vectorstore/chroma"
	"rag-assistant/internal/vectorstore/memory"
	"rag-assistant/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, dataDir string
	var debug bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/rag-assistant/config.yaml if not provided)")
	flag.StringVar(&dataDir, "data", "", "Directory of .txt documents (overrides data_dir from config)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if dataDir == "" {
		dataDir = cfg.DataDir
	}

	logger, err := newLogger(cfg.Debug || debug)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "hashtf", "":
		dims := 0
		if cfg.Embedder.HashTF != nil {
			dims = cfg.Embedder.HashTF.Dimensions
		}
		emb = hashtf.NewEmbedder(dims)
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			logger.Fatal("openai embedder config missing")
		}
		client, err := openaiembed.NewClient(openaiembed.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.Embedder.OpenAI.BatchSize,
		})
		if err != nil {
			logger.Fatal("openai embedder init failed", zap.Error(err))
		}
		emb = client
	default:
		logger.Fatal("unknown embedder", zap.String("type", cfg.Embedder.Type))
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
	case "chroma":
		if cfg.VectorStore.Chroma == nil {
			logger.Fatal("chroma config missing")
		}
		st = chroma.NewStorage(chroma.Config{
			URL:        cfg.VectorStore.Chroma.URL,
			Collection: cfg.VectorStore.Chroma.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Chroma.TimeoutSecs) * time.Second,
		})
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			logger.Fatal("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		logger.Fatal("unknown vector store", zap.String("type", cfg.VectorStore.Type))
	}

	gen, err := generator.New(generatorOptions(cfg))
	if err != nil {
		logger.Fatal("generator init failed", zap.Error(err))
	}
	logger.Info("generator selected", zap.String("backend", gen.Name()))

	docs, err := loader.LoadDirectory(dataDir, logger)
	if err != nil {
		logger.Fatal("failed to load documents", zap.Error(err))
	}

	ch := chunker.New(cfg.Chunker.MaxChunkSize, cfg.Chunker.ChunkOverlap)
	docStore := store.NewDocumentStore(ch, emb, st, logger)
	asst := assistant.New(docStore, prompt.NewBuilder(), gen, logger, cfg.Retrieval.TopK)

	ctx := context.Background()
	if err := asst.IngestDocuments(ctx, docs); err != nil {
		logger.Fatal("ingest failed", zap.Error(err))
	}

	var chat *chatlog.Logger
	if cfg.ChatLogDir != "" {
		chat, err = chatlog.New(cfg.ChatLogDir)
		if err != nil {
			logger.Fatal("failed to open chat transcript", zap.Error(err))
		}
		defer chat.Close()
	}

	banner := fmt.Sprintf("%d document(s) loaded from %s", len(docs), dataDir)
	m := tui.New(asst, banner, chat)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		logger.Fatal("session failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func generatorOptions(cfg *config.AppConfig) generator.Options {
	opts := generator.Options{
		Backend: cfg.Generator.Backend,
		Timeout: time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	}
	if b := cfg.Generator.OpenAI; b != nil {
		opts.OpenAI = generator.BackendOptions{APIKeyEnv: b.APIKeyEnv, Model: b.Model, BaseURL: b.BaseURL}
	}
	if b := cfg.Generator.Groq; b != nil {
		opts.Groq = generator.BackendOptions{APIKeyEnv: b.APIKeyEnv, Model: b.Model, BaseURL: b.BaseURL}
	}
	if b := cfg.Generator.Google; b != nil {
		opts.Google = generator.BackendOptions{APIKeyEnv: b.APIKeyEnv, Model: b.Model, BaseURL: b.BaseURL}
	}
	return opts
}
