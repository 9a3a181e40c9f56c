package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"ragindex/internal/config"
	"ragindex/internal/domain"
	"ragindex/internal/ingest"
	"ragindex/internal/llm/openai"
	"ragindex/internal/logging"
	"ragindex/internal/retriever"
	"ragindex/internal/service"
	"ragindex/internal/snapshot"
)

// app holds the components assembled from one configuration.
type app struct {
	cfg       *config.AppConfig
	logger    *slog.Logger
	store     *snapshot.Store
	ingester  *ingest.Ingester
	retriever *retriever.Retriever
	rag       *service.RAGService
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func newApp(cfg *config.AppConfig, logLevel string) (*app, error) {
	logCfg := cfg.Log
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	logger := logging.New(logCfg, os.Stderr)
	slog.SetDefault(logger)

	for _, w := range cfg.Validate() {
		logger.Warn("config", "warning", w)
	}

	store := snapshot.New(cfg.Store.Dir,
		snapshot.WithKeep(cfg.Store.KeepSnapshots),
		snapshot.WithLogger(logger),
	)
	in := ingest.New(ingest.Config{
		Root:       cfg.Corpus.Root,
		Extensions: cfg.Corpus.Extensions,
		Stopwords:  cfg.Vectorizer.Stopwords,
	}, store, logger)
	r := retriever.New(store, logger)

	var completer domain.Completer
	if cfg.LLM.Model != "" {
		client, err := openai.NewClient(openai.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKeyEnv:   cfg.LLM.APIKeyEnv,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("llm client: %w", err)
		}
		completer = client
	}
	rag := service.NewRAGService(r, completer, service.Options{
		MaxContextChars: cfg.LLM.MaxContextChars,
		MaxSentences:    cfg.Summarizer.MaxSentences,
	}, logger)

	return &app{cfg: cfg, logger: logger, store: store, ingester: in, retriever: r, rag: rag}, nil
}

// Query implements tui.SearchPort.
func (a *app) Query(query string, topK int) []domain.Result {
	return a.rag.Query(query, topK)
}

// Reload implements tui.SearchPort.
func (a *app) Reload() string {
	state := a.retriever.LoadArtifacts()
	info := a.retriever.Info()
	if state != retriever.Ready {
		return fmt.Sprintf("Index %s; run `rag ingest` first.", state)
	}
	return fmt.Sprintf("Loaded %d documents (snapshot %s).", info.Documents, info.Version)
}
