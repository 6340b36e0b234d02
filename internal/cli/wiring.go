package cli

import (
	"context"
	"fmt"
	"time"

	"paperrag/internal/chunker"
	"paperrag/internal/config"
	"paperrag/internal/generate"
	"paperrag/internal/generate/openai"
	"paperrag/internal/index"
	"paperrag/internal/logger"
	"paperrag/internal/registry"
	"paperrag/internal/registry/sqlite"
	"paperrag/internal/service"
	"paperrag/internal/summarizer"
)

// buildService assembles the components named by cfg and loads the persisted index.
func buildService(ctx context.Context, cfg *config.AppConfig) (*service.PaperService, error) {
	ch, err := chunker.New(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	ix := index.New(
		index.WithMaxTerms(cfg.Index.MaxVocabularyTerms),
		index.WithThreshold(cfg.Index.SimilarityThreshold),
	)

	var reg registry.Registry
	switch cfg.Registry.Type {
	case "memory", "":
		reg = registry.NewMemory()
	case "sqlite":
		store, err := sqlite.NewStore(cfg.Registry.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite registry: %w", err)
		}
		logger.Debug("paper registry at %s", store.Path())
		reg = store
	default:
		return nil, fmt.Errorf("unknown registry: %s", cfg.Registry.Type)
	}

	var gen generate.Generator
	opts := service.Options{
		IndexPath: cfg.Index.Path,
		TopK:      cfg.Index.TopK,
	}
	switch cfg.Generator.Type {
	case "none", "":
	case "openai":
		o := cfg.Generator.OpenAI
		if o == nil {
			reg.Close()
			return nil, fmt.Errorf("openai generator config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:           o.BaseURL,
			APIKeyEnv:         o.APIKeyEnv,
			Model:             o.Model,
			Timeout:           time.Duration(o.TimeoutSecs) * time.Second,
			MaxRetries:        o.MaxRetries,
			RequestsPerMinute: o.RequestsPerMinute,
		})
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("openai generator init failed: %w", err)
		}
		gen = client
		opts.MaxTokens = o.MaxTokens
		opts.SummaryMaxTokens = o.SummaryMaxTokens
	default:
		reg.Close()
		return nil, fmt.Errorf("unknown generator: %s", cfg.Generator.Type)
	}

	svc := service.NewPaperService(ch, ix, reg, gen, summarizer.NewFrequencySummarizer(), opts)
	if err := svc.Open(ctx); err != nil {
		svc.Close()
		return nil, err
	}
	return svc, nil
}
