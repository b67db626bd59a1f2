package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/markdave123-py/Scholara/internal/config"
	"github.com/markdave123-py/Scholara/internal/core"
	db "github.com/markdave123-py/Scholara/internal/core/database"
	"github.com/markdave123-py/Scholara/internal/core/ingestion_engine"
	"github.com/markdave123-py/Scholara/internal/core/llm"
	objectclient "github.com/markdave123-py/Scholara/internal/core/object-client"
	"github.com/markdave123-py/Scholara/internal/core/paper"
	"github.com/markdave123-py/Scholara/internal/core/vectorstore"
	"github.com/markdave123-py/Scholara/internal/services"
)

// App holds every long-lived component of a running process.
//
// Sources:  persisted source set.
// Pipeline: extraction → chunking → [indexing] → generation → artifact.
// DBClient: pgvector store, nil unless INDEX_STORE=pgvector.
// Server:   HTTP API; only started by the serve commands.
type App struct {
	Config   *config.Config
	Sources  *services.SourceService
	Pipeline *ingestion_engine.Pipeline
	DBClient db.DbClient
	Server   *Server

	closers []func() error
}

// NewSourceService opens the source set without touching any provider, so
// source editing works before credentials are configured.
func NewSourceService(cfg *config.Config) *services.SourceService {
	store := config.NewSourceStore(resolve(cfg.WorkDir, cfg.SourcesFile))
	return services.NewSourceService(store, cfg.WorkDir, cfg.UploadDir)
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	a := &App{Config: cfg, Sources: NewSourceService(cfg)}

	llmProvider, err := a.newLLM(appCtx)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("couldn't initialize the LLM provider, %w", err)
	}
	log.Printf("LLM provider %s ready.", cfg.LLMProvider)

	var indexer *ingestion_engine.Indexer
	if cfg.EnableIndex {
		indexer, err = a.newIndexer(appCtx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("couldn't initialize the indexer, %w", err)
		}
		log.Printf("Indexer ready (embedder %s, store %s).", cfg.Embedder, cfg.IndexStore)
	}

	objClient, err := objectclient.New(appCtx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("couldn't initialize the object client, %w", err)
	}
	if objClient != nil {
		log.Println("Object client initialized and ready.")
	}

	extractor := ingestion_engine.NewSourceExtractor(cfg.WorkDir, cfg.FetchTimeout)
	generator := paper.NewGenerator(llmProvider, cfg.MaxContextChars)
	writer := paper.NewFileWriter(resolve(cfg.WorkDir, cfg.OutputFile), objClient)

	ingCfg := ingestion_engine.IngestConfig{
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		BatchSize:      cfg.EmbedBatchSize,
		ExtractWorkers: cfg.ExtractWorkers,
	}
	a.Pipeline, err = ingestion_engine.NewPipeline(ingCfg, extractor, generator, indexer, writer)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Server = NewServer(cfg, a.Sources, a.Pipeline)
	return a, nil
}

func (a *App) newLLM(ctx context.Context) (core.LLMProvider, error) {
	cfg := a.Config
	switch cfg.LLMProvider {
	case "gemini":
		g, err := llm.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.GenModel, cfg.GenTemperature)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	case "deepseek", "openai":
		c, err := llm.NewOpenAIChat(llm.ChatConfig{
			APIKey:      cfg.LLMAPIKey,
			BaseURL:     cfg.LLMBaseURL,
			Model:       cfg.GenModel,
			Temperature: cfg.GenTemperature,
			Timeout:     cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func (a *App) newIndexer(ctx context.Context) (*ingestion_engine.Indexer, error) {
	cfg := a.Config

	var embedder core.EmbeddingProvider
	switch cfg.Embedder {
	case "hash":
		embedder = llm.NewHashEmbedder(cfg.EmbedDim)
	case "gemini":
		g, err := llm.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		embedder = g
	case "openai":
		e, err := llm.NewOpenAIEmbedder(llm.EmbedConfig{
			APIKey:     cfg.LLMAPIKey,
			Model:      cfg.EmbedModel,
			Dimensions: cfg.EmbedDim,
		})
		if err != nil {
			return nil, err
		}
		embedder = e
	default:
		return nil, fmt.Errorf("unknown EMBEDDER %q", cfg.Embedder)
	}

	var store core.VectorStore
	switch cfg.IndexStore {
	case "memory":
		store = vectorstore.NewMemory()
	case "pgvector":
		dbClient, err := db.NewDatabaseClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Println("Database initialized and ready.")
		a.DBClient = dbClient
		a.closers = append(a.closers, dbClient.Close)
		store = dbClient
	default:
		return nil, fmt.Errorf("unknown INDEX_STORE %q", cfg.IndexStore)
	}

	return ingestion_engine.NewIndexer(embedder, store, cfg.EmbedBatchSize), nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("App: close: %v", err)
		}
	}
	a.closers = nil
}

func resolve(workDir, p string) string {
	if filepath.IsAbs(p) || workDir == "" {
		return p
	}
	return filepath.Join(workDir, p)
}
