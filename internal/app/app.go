// Package app wires configuration, stores, the LLM client chain, and
// the HTTP server into one runnable unit.
package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"figment/internal/artifact"
	"figment/internal/chat"
	"figment/internal/config"
	"figment/internal/diagram/intent"
	"figment/internal/diagram/render"
	diagramspec "figment/internal/diagram/spec"
	"figment/internal/figures"
	"figment/internal/handler"
	"figment/internal/imagestore"
	"figment/internal/llmclient"
	"figment/internal/middleware"
	"figment/internal/repository"
	"figment/internal/server"
	"figment/internal/token"
)

type App struct {
	server   *server.Server
	pool     *pgxpool.Pool
	llm      llmclient.Client
	pipeline *render.Pipeline
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	llm, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	var mirror artifact.Mirror
	if cfg.Artifact.Enabled && cfg.Artifact.Endpoint != "" {
		m, err := artifact.NewS3Mirror(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			log.Printf("app: artifact mirror disabled: %v", err)
		} else {
			mirror = m
		}
	}

	store, err := artifact.NewStore(cfg.UploadsRoot, mirror)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	var (
		pool      *pgxpool.Pool
		images    imagestore.Store
		chatStore chat.Store
	)
	if cfg.DatabaseURL != "" {
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		pool, err = repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		images = imagestore.NewPostgresStore(pool)
		chatStore = chat.NewPostgresStore(pool)
	} else {
		log.Printf("app: DATABASE_URL not set, using in-memory stores")
		images = imagestore.NewMemoryStore()
		chatStore = chat.NewMemoryStore()
	}

	resolver := figures.NewResolver(cfg.Product)
	resolver.OSMigrationFigure = cfg.Figures.OSMigrationID
	resolver.AssumedCloudFigures = cfg.Figures.AssumedCloudID

	chatSvc := chat.NewService(llm, images, resolver, chatStore, cfg.Product)

	dot := render.NewExecRenderer(cfg.Renderer.Bin, cfg.Renderer.Wrapper, cfg.Renderer.Timeout)
	pipeline := render.NewPipeline(llm, store, dot)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	classifier := intent.NewClassifier(cfg.Product, rng)
	synth := diagramspec.NewSynthesizer(rng)

	tokens := token.NewStore(cfg.Auth.MaxTokens, cfg.Auth.TokenTTL)

	chatHandler := handler.NewChatHandler(chatSvc)
	diagramHandler := handler.NewDiagramHandler(classifier, synth, pipeline, store)
	authHandler := handler.NewAuthHandler(tokens)

	mux := server.NewMux(chatHandler, diagramHandler, authHandler, middleware.Auth(tokens, cfg.Auth.Required))
	srv := server.New(cfg.Port, mux)

	return &App{
		server:   srv,
		pool:     pool,
		llm:      llm,
		pipeline: pipeline,
	}, nil
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llmclient.Client, error) {
	var (
		inner llmclient.Client
		err   error
	)
	switch cfg.LLM.Provider {
	case "groq":
		inner, err = llmclient.NewGroqClient(cfg.LLM.APIKey, cfg.LLM.Model)
	case "fake":
		// Database-less demos and CI smoke runs.
		inner = llmclient.NewFakeClient()
	default:
		inner, err = llmclient.NewGeminiClient(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
	}
	if err != nil {
		return nil, err
	}
	return llmclient.Wrap(inner,
		llmclient.Retry(cfg.LLM.MaxAttempts, 500*time.Millisecond),
		llmclient.RateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
		llmclient.Logging(),
	), nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	a.pipeline.WaitBackground()
	if cerr := a.llm.Close(); cerr != nil {
		log.Printf("app: close llm client: %v", cerr)
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return err
}
