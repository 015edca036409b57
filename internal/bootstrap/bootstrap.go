package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/minerva-learning/minerva-backend/internal/config"
	"github.com/minerva-learning/minerva-backend/internal/core/ports"
	"github.com/minerva-learning/minerva-backend/internal/core/usecase"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/extractor"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/llm/openai"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/queue/nats"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/repository/postgres"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/resilience"
	sessionredis "github.com/minerva-learning/minerva-backend/internal/infrastructure/sessioncache/redis"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/storage/localfs"
	"github.com/minerva-learning/minerva-backend/internal/infrastructure/textanalysis"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Sessions *postgres.SessionRepository

	IngestUC   ports.DocumentIngestor
	ReaderUC   ports.DocumentReader
	ProcessUC  ports.DocumentProcessor
	StoryUC    ports.StoryDirector
	ProgressUC ports.ProgressTracker
	ProfileUC  ports.ProfileService
	ChatUC     ports.ChatResponder

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	documents := postgres.NewDocumentRepository(db)
	chunks := postgres.NewChunkRepository(db)
	users := postgres.NewUserRepository(db)
	sessions := postgres.NewSessionRepository(db)
	stories := postgres.NewStoryRepository(db)
	progress := postgres.NewProgressRepository(db)

	for _, schema := range []interface {
		EnsureSchema(context.Context) error
	}{documents, chunks, users, sessions, stories, progress} {
		if err := schema.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	cache, err := sessionredis.New(ctx, sessionredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init session cache: %w", err)
	}

	exec := resilience.NewExecutor(resilience.DefaultPolicy())
	llmClient := openai.New(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second, exec)
	storyGenerator := openai.NewStoryGenerator(llmClient)
	chatGenerator := openai.NewChatResponder(llmClient)

	ingestUC := usecase.NewIngestDocumentUseCase(documents, chunks, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(documents, chunks, storage, extractor.New(), textanalysis.New())
	storyUC := usecase.NewGenerateStoryUseCase(stories, documents, users, progress, storyGenerator)
	progressUC := usecase.NewTrackProgressUseCase(stories, progress)
	profileUC := usecase.NewProfileUseCase(users, sessions, cache)
	chatUC := usecase.NewChatUseCase(chatGenerator, stories, progress, users, sessions, cache)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Sessions: sessions,

		IngestUC:   ingestUC,
		ReaderUC:   ingestUC,
		ProcessUC:  processUC,
		StoryUC:    storyUC,
		ProgressUC: progressUC,
		ProfileUC:  profileUC,
		ChatUC:     chatUC,

		closeFn: func() {
			queue.Close()
			_ = cache.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
