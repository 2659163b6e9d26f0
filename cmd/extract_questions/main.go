package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/createdbyadham/Questionary/internal/adapter"
	"github.com/createdbyadham/Questionary/internal/adapter/llm"
	"github.com/createdbyadham/Questionary/internal/cache"
	"github.com/createdbyadham/Questionary/internal/config"
	"github.com/createdbyadham/Questionary/internal/database"
	"github.com/createdbyadham/Questionary/internal/domain"
	"github.com/createdbyadham/Questionary/internal/logger"
	"github.com/createdbyadham/Questionary/internal/progress"
	"github.com/createdbyadham/Questionary/internal/repository"
	"github.com/createdbyadham/Questionary/internal/service"

	"go.uber.org/zap"
)

func main() {
	filePath := flag.String("file", "", "PDF, text, or questions-JSON file to extract from")
	setName := flag.String("set-name", "Unnamed Set", "name of the question set to create")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		// Logger might not be initialized yet, so use fmt for this critical error
		fmt.Printf("Failed to load configuration: %v\n", err)
		return
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return
	}
	defer logger.Sync()
	l := logger.Get()

	if *filePath == "" {
		l.Fatal("Missing required -file flag")
	}

	pipeline, store := buildPipeline(cfg, l)

	sessionID := pipeline.RunAsync(service.RunRequest{
		Mode:      domain.ModeExtract,
		FilePaths: []string{*filePath},
		SetName:   *setName,
	})
	l.Info("Extraction started", zap.String("session_id", sessionID))

	waitForCompletion(store, sessionID, l)
}

// buildPipeline wires the progress store, LLM model, and the optional
// persistence collaborator from config.
func buildPipeline(cfg *config.Config, l *zap.Logger) (*service.Pipeline, domain.ProgressStore) {
	var store domain.ProgressStore
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			l.Fatal("Failed to initialize Redis client", zap.Error(err))
		}
		store = adapter.NewRedisProgressStore(redisClient, cfg.Progress)
		l.Info("Using Redis progress store")
	} else {
		memStore := progress.NewMemoryStore(cfg.Progress)
		memStore.StartSweeper(context.Background(), cfg.Progress.SweepInterval)
		store = memStore
	}

	model, err := llm.NewOpenAIModel(cfg.LLM)
	if err != nil {
		l.Fatal("Failed to initialize LLM client", zap.Error(err))
	}

	var repo domain.QuestionRepository
	if dsn := cfg.DB.DSN(); dsn != "" {
		db, err := database.NewSQLXPostgresDB(dsn)
		if err != nil {
			l.Fatal("Failed to connect to database", zap.Error(err))
		}
		repo = repository.NewQuestionSetDatabaseAdapter(db)
		l.Info("Database persistence enabled")
	} else {
		l.Warn("No database configured; questions will not be persisted")
	}

	return service.NewPipeline(model, cfg, store, repo, l), store
}

// waitForCompletion polls the progress store until the run reaches a
// terminal state, logging each status change.
func waitForCompletion(store domain.ProgressStore, sessionID string, l *zap.Logger) {
	ctx := context.Background()
	lastMessage := ""
	for {
		rec, err := store.Get(ctx, sessionID)
		if err != nil {
			l.Fatal("Progress session lost", zap.String("session_id", sessionID), zap.Error(err))
		}
		if rec.Message != lastMessage {
			l.Info("Progress",
				zap.String("status", string(rec.Status)),
				zap.Float64("percent", rec.Percent),
				zap.String("message", rec.Message))
			lastMessage = rec.Message
		}
		if rec.Completed {
			if rec.Status == domain.StatusError {
				l.Fatal("Run failed", zap.String("error", rec.Error))
			}
			l.Info("Run complete", zap.String("message", rec.Message))
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
}
