package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/config"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/db"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/itembank"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/repository"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/scoring"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()
	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	bank, err := itembank.Load(cfg.ItemBankPath)
	if err != nil {
		logger.Fatal("item bank load", zap.Error(err))
	}

	detector, err := scoring.NewPatternDetector(scoring.DefaultPatternRules())
	if err != nil {
		logger.Fatal("pattern detector init", zap.Error(err))
	}

	assessmentRepo := repository.NewPgAssessmentRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)

	scoringSvc, err := service.NewScoringService(
		assessmentRepo,
		profileRepo,
		bank,
		detector,
		cfg.DiscrepancyThreshold,
		cfg.ScoringWorkers,
		logger,
	)
	if err != nil {
		logger.Fatal("scoring service init", zap.Error(err))
	}

	logger.Info("scoring worker started",
		zap.Int("workers", cfg.ScoringWorkers),
		zap.Int("bank_items", bank.Size()),
		zap.Duration("poll_interval", cfg.WorkerPollInterval),
	)

	runOnce := func() {
		outcomes, err := scoringSvc.ScorePending(ctx)
		if err != nil {
			logger.Error("score pending", zap.Error(err))
			return
		}
		if len(outcomes) == 0 {
			logger.Info("no pending assessments")
		}
	}

	runOnce()
	if cfg.WorkerPollInterval <= 0 {
		return
	}

	ticker := time.NewTicker(cfg.WorkerPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("scoring worker stopped")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
