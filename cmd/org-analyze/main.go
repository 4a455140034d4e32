package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/config"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/db"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/orgstats"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/repository"
	"github.com/Intentional-Operating-Culture-LLC/ioc-workspace-sub014/internal/service"
)

// Recalcula perfiles organizacionales. Recibe org IDs como argumentos; sin
// argumentos recalcula todas las organizaciones con perfiles.
func main() {
	ctx := context.Background()

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

	mapper, err := orgstats.NewCultureMapper(orgstats.DefaultCultureTypes(), orgstats.DefaultEmergentProperties())
	if err != nil {
		logger.Fatal("culture mapper init", zap.Error(err))
	}

	profileRepo := repository.NewPgProfileRepository(pool)
	orgRepo := repository.NewPgOrgProfileRepository(pool)

	var cache service.OrgProfileCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			cache = service.NewRedisOrgProfileCache(redisClient)
		}
		cancel()
	}

	orgSvc := service.NewOrgAnalysisService(
		profileRepo,
		orgRepo,
		cache,
		mapper,
		cfg.MinOrgProfiles,
		cfg.MinFacetCoverage,
		cfg.OrgCacheTTL,
		logger,
	)

	orgIDs := os.Args[1:]
	if len(orgIDs) == 0 {
		orgIDs, err = orgSvc.OrgIDs(ctx)
		if err != nil {
			logger.Fatal("list organizations", zap.Error(err))
		}
	}
	if len(orgIDs) == 0 {
		logger.Info("no organizations to analyze")
		return
	}

	// Cada organización es independiente; el análisis corre en paralelo acotado.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, orgID := range orgIDs {
		orgID := orgID
		g.Go(func() error {
			if _, err := orgSvc.AnalyzeOrganization(gctx, orgID); err != nil {
				logger.Error("organization analysis failed", zap.String("org_id", orgID), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}
