package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio. Los límites de escala no van
// acá: los define el banco de ítems, que es parte del instrumento.
type Config struct {
	DatabaseURL          string        `env:"DATABASE_URL,required"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	RedisPassword        string        `env:"REDIS_PASSWORD"`
	RedisDB              int           `env:"REDIS_DB" envDefault:"0"`
	ItemBankPath         string        `env:"ITEM_BANK_PATH" envDefault:"config/item_bank.yaml"`
	ScoringWorkers       int           `env:"SCORING_WORKERS" envDefault:"8"`
	DiscrepancyThreshold float64       `env:"DISCREPANCY_THRESHOLD" envDefault:"30"`
	MinOrgProfiles       int           `env:"MIN_ORG_PROFILES" envDefault:"3"`
	MinFacetCoverage     float64       `env:"MIN_FACET_COVERAGE" envDefault:"0.5"`
	OrgCacheTTL          time.Duration `env:"ORG_CACHE_TTL" envDefault:"30m"`
	WorkerPollInterval   time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
