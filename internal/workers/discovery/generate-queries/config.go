// internal/workers/discovery/generate-queries/config.go
package generatequeries

import (
	"time"

	"contact-discovery/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	MaxRetries int
}

func LoadConfig(workerCfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:    time.Duration(workerCfg.Timeout) * time.Millisecond,
		MaxRetries: workerCfg.MaxRetries,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return cfg
}
