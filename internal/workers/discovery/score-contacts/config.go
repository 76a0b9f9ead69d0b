// internal/workers/discovery/score-contacts/config.go
package scorecontacts

import (
	"time"

	"contact-discovery/internal/common/config"
)

type Config struct {
	Timeout time.Duration

	// Confidence thresholds for the recommended action.
	AcceptThreshold float64
	ReviewThreshold float64
}

func LoadConfig(workerCfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:         time.Duration(workerCfg.Timeout) * time.Millisecond,
		AcceptThreshold: 0.8,
		ReviewThreshold: 0.5,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}
