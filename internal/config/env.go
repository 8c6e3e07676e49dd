package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// WorkerEnv holds environment overrides for the standalone outbox
// worker, so its deployment can be tuned without touching the shared
// config file. Variables are prefixed HMS_, e.g. HMS_OUTBOX_BATCH_SIZE.
type WorkerEnv struct {
	OutboxBatchSize       int `envconfig:"OUTBOX_BATCH_SIZE"`
	OutboxIntervalSeconds int `envconfig:"OUTBOX_INTERVAL_SECONDS"`
	OutboxMaxRetries      int `envconfig:"OUTBOX_MAX_RETRIES"`
	HealthPort            int `envconfig:"HEALTH_PORT" default:"8081"`
}

func LoadWorkerEnv() (*WorkerEnv, error) {
	var env WorkerEnv
	if err := envconfig.Process("hms", &env); err != nil {
		return nil, fmt.Errorf("failed to process worker environment: %w", err)
	}
	return &env, nil
}

// Apply overlays the non-zero overrides onto the file-based config.
func (e *WorkerEnv) Apply(cfg *Config) {
	if e.OutboxBatchSize > 0 {
		cfg.Outbox.BatchSize = e.OutboxBatchSize
	}
	if e.OutboxIntervalSeconds > 0 {
		cfg.Outbox.IntervalSeconds = e.OutboxIntervalSeconds
	}
	if e.OutboxMaxRetries > 0 {
		cfg.Outbox.MaxRetries = e.OutboxMaxRetries
	}
}
