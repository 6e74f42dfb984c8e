package config

import (
	"os"
	"strconv"
)

// Config holds the runtime settings, all sourced from environment
// variables with sensible defaults.
type Config struct {
	Port         string
	WorkerCount  int
	JobQueueSize int
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Port:         envString("PORT", "8001"),
		WorkerCount:  envInt("WORKER_COUNT", 5),
		JobQueueSize: envInt("JOB_QUEUE_SIZE", 100),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
