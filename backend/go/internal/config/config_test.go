package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	content := `
app:
  name: "campus_status_service"
  environment: "test"

auth:
  jwtSecret: "test-secret"

llm:
  provider: "openai"
  timeout: "60s"
  temperature: 0.3
  openai:
    apiKey: "sk-test"
    model: "gpt-4o-mini"

scheduler:
  aggregationInterval: "10m"
  reportWindow: "10m"
  summaryValidity: "10m"
  trainingWeekday: "SUN"
  trainingHour: 4

mlServer:
  url: "http://127.0.0.1:8000"
  apiKey: "test-key"
  timeout: "30s"

databases:
  mysql:
    address: "localhost:3306"
    username: "campuseat"
  kafka:
    enabled: true
    brokers:
      - "localhost:9092"
    groupID: "campus-summary-workers"

middleware:
  rateLimiter:
    enabled: true
    algorithm: "tokenBucket"
    tokenBucket:
      rate: 5
      capacity: 10
  circuitBreaker:
    enabled: true
    failureThreshold: 3
    timeout: "30s"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.App.Name != "campus_status_service" {
		t.Errorf("Expected app name campus_status_service, got %s", cfg.App.Name)
	}
	if cfg.Auth.JwtSecret != "test-secret" {
		t.Errorf("Unexpected jwt secret: %s", cfg.Auth.JwtSecret)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.LLM.Temperature != 0.3 {
		t.Errorf("Expected temperature 0.3, got %f", cfg.LLM.Temperature)
	}
	if cfg.Scheduler.TrainingWeekday != "SUN" || cfg.Scheduler.TrainingHour != 4 {
		t.Errorf("Unexpected scheduler config: %+v", cfg.Scheduler)
	}
	if cfg.MLServer.URL != "http://127.0.0.1:8000" || cfg.MLServer.APIKey != "test-key" {
		t.Errorf("Unexpected mlServer config: %+v", cfg.MLServer)
	}
	if !cfg.Databases.Kafka.Enabled || len(cfg.Databases.Kafka.Brokers) != 1 {
		t.Errorf("Unexpected kafka config: %+v", cfg.Databases.Kafka)
	}
	if !cfg.Middleware.RateLimiter.Enabled || cfg.Middleware.RateLimiter.TokenBucket.Capacity != 10 {
		t.Errorf("Unexpected rate limiter config: %+v", cfg.Middleware.RateLimiter)
	}
	if cfg.Middleware.CircuitBreaker.FailureThreshold != 3 {
		t.Errorf("Unexpected circuit breaker config: %+v", cfg.Middleware.CircuitBreaker)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing config file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("app: [unclosed"), 0o644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestParseDurationOr(t *testing.T) {
	cases := []struct {
		name     string
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{"valid", "10m", time.Minute, 10 * time.Minute},
		{"empty falls back", "", 5 * time.Minute, 5 * time.Minute},
		{"garbage falls back", "ten minutes", 5 * time.Minute, 5 * time.Minute},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseDurationOr(tc.value, tc.fallback); got != tc.want {
				t.Errorf("ParseDurationOr(%q, %v) = %v, want %v", tc.value, tc.fallback, got, tc.want)
			}
		})
	}
}
