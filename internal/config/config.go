package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	Sync          SyncConfig    `yaml:"sync"`
	Assistant     AssistantConfig `yaml:"assistant"`
	Weather       WeatherConfig `yaml:"weather"`
}

// SyncConfig controls the remote mirror. The gateway timeout bounds every
// sync call; there is no retry, a failed sync stays local until the next
// mutation triggers another one.
type SyncConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Workers int           `yaml:"workers"`
}

type AssistantConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	OllamaURL               string        `yaml:"ollama_url"`
	Model                   string        `yaml:"model"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

type WeatherConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
	// MaxForecastDays is the provider's forecast horizon.
	MaxForecastDays int `yaml:"max_forecast_days"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("HIKELOG_ADDR", ":8080"),
		JWTSecret:     getEnv("HIKELOG_JWT_SECRET", insecureJWTSecret),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("HIKELOG_DATABASE_PATH", "hikelog.db"),
		TokenDuration: 1 * time.Hour,
		Sync: SyncConfig{
			BaseURL: getEnv("HIKELOG_SYNC_URL", "http://localhost:9090"),
			Timeout: 30 * time.Second,
			Workers: 4,
		},
		Assistant: AssistantConfig{
			BaseURL:                 getEnv("HIKELOG_ASSISTANT_URL", ""),
			OllamaURL:               getEnv("HIKELOG_OLLAMA_URL", "http://localhost:11434"),
			Model:                   getEnv("HIKELOG_OLLAMA_MODEL", "llama3"),
			Timeout:                 30 * time.Second,
			Retries:                 3,
			Backoff:                 500 * time.Millisecond,
			CircuitFailureThreshold: 5,
			CircuitReset:            30 * time.Second,
		},
		Weather: WeatherConfig{
			BaseURL:         getEnv("HIKELOG_WEATHER_URL", "https://api.stormglass.io/v2"),
			APIKey:          getEnv("HIKELOG_WEATHER_API_KEY", ""),
			Timeout:         15 * time.Second,
			MaxForecastDays: 16,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that must never reach production. The
// default JWT secret is allowed only when HIKELOG_ENV is "development".
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.Sync.BaseURL == "" {
		return fmt.Errorf("sync.base_url is required")
	}
	if c.Sync.Workers <= 0 {
		return fmt.Errorf("sync.workers must be positive")
	}
	if c.JWTSecret == insecureJWTSecret && os.Getenv("HIKELOG_ENV") != "development" {
		return fmt.Errorf("jwt_secret is the insecure default; set HIKELOG_JWT_SECRET")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
