package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Locator  LocatorConfig  `yaml:"locator"`
	Upload   UploadConfig   `yaml:"upload"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Device   DeviceConfig   `yaml:"device"`
	Symptoms SymptomsConfig `yaml:"symptoms"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains Gemini settings.
type LLMConfig struct {
	APIKey         string  `yaml:"apiKey"`
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embeddingModel"`
	Temperature    float32 `yaml:"temperature"`
}

// SearchConfig controls the medicine search cache behavior.
type SearchConfig struct {
	CacheTTL            time.Duration  `yaml:"cacheTtl"`
	TopTrending         int            `yaml:"topTrending"`
	SimilarityThreshold float64        `yaml:"similarityThreshold"`
	Redis               RedisConfig    `yaml:"redis"`
	Postgres            PostgresConfig `yaml:"postgres"`
}

// RedisConfig contains connection information for cache storage.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// LocatorConfig controls the pharmacy locator and map reconciliation.
type LocatorConfig struct {
	MaxResults         int            `yaml:"maxResults"`
	GeolocationTimeout time.Duration  `yaml:"geolocationTimeout"`
	MapsAPIKey         string         `yaml:"mapsApiKey"`
	DefaultLatitude    float64        `yaml:"defaultLatitude"`
	DefaultLongitude   float64        `yaml:"defaultLongitude"`
	DefaultZoom        int            `yaml:"defaultZoom"`
	LocatedZoom        int            `yaml:"locatedZoom"`
	SelectionZoom      int            `yaml:"selectionZoom"`
	HighlightDuration  time.Duration  `yaml:"highlightDuration"`
	Postgres           PostgresConfig `yaml:"postgres"`
}

// UploadConfig bounds incoming image uploads.
type UploadConfig struct {
	MaxBytes int64 `yaml:"maxBytes"`
}

// ArchiveConfig configures the S3-compatible image archive.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// DeviceConfig controls anonymous device token issuance.
type DeviceConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"tokenTtl"`
}

// SymptomsConfig controls the symptom checker heuristics.
type SymptomsConfig struct {
	MaxConditions     int    `yaml:"maxConditions"`
	DefaultDisclaimer string `yaml:"defaultDisclaimer"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GEMINI_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("SEARCH_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Search.CacheTTL = parsed
		}
	}
	if v := os.Getenv("SEARCH_TOP_TRENDING"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Search.TopTrending = parsed
		}
	}
	if v := os.Getenv("SEARCH_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("SEARCH_REDIS_ENABLED"); v != "" {
		cfg.Search.Redis.Enabled = isTrue(v)
	}
	if v := os.Getenv("SEARCH_REDIS_ADDR"); v != "" {
		cfg.Search.Redis.Addr = v
	}
	if v := os.Getenv("SEARCH_POSTGRES_DSN"); v != "" {
		cfg.Search.Postgres.DSN = v
	}
	if v := os.Getenv("LOCATOR_POSTGRES_DSN"); v != "" {
		cfg.Locator.Postgres.DSN = v
	}
	if v := os.Getenv("LOCATOR_MAX_RESULTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Locator.MaxResults = parsed
		}
	}
	if v := os.Getenv("LOCATOR_GEO_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Locator.GeolocationTimeout = parsed
		}
	}
	if v := os.Getenv("MAPS_API_KEY"); v != "" {
		cfg.Locator.MapsAPIKey = v
	}
	if v := os.Getenv("UPLOAD_MAX_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Upload.MaxBytes = parsed
		}
	}
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = isTrue(v)
	}
	if v := os.Getenv("ARCHIVE_ENDPOINT"); v != "" {
		cfg.Archive.Endpoint = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
	if v := os.Getenv("ARCHIVE_BUCKET"); v != "" {
		cfg.Archive.Bucket = v
	}
	if v := os.Getenv("ARCHIVE_REGION"); v != "" {
		cfg.Archive.Region = v
	}
	if v := os.Getenv("DEVICE_TOKEN_SECRET"); v != "" {
		cfg.Device.Secret = v
	}
	if v := os.Getenv("DEVICE_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Device.TokenTTL = parsed
		}
	}
	if v := os.Getenv("SYMPTOMS_MAX_CONDITIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Symptoms.MaxConditions = parsed
		}
	}
	if v := os.Getenv("SYMPTOMS_DEFAULT_DISCLAIMER"); v != "" {
		cfg.Symptoms.DefaultDisclaimer = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTrue(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = isTrue(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// DefaultDisclaimer is appended to symptom analyses when the backend omits one.
const DefaultDisclaimer = "This is an AI-generated analysis and not a substitute for professional medical advice. Please consult a qualified doctor for a diagnosis."

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/prescriptions/analyze",
					"/api/v1/pills/identify",
				},
			},
		},
		LLM: LLMConfig{
			Model:          "gemini-2.5-flash",
			EmbeddingModel: "gemini-embedding-001",
			Temperature:    0.2,
		},
		Search: SearchConfig{
			CacheTTL:            6 * time.Hour,
			TopTrending:         10,
			SimilarityThreshold: 0.7,
		},
		Locator: LocatorConfig{
			MaxResults:         15,
			GeolocationTimeout: 10 * time.Second,
			// Central India, used when neither the user nor any pharmacy
			// carries coordinates.
			DefaultLatitude:   20.5937,
			DefaultLongitude:  78.9629,
			DefaultZoom:       5,
			LocatedZoom:       14,
			SelectionZoom:     15,
			HighlightDuration: 1500 * time.Millisecond,
		},
		Upload: UploadConfig{
			MaxBytes: 8 << 20,
		},
		Device: DeviceConfig{
			TokenTTL: 90 * 24 * time.Hour,
		},
		Symptoms: SymptomsConfig{
			MaxConditions:     3,
			DefaultDisclaimer: DefaultDisclaimer,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.Search.CacheTTL < 0 {
		return errors.New("search.cacheTtl cannot be negative")
	}
	if c.Search.TopTrending < 0 {
		return errors.New("search.topTrending cannot be negative")
	}
	if c.Search.SimilarityThreshold < 0 {
		return errors.New("search.similarityThreshold must be non-negative")
	}
	if c.Search.Redis.Enabled && strings.TrimSpace(c.Search.Redis.Addr) == "" {
		return errors.New("search.redis.addr cannot be empty when redis cache is enabled")
	}
	if c.Locator.MaxResults <= 0 {
		return errors.New("locator.maxResults must be positive")
	}
	if c.Locator.GeolocationTimeout <= 0 {
		return errors.New("locator.geolocationTimeout must be positive")
	}
	if c.Locator.HighlightDuration <= 0 {
		return errors.New("locator.highlightDuration must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.maxBytes must be positive")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" {
			return errors.New("archive.endpoint cannot be empty when archive is enabled")
		}
		if strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.bucket cannot be empty when archive is enabled")
		}
	}
	if c.Device.TokenTTL <= 0 {
		return errors.New("device.tokenTtl must be positive")
	}
	if c.Symptoms.MaxConditions <= 0 {
		return errors.New("symptoms.maxConditions must be positive")
	}
	if c.Symptoms.DefaultDisclaimer == "" {
		return errors.New("symptoms.defaultDisclaimer cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
