package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Gemini      GeminiConfig      `mapstructure:"gemini"`
	Media       MediaConfig       `mapstructure:"media"`
	Breaker     BreakerConfig     `mapstructure:"breaker"`
	HTTPClient  HTTPClientConfig  `mapstructure:"http_client"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Panel       PanelConfig       `mapstructure:"panel"`
	Task        TaskConfig        `mapstructure:"task"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Idempotency IdempotencyConfig `mapstructure:"idempotency"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	EnableSwagger   bool          `mapstructure:"enable_swagger"`
}

// GeminiConfig holds Gemini API configuration.
type GeminiConfig struct {
	// APIKey is the fallback credential used when a request carries none.
	APIKey           string `mapstructure:"api_key"`
	BaseURL          string `mapstructure:"base_url"`
	ImageModel       string `mapstructure:"image_model"`
	VideoModel       string `mapstructure:"video_model"`
	MaxDownloadBytes int64  `mapstructure:"max_download_bytes"`
}

// MediaConfig holds generation defaults.
type MediaConfig struct {
	ImageAspectRatio   string        `mapstructure:"image_aspect_ratio"`
	VideoResolution    string        `mapstructure:"video_resolution"`
	VideoAspectRatio   string        `mapstructure:"video_aspect_ratio"`
	DefaultVideoPrompt string        `mapstructure:"default_video_prompt"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	PollMaxAttempts    int           `mapstructure:"poll_max_attempts"`
	PollTimeout        time.Duration `mapstructure:"poll_timeout"`
	BatchInterval      time.Duration `mapstructure:"batch_interval"`
	BatchBurst         int           `mapstructure:"batch_burst"`
}

// BreakerConfig holds circuit breaker configuration for vendor calls.
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	HalfOpenRequests uint32        `mapstructure:"half_open_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// HTTPClientConfig holds HTTP client configuration for connection pooling.
type HTTPClientConfig struct {
	// Connection pool settings
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`

	// Timeout settings
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`

	// Keep-alive settings
	KeepAlive time.Duration `mapstructure:"keep_alive"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig holds blob storage configuration.
type StorageConfig struct {
	Backend         string        `mapstructure:"backend"` // memory or s3
	BlobTTL         time.Duration `mapstructure:"blob_ttl"`
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Bucket          string        `mapstructure:"bucket"`
	Prefix          string        `mapstructure:"prefix"`
}

// PanelConfig holds panel state configuration.
type PanelConfig struct {
	Backend  string        `mapstructure:"backend"` // memory or redis
	TTL      time.Duration `mapstructure:"ttl"`
	ClaimTTL time.Duration `mapstructure:"claim_ttl"`
}

// TaskConfig holds background task configuration.
type TaskConfig struct {
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Retention     time.Duration `mapstructure:"retention"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// Enabled enables/disables rate limiting.
	Enabled bool `mapstructure:"enabled"`
	// Limit is the number of generation requests per client IP per window.
	Limit int `mapstructure:"limit"`
	// Window is the rate limit window.
	Window time.Duration `mapstructure:"window"`
}

// IdempotencyConfig holds Idempotency-Key replay configuration for panel submissions.
type IdempotencyConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/nanostudio")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	// Read from environment variables, e.g. NANOSTUDIO_SERVER_ADDRESS
	v.SetEnvPrefix("NANOSTUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Well-known names for sensitive values
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = key
	}
	if password := os.Getenv("NANOSTUDIO_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if key := os.Getenv("NANOSTUDIO_STORAGE_SECRET_KEY"); key != "" {
		cfg.Storage.SecretAccessKey = key
	}
	if s := os.Getenv("NANOSTUDIO_CORS_ORIGINS"); s != "" {
		cfg.CORS.AllowOrigins = parseCommaSeparatedList(s)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend selections that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Panel.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown panel backend %q", c.Panel.Backend)
	}
	// Synchronous image routes hold the response open for a full remote call.
	if c.Server.WriteTimeout > 0 && c.HTTPClient.ResponseTimeout > 0 && c.Server.WriteTimeout <= c.HTTPClient.ResponseTimeout {
		return fmt.Errorf("server.write_timeout (%s) must exceed http_client.response_timeout (%s)",
			c.Server.WriteTimeout, c.HTTPClient.ResponseTimeout)
	}
	return nil
}

func parseCommaSeparatedList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 150*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_upload_bytes", 20<<20)
	v.SetDefault("server.enable_swagger", true)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.image_model", "gemini-2.5-flash-image")
	v.SetDefault("gemini.video_model", "veo-3.1-fast-generate-preview")
	v.SetDefault("gemini.max_download_bytes", 512<<20)

	// Media defaults
	v.SetDefault("media.image_aspect_ratio", "1:1")
	v.SetDefault("media.video_resolution", "720p")
	v.SetDefault("media.video_aspect_ratio", "16:9")
	v.SetDefault("media.default_video_prompt", "")
	v.SetDefault("media.poll_interval", 10*time.Second)
	v.SetDefault("media.poll_max_attempts", 0)
	v.SetDefault("media.poll_timeout", 20*time.Minute)
	v.SetDefault("media.batch_interval", 0)
	v.SetDefault("media.batch_burst", 2)

	// Breaker defaults
	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.half_open_requests", 1)
	v.SetDefault("breaker.interval", 60*time.Second)
	v.SetDefault("breaker.timeout", 30*time.Second)

	// HTTP client defaults
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 20)
	v.SetDefault("http_client.max_conns_per_host", 50)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.dial_timeout", 30*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 120*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Storage defaults
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.blob_ttl", 24*time.Hour)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.prefix", "videos/")

	// Panel defaults
	v.SetDefault("panel.backend", "memory")
	v.SetDefault("panel.ttl", 24*time.Hour)
	v.SetDefault("panel.claim_ttl", time.Hour)

	// Task defaults
	v.SetDefault("task.max_concurrent", 10)
	v.SetDefault("task.timeout", 30*time.Minute)
	v.SetDefault("task.retention", 24*time.Hour)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.limit", 30)
	v.SetDefault("rate_limit.window", time.Minute)

	// Idempotency defaults
	v.SetDefault("idempotency.enabled", true)
	v.SetDefault("idempotency.ttl", time.Hour)

	// CORS defaults
	v.SetDefault("cors.allow_origins", []string{"*"})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
