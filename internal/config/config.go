package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	filePath := os.Getenv(envKey + "_FILE")
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	os.Setenv(envKey, strings.TrimSpace(string(data)))
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Groq      GroqConfig
	MusicGPT  MusicGPTConfig
	Polling   PollingConfig
	Store     StoreConfig
	Songs     SongsConfig
	R2        R2Config
	OIDC      OIDCConfig
	Gateway   GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	StaticDir string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	PromptPerMin int
	SongsPerHour int
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type MusicGPTConfig struct {
	APIKey         string
	BaseURL        string
	ConversionType string
	Timeout        int // seconds
}

// Polling modes
const (
	PollingModeLocal = "local"
	PollingModeQueue = "queue"
)

type PollingConfig struct {
	Interval   time.Duration
	Buffer     int
	DefaultETA int // seconds
	Mode       string
}

// Store backends
const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
	StoreBackendR2     = "r2"
	StoreBackendSQLite = "sqlite"
)

type StoreConfig struct {
	Backend    string
	SQLitePath string
	TTL        time.Duration
}

type SongsConfig struct {
	DefaultCover string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
}

type OIDCConfig struct {
	Issuer     string
	ClientID   string
	JWKSURL    string
	OwnerClaim string
}

type GatewayConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("GROQ_API_KEY")
	readSecret("MUSICGPT_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()

	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.static_dir", "STATIC_DIR")
	_ = v.BindEnv("server.api_domain", "API_DOMAIN")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = v.BindEnv("ratelimit.prompt_per_min", "RATELIMIT_PROMPT_PER_MIN")
	_ = v.BindEnv("ratelimit.songs_per_hour", "RATELIMIT_SONGS_PER_HOUR")
	_ = v.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = v.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = v.BindEnv("groq.model", "GROQ_MODEL")
	_ = v.BindEnv("musicgpt.api_key", "MUSICGPT_API_KEY")
	_ = v.BindEnv("musicgpt.base_url", "MUSICGPT_BASE_URL")
	_ = v.BindEnv("musicgpt.conversion_type", "MUSICGPT_CONVERSION_TYPE")
	_ = v.BindEnv("musicgpt.timeout", "MUSICGPT_TIMEOUT")
	_ = v.BindEnv("polling.interval", "POLLING_INTERVAL")
	_ = v.BindEnv("polling.buffer", "POLLING_BUFFER")
	_ = v.BindEnv("polling.default_eta", "POLLING_DEFAULT_ETA")
	_ = v.BindEnv("polling.mode", "POLLING_MODE")
	_ = v.BindEnv("store.backend", "STORE_BACKEND")
	_ = v.BindEnv("store.sqlite_path", "STORE_SQLITE_PATH")
	_ = v.BindEnv("store.ttl", "STORE_TTL")
	_ = v.BindEnv("songs.default_cover", "SONGS_DEFAULT_COVER")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("oidc.issuer", "OIDC_ISSUER")
	_ = v.BindEnv("oidc.client_id", "OIDC_CLIENT_ID")
	_ = v.BindEnv("oidc.jwks_url", "OIDC_JWKS_URL")
	_ = v.BindEnv("oidc.owner_claim", "OIDC_OWNER_CLAIM")
	_ = v.BindEnv("gateway.enabled", "GATEWAY_ENABLED")

	// Defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.static_dir", ".")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiration", 24)
	v.SetDefault("ratelimit.prompt_per_min", 20)
	v.SetDefault("ratelimit.songs_per_hour", 10)

	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")

	v.SetDefault("musicgpt.base_url", "https://api.musicgpt.com/api/public/v1")
	v.SetDefault("musicgpt.conversion_type", "MUSIC_AI")
	v.SetDefault("musicgpt.timeout", 30)

	v.SetDefault("polling.interval", "10s")
	v.SetDefault("polling.buffer", 10)
	v.SetDefault("polling.default_eta", 120)
	v.SetDefault("polling.mode", PollingModeLocal)

	v.SetDefault("store.backend", StoreBackendMemory)
	v.SetDefault("store.sqlite_path", "./data/huggnote.db")
	v.SetDefault("store.ttl", "0s")

	v.SetDefault("songs.default_cover", "assets/img/hero-bg.jpg")

	v.SetDefault("oidc.owner_claim", "sub")
	v.SetDefault("gateway.enabled", false)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("server.port"),
			Env:       v.GetString("server.env"),
			LogLevel:  v.GetString("server.log_level"),
			StaticDir: v.GetString("server.static_dir"),
			ApiDomain: v.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			PromptPerMin: v.GetInt("ratelimit.prompt_per_min"),
			SongsPerHour: v.GetInt("ratelimit.songs_per_hour"),
		},
		Groq: GroqConfig{
			APIKey:  v.GetString("groq.api_key"),
			BaseURL: v.GetString("groq.base_url"),
			Model:   v.GetString("groq.model"),
		},
		MusicGPT: MusicGPTConfig{
			APIKey:         v.GetString("musicgpt.api_key"),
			BaseURL:        v.GetString("musicgpt.base_url"),
			ConversionType: v.GetString("musicgpt.conversion_type"),
			Timeout:        v.GetInt("musicgpt.timeout"),
		},
		Polling: PollingConfig{
			Interval:   v.GetDuration("polling.interval"),
			Buffer:     v.GetInt("polling.buffer"),
			DefaultETA: v.GetInt("polling.default_eta"),
			Mode:       strings.ToLower(v.GetString("polling.mode")),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(v.GetString("store.backend")),
			SQLitePath: v.GetString("store.sqlite_path"),
			TTL:        v.GetDuration("store.ttl"),
		},
		Songs: SongsConfig{
			DefaultCover: v.GetString("songs.default_cover"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
		},
		OIDC: OIDCConfig{
			Issuer:     v.GetString("oidc.issuer"),
			ClientID:   v.GetString("oidc.client_id"),
			JWKSURL:    v.GetString("oidc.jwks_url"),
			OwnerClaim: strings.ToLower(v.GetString("oidc.owner_claim")),
		},
		Gateway: GatewayConfig{
			Enabled: v.GetBool("gateway.enabled"),
		},
	}

	return cfg, nil
}
