package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	ServiceKey      string        `mapstructure:"SERVICE_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`

	// Pipeline tunables. The defaults are the documented behavior; they are
	// configuration so tests and deployments can shrink them.
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	ChunkSize       int           `mapstructure:"CHUNK_SIZE"`
	ScrapeTimeout   time.Duration `mapstructure:"SCRAPE_TIMEOUT"`
	ScrapeUserAgent string        `mapstructure:"SCRAPE_USER_AGENT"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("CACHE_TTL", "30m")
	v.SetDefault("CHUNK_SIZE", 1000)
	v.SetDefault("SCRAPE_TIMEOUT", "30s")
	v.SetDefault("SCRAPE_USER_AGENT", "SkyIQBot/1.0 (+https://skyiq.app; business profile enrichment)")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
