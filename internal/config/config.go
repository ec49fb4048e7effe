package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`

	DatabaseURL   string        `mapstructure:"DATABASE_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	CatalogURL          string `mapstructure:"CATALOG_URL"`
	DefaultTerm         string `mapstructure:"DEFAULT_TERM"`
	AlmostFullThreshold int    `mapstructure:"ALMOST_FULL_THRESHOLD"`
	EnrichConcurrency   int    `mapstructure:"ENRICH_CONCURRENCY"`

	RatingsURL       string        `mapstructure:"RATINGS_URL"`
	RatingsSchoolID  string        `mapstructure:"RATINGS_SCHOOL_ID"`
	RatingsAuth      string        `mapstructure:"RATINGS_AUTH"`
	RatingsTablePath string        `mapstructure:"RATINGS_TABLE_PATH"`
	RatingsCacheSize int           `mapstructure:"RATINGS_CACHE_SIZE"`
	RatingsCacheTTL  time.Duration `mapstructure:"RATINGS_CACHE_TTL"`

	AIURL              string        `mapstructure:"AI_URL"`
	AssistantBaseURL   string        `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel     string        `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey    string        `mapstructure:"ASSISTANT_API_KEY"`
	AssistantMaxTokens int           `mapstructure:"ASSISTANT_MAX_TOKENS"`
	GeminiAPIKey       string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel        string        `mapstructure:"GEMINI_MODEL"`
	AICacheTTL         time.Duration `mapstructure:"AI_CACHE_TTL"`
}

// Every key gets a default so AutomaticEnv can see it during Unmarshal.
var defaults = map[string]any{
	"ENV":                   "dev",
	"PORT":                  "8080",
	"LOG_LEVEL":             "info",
	"CORS_ALLOWED_ORIGINS":  "*",
	"REQUEST_TIMEOUT":       "30s",
	"ADMIN_KEY":             "",
	"DATABASE_URL":          "",
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"SESSION_TTL":           "24h",
	"CATALOG_URL":           "https://anteaterapi.com/v2/rest",
	"DEFAULT_TERM":          "Winter 2026",
	"ALMOST_FULL_THRESHOLD": 80,
	"ENRICH_CONCURRENCY":    8,
	"RATINGS_URL":           "",
	"RATINGS_SCHOOL_ID":     "",
	"RATINGS_AUTH":          "",
	"RATINGS_TABLE_PATH":    "",
	"RATINGS_CACHE_SIZE":    512,
	"RATINGS_CACHE_TTL":     "6h",
	"AI_URL":                "",
	"ASSISTANT_BASE_URL":    "",
	"ASSISTANT_MODEL":       "",
	"ASSISTANT_API_KEY":     "",
	"ASSISTANT_MAX_TOKENS":  512,
	"GEMINI_API_KEY":        "",
	"GEMINI_MODEL":          "gemini-2.5-flash",
	"AI_CACHE_TTL":          "1h",
}

func Load() (Config, error) {
	return LoadFile(".env")
}

func LoadFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
