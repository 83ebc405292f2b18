package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	RedisAddr     string
	RedisPassword string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	ScraperHeadless   bool
	ScraperProxyURL   string
	ScraperMaxResults int
	SelectorsFile     string
	MirrorImages      bool

	LLMProvider     string
	GeminiAPIKey    string
	DefaultLLMModel string

	TaskMaxRetries int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Load() Config {
	cfg := Config{
		AppEnv:        getenv("APP_ENV", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8082"),
		MetricsAddr:   getenv("METRICS_ADDR", ":9090"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		// Same variable names the dashboard deployment already uses.
		SupabaseURL:        getenv("SUPABASE_URL", os.Getenv("NEXT_PUBLIC_SUPABASE_URL")),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:     getenv("SUPABASE_STORAGE_BUCKET", "product-images"),

		ScraperHeadless:   getenvBool("SCRAPER_HEADLESS", true),
		ScraperProxyURL:   os.Getenv("SCRAPER_PROXY_URL"),
		ScraperMaxResults: getenvInt("SCRAPER_MAX_RESULTS", 5),
		SelectorsFile:     os.Getenv("SELECTORS_FILE"),
		MirrorImages:      getenvBool("MIRROR_IMAGES", false),

		LLMProvider:     getenv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		DefaultLLMModel: getenv("DEFAULT_LLM_MODEL", "gemini-1.5-flash"),

		TaskMaxRetries: getenvInt("TASK_MAX_RETRIES", 3),
	}
	if cfg.RedisAddr == "" {
		panic(fmt.Errorf("REDIS_ADDR is required"))
	}
	return cfg
}
