package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type Config struct {
	APIPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string
	SQLitePath string

	RedisAddr          string // empty disables caching and rate limiting
	RedisPassword      string
	RedisDB            int
	ProblemCacheTTL    time.Duration
	ProblemCacheSize   int // in-process cache entries when redis is off
	RateLimitPerMinute int

	LLMProvider        string
	LLMTimeout         time.Duration
	GeminiAPIKey       string
	GeminiModel        string
	AnthropicAPIKey    string
	AnthropicModel     string
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	OpenRouterAPIKey   string
	OpenRouterModel    string
	HintCreditsInitial int
	HintCreditsCap     int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		DBDriver:           getEnv("DB_DRIVER", DriverPostgres),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "user"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBName:             getEnv("DB_NAME", "mathquest"),
		DBSslMode:          getEnv("DB_SSLMODE", "disable"),
		SQLitePath:         getEnv("SQLITE_PATH", "mathquest.db"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		ProblemCacheTTL:    time.Duration(getEnvAsInt("PROBLEM_CACHE_TTL_HOURS", 24)) * time.Hour,
		ProblemCacheSize:   getEnvAsInt("PROBLEM_CACHE_SIZE", 1024),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
		LLMProvider:        getEnv("LLM_PROVIDER", "gemini"),
		LLMTimeout:         time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     getEnv("ANTHROPIC_MODEL", "claude-haiku"),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:    getEnv("OPENROUTER_MODEL", "google/gemini-2.0-flash-exp"),
		HintCreditsInitial: getEnvAsInt("HINT_CREDITS_INITIAL", 3),
		HintCreditsCap:     getEnvAsInt("HINT_CREDITS_CAP", 5),
	}

	AppConfig.DBConnStr = getEnv("DATABASE_URL", "")
	if AppConfig.DBConnStr == "" {
		AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
			" port=" + AppConfig.DBPort +
			" user=" + AppConfig.DBUser +
			" password=" + AppConfig.DBPassword +
			" dbname=" + AppConfig.DBName +
			" sslmode=" + AppConfig.DBSslMode
	}
	if AppConfig.DBDriver == DriverSQLite {
		AppConfig.DBConnStr = AppConfig.SQLitePath
	}

	if AppConfig.HintCreditsCap <= 0 {
		log.Printf("WARN: HINT_CREDITS_CAP=%d is not positive, using 5", AppConfig.HintCreditsCap)
		AppConfig.HintCreditsCap = 5
	}
	if AppConfig.HintCreditsInitial < 0 || AppConfig.HintCreditsInitial > AppConfig.HintCreditsCap {
		log.Printf("WARN: HINT_CREDITS_INITIAL=%d outside [0,%d], clamping", AppConfig.HintCreditsInitial, AppConfig.HintCreditsCap)
		AppConfig.HintCreditsInitial = min(max(AppConfig.HintCreditsInitial, 0), AppConfig.HintCreditsCap)
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
