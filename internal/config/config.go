package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Backend    BackendConfig
	Generation GenerationConfig
	Events     EventsConfig
	Stub       StubConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	Debug       bool
}

type BackendConfig struct {
	BaseURL     string
	Token       string // static bearer token, wins over TokenSecret
	TokenSecret string // signs short-lived dev tokens when Token is empty
	UserID      string
	Timeout     time.Duration
}

type GenerationConfig struct {
	PromptTemplate           string
	ExcludeCategory          string
	TopK                     int
	SemanticRanker           bool
	SemanticCaptions         bool
	SuggestFollowupQuestions bool
}

type EventsConfig struct {
	NatsEnabled   bool
	NatsURL       string
	SubjectPrefix string
}

type StubConfig struct {
	Port               string
	JWTSecret          string
	StoreBackend       string // "memory" or "redis"
	RedisURL           string
	CorsAllowedOrigins string
	LogFilePath        string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "ragchat.log"),
			Debug:       getEnvAsBool("DEBUG", false),
		},
		Backend: BackendConfig{
			BaseURL:     strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:5000"), "/"),
			Token:       getEnv("BACKEND_TOKEN", ""),
			TokenSecret: getEnv("BACKEND_TOKEN_SECRET", ""),
			UserID:      getEnv("BACKEND_USER_ID", "local-user"),
			Timeout:     getEnvAsDuration("BACKEND_TIMEOUT", 60*time.Second),
		},
		Generation: GenerationConfig{
			PromptTemplate:           getEnv("PROMPT_TEMPLATE", ""),
			ExcludeCategory:          getEnv("EXCLUDE_CATEGORY", ""),
			TopK:                     getEnvAsInt("RETRIEVE_COUNT", 3),
			SemanticRanker:           getEnvAsBool("USE_SEMANTIC_RANKER", true),
			SemanticCaptions:         getEnvAsBool("USE_SEMANTIC_CAPTIONS", false),
			SuggestFollowupQuestions: getEnvAsBool("SUGGEST_FOLLOWUP_QUESTIONS", false),
		},
		Events: EventsConfig{
			NatsEnabled:   getEnvAsBool("NATS_ENABLED", false),
			NatsURL:       getEnv("NATS_URL", "nats://localhost:4222"),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "ragchat"),
		},
		Stub: StubConfig{
			Port:               getEnv("STUB_PORT", "5000"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			StoreBackend:       getEnv("STUB_STORE", "memory"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			LogFilePath:        getEnv("STUB_LOG_FILE_PATH", "stub.log"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
