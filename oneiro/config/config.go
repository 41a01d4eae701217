package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	JWTSecret  string

	// LLM provider: "openai", "groq" or "ollama"
	LLMProvider   string
	LLMModel      string
	OpenAIAPIKey  string
	GroqAPIKey    string
	OllamaBaseURL string
	MaxTokens     int
	Temperature   float64

	// Speech transcription
	WhisperModel     string
	MaxAudioBytes    int64
	DefaultLanguage  string

	// Object storage for dictation audio
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string

	// Symbol dictionary file; the compiled-in default is used when empty
	// or missing
	SymbolDictPath string

	// External call bounds
	AnalysisTimeout     time.Duration
	ConversationTimeout time.Duration

	// Simulated progress cadence
	ProgressInterval   time.Duration
	ProgressCeiling    int
	ProgressClearDelay time.Duration
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Config{
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", ""),
		DBName:     getEnv("DB_NAME", ""),
		JWTSecret:  getEnv("JWT_SECRET", ""),

		LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		GroqAPIKey:    getEnv("GROQ_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434/api"),
		MaxTokens:     getEnvInt("LLM_MAX_TOKENS", 1000),
		Temperature:   getEnvFloat("LLM_TEMPERATURE", 0.7),

		WhisperModel:    getEnv("WHISPER_MODEL", "whisper-1"),
		MaxAudioBytes:   int64(getEnvInt("MAX_AUDIO_BYTES", 10485760)), // 10MB
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "oneiro-audio"),

		SymbolDictPath: getEnv("SYMBOL_DICT_PATH", "oneiro/nlp/symbols.yaml"),

		AnalysisTimeout:     time.Duration(getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 60)) * time.Second,
		ConversationTimeout: time.Duration(getEnvInt("CONVERSATION_TIMEOUT_SECONDS", 30)) * time.Second,

		ProgressInterval:   time.Duration(getEnvInt("PROGRESS_INTERVAL_MS", 150)) * time.Millisecond,
		ProgressCeiling:    getEnvInt("PROGRESS_CEILING", 95),
		ProgressClearDelay: time.Duration(getEnvInt("PROGRESS_CLEAR_DELAY_MS", 600)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}
