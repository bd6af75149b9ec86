package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"databaseURL"`
	JWKSURL     string `yaml:"jwksURL"`
	CORSOrigins string `yaml:"corsOrigins"`
	TablePrefix string `yaml:"tablePrefix"`

	// LLM provider configuration
	LLMProvider   string `yaml:"llmProvider"` // "gemini" or "openai"
	GeminiAPIKey  string `yaml:"geminiAPIKey"`
	GeminiModel   string `yaml:"geminiModel"`
	OpenAIBaseURL string `yaml:"openaiBaseURL"`
	OpenAIAPIKey  string `yaml:"openaiAPIKey"`
	OpenAIModel   string `yaml:"openaiModel"`

	// External knowledge sources
	SheetCSVURL   string `yaml:"sheetCSVURL"`
	WikipediaLang string `yaml:"wikipediaLang"`

	// Object storage (uploaded files)
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
}

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// overlaid by environment variables. Environment variables always win so a
// deployment can keep secrets out of the file.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	env := getEnv("ENVIRONMENT", defaultStr(cfg.Environment, "dev"))

	cfg.Port = getEnv("PORT", defaultStr(cfg.Port, "8080"))
	cfg.Environment = env
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWKSURL = getEnv("AUTH_JWKS_URL", cfg.JWKSURL)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", defaultStr(cfg.CORSOrigins, "http://localhost:3000"))
	cfg.TablePrefix = getTablePrefix(env, cfg.TablePrefix)

	cfg.LLMProvider = getEnv("LLM_PROVIDER", defaultStr(cfg.LLMProvider, "gemini"))
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.GeminiModel = getEnv("GEMINI_MODEL", defaultStr(cfg.GeminiModel, "gemini-2.5-flash-lite"))
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", cfg.OpenAIModel)

	cfg.SheetCSVURL = getEnv("GOOGLE_SHEET_CSV_URL", cfg.SheetCSVURL)
	cfg.WikipediaLang = getEnv("WIKIPEDIA_LANG", defaultStr(cfg.WikipediaLang, "vi"))

	cfg.MinioEndpoint = getEnv("MINIO_ENDPOINT", cfg.MinioEndpoint)
	cfg.MinioAccessKey = getEnv("MINIO_ACCESS_KEY", cfg.MinioAccessKey)
	cfg.MinioSecretKey = getEnv("MINIO_SECRET_KEY", cfg.MinioSecretKey)
	cfg.MinioBucket = getEnv("MINIO_BUCKET", defaultStr(cfg.MinioBucket, "minote-files"))
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("parse MINIO_USE_SSL: %w", err)
		}
		cfg.MinioUseSSL = useSSL
	}

	return cfg, nil
}

// getTablePrefix returns the table prefix for the environment, honoring an
// explicit override.
func getTablePrefix(env, fileValue string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}
	if fileValue != "" {
		return fileValue
	}
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultStr(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
