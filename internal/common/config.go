package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	OCR     OCRConfig
	Quality QualityConfig
	LLM     LLMConfig
	Trust   TrustConfig
	Log     LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	MaxFileSize     int64
	ShutdownTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	DPI           float64
	Languages     []string
	MinDimension  int
	EnhanceFactor float64
	TessdataDir   string
	Pdftotext     string
}

// QualityConfig holds the thresholds deciding whether direct text is good enough.
type QualityConfig struct {
	MinChars    int
	MinKeywords int
	MinNumbers  int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	BaseURL         string
	Model           string
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
}

// TrustConfig holds the thresholds for accepting LLM output.
type TrustConfig struct {
	MaxTrueAllergens int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
			GRPCAddr:        getEnv("GRPC_ADDR", ":9090"),
			MaxFileSize:     getEnvAsInt64("MAX_FILE_SIZE", 10*1024*1024),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			DPI:           getEnvAsFloat64("OCR_DPI", 300),
			Languages:     getEnvAsList("OCR_LANGUAGES", []string{"hun+eng", "hun", "eng"}),
			MinDimension:  getEnvAsInt("OCR_MIN_DIMENSION", 2000),
			EnhanceFactor: getEnvAsFloat64("OCR_ENHANCE_FACTOR", 2.0),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
		},
		Quality: QualityConfig{
			MinChars:    getEnvAsInt("OCR_QUALITY_MIN_CHARS", 50),
			MinKeywords: getEnvAsInt("OCR_QUALITY_MIN_KEYWORDS", 2),
			MinNumbers:  getEnvAsInt("OCR_QUALITY_MIN_NUMBERS", 3),
		},
		LLM: LLMConfig{
			BaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Temperature:     getEnvAsFloat32("GEMINI_TEMPERATURE", 0.1),
			MaxOutputTokens: getEnvAsInt("GEMINI_MAX_OUTPUT_TOKENS", 1000),
			Timeout:         getEnvAsDuration("GEMINI_TIMEOUT", 30*time.Second),
		},
		Trust: TrustConfig{
			MaxTrueAllergens: getEnvAsInt("TRUST_MAX_TRUE_ALLERGENS", 5),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" && c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR or GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxFileSize <= 0 {
		return NewAppError(CodeConfig, "MAX_FILE_SIZE must be positive", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError(CodeConfig, "OCR_DPI must be positive", ErrInvalidInput)
	}
	if c.OCR.EnhanceFactor <= 0 {
		return NewAppError(CodeConfig, "OCR_ENHANCE_FACTOR must be positive", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError(CodeConfig, "GEMINI_MODEL is required", ErrInvalidInput)
	}
	if c.LLM.Timeout <= 0 {
		return NewAppError(CodeConfig, "GEMINI_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Trust.MaxTrueAllergens < 0 {
		return NewAppError(CodeConfig, fmt.Sprintf("TRUST_MAX_TRUE_ALLERGENS=%d is negative", c.Trust.MaxTrueAllergens), ErrInvalidInput)
	}
	return nil
}
