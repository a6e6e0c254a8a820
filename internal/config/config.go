package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	OutputDir    string
	ResultPrefix string

	Workers int

	HighlightColor   string
	HighlightColumns int
	MaxColumnWidth   float64

	ListenAddr  string
	MaxUploadMB int

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		ResultPrefix: getEnv("PARTMAP_RESULT_PREFIX", "替换结果"),

		Workers: getEnvInt("PARTMAP_WORKERS", 1),

		HighlightColor:   strings.TrimPrefix(getEnv("PARTMAP_HIGHLIGHT_COLOR", "FFCCCC"), "#"),
		HighlightColumns: getEnvInt("PARTMAP_HIGHLIGHT_COLUMNS", 3),
		MaxColumnWidth:   getEnvFloat("PARTMAP_MAX_COLUMN_WIDTH", 70),

		ListenAddr:  getEnv("PARTMAP_LISTEN_ADDR", ":8080"),
		MaxUploadMB: getEnvInt("PARTMAP_MAX_UPLOAD_MB", 32),

		LogLevel:  getEnv("PARTMAP_LOG_LEVEL", "info"),
		LogFormat: getEnv("PARTMAP_LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("PARTMAP_WORKERS must be >= 1, got %d", c.Workers)
	}
	if c.HighlightColumns < 0 {
		return fmt.Errorf("PARTMAP_HIGHLIGHT_COLUMNS must be >= 0, got %d", c.HighlightColumns)
	}
	if len(c.HighlightColor) != 6 {
		return fmt.Errorf("PARTMAP_HIGHLIGHT_COLOR must be an RRGGBB hex value, got %q", c.HighlightColor)
	}
	if _, err := strconv.ParseUint(c.HighlightColor, 16, 32); err != nil {
		return fmt.Errorf("PARTMAP_HIGHLIGHT_COLOR must be an RRGGBB hex value, got %q", c.HighlightColor)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("PARTMAP_MAX_UPLOAD_MB must be >= 1, got %d", c.MaxUploadMB)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
