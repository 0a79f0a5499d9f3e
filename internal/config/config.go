package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OutputDir string

	MasterCodeColumn    string
	MasterCostColumn    string
	MasterNewCostColumn string

	PreviewRows    int
	HeaderScanRows int

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
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		MasterCodeColumn:    getEnv("MASTER_CODE_COLUMN", "CODIGO SKU"),
		MasterCostColumn:    getEnv("MASTER_COST_COLUMN", "COSTO PROMEDIO ACTUAL"),
		MasterNewCostColumn: getEnv("MASTER_NEW_COST_COLUMN", "NUEVO COSTO PROMEDIO"),

		PreviewRows:    getEnvInt("PREVIEW_ROWS", 20),
		HeaderScanRows: getEnvInt("HEADER_SCAN_ROWS", 20),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "auto"),
	}

	return cfg, nil
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
