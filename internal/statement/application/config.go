package application

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config defines report generation settings.
type Config struct {
	// UploadDir receives raw spreadsheet uploads.
	UploadDir string `yaml:"upload_dir"`
	// OutputDir receives generated PDF artifacts.
	OutputDir string `yaml:"output_dir"`
	// LookbackDays bounds the movement history query.
	LookbackDays int `yaml:"lookback_days"`
	// ZipName is the file name of the streamed archive.
	ZipName string `yaml:"zip_name"`
}

// LoadConfig loads report settings from env, optionally overridden by a yaml
// file pointed at by CTACTE_CONFIG.
func LoadConfig() (Config, error) {
	cfg := Config{
		UploadDir:    getenvDefault("UPLOAD_DIR", filepath.FromSlash("var/uploads")),
		OutputDir:    getenvDefault("PDF_DIR", filepath.FromSlash("var/pdfs")),
		LookbackDays: getenvIntDefault("LOOKBACK_DAYS", 45),
		ZipName:      getenvDefault("ZIP_NAME", "reportes.zip"),
	}

	if path := os.Getenv("CTACTE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 45
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
