// Package config resolves the process-wide configuration for the PDF reader.
// Configuration is loaded once at startup and treated as immutable afterwards:
// values come from an optional YAML file (~/.mcp-pdf-reader/config.yaml) with
// environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultMaxFileSize caps PDFs accepted for processing (200MB).
	DefaultMaxFileSize = int64(200 * 1024 * 1024)

	// DefaultMinTextChars is the legibility threshold: pages whose native
	// text layer yields fewer trimmed characters fall back to OCR.
	DefaultMinTextChars = 16

	DefaultOCRLanguage = "eng"
	DefaultOCRDPI      = 300
	DefaultOCRTimeout  = 120 * time.Second

	PDFDirEnvVar       = "PDF_DIR"
	MinTextCharsEnvVar = "PDF_MIN_TEXT_CHARS"
	OCRLanguageEnvVar  = "PDF_OCR_LANGUAGE"
	OCRDPIEnvVar       = "PDF_OCR_DPI"
	OCRTimeoutEnvVar   = "PDF_OCR_TIMEOUT"
	MaxFileSizeEnvVar  = "PDF_MAX_FILE_SIZE"
)

// Config holds the resolved settings for a server process.
type Config struct {
	// BaseDir is the directory relative file paths resolve against.
	// Empty means relative paths are rejected.
	BaseDir string

	// MinTextChars is the legibility threshold for the OCR fallback.
	MinTextChars int

	// OCRLanguage is the default Tesseract language code.
	OCRLanguage string

	// OCRDPI is the render resolution for pages sent to OCR.
	OCRDPI int

	// OCRTimeout bounds OCR for a single page.
	OCRTimeout time.Duration

	// MaxFileSize is the largest PDF accepted, in bytes.
	MaxFileSize int64
}

// fileConfig mirrors the optional YAML configuration file.
type fileConfig struct {
	PDFDir string `yaml:"pdf_dir,omitempty"`
	// Pointer so an explicit 0 (run OCR on every page) is distinguishable
	// from the key being absent.
	MinTextChars *int  `yaml:"min_text_chars,omitempty"`
	MaxFileSize  int64 `yaml:"max_file_size,omitempty"`
	OCR          struct {
		Language       string `yaml:"language,omitempty"`
		DPI            int    `yaml:"dpi,omitempty"`
		TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	} `yaml:"ocr,omitempty"`
}

// Load resolves the configuration from the config file and environment.
func Load() (*Config, error) {
	cfg := &Config{
		MinTextChars: DefaultMinTextChars,
		OCRLanguage:  DefaultOCRLanguage,
		OCRDPI:       DefaultOCRDPI,
		OCRTimeout:   DefaultOCRTimeout,
		MaxFileSize:  DefaultMaxFileSize,
	}

	if path, ok := configFilePath(); ok {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.BaseDir != "" {
		abs, err := filepath.Abs(cfg.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", PDFDirEnvVar, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("%s does not exist: %s", PDFDirEnvVar, cfg.BaseDir)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory: %s", PDFDirEnvVar, cfg.BaseDir)
		}
		cfg.BaseDir = abs
	}

	if cfg.MinTextChars < 0 {
		return nil, fmt.Errorf("min_text_chars must not be negative: %d", cfg.MinTextChars)
	}
	if cfg.OCRDPI <= 0 {
		return nil, fmt.Errorf("ocr dpi must be positive: %d", cfg.OCRDPI)
	}
	if cfg.OCRTimeout <= 0 {
		return nil, fmt.Errorf("ocr timeout must be positive: %s", cfg.OCRTimeout)
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive: %d", cfg.MaxFileSize)
	}

	return cfg, nil
}

func configFilePath() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(homeDir, ".mcp-pdf-reader", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.PDFDir != "" {
		c.BaseDir = fc.PDFDir
	}
	if fc.MinTextChars != nil {
		c.MinTextChars = *fc.MinTextChars
	}
	if fc.MaxFileSize > 0 {
		c.MaxFileSize = fc.MaxFileSize
	}
	if fc.OCR.Language != "" {
		c.OCRLanguage = fc.OCR.Language
	}
	if fc.OCR.DPI > 0 {
		c.OCRDPI = fc.OCR.DPI
	}
	if fc.OCR.TimeoutSeconds > 0 {
		c.OCRTimeout = time.Duration(fc.OCR.TimeoutSeconds) * time.Second
	}
	return nil
}

func (c *Config) applyEnv() {
	if dir := os.Getenv(PDFDirEnvVar); dir != "" {
		c.BaseDir = dir
	}
	// 0 is meaningful here (every page goes to OCR), so unlike the other
	// numeric knobs the raw value is kept; negatives fail validation.
	if raw := os.Getenv(MinTextCharsEnvVar); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			c.MinTextChars = parsed
		}
	}
	if lang := os.Getenv(OCRLanguageEnvVar); lang != "" {
		c.OCRLanguage = lang
	}
	if v := getEnvInt(OCRDPIEnvVar); v > 0 {
		c.OCRDPI = v
	}
	if v := getEnvInt(OCRTimeoutEnvVar); v > 0 {
		c.OCRTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvInt64(MaxFileSizeEnvVar); v > 0 {
		c.MaxFileSize = v
	}
}

func getEnvInt(key string) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return 0
}

func getEnvInt64(key string) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
