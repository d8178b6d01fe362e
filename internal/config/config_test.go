package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points HOME at an empty directory (so no real config file is
// picked up) and clears every environment variable Load reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		PDFDirEnvVar, MinTextCharsEnvVar, OCRLanguageEnvVar,
		OCRDPIEnvVar, OCRTimeoutEnvVar, MaxFileSizeEnvVar,
	} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	home := os.Getenv("HOME")
	dir := filepath.Join(home, ".mcp-pdf-reader")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.BaseDir)
	assert.Equal(t, DefaultMinTextChars, cfg.MinTextChars)
	assert.Equal(t, DefaultOCRLanguage, cfg.OCRLanguage)
	assert.Equal(t, DefaultOCRDPI, cfg.OCRDPI)
	assert.Equal(t, DefaultOCRTimeout, cfg.OCRTimeout)
	assert.Equal(t, DefaultMaxFileSize, cfg.MaxFileSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateEnv(t)
	pdfDir := t.TempDir()
	t.Setenv(PDFDirEnvVar, pdfDir)
	t.Setenv(MinTextCharsEnvVar, "32")
	t.Setenv(OCRLanguageEnvVar, "deu")
	t.Setenv(OCRDPIEnvVar, "600")
	t.Setenv(OCRTimeoutEnvVar, "45")
	t.Setenv(MaxFileSizeEnvVar, "1048576")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, pdfDir, cfg.BaseDir)
	assert.Equal(t, 32, cfg.MinTextChars)
	assert.Equal(t, "deu", cfg.OCRLanguage)
	assert.Equal(t, 600, cfg.OCRDPI)
	assert.Equal(t, 45*time.Second, cfg.OCRTimeout)
	assert.Equal(t, int64(1048576), cfg.MaxFileSize)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateEnv(t)
	pdfDir := t.TempDir()
	writeConfigFile(t, `
pdf_dir: `+pdfDir+`
min_text_chars: 24
ocr:
  language: jpn
  dpi: 450
  timeout_seconds: 90
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, pdfDir, cfg.BaseDir)
	assert.Equal(t, 24, cfg.MinTextChars)
	assert.Equal(t, "jpn", cfg.OCRLanguage)
	assert.Equal(t, 450, cfg.OCRDPI)
	assert.Equal(t, 90*time.Second, cfg.OCRTimeout)
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	isolateEnv(t)
	writeConfigFile(t, `
ocr:
  language: jpn
`)
	t.Setenv(OCRLanguageEnvVar, "fra")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fra", cfg.OCRLanguage)
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	isolateEnv(t)
	writeConfigFile(t, "pdf_dir: [not, a, string")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")
}

func TestLoad_MissingBaseDir(t *testing.T) {
	isolateEnv(t)
	t.Setenv(PDFDirEnvVar, filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), PDFDirEnvVar)
}

func TestLoad_BaseDirIsFile(t *testing.T) {
	isolateEnv(t)
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	t.Setenv(PDFDirEnvVar, file)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoad_BaseDirMadeAbsolute(t *testing.T) {
	isolateEnv(t)
	pdfDir := t.TempDir()
	t.Chdir(pdfDir)
	t.Setenv(PDFDirEnvVar, ".")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.BaseDir))
}

func TestLoad_ZeroMinTextCharsForcesOCR(t *testing.T) {
	// An explicit 0 means no text layer is ever legible enough: every page
	// takes the OCR path.
	isolateEnv(t)
	t.Setenv(MinTextCharsEnvVar, "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MinTextChars)
}

func TestLoad_ZeroMinTextCharsFromFile(t *testing.T) {
	isolateEnv(t)
	writeConfigFile(t, "min_text_chars: 0\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MinTextChars)
}

func TestLoad_NegativeMinTextChars(t *testing.T) {
	isolateEnv(t)
	t.Setenv(MinTextCharsEnvVar, "-5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_text_chars")
}

func TestLoad_IgnoresMalformedNumericEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv(OCRDPIEnvVar, "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultOCRDPI, cfg.OCRDPI)
}
