// Package resolver turns user-supplied file references into validated
// absolute paths. Relative references resolve against the configured base
// directory and must not escape it.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// Resolver validates PDF file references against the configured base
// directory and size limit.
type Resolver struct {
	baseDir     string
	maxFileSize int64
}

// New creates a Resolver. baseDir may be empty, in which case only absolute
// paths are accepted.
func New(baseDir string, maxFileSize int64) *Resolver {
	return &Resolver{baseDir: baseDir, maxFileSize: maxFileSize}
}

// Resolve validates pathRef and returns the absolute path to an existing,
// readable, regular .pdf file. Relative references require a configured base
// directory and are rejected if canonicalisation escapes it.
func (r *Resolver) Resolve(pathRef string) (string, error) {
	if strings.TrimSpace(pathRef) == "" {
		return "", pdferr.New(pdferr.KindInvalidInput, "file_path must not be empty")
	}
	if !strings.EqualFold(filepath.Ext(pathRef), ".pdf") {
		return "", pdferr.New(pdferr.KindInvalidInput, "file_path must be a PDF file (.pdf extension): %s", r.Redact(pathRef))
	}

	path := pathRef
	if !filepath.IsAbs(path) {
		if r.baseDir == "" {
			return "", pdferr.New(pdferr.KindConfig,
				"relative path given but no base directory configured (set PDF_DIR or use an absolute path)")
		}
		path = filepath.Join(r.baseDir, path)
		escaped, err := r.escapesBase(path)
		if err != nil {
			return "", err
		}
		if escaped {
			return "", pdferr.New(pdferr.KindInvalidInput, "path escapes the configured base directory: %s", pathRef)
		}
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", pdferr.New(pdferr.KindNotFound, "file not found: %s", r.Redact(path))
	}
	if err != nil {
		return "", pdferr.Wrap(pdferr.KindInternal, err, "failed to stat file: %s", r.Redact(path))
	}
	if !info.Mode().IsRegular() {
		return "", pdferr.New(pdferr.KindInvalidInput, "not a regular file: %s", r.Redact(path))
	}
	if r.maxFileSize > 0 && info.Size() > r.maxFileSize {
		return "", pdferr.New(pdferr.KindInvalidInput,
			"file size %.1fMB exceeds the maximum allowed %.1fMB (adjust PDF_MAX_FILE_SIZE)",
			float64(info.Size())/(1024*1024), float64(r.maxFileSize)/(1024*1024))
	}

	return path, nil
}

// escapesBase reports whether path, once cleaned and symlink-resolved, lands
// outside the base directory.
func (r *Resolver) escapesBase(path string) (bool, error) {
	baseReal := r.baseDir
	if resolved, err := filepath.EvalSymlinks(r.baseDir); err == nil {
		baseReal = resolved
	}

	// The file itself may not exist yet at validation time, so resolve the
	// nearest existing ancestor the way the stat will see it.
	candidate := filepath.Clean(path)
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if parent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(parent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(baseReal, candidate)
	if err != nil {
		return false, pdferr.Wrap(pdferr.KindInternal, err, "failed to canonicalise path")
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// Redact strips host filesystem layout from a path before it is placed in a
// client-visible message: paths under the base directory become base-relative,
// anything else is reduced to its file name.
func (r *Resolver) Redact(path string) string {
	if r.baseDir != "" {
		if rel, err := filepath.Rel(r.baseDir, path); err == nil &&
			rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel) {
			return rel
		}
	}
	if filepath.IsAbs(path) {
		return filepath.Base(path)
	}
	return path
}
