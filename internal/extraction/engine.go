// Package extraction implements the page-level pipeline behind the PDF
// tools: page range selection, native-text extraction with OCR fallback,
// and embedded image collection.
package extraction

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mcptools/mcp-pdf-reader/internal/document"
	"github.com/mcptools/mcp-pdf-reader/internal/ocr"
	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// Document is the slice of document behaviour the engine needs: reading a
// page's text layer, rendering a page for OCR, and listing embedded images.
// *document.Document satisfies it.
type Document interface {
	PageText(pageNum int) (string, error)
	RenderPagePNG(pageNum, dpi int) ([]byte, error)
	PageImages(pageNum int) ([]document.RawImage, error)
}

// Options tunes a single extraction call. Zero values fall back to the
// engine's configured defaults.
type Options struct {
	// ForceOCR skips the legibility check and runs OCR on every page.
	ForceOCR bool
	// Language is the Tesseract language code (e.g. "eng", "eng+fra").
	Language string
	// DPI is the render resolution for pages sent to OCR.
	DPI int
}

// Engine drives per-page extraction. Pages are processed sequentially in
// the requested order; failures are isolated to the failing page's result
// slot and never abort sibling pages.
type Engine struct {
	ocr          ocr.Engine
	logger       *logrus.Logger
	minTextChars int
	ocrLanguage  string
	ocrDPI       int
	ocrTimeout   time.Duration
}

// NewEngine creates an extraction engine.
func NewEngine(ocrEngine ocr.Engine, logger *logrus.Logger, minTextChars int, ocrLanguage string, ocrDPI int, ocrTimeout time.Duration) *Engine {
	return &Engine{
		ocr:          ocrEngine,
		logger:       logger,
		minTextChars: minTextChars,
		ocrLanguage:  ocrLanguage,
		ocrDPI:       ocrDPI,
		ocrTimeout:   ocrTimeout,
	}
}

// ExtractText processes the selected pages of an open document. For each
// page it extracts the native text layer first and falls back to
// render-then-OCR when the legibility score is below the configured
// threshold (or unconditionally with Options.ForceOCR).
func (e *Engine) ExtractText(ctx context.Context, doc Document, pages []int, opts Options) []PageResult {
	results := make([]PageResult, 0, len(pages))
	for _, pageNum := range pages {
		results = append(results, e.extractPage(ctx, doc, pageNum, opts))
	}
	return results
}

func (e *Engine) extractPage(ctx context.Context, doc Document, pageNum int, opts Options) PageResult {
	if !opts.ForceOCR {
		text, err := doc.PageText(pageNum)
		if err != nil {
			e.logger.WithError(err).WithField("page", pageNum).Warn("Native text extraction failed")
			return pageFailure(pageNum, SourceNative, err)
		}
		if legibilityScore(text) >= e.minTextChars {
			return PageResult{PageNumber: pageNum, Text: text, Source: SourceNative}
		}
		e.logger.WithFields(logrus.Fields{
			"page":  pageNum,
			"score": legibilityScore(text),
		}).Debug("Native text below legibility threshold, falling back to OCR")
	}

	text, err := e.ocrPage(ctx, doc, pageNum, opts)
	if err != nil {
		e.logger.WithError(err).WithField("page", pageNum).Warn("OCR failed for page")
		return pageFailure(pageNum, SourceOCR, err)
	}
	// An empty OCR result is a legitimate outcome (genuinely blank page).
	return PageResult{PageNumber: pageNum, Text: text, Source: SourceOCR}
}

func (e *Engine) ocrPage(ctx context.Context, doc Document, pageNum int, opts Options) (string, error) {
	rendered, err := doc.RenderPagePNG(pageNum, e.dpi(opts))
	if err != nil {
		return "", err
	}

	ocrCtx, cancel := context.WithTimeout(ctx, e.ocrTimeout)
	defer cancel()

	return e.ocr.Recognize(ocrCtx, rendered, e.language(opts), e.dpi(opts))
}

// ExtractImages collects the embedded images of the selected pages, keyed by
// page number. Pages with no embedded images map to an empty slice rather
// than being omitted; a page whose extraction fails is reported in the
// returned error map and does not abort its siblings.
func (e *Engine) ExtractImages(doc Document, pages []int) (map[int][]ImageArtifact, map[int]PageError) {
	artifacts := make(map[int][]ImageArtifact, len(pages))
	failures := make(map[int]PageError)

	for _, pageNum := range pages {
		raw, err := doc.PageImages(pageNum)
		if err != nil {
			e.logger.WithError(err).WithField("page", pageNum).Warn("Image extraction failed for page")
			failures[pageNum] = PageError{Kind: string(pdferr.KindOf(err)), Message: pdferr.MessageOf(err)}
			artifacts[pageNum] = []ImageArtifact{}
			continue
		}

		page := make([]ImageArtifact, 0, len(raw))
		for i, img := range raw {
			page = append(page, ImageArtifact{
				ID:          artifactID(pageNum, i+1),
				PageNumber:  pageNum,
				IndexOnPage: i + 1,
				MimeType:    img.MimeType,
				Width:       img.Width,
				Height:      img.Height,
				SizeBytes:   len(img.Data),
				Data:        base64.StdEncoding.EncodeToString(img.Data),
			})
		}
		artifacts[pageNum] = page
	}
	return artifacts, failures
}

func (e *Engine) language(opts Options) string {
	if opts.Language != "" {
		return opts.Language
	}
	return e.ocrLanguage
}

func (e *Engine) dpi(opts Options) int {
	if opts.DPI > 0 {
		return opts.DPI
	}
	return e.ocrDPI
}

func pageFailure(pageNum int, source Source, err error) PageResult {
	return PageResult{
		PageNumber: pageNum,
		Source:     source,
		Error: &PageError{
			Kind:    string(pdferr.KindOf(err)),
			Message: pdferr.MessageOf(err),
		},
	}
}

// legibilityScore is the heuristic deciding whether native extraction
// succeeded well enough to skip OCR: the number of runes left after
// trimming whitespace from the text layer.
func legibilityScore(text string) int {
	count := 0
	for _, r := range text {
		if r != ' ' && r != '\n' && r != '\r' && r != '\t' {
			count++
		}
	}
	return count
}
