// Package ocr wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"context"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// Engine is the image-to-text capability consumed by the extraction engine.
type Engine interface {
	// Recognize performs OCR on encoded image data (PNG, JPEG, TIFF).
	Recognize(ctx context.Context, imageData []byte, language string, dpi int) (string, error)
}

// Tesseract implements Engine with a fresh gosseract client per call, so a
// single misbehaving page cannot poison later recognitions.
type Tesseract struct {
	clientFactory func() *gosseract.Client
}

// New creates a Tesseract-backed OCR engine.
func New() *Tesseract {
	return &Tesseract{clientFactory: gosseract.NewClient}
}

// Recognize performs OCR on image data under the deadline carried by ctx.
// Tesseract itself is not interruptible, so on timeout the recognition
// goroutine is left to drain while the caller moves on; the per-page timeout
// is surfaced as an OCRTimeout error. An empty result is a legitimate
// outcome, not a failure.
func (t *Tesseract) Recognize(ctx context.Context, imageData []byte, language string, dpi int) (string, error) {
	type ocrResult struct {
		text string
		err  error
	}
	resultCh := make(chan ocrResult, 1)

	go func() {
		client := t.clientFactory()
		defer client.Close()
		text, err := t.recognizeWithClient(client, imageData, language, dpi)
		resultCh <- ocrResult{text: text, err: err}
	}()

	select {
	case res := <-resultCh:
		return res.text, res.err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return "", pdferr.Wrap(pdferr.KindOCRTimeout, ctx.Err(), "OCR timed out")
		}
		return "", pdferr.Wrap(pdferr.KindOCRFailure, ctx.Err(), "OCR cancelled")
	}
}

func (t *Tesseract) recognizeWithClient(client *gosseract.Client, imageData []byte, language string, dpi int) (string, error) {
	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", pdferr.Wrap(pdferr.KindOCRFailure, err, "failed to set OCR image")
	}
	if language != "" {
		if err := client.SetLanguage(splitLanguages(language)...); err != nil {
			return "", pdferr.Wrap(pdferr.KindOCRFailure, err, "unsupported OCR language: %s", language)
		}
	}
	if dpi > 0 {
		if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(dpi)); err != nil {
			return "", pdferr.Wrap(pdferr.KindOCRFailure, err, "failed to set OCR dpi")
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", pdferr.Wrap(pdferr.KindOCRFailure, err, "OCR recognition failed")
	}
	return strings.TrimSpace(text), nil
}

// splitLanguages turns a "+" separated Tesseract language string
// (e.g. "eng+fra") into the slice gosseract expects.
func splitLanguages(language string) []string {
	parts := strings.Split(language, "+")
	langs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			langs = append(langs, part)
		}
	}
	return langs
}
