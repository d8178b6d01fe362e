package extraction

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcptools/mcp-pdf-reader/internal/document"
	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// fakeDocument serves canned per-page content so the pipeline can be
// exercised without real PDFs or a Tesseract installation.
type fakeDocument struct {
	pageText   map[int]string
	textErrs   map[int]error
	renderErrs map[int]error
	images     map[int][]document.RawImage
	imageErrs  map[int]error
}

func (d *fakeDocument) PageText(pageNum int) (string, error) {
	if err, ok := d.textErrs[pageNum]; ok {
		return "", err
	}
	return d.pageText[pageNum], nil
}

func (d *fakeDocument) RenderPagePNG(pageNum, dpi int) ([]byte, error) {
	if err, ok := d.renderErrs[pageNum]; ok {
		return nil, err
	}
	return []byte(fmt.Sprintf("png-page-%d-dpi-%d", pageNum, dpi)), nil
}

func (d *fakeDocument) PageImages(pageNum int) ([]document.RawImage, error) {
	if err, ok := d.imageErrs[pageNum]; ok {
		return nil, err
	}
	return d.images[pageNum], nil
}

// fakeOCR records what it was asked to recognise and returns canned text.
type fakeOCR struct {
	text     string
	err      error
	calls    int
	language string
	dpi      int
}

func (o *fakeOCR) Recognize(ctx context.Context, imageData []byte, language string, dpi int) (string, error) {
	o.calls++
	o.language = language
	o.dpi = dpi
	if o.err != nil {
		return "", o.err
	}
	return o.text, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEngine(ocrEngine *fakeOCR) *Engine {
	return NewEngine(ocrEngine, testLogger(), 16, "eng", 300, time.Second)
}

func TestExtractText_NativePreferred(t *testing.T) {
	ocrEngine := &fakeOCR{text: "should not be used"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{
		1: "This page has a perfectly legible native text layer.",
	}}

	results := engine.ExtractText(context.Background(), doc, []int{1}, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].PageNumber)
	assert.Equal(t, SourceNative, results[0].Source)
	assert.Equal(t, "This page has a perfectly legible native text layer.", results[0].Text)
	assert.Nil(t, results[0].Error)
	assert.Equal(t, 0, ocrEngine.calls)
}

func TestExtractText_OCRFallbackOnEmptyPage(t *testing.T) {
	ocrEngine := &fakeOCR{text: "Recovered by OCR"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{1: ""}}

	results := engine.ExtractText(context.Background(), doc, []int{1}, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, SourceOCR, results[0].Source)
	assert.Equal(t, "Recovered by OCR", results[0].Text)
	assert.Equal(t, 1, ocrEngine.calls)
}

func TestExtractText_OCRFallbackBelowThreshold(t *testing.T) {
	// A handful of stray characters is not a usable text layer.
	ocrEngine := &fakeOCR{text: "Scanned page content"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{1: "  a b \n\t c  "}}

	results := engine.ExtractText(context.Background(), doc, []int{1}, Options{})

	require.Len(t, results, 1)
	assert.Equal(t, SourceOCR, results[0].Source)
	assert.Equal(t, "Scanned page content", results[0].Text)
}

func TestExtractText_ForceOCRSkipsNativeLayer(t *testing.T) {
	ocrEngine := &fakeOCR{text: "ocr text"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{
		1: "Plenty of legible native text that would normally win.",
	}}

	results := engine.ExtractText(context.Background(), doc, []int{1}, Options{ForceOCR: true})

	require.Len(t, results, 1)
	assert.Equal(t, SourceOCR, results[0].Source)
	assert.Equal(t, "ocr text", results[0].Text)
	assert.Equal(t, 1, ocrEngine.calls)
}

func TestExtractText_OptionsOverrideDefaults(t *testing.T) {
	ocrEngine := &fakeOCR{text: "texte"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{1: ""}}

	engine.ExtractText(context.Background(), doc, []int{1}, Options{
		ForceOCR: true,
		Language: "fra",
		DPI:      600,
	})

	assert.Equal(t, "fra", ocrEngine.language)
	assert.Equal(t, 600, ocrEngine.dpi)
}

func TestExtractText_DefaultsWhenOptionsEmpty(t *testing.T) {
	ocrEngine := &fakeOCR{text: "text"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{1: ""}}

	engine.ExtractText(context.Background(), doc, []int{1}, Options{})

	assert.Equal(t, "eng", ocrEngine.language)
	assert.Equal(t, 300, ocrEngine.dpi)
}

func TestExtractText_PageFailureIsolated(t *testing.T) {
	ocrEngine := &fakeOCR{text: "unused"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{
		pageText: map[int]string{
			1: "First page reads fine with plenty of text on it.",
			3: "Third page reads fine with plenty of text on it.",
		},
		textErrs: map[int]error{
			2: pdferr.New(pdferr.KindCorruptDocument, "failed to read page 2"),
		},
	}

	results := engine.ExtractText(context.Background(), doc, []int{1, 2, 3}, Options{})

	require.Len(t, results, 3)
	assert.Nil(t, results[0].Error)
	require.NotNil(t, results[1].Error)
	assert.Equal(t, string(pdferr.KindCorruptDocument), results[1].Error.Kind)
	assert.Equal(t, "failed to read page 2", results[1].Error.Message)
	assert.Nil(t, results[2].Error)
}

func TestExtractText_OCRFailureReported(t *testing.T) {
	ocrEngine := &fakeOCR{err: pdferr.New(pdferr.KindOCRTimeout, "ocr timed out after 1s")}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{1: ""}}

	results := engine.ExtractText(context.Background(), doc, []int{1}, Options{})

	require.Len(t, results, 1)
	require.NotNil(t, results[0].Error)
	assert.Equal(t, string(pdferr.KindOCRTimeout), results[0].Error.Kind)
	assert.Equal(t, SourceOCR, results[0].Source)
}

func TestExtractText_RenderFailureHidesHostDetails(t *testing.T) {
	ocrEngine := &fakeOCR{}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{
		pageText:   map[int]string{1: ""},
		renderErrs: map[int]error{1: errors.New("mupdf: cannot render /host/path.pdf")},
	}

	results := engine.ExtractText(context.Background(), doc, []int{1}, Options{})

	require.Len(t, results, 1)
	require.NotNil(t, results[0].Error)
	assert.Equal(t, string(pdferr.KindInternal), results[0].Error.Kind)
	assert.Equal(t, "internal error", results[0].Error.Message)
	assert.Equal(t, 0, ocrEngine.calls)
}

func TestExtractText_RepeatedCallsIdentical(t *testing.T) {
	// Nothing is cached or mutated across calls, so the same request against
	// the same document must yield the same page results.
	ocrEngine := &fakeOCR{text: "ocr text"}
	engine := newTestEngine(ocrEngine)
	doc := &fakeDocument{pageText: map[int]string{
		1: "First page with a perfectly usable native text layer.",
		2: "",
		3: "Third page with a perfectly usable native text layer.",
	}}

	first := engine.ExtractText(context.Background(), doc, []int{1, 2, 3}, Options{})
	second := engine.ExtractText(context.Background(), doc, []int{1, 2, 3}, Options{})

	assert.Equal(t, first, second)
}

func TestExtractImages(t *testing.T) {
	engine := newTestEngine(&fakeOCR{})
	doc := &fakeDocument{images: map[int][]document.RawImage{
		4: {
			{Data: []byte("image-bytes"), MimeType: "image/png", Width: 640, Height: 480},
		},
	}}

	artifacts, failures := engine.ExtractImages(doc, []int{1, 4})

	assert.Empty(t, failures)
	require.Len(t, artifacts, 2)

	// A selected page without images still appears, with an empty list.
	assert.Empty(t, artifacts[1])

	require.Len(t, artifacts[4], 1)
	img := artifacts[4][0]
	assert.Equal(t, "p4_img1", img.ID)
	assert.Equal(t, 4, img.PageNumber)
	assert.Equal(t, 1, img.IndexOnPage)
	assert.Equal(t, "image/png", img.MimeType)
	assert.Equal(t, 640, img.Width)
	assert.Equal(t, 480, img.Height)
	assert.Equal(t, len("image-bytes"), img.SizeBytes)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("image-bytes")), img.Data)
}

func TestExtractImages_StableIDsAcrossPages(t *testing.T) {
	engine := newTestEngine(&fakeOCR{})
	doc := &fakeDocument{images: map[int][]document.RawImage{
		2: {
			{Data: []byte("a"), MimeType: "image/png"},
			{Data: []byte("b"), MimeType: "image/jpeg"},
		},
		7: {
			{Data: []byte("c"), MimeType: "image/png"},
		},
	}}

	artifacts, failures := engine.ExtractImages(doc, []int{2, 7})

	assert.Empty(t, failures)
	assert.Equal(t, "p2_img1", artifacts[2][0].ID)
	assert.Equal(t, "p2_img2", artifacts[2][1].ID)
	assert.Equal(t, "p7_img1", artifacts[7][0].ID)
}

func TestExtractImages_PageFailureIsolated(t *testing.T) {
	engine := newTestEngine(&fakeOCR{})
	doc := &fakeDocument{
		images: map[int][]document.RawImage{
			1: {{Data: []byte("x"), MimeType: "image/png"}},
		},
		imageErrs: map[int]error{
			2: pdferr.New(pdferr.KindInternal, "image extraction failed for page 2"),
		},
	}

	artifacts, failures := engine.ExtractImages(doc, []int{1, 2})

	require.Len(t, artifacts[1], 1)
	assert.Empty(t, artifacts[2])
	require.Contains(t, failures, 2)
	assert.Equal(t, string(pdferr.KindInternal), failures[2].Kind)
}

func TestLegibilityScore(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"   \n\t\r  ", 0},
		{"abc", 3},
		{"a b c", 3},
		{"héllo", 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, legibilityScore(tt.text), "text %q", tt.text)
	}
}
