// Package document provides scoped access to a single PDF: page count,
// per-page native text, page rasterisation for OCR, and embedded images.
// A Document is opened at the start of a tool call and must be closed on
// every exit path; it is not safe for concurrent page access.
package document

import (
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// Document is an open PDF handle.
type Document struct {
	path string
	doc  *fitz.Document
	conf *model.Configuration
}

// Open opens the PDF at path. Callers own the returned handle and must call
// Close. A file the parser cannot open (encrypted, malformed, truncated)
// yields a CorruptDocument error.
func Open(path string) (*Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, pdferr.Wrap(pdferr.KindCorruptDocument, err, "failed to open PDF document")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Document{path: path, doc: doc, conf: conf}, nil
}

// Close releases the underlying parser resources.
func (d *Document) Close() error {
	return d.doc.Close()
}

// Path returns the filesystem path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// PageText extracts the native text layer of a page (1-indexed). A page
// without an extractable text layer returns an empty string, not an error;
// that absence is the legibility signal the extraction engine acts on.
func (d *Document) PageText(pageNum int) (string, error) {
	text, err := d.doc.Text(pageNum - 1)
	if err != nil {
		return "", pdferr.Wrap(pdferr.KindInternal, err, "failed to extract text from page %d", pageNum)
	}
	return strings.TrimSpace(text), nil
}

// RenderPagePNG rasterises a page (1-indexed) to PNG at the given DPI for
// the OCR path.
func (d *Document) RenderPagePNG(pageNum int, dpi int) ([]byte, error) {
	data, err := d.doc.ImagePNG(pageNum-1, float64(dpi))
	if err != nil {
		return nil, pdferr.Wrap(pdferr.KindInternal, err, "failed to render page %d", pageNum)
	}
	return data, nil
}
