package pdfreader

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/mcptools/mcp-pdf-reader/internal/document"
	"github.com/mcptools/mcp-pdf-reader/internal/extraction"
	"github.com/mcptools/mcp-pdf-reader/internal/tools"
)

// ReadTextTool extracts text from PDF pages, preferring the native text
// layer and falling back to OCR for pages below the legibility threshold.
type ReadTextTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ReadTextTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"read_pdf_text",
		mcp.WithDescription(`Extract text from a PDF file. Pages with a usable text layer are read directly; pages without one (e.g. scans) automatically fall back to OCR.`),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the PDF file. Relative paths resolve against the PDF_DIR base directory"),
		),
		mcp.WithNumber("start_page",
			mcp.Description("First page to read (1-based, default: 1)"),
		),
		mcp.WithNumber("end_page",
			mcp.Description("Last page to read, inclusive (default: last page of the document)"),
		),
	)
}

// Execute processes the PDF file
func (t *ReadTextTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	logger.Debug("Executing read_pdf_text tool")
	return executeTextExtraction(ctx, logger, args, false)
}

// executeTextExtraction is the shared pipeline behind read_pdf_text and
// read_pdf_ocr. The document handle is scoped to this call and closed on
// every exit path.
func executeTextExtraction(ctx context.Context, logger *logrus.Logger, args map[string]interface{}, forceOCR bool) (*mcp.CallToolResult, error) {
	req, err := parseRequest(args)
	if err != nil {
		return newToolResultError(err)
	}

	rt, err := getRuntime(logger)
	if err != nil {
		return newToolResultError(err)
	}

	path, err := rt.resolver.Resolve(req.FilePath)
	if err != nil {
		return newToolResultError(err)
	}

	doc, err := document.Open(path)
	if err != nil {
		return newToolResultError(err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close PDF document")
		}
	}()

	totalPages := doc.PageCount()
	pages, err := extraction.SelectPages(req.StartPage, req.EndPage, totalPages)
	if err != nil {
		return newToolResultError(err)
	}

	logger.WithFields(logrus.Fields{
		"file":        filepath.Base(path),
		"total_pages": totalPages,
		"pages":       len(pages),
		"force_ocr":   forceOCR,
	}).Debug("Extracting text from PDF")

	results := rt.engine.ExtractText(ctx, doc, pages, extraction.Options{
		ForceOCR: forceOCR,
		Language: req.Language,
		DPI:      req.DPI,
	})

	return newToolResultJSON(textResponse{
		Status:     "ok",
		File:       filepath.Base(path),
		TotalPages: totalPages,
		Pages:      results,
	})
}

// ProvideExtendedInfo provides detailed usage information for the tool
func (t *ReadTextTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Read a whole PDF",
				Arguments: map[string]interface{}{
					"file_path": "/home/user/documents/report.pdf",
				},
				ExpectedResult: "Returns every page's text in order, each tagged with whether it came from the native text layer or OCR",
			},
			{
				Description: "Read a section of a large document",
				Arguments: map[string]interface{}{
					"file_path":  "manual.pdf",
					"start_page": 3,
					"end_page":   10,
				},
				ExpectedResult: "Returns pages 3 through 10. The relative path resolves against PDF_DIR",
			},
		},
		CommonPatterns: []string{
			"Use start_page/end_page to sample a large document before reading all of it",
			"Check each page's source field: ocr indicates a scanned page, so expect recognition noise",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "config_error: relative path given but no base directory configured",
				Solution: "Set the PDF_DIR environment variable to the directory holding your PDFs, or pass an absolute file_path.",
			},
			{
				Problem:  "Pages come back with source=ocr and garbled text",
				Solution: "The page has no usable text layer and was OCRed. Try read_pdf_ocr with a higher dpi or the correct language code.",
			},
		},
		ParameterDetails: map[string]string{
			"file_path":  "Path to a .pdf file. Absolute, or relative to PDF_DIR.",
			"start_page": "1-based first page. Values below 1 are clamped to 1.",
			"end_page":   "Inclusive last page. Values beyond the document are clamped to the last page.",
		},
		WhenToUse:    "Reading the content of text-based PDFs, or mixed documents where only some pages are scanned.",
		WhenNotToUse: "Extracting embedded images (use extract_pdf_images) or forcing OCR on every page (use read_pdf_ocr).",
	}
}
