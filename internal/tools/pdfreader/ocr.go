package pdfreader

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/mcptools/mcp-pdf-reader/internal/tools"
)

// ReadOCRTool extracts text by rendering every selected page and running
// OCR, regardless of whether a native text layer exists.
type ReadOCRTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ReadOCRTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"read_pdf_ocr",
		mcp.WithDescription(`Extract text from a PDF using OCR on every page. Use for scanned documents, or when read_pdf_text returns poor results for pages that visibly contain text.`),
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
		mcp.WithString("language",
			mcp.Description("Tesseract language code, e.g. eng, fra, deu, spa, chi_sim. Combine with '+' (eng+fra). Default: eng"),
		),
		mcp.WithNumber("dpi",
			mcp.Description("Render resolution for OCR (default: 300; higher is slower but more accurate)"),
		),
	)
}

// Execute processes the PDF file with OCR forced for every page
func (t *ReadOCRTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	logger.Debug("Executing read_pdf_ocr tool")
	return executeTextExtraction(ctx, logger, args, true)
}

// ProvideExtendedInfo provides detailed usage information for the tool
func (t *ReadOCRTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "OCR a scanned document",
				Arguments: map[string]interface{}{
					"file_path": "/home/user/scans/contract.pdf",
				},
				ExpectedResult: "Returns OCR text for every page, each result tagged source=ocr",
			},
			{
				Description: "OCR a French document at higher resolution",
				Arguments: map[string]interface{}{
					"file_path": "facture.pdf",
					"language":  "fra",
					"dpi":       400,
				},
				ExpectedResult: "Runs Tesseract with French trained data on 400 DPI renders",
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "Per-page ocr_timeout errors on large pages",
				Solution: "Raise the PDF_OCR_TIMEOUT environment variable (seconds), or lower the dpi parameter to speed up recognition.",
			},
			{
				Problem:  "ocr_failure: unsupported OCR language",
				Solution: "Install the Tesseract trained data for that language (e.g. tesseract-ocr-fra) on the server host.",
			},
		},
		ParameterDetails: map[string]string{
			"language": "Tesseract language code(s). The trained data must be installed on the host.",
			"dpi":      "Between 72 and 1200. OCR cost grows roughly with the square of dpi.",
		},
		WhenToUse:    "Scanned PDFs, or pages where the embedded text layer is broken or incomplete.",
		WhenNotToUse: "Text-based PDFs: read_pdf_text is much faster and more accurate there, and falls back to OCR on its own when needed.",
	}
}
