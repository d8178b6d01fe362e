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

// ExtractImagesTool pulls the embedded raster images out of PDF pages and
// returns them base64-encoded with their mime types.
type ExtractImagesTool struct{}

// Definition returns the tool's definition for MCP registration
func (t *ExtractImagesTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"extract_pdf_images",
		mcp.WithDescription(`Extract embedded images from PDF pages. Returns each image base64-encoded with its mime type, dimensions and position on the page.`),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Path to the PDF file. Relative paths resolve against the PDF_DIR base directory"),
		),
		mcp.WithNumber("start_page",
			mcp.Description("First page to scan (1-based, default: 1)"),
		),
		mcp.WithNumber("end_page",
			mcp.Description("Last page to scan, inclusive (default: last page of the document)"),
		),
	)
}

// Execute extracts embedded images from the selected pages
func (t *ExtractImagesTool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]interface{}) (*mcp.CallToolResult, error) {
	logger.Debug("Executing extract_pdf_images tool")

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

	images, pageErrors := rt.engine.ExtractImages(doc, pages)

	imageCount := 0
	for _, artifacts := range images {
		imageCount += len(artifacts)
	}

	logger.WithFields(logrus.Fields{
		"file":        filepath.Base(path),
		"pages":       len(pages),
		"image_count": imageCount,
	}).Debug("Extracted embedded images from PDF")

	resp := imagesResponse{
		Status:     "ok",
		File:       filepath.Base(path),
		TotalPages: totalPages,
		ImageCount: imageCount,
		Images:     images,
	}
	if len(pageErrors) > 0 {
		resp.PageErrors = pageErrors
	}
	return newToolResultJSON(resp)
}

// ProvideExtendedInfo provides detailed usage information for the tool
func (t *ExtractImagesTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Extract all images from a presentation",
				Arguments: map[string]interface{}{
					"file_path": "/home/user/slides/deck.pdf",
				},
				ExpectedResult: "Returns every embedded image keyed by page number; pages without images map to an empty list",
			},
			{
				Description: "Extract images from specific pages",
				Arguments: map[string]interface{}{
					"file_path":  "paper.pdf",
					"start_page": 1,
					"end_page":   4,
				},
				ExpectedResult: "Scans only pages 1-4, e.g. {\"1\": [], \"4\": [{\"image_id\": \"p4_img1\", ...}]}",
			},
		},
		CommonPatterns: []string{
			"Narrow the page range first with read_pdf_text so you only extract images from pages that need them",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "A page you can see graphics on returns no images",
				Solution: "The graphics may be vector drawings rather than embedded rasters; only raster images are extracted. Consider read_pdf_ocr to capture their text.",
			},
		},
		WhenToUse:    "Pulling figures, photos or scanned page images out of a PDF for separate processing.",
		WhenNotToUse: "Reading text (use read_pdf_text) or rasterising whole pages.",
	}
}
