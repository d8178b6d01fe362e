package pdfreader

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mcptools/mcp-pdf-reader/internal/extraction"
	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// textResponse is the payload for read_pdf_text and read_pdf_ocr.
type textResponse struct {
	Status     string                  `json:"status"`
	File       string                  `json:"file"`
	TotalPages int                     `json:"total_pages"`
	Pages      []extraction.PageResult `json:"pages"`
}

// imagesResponse is the payload for extract_pdf_images.
type imagesResponse struct {
	Status     string                             `json:"status"`
	File       string                             `json:"file"`
	TotalPages int                                `json:"total_pages"`
	ImageCount int                                `json:"image_count"`
	Images     map[int][]extraction.ImageArtifact `json:"images"`
	PageErrors map[int]extraction.PageError       `json:"page_errors,omitempty"`
}

// errorResponse is the uniform failure payload for all tools.
type errorResponse struct {
	Status string      `json:"status"`
	Error  errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// newToolResultJSON creates a new tool result with JSON content
func newToolResultJSON(data any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// newToolResultError wraps a pipeline failure as a structured status=error
// payload. Messages come from the pdferr taxonomy and never carry host
// paths outside the configured base directory.
func newToolResultError(err error) (*mcp.CallToolResult, error) {
	return newToolResultJSON(errorResponse{
		Status: "error",
		Error: errorDetail{
			Kind:    string(pdferr.KindOf(err)),
			Message: pdferr.MessageOf(err),
		},
	})
}
