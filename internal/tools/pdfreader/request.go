package pdfreader

import (
	"math"
	"strings"

	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
)

// request carries the parsed, common tool arguments.
type request struct {
	FilePath  string
	StartPage *int
	EndPage   *int

	// OCR-only knobs (read_pdf_ocr).
	Language string
	DPI      int
}

// parseRequest validates the raw MCP arguments shared by all three tools.
func parseRequest(args map[string]interface{}) (*request, error) {
	filePath, ok := args["file_path"].(string)
	if !ok || strings.TrimSpace(filePath) == "" {
		return nil, pdferr.New(pdferr.KindInvalidInput, "missing or invalid required parameter: file_path")
	}

	req := &request{FilePath: filePath}

	start, err := parsePageArg(args, "start_page")
	if err != nil {
		return nil, err
	}
	req.StartPage = start

	end, err := parsePageArg(args, "end_page")
	if err != nil {
		return nil, err
	}
	req.EndPage = end

	if language, ok := args["language"].(string); ok && language != "" {
		req.Language = language
	}
	if dpi, ok, err := intArg(args, "dpi"); err != nil {
		return nil, err
	} else if ok {
		if dpi < 72 || dpi > 1200 {
			return nil, pdferr.New(pdferr.KindInvalidInput, "dpi must be between 72 and 1200, got %d", dpi)
		}
		req.DPI = dpi
	}

	return req, nil
}

// parsePageArg reads an optional page number. Out-of-bounds values are not
// rejected here: range normalisation clamps them against the open document.
func parsePageArg(args map[string]interface{}, name string) (*int, error) {
	value, ok, err := intArg(args, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &value, nil
}

// intArg reads an optional integer argument. JSON numbers arrive as float64;
// fractional values are rejected rather than truncated.
func intArg(args map[string]interface{}, name string) (int, bool, error) {
	raw, present := args[name]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false, pdferr.New(pdferr.KindInvalidInput, "%s must be an integer, got %v", name, v)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	default:
		return 0, false, pdferr.New(pdferr.KindInvalidInput, "%s must be an integer", name)
	}
}
