// Package pdfreader implements the PDF inspection tools exposed over MCP:
// read_pdf_text, read_pdf_ocr and extract_pdf_images. The three tools share
// one pipeline: resolve the file reference, open the document for the
// duration of the call, select the page range, then extract.
package pdfreader

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mcptools/mcp-pdf-reader/internal/config"
	"github.com/mcptools/mcp-pdf-reader/internal/extraction"
	"github.com/mcptools/mcp-pdf-reader/internal/ocr"
	"github.com/mcptools/mcp-pdf-reader/internal/pdferr"
	"github.com/mcptools/mcp-pdf-reader/internal/registry"
	"github.com/mcptools/mcp-pdf-reader/internal/resolver"
)

func init() {
	registry.Register(&ReadTextTool{})
	registry.Register(&ReadOCRTool{})
	registry.Register(&ExtractImagesTool{})
}

// runtime bundles the shared, immutable per-process collaborators. It is
// built once on first use so that a broken configuration surfaces as a
// structured tool error instead of killing the server at startup.
type runtime struct {
	cfg      *config.Config
	resolver *resolver.Resolver
	engine   *extraction.Engine
}

var (
	runtimeOnce sync.Once
	sharedRT    *runtime
	runtimeErr  error
)

func getRuntime(logger *logrus.Logger) (*runtime, error) {
	runtimeOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			runtimeErr = pdferr.Wrap(pdferr.KindConfig, err, "invalid configuration")
			return
		}
		sharedRT = &runtime{
			cfg:      cfg,
			resolver: resolver.New(cfg.BaseDir, cfg.MaxFileSize),
			engine: extraction.NewEngine(
				ocr.New(), logger,
				cfg.MinTextChars, cfg.OCRLanguage, cfg.OCRDPI, cfg.OCRTimeout,
			),
		}
	})
	return sharedRT, runtimeErr
}
