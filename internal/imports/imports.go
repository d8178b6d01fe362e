// Package imports registers all tool packages via their init functions.
package imports

import (
	_ "github.com/mcptools/mcp-pdf-reader/internal/tools/pdfreader"
)
