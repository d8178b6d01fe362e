// Package cli invokes the PDF tools directly from the command line,
// bypassing the MCP server. Tools run in-process via the registry, so no
// host or transport is needed; useful for scripting and for checking a
// document before wiring the server into an agent host.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/mcptools/mcp-pdf-reader/internal/registry"
	"github.com/mcptools/mcp-pdf-reader/internal/tools"
)

// Runner executes tool invocations against the registry.
type Runner struct {
	logger *logrus.Logger
	cache  *sync.Map
}

// NewRunner creates a Runner backed by the given logger and shared cache.
func NewRunner(logger *logrus.Logger, cache *sync.Map) *Runner {
	return &Runner{logger: logger, cache: cache}
}

// ListTools prints the registered tools with their descriptions.
func (r *Runner) ListTools() error {
	names := registry.GetToolNames()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		tool, ok := registry.GetTool(name)
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", name, firstLine(tool.Definition().Description))
	}
	return w.Flush()
}

// HelpTool prints a tool's parameters.
func (r *Runner) HelpTool(name string) error {
	tool, ok := registry.GetTool(resolveName(name))
	if !ok {
		return fmt.Errorf("unknown tool: %s (run 'mcp-pdf-reader tools' to list tools)", name)
	}

	def := tool.Definition()
	fmt.Fprintf(os.Stdout, "Tool: %s\n\n%s\n\n", def.Name, def.Description)

	props := def.InputSchema.Properties
	if len(props) == 0 {
		fmt.Fprintln(os.Stdout, "No parameters.")
		return nil
	}

	required := make(map[string]bool, len(def.InputSchema.Required))
	for _, p := range def.InputSchema.Required {
		required[p] = true
	}

	names := make([]string, 0, len(props))
	for p := range props {
		names = append(names, p)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stdout, "Parameters:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, pName := range names {
		pMap, ok := props[pName].(map[string]any)
		if !ok {
			continue
		}
		pType, _ := pMap["type"].(string)
		pDesc, _ := pMap["description"].(string)
		reqMark := ""
		if required[pName] {
			reqMark = " (required)"
		}
		fmt.Fprintf(w, "  --%s\t%s\t%s%s\n", pName, pType, firstLine(pDesc), reqMark)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if provider, ok := tool.(tools.ExtendedHelpProvider); ok {
		printExtendedHelp(os.Stdout, provider.ProvideExtendedInfo())
	}
	return nil
}

// printExtendedHelp renders a tool's extended usage information: examples,
// common patterns and troubleshooting tips.
func printExtendedHelp(w io.Writer, help *tools.ExtendedHelp) {
	if help == nil {
		return
	}

	if help.WhenToUse != "" {
		fmt.Fprintf(w, "\nWhen to use: %s\n", help.WhenToUse)
	}
	if help.WhenNotToUse != "" {
		fmt.Fprintf(w, "When not to use: %s\n", help.WhenNotToUse)
	}

	if len(help.Examples) > 0 {
		fmt.Fprintln(w, "\nExamples:")
		for _, ex := range help.Examples {
			fmt.Fprintf(w, "  %s:\n", ex.Description)
			if args, err := json.Marshal(ex.Arguments); err == nil {
				fmt.Fprintf(w, "    %s\n", args)
			}
			if ex.ExpectedResult != "" {
				fmt.Fprintf(w, "    -> %s\n", ex.ExpectedResult)
			}
		}
	}

	if len(help.CommonPatterns) > 0 {
		fmt.Fprintln(w, "\nCommon patterns:")
		for _, pattern := range help.CommonPatterns {
			fmt.Fprintf(w, "  - %s\n", pattern)
		}
	}

	if len(help.Troubleshooting) > 0 {
		fmt.Fprintln(w, "\nTroubleshooting:")
		for _, tip := range help.Troubleshooting {
			fmt.Fprintf(w, "  %s\n    %s\n", tip.Problem, tip.Solution)
		}
	}

	if len(help.ParameterDetails) > 0 {
		params := make([]string, 0, len(help.ParameterDetails))
		for p := range help.ParameterDetails {
			params = append(params, p)
		}
		sort.Strings(params)

		fmt.Fprintln(w, "\nParameter notes:")
		for _, p := range params {
			fmt.Fprintf(w, "  %s: %s\n", p, help.ParameterDetails[p])
		}
	}
}

// RunTool executes a tool by name. Arguments are --key=value flags, a single
// JSON object, or both (flags win on conflict).
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	tool, ok := registry.GetTool(resolveName(name))
	if !ok {
		return fmt.Errorf("unknown tool: %s (run 'mcp-pdf-reader tools' to list tools)", name)
	}

	params, err := parseArgs(args, tool.Definition())
	if err != nil {
		return err
	}

	result, err := tool.Execute(ctx, r.logger, r.cache, params)
	if err != nil {
		return fmt.Errorf("tool error: %w", err)
	}
	return renderResult(result)
}

// resolveName maps kebab-case input to the snake_case registered name.
func resolveName(name string) string {
	if _, ok := registry.GetTool(name); ok {
		return name
	}
	return strings.ReplaceAll(name, "-", "_")
}

func parseArgs(args []string, def mcp.Tool) (map[string]any, error) {
	types := make(map[string]string, len(def.InputSchema.Properties))
	for pName, prop := range def.InputSchema.Properties {
		if pMap, ok := prop.(map[string]any); ok {
			if t, ok := pMap["type"].(string); ok {
				types[pName] = t
			}
		}
	}

	params := make(map[string]any)
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(arg), &obj); err != nil {
				return nil, fmt.Errorf("invalid JSON argument: %w", err)
			}
			for k, v := range obj {
				if _, exists := params[k]; !exists {
					params[k] = v
				}
			}
			continue
		}

		if !strings.HasPrefix(arg, "--") {
			return nil, fmt.Errorf("unexpected argument: %s (use --key=value flags or a JSON object)", arg)
		}

		stripped := strings.TrimPrefix(arg, "--")
		key, rawVal, found := strings.Cut(stripped, "=")
		key = strings.ReplaceAll(key, "-", "_")
		if !found {
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", key)
			}
			rawVal = args[i]
		}
		params[key] = coerceValue(rawVal, types[key])
	}

	return params, nil
}

// coerceValue converts a flag string to the type the schema declares.
// Numbers become float64 to match JSON-decoded MCP arguments.
func coerceValue(raw, schemaType string) any {
	if schemaType == "number" || schemaType == "integer" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

func renderResult(result *mcp.CallToolResult) error {
	if result == nil {
		return nil
	}

	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			fmt.Fprintln(os.Stdout, text.Text)
			continue
		}
		data, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stdout, "%+v\n", content)
			continue
		}
		fmt.Fprintln(os.Stdout, string(data))
	}

	if result.IsError {
		return fmt.Errorf("tool returned an error")
	}
	return nil
}

func firstLine(s string) string {
	if before, _, found := strings.Cut(s, "\n"); found {
		return before
	}
	return s
}
