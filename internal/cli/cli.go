// Package cli runs registered tools directly from the command line, without
// an MCP client in the loop. Tools are resolved through the registry and
// executed in-process, which mirrors how the extraction scripts were used
// before they grew an MCP surface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/docworks/mcp-docworks/internal/registry"
)

var (
	toolName  = color.New(color.Bold)
	required  = color.New(color.FgYellow)
	errorText = color.New(color.FgRed)
)

// Runner executes CLI commands against the tool registry.
type Runner struct {
	logger *logrus.Logger
	cache  *sync.Map
	out    io.Writer
	asJSON bool
}

// NewRunner creates a Runner writing to out; asJSON switches rendering from
// plain text to indented JSON.
func NewRunner(logger *logrus.Logger, cache *sync.Map, out io.Writer, asJSON bool) *Runner {
	return &Runner{logger: logger, cache: cache, out: out, asJSON: asJSON}
}

// ListTools prints every enabled tool with the first line of its
// description.
func (r *Runner) ListTools() error {
	tools := registry.GetEnabledTools()

	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	if r.asJSON {
		type entry struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		entries := make([]entry, 0, len(names))
		for _, name := range names {
			entries = append(entries, entry{Name: name, Description: firstLine(tools[name].Definition().Description)})
		}
		return r.writeJSON(entries)
	}

	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", toolName.Sprint(name), firstLine(tools[name].Definition().Description))
	}
	return w.Flush()
}

// HelpTool prints the parameter schema of a single tool.
func (r *Runner) HelpTool(name string) error {
	tool, ok := registry.GetTool(resolveName(name))
	if !ok {
		return unknownToolError(name)
	}
	def := tool.Definition()

	if r.asJSON {
		return r.writeJSON(def)
	}

	fmt.Fprintf(r.out, "Tool: %s\n\n%s\n\n", toolName.Sprint(def.Name), def.Description)

	props := def.InputSchema.Properties
	if len(props) == 0 {
		fmt.Fprintln(r.out, "No parameters.")
		return nil
	}

	requiredSet := make(map[string]bool, len(def.InputSchema.Required))
	for _, p := range def.InputSchema.Required {
		requiredSet[p] = true
	}

	names := make([]string, 0, len(props))
	for p := range props {
		names = append(names, p)
	}
	sort.Strings(names)

	fmt.Fprintln(r.out, "Parameters:")
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, p := range names {
		pType, pDesc := schemaProp(props[p])
		mark := ""
		if requiredSet[p] {
			mark = required.Sprint(" (required)")
		}
		fmt.Fprintf(w, "  --%s\t%s\t%s%s\n", p, pType, firstLine(pDesc), mark)
	}
	return w.Flush()
}

// RunTool executes a tool with flag-style or JSON arguments:
//
//	mcp-docworks run pdf_extract --file-path /docs/report.pdf --pages 1-3
//	mcp-docworks run excel_read '{"file_path": "/data/book.xlsx"}'
func (r *Runner) RunTool(ctx context.Context, name string, args []string) error {
	tool, ok := registry.GetTool(resolveName(name))
	if !ok {
		return unknownToolError(name)
	}
	def := tool.Definition()

	params, err := parseArgs(args, def)
	if err != nil {
		return fmt.Errorf("argument error: %w", err)
	}

	result, err := tool.Execute(ctx, r.logger, r.cache, params)
	if err != nil {
		return fmt.Errorf("%s: %w", errorText.Sprint("tool error"), err)
	}
	return r.render(result)
}

// parseArgs merges --key=value / --key value / --flag arguments and inline
// JSON objects into the tool's argument map, coercing values per the input
// schema. Flags win over JSON on conflict.
func parseArgs(args []string, def mcp.Tool) (map[string]any, error) {
	types := make(map[string]string, len(def.InputSchema.Properties))
	flagToParam := make(map[string]string, len(def.InputSchema.Properties))
	for name, prop := range def.InputSchema.Properties {
		pType, _ := schemaProp(prop)
		types[name] = pType
		flagToParam[strings.ReplaceAll(name, "_", "-")] = name
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

		key := strings.TrimPrefix(arg, "--")
		var raw string
		var haveValue bool
		if k, v, found := strings.Cut(key, "="); found {
			key, raw, haveValue = k, v, true
		}

		param := key
		if actual, ok := flagToParam[key]; ok {
			param = actual
		} else {
			param = strings.ReplaceAll(key, "-", "_")
		}

		if !haveValue {
			if types[param] == "boolean" {
				params[param] = true
				continue
			}
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("flag --%s requires a value", key)
			}
			raw = args[i]
		}
		params[param] = coerce(raw, types[param])
	}
	return params, nil
}

// coerce converts a raw string per the parameter's JSON Schema type.
func coerce(raw, schemaType string) any {
	switch schemaType {
	case "number", "integer":
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// render writes a tool result to the runner's output.
func (r *Runner) render(result *mcp.CallToolResult) error {
	if result == nil {
		return nil
	}
	if r.asJSON {
		return r.writeJSON(result)
	}

	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			fmt.Fprintln(r.out, text.Text)
			continue
		}
		data, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			fmt.Fprintf(r.out, "%+v\n", content)
			continue
		}
		fmt.Fprintln(r.out, string(data))
	}

	if result.IsError {
		return fmt.Errorf("tool returned an error")
	}
	return nil
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveName maps kebab-case names to the snake_case names tools register
// under.
func resolveName(name string) string {
	if _, ok := registry.GetTool(name); ok {
		return name
	}
	return strings.ReplaceAll(name, "-", "_")
}

// unknownToolError suggests the closest registered tool name.
func unknownToolError(name string) error {
	names := registry.GetEnabledToolNames()
	matches := fuzzy.Find(strings.ReplaceAll(name, "-", "_"), names)
	if len(matches) > 0 {
		return fmt.Errorf("unknown tool: %s (did you mean %s?)", name, matches[0].Str)
	}
	return fmt.Errorf("unknown tool: %s (run 'mcp-docworks list' to see available tools)", name)
}

func schemaProp(prop any) (pType, pDesc string) {
	m, ok := prop.(map[string]any)
	if !ok {
		return "", ""
	}
	pType, _ = m["type"].(string)
	pDesc, _ = m["description"].(string)
	return pType, pDesc
}

func firstLine(s string) string {
	if before, _, found := strings.Cut(s, "\n"); found {
		return before
	}
	return s
}
