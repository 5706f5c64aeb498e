// Package excel exposes spreadsheet reading as an MCP tool: pick a sheet,
// optionally restrict to a cell range, and zip rows against headers into
// records.
package excel

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/docworks/mcp-docworks/internal/registry"
	"github.com/docworks/mcp-docworks/internal/security"
	"github.com/docworks/mcp-docworks/internal/tools"
)

// Tool implements workbook reading backed by excelize.
type Tool struct{}

func init() {
	registry.Register(&Tool{})
}

// Definition returns the tool's definition for MCP registration.
func (t *Tool) Definition() mcp.Tool {
	return mcp.NewTool(
		"excel_read",
		mcp.WithDescription(`Read data from an Excel (.xlsx) workbook. Reads a whole sheet or an A1-notation cell range; with a header row, each data row becomes a column-keyed record.`),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the xlsx workbook"),
		),
		mcp.WithString("sheet",
			mcp.Description("Worksheet name (default: the active sheet)"),
		),
		mcp.WithString("range",
			mcp.Description("Cell range to read in A1 notation, e.g. 'A1:D10' (default: the whole used range)"),
		),
		mcp.WithBoolean("has_header",
			mcp.Description("Treat the first row as column headers (default: true)"),
			mcp.DefaultBool(true),
		),
		mcp.WithString("output",
			mcp.Description("Result format: 'json' for the structured record, 'csv' for comma-separated text"),
			mcp.DefaultString("json"),
			mcp.Enum("json", "csv"),
		),
	)
}

// Execute reads the workbook and renders the result.
func (t *Tool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	request, err := t.ParseRequest(args)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"file_path":  request.FilePath,
		"sheet":      request.Sheet,
		"range":      request.Range,
		"has_header": request.HasHeader,
	}).Debug("Excel read parameters")

	if err := security.CheckFileAccess(request.FilePath); err != nil {
		return nil, err
	}

	response, err := readWorkbook(request, logger)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"sheet":   response.Sheet,
		"rows":    response.Rows,
		"columns": response.Columns,
	}).Debug("Excel read completed")

	if request.Output == "csv" {
		return mcp.NewToolResultText(renderCSV(response)), nil
	}

	jsonBytes, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// ParseRequest validates the raw argument map.
func (t *Tool) ParseRequest(args map[string]any) (*Request, error) {
	filePath, ok := args["file_path"].(string)
	if !ok || filePath == "" {
		return nil, fmt.Errorf("missing or invalid required parameter: file_path")
	}
	if !filepath.IsAbs(filePath) {
		return nil, fmt.Errorf("file_path must be an absolute path")
	}
	if !strings.HasSuffix(strings.ToLower(filePath), ".xlsx") {
		return nil, fmt.Errorf("file_path must be an xlsx workbook (.xlsx extension)")
	}

	request := &Request{
		FilePath:  filePath,
		HasHeader: true,
		Output:    "json",
	}

	if sheet, ok := args["sheet"].(string); ok {
		request.Sheet = sheet
	}
	if cellRange, ok := args["range"].(string); ok {
		request.Range = strings.TrimSpace(cellRange)
	}
	if hasHeader, ok := args["has_header"].(bool); ok {
		request.HasHeader = hasHeader
	}
	if output, ok := args["output"].(string); ok && output != "" {
		if output != "json" && output != "csv" {
			return nil, fmt.Errorf("output must be 'json' or 'csv', got %q", output)
		}
		request.Output = output
	}

	return request, nil
}

// ProvideExtendedInfo provides detailed usage information for the tool.
func (t *Tool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Read a whole sheet with headers",
				Arguments: map[string]any{
					"file_path": "/home/user/data/inventory.xlsx",
				},
				ExpectedResult: "Each row after the first becomes a record keyed by the header row's column names",
			},
			{
				Description: "Read a specific range without headers",
				Arguments: map[string]any{
					"file_path":  "/home/user/data/figures.xlsx",
					"sheet":      "Q3",
					"range":      "B2:D20",
					"has_header": false,
				},
				ExpectedResult: "Rows from the range as positional string arrays",
			},
			{
				Description: "Export a sheet as CSV",
				Arguments: map[string]any{
					"file_path": "/home/user/data/inventory.xlsx",
					"output":    "csv",
				},
				ExpectedResult: "Header line followed by one comma-separated line per row",
			},
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "sheet not found error",
				Solution: "Sheet names are matched exactly, including spaces and case. Omit the sheet parameter to read the workbook's active sheet.",
			},
			{
				Problem:  "rows have fewer values than headers",
				Solution: "Trailing empty cells are trimmed per row; records only carry the columns a row actually has values for.",
			},
		},
		ParameterDetails: map[string]string{
			"range":      "A1 notation, single cells allowed ('B2' reads one cell). The first row of a range is the header row when has_header is set.",
			"has_header": "With headers, data rows zip against the header row; extra cells beyond the headers are dropped.",
		},
		WhenToUse:    "Pulling tabular data out of xlsx workbooks for inspection or downstream processing.",
		WhenNotToUse: "Legacy .xls files, or workbooks needing formula evaluation beyond cached values.",
	}
}
