// Package pdf exposes PDF text extraction as an MCP tool: resolve a page
// selector, pull per-page text, and return the per-page records plus the
// concatenated document text.
package pdf

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"github.com/docworks/mcp-docworks/internal/extract"
	"github.com/docworks/mcp-docworks/internal/pdfdoc"
	"github.com/docworks/mcp-docworks/internal/registry"
	"github.com/docworks/mcp-docworks/internal/security"
	"github.com/docworks/mcp-docworks/internal/tools"
)

// Tool implements PDF text extraction backed by pdfcpu.
type Tool struct{}

func init() {
	registry.Register(&Tool{})
}

// Definition returns the tool's definition for MCP registration.
func (t *Tool) Definition() mcp.Tool {
	return mcp.NewTool(
		"pdf_extract",
		mcp.WithDescription(`Extract text from a PDF document, optionally restricted to a page selection. Returns per-page text with character counts plus the concatenated full text, and can include the document's metadata. Extraction quality depends on the PDF structure; image-only pages come back empty rather than failing.`),
		mcp.WithString("file_path",
			mcp.Required(),
			mcp.Description("Absolute path to the PDF document"),
		),
		mcp.WithString("pages",
			mcp.Description("Pages to extract: 'all', a single page ('3'), or ranges ('1-5,7,9-11'). Page numbers are 1-based"),
			mcp.DefaultString("all"),
		),
		mcp.WithBoolean("include_metadata",
			mcp.Description("Include the PDF's metadata (title, author, dates) in the result (default: true)"),
			mcp.DefaultBool(true),
		),
		mcp.WithString("output",
			mcp.Description("Result format: 'json' for the structured record, 'text' for plain text"),
			mcp.DefaultString("json"),
			mcp.Enum("json", "text"),
		),
		mcp.WithBoolean("page_breaks",
			mcp.Description("With output=text, separate pages with banner markers (default: false)"),
			mcp.DefaultBool(false),
		),
	)
}

// Execute opens the document, runs the extraction, and renders the result.
func (t *Tool) Execute(ctx context.Context, logger *logrus.Logger, cache *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	request, err := t.ParseRequest(args)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"file_path":        request.FilePath,
		"pages":            request.Pages,
		"include_metadata": request.IncludeMetadata,
		"output":           request.Output,
	}).Debug("PDF extraction parameters")

	if err := security.CheckFileAccess(request.FilePath); err != nil {
		return nil, err
	}

	doc, err := pdfdoc.Open(request.FilePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := doc.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Failed to close PDF document")
		}
	}()

	result, err := extract.Extract(doc, request.Pages, extract.Options{
		IncludeMetadata: request.IncludeMetadata,
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"file_path":       request.FilePath,
		"total_pages":     result.TotalPages,
		"extracted_pages": result.ExtractedPages,
		"total_chars":     result.TotalChars,
	}).Debug("PDF extraction completed")

	if request.Output == "text" {
		return mcp.NewToolResultText(extract.Flatten(result, request.PageBreaks)), nil
	}
	return newToolResultJSON(result)
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
	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return nil, fmt.Errorf("file_path must be a PDF file (.pdf extension)")
	}

	request := &Request{
		FilePath:        filePath,
		Pages:           "all",
		IncludeMetadata: true,
		Output:          "json",
	}

	if pages, ok := args["pages"].(string); ok && strings.TrimSpace(pages) != "" {
		request.Pages = pages
	}
	if include, ok := args["include_metadata"].(bool); ok {
		request.IncludeMetadata = include
	}
	if output, ok := args["output"].(string); ok && output != "" {
		if output != "json" && output != "text" {
			return nil, fmt.Errorf("output must be 'json' or 'text', got %q", output)
		}
		request.Output = output
	}
	if breaks, ok := args["page_breaks"].(bool); ok {
		request.PageBreaks = breaks
	}

	return request, nil
}

func newToolResultJSON(data any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// ProvideExtendedInfo provides detailed usage information for the tool.
func (t *Tool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{
		Examples: []tools.ToolExample{
			{
				Description: "Extract the whole document with metadata",
				Arguments: map[string]any{
					"file_path": "/home/user/documents/report.pdf",
				},
				ExpectedResult: "JSON record with per-page text, character counts, concatenated full text, and the PDF's metadata",
			},
			{
				Description: "Extract specific pages only",
				Arguments: map[string]any{
					"file_path": "/home/user/documents/manual.pdf",
					"pages":     "1-5,10,15-20",
				},
				ExpectedResult: "Only pages 1-5, 10, and 15-20 appear in the result; page references past the end of the document are ignored",
			},
			{
				Description: "Plain text with page markers",
				Arguments: map[string]any{
					"file_path":   "/home/user/documents/thesis.pdf",
					"output":      "text",
					"page_breaks": true,
				},
				ExpectedResult: "Plain text output with a 'Page N' banner before each page",
			},
		},
		CommonPatterns: []string{
			"Use a page selection to sample large documents before extracting everything",
			"Pages resolve in ascending order regardless of the order they appear in the selector",
			"An empty text field for a page usually means a scanned or image-only page, not a failure",
		},
		Troubleshooting: []tools.TroubleshootingTip{
			{
				Problem:  "invalid page selector token",
				Solution: "Selectors accept 'all', single pages ('3'), and ranges ('1-5'), comma-separated. Page numbers are plain 1-based integers with no signs.",
			},
			{
				Problem:  "document unreadable error",
				Solution: "The file is missing, exceeds the size limit, or is not parseable as a PDF. The size limit defaults to 200MB and can be raised via PDF_MAX_FILE_SIZE.",
			},
			{
				Problem:  "extracted text is empty or garbled",
				Solution: "Scanned documents carry no text layer; run OCR first. Some PDFs encode text with custom font mappings that cannot be scraped from the content stream.",
			},
		},
		ParameterDetails: map[string]string{
			"pages":            "1-based page selector. Out-of-range references are dropped silently, so '1-100' on a 5 page document extracts pages 1-5.",
			"include_metadata": "Metadata is only present in the result when the document actually carries an info dictionary.",
			"page_breaks":      "Only affects output=text. JSON output always carries per-page records.",
		},
		WhenToUse:    "Extracting text from text-based PDFs, sampling specific pages, or feeding document text into downstream analysis.",
		WhenNotToUse: "Scanned PDFs that need OCR, password-protected documents, or when formatting fidelity matters.",
	}
}
