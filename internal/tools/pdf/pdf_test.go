package pdf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docworks/mcp-docworks/internal/tools/pdf"
)

func TestParseRequest(t *testing.T) {
	tool := &pdf.Tool{}

	tests := []struct {
		name     string
		args     map[string]any
		expected *pdf.Request
		wantErr  string
	}{
		{
			name: "defaults applied",
			args: map[string]any{"file_path": "/docs/report.pdf"},
			expected: &pdf.Request{
				FilePath:        "/docs/report.pdf",
				Pages:           "all",
				IncludeMetadata: true,
				Output:          "json",
			},
		},
		{
			name: "all parameters set",
			args: map[string]any{
				"file_path":        "/docs/report.pdf",
				"pages":            "1-3,7",
				"include_metadata": false,
				"output":           "text",
				"page_breaks":      true,
			},
			expected: &pdf.Request{
				FilePath:        "/docs/report.pdf",
				Pages:           "1-3,7",
				IncludeMetadata: false,
				Output:          "text",
				PageBreaks:      true,
			},
		},
		{
			name: "blank pages falls back to all",
			args: map[string]any{"file_path": "/docs/report.pdf", "pages": "  "},
			expected: &pdf.Request{
				FilePath:        "/docs/report.pdf",
				Pages:           "all",
				IncludeMetadata: true,
				Output:          "json",
			},
		},
		{
			name:    "missing file_path",
			args:    map[string]any{},
			wantErr: "file_path",
		},
		{
			name:    "relative path rejected",
			args:    map[string]any{"file_path": "docs/report.pdf"},
			wantErr: "absolute",
		},
		{
			name:    "non-pdf extension rejected",
			args:    map[string]any{"file_path": "/docs/report.docx"},
			wantErr: ".pdf",
		},
		{
			name:    "unknown output format rejected",
			args:    map[string]any{"file_path": "/docs/report.pdf", "output": "xml"},
			wantErr: "output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.ParseRequest(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDefinition(t *testing.T) {
	def := (&pdf.Tool{}).Definition()

	assert.Equal(t, "pdf_extract", def.Name)
	assert.Contains(t, def.InputSchema.Required, "file_path")
	for _, param := range []string{"file_path", "pages", "include_metadata", "output", "page_breaks"} {
		assert.Contains(t, def.InputSchema.Properties, param)
	}
}
