package tools

import (
	"os"
	"strings"
)

// IsToolEnabled reports whether a tool behind the additional-tools gate has
// been switched on via the ENABLE_ADDITIONAL_TOOLS environment variable
// (comma-separated tool names, case-insensitive, "all" enables everything).
func IsToolEnabled(toolName string) bool {
	enabled := os.Getenv("ENABLE_ADDITIONAL_TOOLS")
	if enabled == "" {
		return false
	}
	if strings.TrimSpace(strings.ToLower(enabled)) == "all" {
		return true
	}

	want := normaliseToolName(toolName)
	for _, name := range strings.Split(enabled, ",") {
		if normaliseToolName(name) == want {
			return true
		}
	}
	return false
}

// normaliseToolName lowercases and folds underscores to hyphens so users can
// write either pdf_extract or pdf-extract.
func normaliseToolName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
}
