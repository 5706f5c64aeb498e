// Package registry holds the process-wide tool registry and the shared
// resources (logger, cache) tools execute with. Tool packages register
// themselves from init(), so importing a tool package is what makes it
// available.
package registry

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/docworks/mcp-docworks/internal/tools"
)

var (
	toolRegistry = make(map[string]tools.Tool)

	// disabledTools is the set of names excluded via DISABLED_TOOLS.
	disabledTools = make(map[string]bool)

	logger *logrus.Logger
	cache  *sync.Map
)

// Init wires the shared logger and cache and reads DISABLED_TOOLS. Must run
// before tools execute; tool registration itself may happen earlier.
func Init(l *logrus.Logger) {
	logger = l
	cache = &sync.Map{}
	parseDisabledTools()
}

func parseDisabledTools() {
	disabledTools = make(map[string]bool)
	for _, name := range strings.Split(os.Getenv("DISABLED_TOOLS"), ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		disabledTools[name] = true
		if logger != nil {
			logger.WithField("tool", name).Debug("Tool disabled via DISABLED_TOOLS")
		}
	}
}

// requiresEnablement lists tools that stay dormant until named in
// ENABLE_ADDITIONAL_TOOLS. Destructive or heavyweight tools belong here.
func requiresEnablement(toolName string) bool {
	additionalTools := []string{
		"security",
	}
	want := normalise(toolName)
	for _, name := range additionalTools {
		if normalise(name) == want {
			return true
		}
	}
	return false
}

// ShouldRegisterTool applies, in priority order: explicit disable, the
// tool's enablement requirement, then the default of enabled.
func ShouldRegisterTool(toolName string) bool {
	if disabledTools[toolName] {
		return false
	}
	if requiresEnablement(toolName) {
		return tools.IsToolEnabled(toolName)
	}
	return true
}

// Register adds a tool to the registry unless it is disabled or gated off.
func Register(tool tools.Tool) {
	name := tool.Definition().Name
	if !ShouldRegisterTool(name) {
		if logger != nil {
			logger.WithField("tool", name).Debug("Tool not registered")
		}
		return
	}
	toolRegistry[name] = tool
	if logger != nil {
		logger.WithField("tool", name).Debug("Tool registered")
	}
}

// GetTool retrieves a tool by name; disabled tools report as absent.
func GetTool(name string) (tools.Tool, bool) {
	if disabledTools[name] {
		return nil, false
	}
	tool, ok := toolRegistry[name]
	return tool, ok
}

// GetEnabledTools returns every tool eligible for MCP registration.
func GetEnabledTools() map[string]tools.Tool {
	enabled := make(map[string]tools.Tool)
	for name, tool := range toolRegistry {
		if disabledTools[name] {
			continue
		}
		if requiresEnablement(name) && !tools.IsToolEnabled(name) {
			continue
		}
		enabled[name] = tool
	}
	return enabled
}

// GetEnabledToolNames returns the enabled tool names, sorted.
func GetEnabledToolNames() []string {
	var names []string
	for name := range GetEnabledTools() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetLogger returns the shared logger instance.
func GetLogger() *logrus.Logger {
	return logger
}

// GetCache returns the shared cache instance.
func GetCache() *sync.Map {
	return cache
}

func normalise(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}
