package registry

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docworks/mcp-docworks/internal/tools"
)

type namedTool struct {
	name string
}

func (t *namedTool) Definition() mcp.Tool {
	return mcp.NewTool(t.name, mcp.WithDescription("test tool"))
}

func (t *namedTool) Execute(_ context.Context, _ *logrus.Logger, _ *sync.Map, _ map[string]any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
}

// resetRegistry clears package state so tests don't see tools registered by
// other tests' init functions.
func resetRegistry(t *testing.T) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	Init(logger)
	toolRegistry = make(map[string]tools.Tool)
}

func TestRegisterAndGetTool(t *testing.T) {
	resetRegistry(t)

	Register(&namedTool{name: "alpha"})

	tool, ok := GetTool("alpha")
	require.True(t, ok)
	assert.Equal(t, "alpha", tool.Definition().Name)

	_, ok = GetTool("beta")
	assert.False(t, ok)
}

func TestDisabledToolsAreHidden(t *testing.T) {
	t.Setenv("DISABLED_TOOLS", "alpha, ")
	resetRegistry(t)

	Register(&namedTool{name: "alpha"})
	Register(&namedTool{name: "beta"})

	_, ok := GetTool("alpha")
	assert.False(t, ok)

	names := GetEnabledToolNames()
	assert.Equal(t, []string{"beta"}, names)
}

func TestGatedToolNeedsEnablement(t *testing.T) {
	resetRegistry(t)
	assert.False(t, ShouldRegisterTool("security"))

	t.Setenv("ENABLE_ADDITIONAL_TOOLS", "security")
	assert.True(t, ShouldRegisterTool("security"))
}

func TestGetEnabledToolsExcludesDisabled(t *testing.T) {
	t.Setenv("DISABLED_TOOLS", "beta")
	resetRegistry(t)

	Register(&namedTool{name: "alpha"})
	toolRegistry["beta"] = &namedTool{name: "beta"}

	enabled := GetEnabledTools()
	assert.Contains(t, enabled, "alpha")
	assert.NotContains(t, enabled, "beta")
}
