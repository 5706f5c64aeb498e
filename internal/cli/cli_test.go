package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docworks/mcp-docworks/internal/registry"
)

// stubTool echoes its arguments back as JSON so tests can see exactly what
// parseArgs produced.
type stubTool struct{}

func (t *stubTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"stub_echo",
		mcp.WithDescription("Echo arguments back.\nSecond line that list output must not show."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Text to echo"),
		),
		mcp.WithBoolean("loud",
			mcp.Description("Uppercase the echo"),
		),
		mcp.WithNumber("repeat",
			mcp.Description("Times to repeat"),
		),
	)
}

func (t *stubTool) Execute(_ context.Context, _ *logrus.Logger, _ *sync.Map, args map[string]any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func newTestRunner(out io.Writer, asJSON bool) *Runner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRunner(logger, &sync.Map{}, out, asJSON)
}

func TestMain(m *testing.M) {
	color.NoColor = true
	registry.Init(logrus.New())
	registry.Register(&stubTool{})
	m.Run()
}

func TestListToolsShowsFirstDescriptionLine(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestRunner(&out, false).ListTools())

	assert.Contains(t, out.String(), "stub_echo")
	assert.Contains(t, out.String(), "Echo arguments back.")
	assert.NotContains(t, out.String(), "Second line")
}

func TestHelpToolListsParameters(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newTestRunner(&out, false).HelpTool("stub_echo"))

	assert.Contains(t, out.String(), "--message")
	assert.Contains(t, out.String(), "(required)")
	assert.Contains(t, out.String(), "--loud")
}

func TestHelpToolUnknown(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out, false).HelpTool("no_such_tool")
	assert.ErrorContains(t, err, "unknown tool")
}

func TestHelpToolSuggestsClosestName(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out, false).HelpTool("stub_ech")
	assert.ErrorContains(t, err, "did you mean stub_echo?")
}

func TestRunToolWithFlags(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out, false).RunTool(context.Background(), "stub_echo",
		[]string{"--message", "hi", "--loud", "--repeat=3"})
	require.NoError(t, err)

	var args map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &args))
	assert.Equal(t, "hi", args["message"])
	assert.Equal(t, true, args["loud"])
	assert.Equal(t, float64(3), args["repeat"])
}

func TestRunToolResolvesKebabName(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out, false).RunTool(context.Background(), "stub-echo",
		[]string{"--message=hi"})
	assert.NoError(t, err)
}

func TestRunToolWithJSONArgument(t *testing.T) {
	var out bytes.Buffer
	err := newTestRunner(&out, false).RunTool(context.Background(), "stub_echo",
		[]string{`{"message": "from json", "repeat": 2}`})
	require.NoError(t, err)

	var args map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &args))
	assert.Equal(t, "from json", args["message"])
	assert.Equal(t, float64(2), args["repeat"])
}

func TestParseArgs(t *testing.T) {
	def := (&stubTool{}).Definition()

	t.Run("flags override json", func(t *testing.T) {
		params, err := parseArgs([]string{"--message=flag", `{"message": "json"}`}, def)
		require.NoError(t, err)
		assert.Equal(t, "flag", params["message"])
	})

	t.Run("kebab flag maps to snake parameter", func(t *testing.T) {
		params, err := parseArgs([]string{"--message", "x"}, def)
		require.NoError(t, err)
		assert.Equal(t, "x", params["message"])
	})

	t.Run("boolean flag without value", func(t *testing.T) {
		params, err := parseArgs([]string{"--loud"}, def)
		require.NoError(t, err)
		assert.Equal(t, true, params["loud"])
	})

	t.Run("trailing flag without value fails", func(t *testing.T) {
		_, err := parseArgs([]string{"--message"}, def)
		assert.ErrorContains(t, err, "requires a value")
	})

	t.Run("bare argument fails", func(t *testing.T) {
		_, err := parseArgs([]string{"oops"}, def)
		assert.ErrorContains(t, err, "unexpected argument")
	})

	t.Run("invalid json fails", func(t *testing.T) {
		_, err := parseArgs([]string{`{"broken`}, def)
		assert.ErrorContains(t, err, "invalid JSON")
	})
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(7), coerce("7", "number"))
	assert.Equal(t, 1.5, coerce("1.5", "number"))
	assert.Equal(t, true, coerce("true", "boolean"))
	assert.Equal(t, "abc", coerce("abc", "string"))
	assert.Equal(t, "notanumber", coerce("notanumber", "number"))
}
