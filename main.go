package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	doccli "github.com/docworks/mcp-docworks/internal/cli"
	"github.com/docworks/mcp-docworks/internal/registry"
	"github.com/docworks/mcp-docworks/internal/security"

	// Import all tool packages to register them
	_ "github.com/docworks/mcp-docworks/internal/imports"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// logFile is the open debug log, stored atomically so cleanup and signal
// handling don't race.
var (
	logFile     atomic.Pointer[os.File]
	isStdioMode atomic.Bool
)

// parseLogLevel reads LOG_LEVEL, defaulting to warn.
func parseLogLevel() logrus.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.WarnLevel
	}
}

func main() {
	// Pick up a .env for local runs; absence is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Discard output until the transport mode is known; stdio transports
	// can't tolerate stray writes on stdout or stderr.
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(parseLogLevel())
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	registry.Init(logger)

	defer func() {
		if file := logFile.Load(); file != nil {
			_ = file.Close()
		}
	}()

	app := &cli.App{
		Name:    "mcp-docworks",
		Usage:   "MCP server for document text extraction",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Value:   "stdio",
				Usage:   "Transport type (stdio, sse, or http)",
			},
			&cli.StringFlag{
				Name:  "port",
				Value: "18080",
				Usage: "Port for HTTP transports (SSE and Streamable HTTP)",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost",
				Usage: "Base URL for HTTP transports",
			},
			&cli.StringFlag{
				Name:  "endpoint-path",
				Value: "/http",
				Usage: "Endpoint path for Streamable HTTP transport",
			},
			&cli.DurationFlag{
				Name:  "session-timeout",
				Value: 30 * time.Minute,
				Usage: "Session timeout for Streamable HTTP transport",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(c *cli.Context) error {
					fmt.Printf("mcp-docworks version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List available tools",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(c *cli.Context) error {
					return newRunner(c, logger).ListTools()
				},
			},
			{
				Name:      "help-tool",
				Usage:     "Show a tool's parameters",
				ArgsUsage: "<tool>",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return fmt.Errorf("usage: mcp-docworks help-tool <tool>")
					}
					return newRunner(c, logger).HelpTool(c.Args().First())
				},
			},
			{
				Name:            "run",
				Usage:           "Run a tool directly, without an MCP client",
				ArgsUsage:       "<tool> [--param value ... | '{json}']",
				SkipFlagParsing: true,
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return fmt.Errorf("usage: mcp-docworks run <tool> [args]")
					}
					return newRunner(c, logger).RunTool(c.Context, c.Args().First(), c.Args().Tail())
				},
			},
		},
		Action: func(c *cli.Context) error {
			return serve(c, logger)
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		// In stdio mode nothing may be written to stdout or stderr; the
		// MCP client owns both streams.
		if !isStdioMode.Load() {
			logger.Fatalf("Error: %v", err)
		}
		os.Exit(1)
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Render output as JSON",
	}
}

// newRunner prepares a CLI runner with terminal logging, since the direct
// commands never speak the MCP protocol.
func newRunner(c *cli.Context, logger *logrus.Logger) *doccli.Runner {
	logger.SetOutput(os.Stderr)
	security.InitGlobal(logger)
	return doccli.NewRunner(logger, registry.GetCache(), os.Stdout, c.Bool("json"))
}

// serve configures logging for the chosen transport and starts the MCP
// server.
func serve(c *cli.Context, logger *logrus.Logger) error {
	transport := c.String("transport")
	isStdioMode.Store(transport == "stdio")

	configureLogging(logger, transport)
	security.InitGlobal(logger)

	if transport != "stdio" {
		logger.Infof("Starting mcp-docworks version %s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}

	mcpSrv := mcpserver.NewMCPServer("mcp-docworks", Version)

	enabledTools := registry.GetEnabledTools()
	logger.WithField("tool_count", len(enabledTools)).Debug("Registering tools with MCP server")

	for toolName, toolImpl := range enabledTools {
		name := toolName
		tool := toolImpl

		if transport != "stdio" {
			logger.Infof("Registering tool: %s", name)
		}

		mcpSrv.AddTool(tool.Definition(), func(toolCtx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			currentTool, ok := registry.GetTool(name)
			if !ok {
				return nil, fmt.Errorf("tool not found: %s", name)
			}

			args, ok := request.Params.Arguments.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid arguments type: expected map[string]any, got %T", request.Params.Arguments)
			}

			result, err := currentTool.Execute(toolCtx, registry.GetLogger(), registry.GetCache(), args)
			if err != nil {
				if transport != "stdio" {
					logger.WithError(err).Errorf("Tool execution failed: %s", name)
				}
				return nil, fmt.Errorf("tool execution failed: %w", err)
			}
			return result, nil
		})
	}

	logger.WithField("transport", transport).Debug("Starting server")
	switch transport {
	case "stdio":
		return mcpserver.ServeStdio(mcpSrv)
	case "sse":
		sseServer := mcpserver.NewSSEServer(mcpSrv, mcpserver.WithBaseURL(c.String("base-url")+"/sse"))
		return sseServer.Start(":" + c.String("port"))
	case "http":
		return startStreamableHTTPServer(c, mcpSrv, logger)
	default:
		return fmt.Errorf("unsupported transport: %s", transport)
	}
}

// configureLogging sends log output to a file under the user's home
// directory. Stdio transports must keep stdout and stderr clean for the MCP
// protocol, so on any failure the fallback there is io.Discard, not stderr.
func configureLogging(logger *logrus.Logger, transport string) {
	logLevel := parseLogLevel()
	if transport == "stdio" && logLevel < logrus.WarnLevel {
		logLevel = logrus.WarnLevel
	}
	logger.SetLevel(logLevel)
	logrus.SetLevel(logLevel)

	out := io.Writer(os.Stderr)
	if transport == "stdio" {
		out = io.Discard
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		logDir := filepath.Join(homeDir, ".mcp-docworks", "logs")
		if err := os.MkdirAll(logDir, 0700); err == nil {
			path := filepath.Join(logDir, "mcp-docworks.log")
			if file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
				logFile.Store(file)
				out = file
			}
		}
	}

	logger.SetOutput(out)
	logrus.SetOutput(out)
	logger.WithField("level", logLevel.String()).Debug("Logging configured")
}

// startStreamableHTTPServer starts the Streamable HTTP transport.
func startStreamableHTTPServer(c *cli.Context, mcpSrv *mcpserver.MCPServer, logger *logrus.Logger) error {
	port := c.String("port")
	endpointPath := c.String("endpoint-path")
	sessionTimeout := c.Duration("session-timeout")

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(endpointPath),
		mcpserver.WithLogger(&logrusAdapter{logger: logger}),
		mcpserver.WithSessionIdManager(&uuidSessionManager{logger: logger}),
	}

	heartbeatInterval := 30 * time.Second
	if sessionTimeout > 0 {
		heartbeatInterval = sessionTimeout / 4
	}
	opts = append(opts, mcpserver.WithHeartbeatInterval(heartbeatInterval))

	logger.Infof("Starting Streamable HTTP server on port %s with endpoint %s", port, endpointPath)
	httpServer := mcpserver.NewStreamableHTTPServer(mcpSrv, opts...)
	return httpServer.Start(":" + port)
}

// uuidSessionManager issues random session IDs for the Streamable HTTP
// transport.
type uuidSessionManager struct {
	logger *logrus.Logger
}

func (s *uuidSessionManager) Generate() string {
	return "mcp-docworks-" + uuid.NewString()
}

func (s *uuidSessionManager) Validate(sessionID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("empty session ID")
	}
	return false, nil
}

func (s *uuidSessionManager) Terminate(sessionID string) (bool, error) {
	s.logger.Debugf("Session terminated: %s", sessionID)
	return true, nil
}

// logrusAdapter adapts logrus.Logger to the mcp-go util.Logger interface.
type logrusAdapter struct {
	logger *logrus.Logger
}

func (l *logrusAdapter) Debugf(format string, args ...any) {
	l.logger.Debugf(format, args...)
}

func (l *logrusAdapter) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *logrusAdapter) Warnf(format string, args ...any) {
	l.logger.Warnf(format, args...)
}

func (l *logrusAdapter) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}
