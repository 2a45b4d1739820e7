package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sammcj/mcp-pdftools/internal/cli"
	"github.com/sammcj/mcp-pdftools/internal/config"
	"github.com/sammcj/mcp-pdftools/internal/registry"
	"github.com/sammcj/mcp-pdftools/internal/server"
	"github.com/sammcj/mcp-pdftools/internal/telemetry"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/sirupsen/logrus"
	ucli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Version information (set during build)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Global resources that need cleanup
// Using atomic operations to prevent race conditions between signal handlers and cleanup
var (
	debugLogFile atomic.Pointer[os.File]
	isStdioMode  atomic.Bool
	errorLog     atomic.Pointer[tools.ToolErrorLogger]
)

const (
	// DefaultMemoryLimit is the default soft memory limit (2GB). Rasterising large documents is
	// the main consumer.
	DefaultMemoryLimit = 2 * 1024 * 1024 * 1024

	memoryLimitEnv = "MCP_PDFTOOLS_MEMORY_LIMIT"
)

// parseLogLevel maps a LOG_LEVEL value to a logrus level, defaulting to info.
func parseLogLevel(value string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "critical", "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// setMemoryLimit configures the Go runtime memory limit
func setMemoryLimit() {
	var memLimit int64 = DefaultMemoryLimit
	if v := os.Getenv(memoryLimitEnv); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			memLimit = parsed
		}
	}
	debug.SetMemoryLimit(memLimit)
}

func main() {
	setMemoryLimit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Discard until the transport is known; stdio must never see log output
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	var shutdownFuncs []func() error
	defer func() {
		performCleanup(logger, shutdownFuncs)
	}()

	app := &ucli.Command{
		Name:    "mcp-pdftools",
		Usage:   "MCP server for PDF processing",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:    "transport",
				Aliases: []string{"t"},
				Value:   "stdio",
				Usage:   "Transport type (stdio, sse, or http)",
			},
			&ucli.StringFlag{
				Name:  "port",
				Value: "18080",
				Usage: "Port to use for HTTP transports (SSE and Streamable HTTP)",
			},
			&ucli.StringFlag{
				Name:  "base-url",
				Value: "http://localhost",
				Usage: "Base URL for HTTP transports",
			},
			&ucli.StringFlag{
				Name:  "endpoint-path",
				Value: "/http",
				Usage: "Endpoint path for Streamable HTTP transport",
			},
			&ucli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: ucli.EnvVars("MCP_PDFTOOLS_CONFIG"),
			},
			&ucli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Dotenv file read before the process environment",
			},
		},
		Commands: []*ucli.Command{
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					fmt.Printf("mcp-pdftools version %s\n", Version)
					fmt.Printf("Commit: %s\n", Commit)
					fmt.Printf("Built: %s\n", BuildDate)
					return nil
				},
			},
			{
				Name:  "cli",
				Usage: "Run tools directly without an MCP client",
				Flags: []ucli.Flag{outputFlag()},
				Commands: []*ucli.Command{
					{
						Name:  "list",
						Usage: "List available tools",
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							runner, err := newRunner(cmd, logger)
							if err != nil {
								return err
							}
							return runner.ListTools()
						},
					},
					{
						Name:      "help",
						Usage:     "Show the parameters of a tool",
						ArgsUsage: "<tool>",
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							if cmd.Args().Len() != 1 {
								return errors.New("usage: mcp-pdftools cli help <tool>")
							}
							runner, err := newRunner(cmd, logger)
							if err != nil {
								return err
							}
							return runner.HelpTool(cmd.Args().First())
						},
					},
					{
						Name:            "run",
						Usage:           "Run a tool with --key=value flags or a JSON object",
						ArgsUsage:       "<tool> [--key=value ...] ['{\"key\": \"value\"}']",
						SkipFlagParsing: true,
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							if cmd.Args().Len() < 1 {
								return errors.New("usage: mcp-pdftools cli run <tool> [args]")
							}
							runner, err := newRunner(cmd, logger)
							if err != nil {
								return err
							}
							return runner.RunTool(ctx, cmd.Args().First(), cmd.Args().Tail())
						},
					},
				},
			},
			{
				Name:  "temp",
				Usage: "Inspect and clean the temp directory",
				Flags: []ucli.Flag{outputFlag()},
				Commands: []*ucli.Command{
					{
						Name:  "list",
						Usage: "List files in the temp directory",
						Flags: []ucli.Flag{
							&ucli.StringFlag{
								Name:  "content-type",
								Usage: "Only list files of this content type, e.g. application/pdf",
							},
						},
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							commands, err := newTempCommands(cmd, logger)
							if err != nil {
								return err
							}
							return commands.List(cmd.String("content-type"))
						},
					},
					{
						Name:      "upload",
						Usage:     "Copy a file, or stdin when the path is - or absent, into the temp directory",
						ArgsUsage: "[path|-]",
						Flags: []ucli.Flag{
							&ucli.StringFlag{
								Name:  "name",
								Usage: "Stored filename, defaulting to the source file's name",
							},
						},
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							commands, err := newTempCommands(cmd, logger)
							if err != nil {
								return err
							}
							src, name := io.Reader(os.Stdin), cmd.String("name")
							if path := cmd.Args().First(); path != "" && path != "-" {
								f, err := os.Open(path)
								if err != nil {
									return err
								}
								defer func() { _ = f.Close() }()
								src = f
								if name == "" {
									name = filepath.Base(path)
								}
							}
							return commands.Upload(ctx, src, name)
						},
					},
					{
						Name:  "cleanup",
						Usage: "Remove files past the retention window",
						Action: func(ctx context.Context, cmd *ucli.Command) error {
							commands, err := newTempCommands(cmd, logger)
							if err != nil {
								return err
							}
							return commands.Cleanup()
						},
					},
				},
			},
		},
		Action: func(cliCtx context.Context, cmd *ucli.Command) error {
			transport := cmd.String("transport")
			isStdioMode.Store(transport == "stdio")

			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			configureLogging(logger, settings, transport)

			if transport != "stdio" {
				logger.Infof("Starting mcp-pdftools version %s (commit: %s, built: %s)",
					Version, Commit, BuildDate)
			}

			shutdownTracer, err := telemetry.InitTracer(logger, settings.ServerName, Version)
			if err != nil {
				logger.WithError(err).Debug("Tracing disabled")
			}
			shutdownMetrics, err := telemetry.InitMetrics(logger, settings.ServerName, Version)
			if err != nil {
				logger.WithError(err).Debug("Metrics disabled")
			}
			shutdownFuncs = append(shutdownFuncs, shutdownTracer, shutdownMetrics)

			errorLogger, err := tools.NewToolErrorLogger(logger, filepath.Dir(settings.LogPath()),
				strings.EqualFold(os.Getenv(tools.ToolErrorsEnv), "true"))
			if err != nil {
				logger.WithError(err).Debug("Failed to initialise tool error logger")
			}
			errorLog.Store(errorLogger)

			services, err := server.NewServices(settings, logger)
			if err != nil {
				return fmt.Errorf("failed to prepare temp directory: %w", err)
			}
			if removed, err := services.Store.Cleanup(time.Time{}); err != nil {
				logger.WithError(err).Warn("Startup cleanup failed")
			} else if removed > 0 {
				logger.WithField("removed", removed).Info("Removed expired temp files")
			}

			r := server.NewRegistry(services, logger, os.Getenv(registry.DisabledToolsEnv))
			mcpSrv := server.New(r, errorLogger, settings, transport)

			port := cmd.String("port")
			logger.WithField("transport", transport).Debug("Starting server")
			switch transport {
			case "stdio":
				return mcpserver.ServeStdio(mcpSrv)
			case "sse":
				logger.WithField("port", port).Debug("Starting SSE server")
				sseServer := mcpserver.NewSSEServer(mcpSrv, mcpserver.WithBaseURL(cmd.String("base-url")))
				return sseServer.Start(":" + port)
			case "http":
				logger.WithField("port", port).Debug("Starting HTTP server")
				return startStreamableHTTPServer(cliCtx, cmd, mcpSrv, logger)
			default:
				return fmt.Errorf("unsupported transport: %s", transport)
			}
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		// Nothing may reach stdout or stderr in stdio mode, even after ServeStdio returns
		if !isStdioMode.Load() {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func outputFlag() *ucli.StringFlag {
	return &ucli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Value:   "text",
		Usage:   "Output format (text or json)",
	}
}

// loadSettings reads configuration using the root command's --config and --env-file.
func loadSettings(cmd *ucli.Command) (config.Settings, error) {
	root := cmd.Root()
	settings, err := config.Load(config.LoadOptions{
		ConfigFile: root.String("config"),
		EnvFile:    root.String("env-file"),
	})
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return settings, nil
}

// configureLogging points logger at the configured log file. Logging always goes to a file so
// the stdio protocol stream stays clean; stdio mode also logs at warn or above only.
func configureLogging(logger *logrus.Logger, settings config.Settings, transport string) {
	level := parseLogLevel(settings.LogLevel)
	if transport == "stdio" && level > logrus.WarnLevel {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	logrus.SetLevel(level)

	fallback := io.Writer(os.Stderr)
	if transport == "stdio" {
		fallback = io.Discard
	}

	logPath := settings.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		logger.SetOutput(fallback)
		logrus.SetOutput(fallback)
		return
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logger.SetOutput(fallback)
		logrus.SetOutput(fallback)
		return
	}

	if previous := debugLogFile.Swap(file); previous != nil {
		_ = previous.Close()
	}
	logger.SetOutput(file)
	logrus.SetOutput(file)
	logger.WithFields(logrus.Fields{"level": level.String(), "path": logPath}).Debug("Logging configured")
}

// newRunner builds the registry for a cli subcommand. Results go to stdout, logs to the log file.
func newRunner(cmd *ucli.Command, logger *logrus.Logger) (*cli.Runner, error) {
	output, settings, err := prepareCommand(cmd, logger)
	if err != nil {
		return nil, err
	}
	services, err := server.NewServices(settings, logger)
	if err != nil {
		return nil, err
	}
	r := server.NewRegistry(services, logger, os.Getenv(registry.DisabledToolsEnv))
	return cli.NewRunner(r, logger, output, os.Stdout), nil
}

func newTempCommands(cmd *ucli.Command, logger *logrus.Logger) (*cli.TempCommands, error) {
	output, settings, err := prepareCommand(cmd, logger)
	if err != nil {
		return nil, err
	}
	services, err := server.NewServices(settings, logger)
	if err != nil {
		return nil, err
	}
	return cli.NewTempCommands(services.Store, output, os.Stdout), nil
}

func prepareCommand(cmd *ucli.Command, logger *logrus.Logger) (cli.OutputFormat, config.Settings, error) {
	output, err := cli.ParseOutputFormat(cmd.String("output"))
	if err != nil {
		return "", config.Settings{}, err
	}
	settings, err := loadSettings(cmd)
	if err != nil {
		return "", config.Settings{}, err
	}
	configureLogging(logger, settings, "cli")
	return output, settings, nil
}

// performCleanup handles cleanup of resources on shutdown
func performCleanup(logger *logrus.Logger, shutdownFuncs []func() error) {
	for _, shutdown := range shutdownFuncs {
		if shutdown == nil {
			continue
		}
		if err := shutdown(); err != nil {
			logger.WithError(err).Debug("Telemetry shutdown failed")
		}
	}

	if errorLogger := errorLog.Load(); errorLogger != nil {
		if err := errorLogger.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close tool error logger")
		}
	}

	// Closed last; the logger may still be writing to it above
	if file := debugLogFile.Load(); file != nil {
		_ = file.Close()
	}
}

// startStreamableHTTPServer configures and starts the Streamable HTTP server with graceful shutdown
func startStreamableHTTPServer(ctx context.Context, cmd *ucli.Command, mcpServer *mcpserver.MCPServer, logger *logrus.Logger) error {
	port := cmd.String("port")
	endpointPath := cmd.String("endpoint-path")
	heartbeatInterval := 30 * time.Second

	logger.Infof("Starting Streamable HTTP server on port %s with endpoint %s", port, endpointPath)

	httpServer := mcpserver.NewStreamableHTTPServer(mcpServer,
		mcpserver.WithEndpointPath(endpointPath),
		mcpserver.WithHeartbeatInterval(heartbeatInterval),
		mcpserver.WithLogger(&logrusAdapter{logger: logger}),
	)

	var handler http.Handler = httpServer
	if telemetry.IsEnabled() {
		handler = otelhttp.NewHandler(httpServer, "mcp")
	}

	mux := http.NewServeMux()
	mux.Handle(endpointPath, handler)

	srv := &http.Server{
		Addr:           ":" + port,
		Handler:        mux,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute, // rasterising large documents can be slow
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case serverErr <- err:
			case <-ctx.Done():
			}
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping HTTP server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown failed")
		return err
	}

	logger.Info("HTTP server stopped gracefully")
	return nil
}

// logrusAdapter adapts logrus.Logger to the mcp-go util.Logger interface
type logrusAdapter struct {
	logger *logrus.Logger
}

func (l *logrusAdapter) Infof(format string, args ...any) {
	l.logger.Infof(format, args...)
}

func (l *logrusAdapter) Errorf(format string, args ...any) {
	l.logger.Errorf(format, args...)
}
