// Command mcp-demo registers a couple of tools on an MCP server and
// drives sample protocol envelopes through it, printing each response.
// It exists to show the registration and dispatch surface; it speaks
// no transport.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/YoavGenish/mcp-toolkit/pkg/mcp"
	"gopkg.in/yaml.v3"
)

// config controls the demo server's identity and logging.
type config struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	LogLevel string `yaml:"log_level"`
}

// loadConfig reads a YAML config file, falling back to defaults when
// no path is given.
func loadConfig(path string) (result config, err error) {
	result = config{
		Name:     "Demo Server",
		Version:  "1.0.0",
		LogLevel: "info",
	}

	if path == "" {
		return result, err
	}

	var data []byte

	data, err = os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("reading config: %w", err)
		return result, err
	}

	err = yaml.Unmarshal(data, &result)
	if err != nil {
		err = fmt.Errorf("parsing config: %w", err)
		return result, err
	}

	return result, err
}

// logLevel maps a config level name onto a slog level.
func logLevel(name string) (result slog.Level) {
	switch strings.ToLower(name) {
	case "debug":
		result = slog.LevelDebug
	case "warn", "warning":
		result = slog.LevelWarn
	case "error":
		result = slog.LevelError
	default:
		result = slog.LevelInfo
	}

	return result
}

type greetArgs struct {
	Name string `json:"name" doc:"Name of the person to greet"`
}

// greet builds a welcome message.
func greet(args greetArgs) (result string) {
	result = fmt.Sprintf("Hello, %s! Welcome aboard.", args.Name)
	return result
}

type addArgs struct {
	X int `json:"x" doc:"First addend"`
	Y int `json:"y" doc:"Second addend"`
}

// add sums two integers.
func add(args addArgs) (result int) {
	result = args.X + args.Y
	return result
}

func main() {
	cfg, err := loadConfig(os.Getenv("MCP_DEMO_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	server := mcp.NewServer(cfg.Name, cfg.Version, logger)

	server.RegisterTool("Greet", "Generate a greeting message", greet)
	server.RegisterTool("Add", "Add two integers", add)

	logger.Info("demo server ready",
		slog.String("name", cfg.Name),
		slog.Any("tools", server.ListTools()))

	ctx := context.Background()

	requests := []any{
		mcp.Request{JSONRPC: "2.0", Method: "initialize", ID: 1},
		mcp.Request{JSONRPC: "2.0", Method: "tools/list", ID: 2},
		mcp.Request{
			JSONRPC: "2.0",
			Method:  "tools/call",
			ID:      3,
			Params: map[string]any{
				"name":      "greet",
				"arguments": map[string]any{"name": "World"},
			},
		},
		// Legacy direct dispatch: the tool name is the method.
		`{"jsonrpc":"2.0","method":"add","params":{"x":2,"y":3},"id":4}`,
		// Malformed on purpose to show the parse-error envelope.
		`{"jsonrpc":"2.0","method":"add","id":5`,
	}

	for _, req := range requests {
		resp := server.Handle(ctx, req)

		data, marshalErr := json.Marshal(resp)
		if marshalErr != nil {
			logger.Error("failed to marshal response", slog.String("error", marshalErr.Error()))
			os.Exit(1)
		}

		fmt.Println(string(data))
	}
}
