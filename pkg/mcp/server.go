package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Server dispatches MCP protocol requests to registered tools. One
// instance per host program; register all tools before serving the
// first request. Handle is synchronous and holds no locks, so
// concurrent callers must not mutate the registry mid-flight.
type Server struct {
	name        string
	version     string
	initialized bool
	registry    *Registry
	logger      *slog.Logger
}

// NewServer creates an MCP server with the given identity. A nil
// logger disables logging.
func NewServer(name, version string, logger *slog.Logger) (result *Server) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	result = &Server{
		name:     name,
		version:  version,
		registry: NewRegistry(),
		logger:   logger,
	}

	return result
}

// RegisterTool introspects fn, derives its parameter schema, and
// registers it under the function's declared name. Re-registering a
// name replaces the prior record. The original fn is returned
// unchanged so the host program can keep calling it directly.
//
// Parameter descriptions come from doc tags on the argument struct or
// from "name: text" lines in the description.
func (s *Server) RegisterTool(title, description string, fn any) (result any) {
	tf := introspectTool(fn, description)

	rec := &ToolRecord{
		Name:        tf.name,
		Title:       title,
		Description: description,
		Parameters:  tf.params,
		Required:    tf.required,
		invoke:      tf.invoke,
	}

	s.registry.Register(rec)

	s.logger.Info("registered tool",
		slog.String("tool", rec.Name),
		slog.Int("parameters", len(rec.Parameters)),
		slog.Int("required", len(rec.Required)))

	result = fn
	return result
}

// ListTools returns the names of all registered tools in registration
// order.
func (s *Server) ListTools() (result []string) {
	result = s.registry.Names()
	return result
}

// Initialized reports whether the server has completed the initialize
// handshake (explicitly or through a direct tool call).
func (s *Server) Initialized() (result bool) {
	result = s.initialized
	return result
}

// Handle processes one protocol request and returns the response
// envelope. The request may be a Request value, a map, or serialized
// JSON text (string, []byte, json.RawMessage). Handle never panics:
// every failure category maps to a JSON-RPC error envelope.
func (s *Server) Handle(ctx context.Context, raw any) (resp Response) {
	start := time.Now()
	log := s.logger.With(slog.String("exec_id", uuid.New().String()))

	var reqID any

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "recovered panic during dispatch", slog.Any("panic", r))
			resp = errorResponse(reqID, CodeInternalError, "Internal error",
				fmt.Sprintf("An error occurred during tool execution: %v", r))
		}
	}()

	var req Request

	switch v := raw.(type) {
	case Request:
		req = v

	case *Request:
		if v == nil {
			resp = errorResponse(nil, CodeInvalidRequest, "Invalid Request", "Empty request")
			return resp
		}
		req = *v

	case string:
		if err := json.Unmarshal([]byte(v), &req); err != nil {
			log.WarnContext(ctx, "failed to parse request", slog.String("error", err.Error()))
			resp = errorResponse(nil, CodeParseError, "Parse error", "Invalid JSON")
			return resp
		}

	case []byte:
		if err := json.Unmarshal(v, &req); err != nil {
			log.WarnContext(ctx, "failed to parse request", slog.String("error", err.Error()))
			resp = errorResponse(nil, CodeParseError, "Parse error", "Invalid JSON")
			return resp
		}

	case json.RawMessage:
		if err := json.Unmarshal(v, &req); err != nil {
			log.WarnContext(ctx, "failed to parse request", slog.String("error", err.Error()))
			resp = errorResponse(nil, CodeParseError, "Parse error", "Invalid JSON")
			return resp
		}

	case map[string]any:
		req = requestFromMap(v)

	default:
		resp = errorResponse(nil, CodeInvalidRequest, "Invalid Request",
			fmt.Sprintf("Unsupported request type %T", raw))
		return resp
	}

	// The id is not trusted until the envelope itself validates, so
	// version mismatches always answer with a null id.
	if req.JSONRPC != "2.0" {
		log.WarnContext(ctx, "invalid jsonrpc version", slog.String("version", req.JSONRPC))
		resp = errorResponse(nil, CodeInvalidRequest, "Invalid Request", "Missing or invalid jsonrpc version")
		return resp
	}

	reqID = req.ID
	method := req.Method

	params := req.Params
	if params == nil {
		params = map[string]any{}
	}

	log.InfoContext(ctx, "processing request", slog.String("method", method), slog.Any("id", reqID))

	if method == "" {
		resp = errorResponse(reqID, CodeInvalidRequest, "Invalid Request", "Missing method")
		return resp
	}

	switch method {
	case methodInitialize:
		resp = s.handleInitialize(ctx, reqID)

	case methodInitialized, methodNotifInit:
		resp = successResponse(reqID, map[string]any{})

	case methodToolsList:
		resp = s.handleListTools(ctx, log, reqID)

	case methodToolsCall:
		resp = s.handleToolCall(ctx, log, reqID, params)

	default:
		resp = s.handleDirectCall(ctx, log, reqID, method, params)
	}

	log.InfoContext(ctx, "request completed",
		slog.String("method", method),
		slog.Any("id", reqID),
		slog.Duration("elapsed", time.Since(start)))

	return resp
}

// handleInitialize marks the server initialized and reports its
// capabilities.
func (s *Server) handleInitialize(ctx context.Context, id any) (resp Response) {
	s.initialized = true

	s.logger.InfoContext(ctx, "server initialized",
		slog.String("name", s.name),
		slog.String("version", s.version),
		slog.Int("tools", s.registry.Len()))

	resp = successResponse(id, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capabilities{
			Tools: ToolsCapability{ListChanged: false},
		},
		ServerInfo: ServerInfo{
			Name:    s.name,
			Version: s.version,
		},
	})

	return resp
}

// handleListTools returns every registered tool with its input schema,
// in registration order.
func (s *Server) handleListTools(ctx context.Context, log *slog.Logger, id any) (resp Response) {
	tools := make([]Tool, 0, s.registry.Len())

	for _, name := range s.registry.Names() {
		rec, ok := s.registry.Lookup(name)
		if !ok {
			continue
		}

		properties := make(map[string]Property, len(rec.Parameters))
		for _, p := range rec.Parameters {
			properties[p.Name] = Property{Type: p.Type, Description: p.Description}
		}

		required := rec.Required
		if required == nil {
			required = []string{}
		}

		tools = append(tools, Tool{
			Name:        rec.Name,
			Description: rec.Description,
			InputSchema: InputSchema{
				Type:       "object",
				Properties: properties,
				Required:   required,
			},
		})
	}

	log.InfoContext(ctx, "listed tools", slog.Int("count", len(tools)))

	resp = successResponse(id, map[string]any{"tools": tools})
	return resp
}

// handleToolCall executes a tool through the tools/call method and
// wraps its output in a text content block.
func (s *Server) handleToolCall(ctx context.Context, log *slog.Logger, id any, params map[string]any) (resp Response) {
	name, _ := params["name"].(string)
	if name == "" {
		resp = errorResponse(id, CodeInvalidParams, "Invalid params", "Missing tool name in tools/call")
		return resp
	}

	arguments, _ := params["arguments"].(map[string]any)
	if arguments == nil {
		arguments = map[string]any{}
	}

	rec, ok := s.registry.Lookup(name)
	if !ok {
		resp = errorResponse(id, CodeMethodNotFound, "Method not found", fmt.Sprintf("Tool '%s' not found", name))
		return resp
	}

	if missing := missingParams(rec.Required, arguments); len(missing) > 0 {
		resp = errorResponse(id, CodeInvalidParams, "Invalid params",
			"Missing required parameters: "+strings.Join(missing, ", "))
		return resp
	}

	log.InfoContext(ctx, "executing tool", slog.String("tool", name))

	out, err := rec.invoke(ctx, arguments)
	if err != nil {
		log.ErrorContext(ctx, "tool execution failed", slog.String("tool", name), slog.String("error", err.Error()))
		resp = errorResponse(id, CodeInternalError, "Internal error",
			"An error occurred during tool execution: "+err.Error())
		return resp
	}

	resp = successResponse(id, ToolCallResult{
		Content: []Content{
			{Type: "text", Text: renderText(out)},
		},
	})

	return resp
}

// handleDirectCall executes a tool addressed by its name as the
// envelope method, the legacy calling convention. The result is
// returned raw, without the tools/call content wrapper; existing
// direct callers depend on seeing the tool's return value unwrapped.
func (s *Server) handleDirectCall(ctx context.Context, log *slog.Logger, id any, method string, params map[string]any) (resp Response) {
	if !s.initialized {
		log.InfoContext(ctx, "auto-initializing server for direct tool call")
		s.initialized = true
	}

	rec, ok := s.registry.Lookup(method)
	if !ok {
		resp = errorResponse(id, CodeMethodNotFound, "Method not found", fmt.Sprintf("Tool '%s' not found", method))
		return resp
	}

	if missing := missingParams(rec.Required, params); len(missing) > 0 {
		resp = errorResponse(id, CodeInvalidParams, "Invalid params",
			"Missing required parameters: "+strings.Join(missing, ", "))
		return resp
	}

	log.InfoContext(ctx, "executing tool", slog.String("tool", method))

	out, err := rec.invoke(ctx, params)
	if err != nil {
		log.ErrorContext(ctx, "tool execution failed", slog.String("tool", method), slog.String("error", err.Error()))
		resp = errorResponse(id, CodeInternalError, "Internal error",
			"An error occurred during tool execution: "+err.Error())
		return resp
	}

	resp = successResponse(id, out)
	return resp
}

// missingParams returns the required names absent from the arguments
// map, preserving declaration order.
func missingParams(required []string, arguments map[string]any) (result []string) {
	for _, name := range required {
		if _, present := arguments[name]; !present {
			result = append(result, name)
		}
	}

	return result
}

// requestFromMap extracts envelope fields from an already-decoded
// request object.
func requestFromMap(m map[string]any) (result Request) {
	result.JSONRPC, _ = m["jsonrpc"].(string)
	result.ID = m["id"]
	result.Method, _ = m["method"].(string)

	if params, ok := m["params"].(map[string]any); ok {
		result.Params = params
	}

	return result
}

// renderText renders a tool result as display text for a tools/call
// content block. Strings pass through; composite values render as
// JSON; everything else formats with fmt.
func renderText(v any) (result string) {
	switch t := v.(type) {
	case nil:
		result = "null"
		return result

	case string:
		result = t
		return result

	case fmt.Stringer:
		result = t.String()
		return result
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		if data, err := json.Marshal(v); err == nil {
			result = string(data)
			return result
		}
	}

	result = fmt.Sprint(v)
	return result
}
