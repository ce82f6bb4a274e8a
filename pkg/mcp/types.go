// Package mcp exposes ordinary Go functions as remotely invocable tools
// under the MCP (Model Context Protocol) subset of JSON-RPC 2.0. A host
// program constructs a Server, registers its tools, and feeds protocol
// envelopes through Handle; transport is the caller's concern.
package mcp

// ProtocolVersion is the MCP protocol revision this server reports.
const ProtocolVersion = "2024-11-05"

// Protocol built-in methods, handled before direct tool dispatch.
const (
	methodInitialize  = "initialize"
	methodInitialized = "initialized"
	methodNotifInit   = "notifications/initialized"
	methodToolsList   = "tools/list"
	methodToolsCall   = "tools/call"
)

// JSON-RPC 2.0 reserved error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request represents an incoming JSON-RPC request envelope.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id,omitempty"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

// Response represents a JSON-RPC response envelope. Exactly one of
// Result and Error is meaningful; Error non-nil marks a failure.
type Response struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      any          `json:"id,omitempty"`
	Result  any          `json:"result,omitempty"`
	Error   *ErrorObject `json:"error,omitempty"`
}

// ErrorObject carries a JSON-RPC error code, message, and optional
// detail string.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// InitializeResult is the result payload of the initialize method.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Capabilities describes what the server can do.
type Capabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// ToolsCapability describes the server's tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ServerInfo contains server identification.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tool is the tools/list wire representation of a registered tool.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema describes a tool's parameters as a JSON Schema object.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Property is a single entry in an input schema's properties map.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ToolCallResult wraps a tool's output for the tools/call method.
type ToolCallResult struct {
	Content []Content `json:"content"`
}

// Content is a single content block in a tools/call result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
