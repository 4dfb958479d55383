package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// handleMessage processes an incoming message and returns the response, if any.
func (s *Server) handleMessage(ctx context.Context, msg *Message) *Message {
	if msg.isRequest() {
		return s.handleRequest(ctx, msg)
	}
	if msg.isNotification() {
		s.handleNotification(msg)
		return nil
	}
	if msg.isResponse() || msg.ID == nil {
		return nil
	}
	return failure(msg.ID, InvalidRequest, "Invalid message: not a request or notification")
}

func (s *Server) handleRequest(ctx context.Context, msg *Message) *Message {
	s.logger.Debug("Handling request", "method", msg.Method, "id", msg.ID)

	params, ok := msg.Params.(map[string]interface{})
	if !ok {
		params = make(map[string]interface{})
	}

	switch msg.Method {
	case "initialize":
		return reply(msg.ID, s.handleInitialize(params))
	case "ping":
		return reply(msg.ID, map[string]interface{}{})
	case "tools/list":
		return reply(msg.ID, map[string]interface{}{"tools": s.GetToolDefinitions()})
	case "tools/call":
		if _, ok := msg.Params.(map[string]interface{}); !ok {
			return failure(msg.ID, InvalidParams, "Invalid params: expected object")
		}
		result, rpcErr := s.handleCallTool(ctx, params)
		if rpcErr != nil {
			return failure(msg.ID, rpcErr.Code, rpcErr.Message)
		}
		return reply(msg.ID, result)
	default:
		return failure(msg.ID, MethodNotFound, fmt.Sprintf("Method not found: %s", msg.Method))
	}
}

func (s *Server) handleNotification(msg *Message) {
	switch msg.Method {
	case "notifications/initialized":
		s.logger.Info("Client initialized")
	default:
		s.logger.Debug("Unknown notification", "method", msg.Method)
	}
}

// InitializeResult represents the result of the initialize request
type InitializeResult struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ServerInfo      ServerInfo             `json:"serverInfo"`
}

// ServerInfo identifies the server to the client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (s *Server) handleInitialize(params map[string]interface{}) *InitializeResult {
	s.logger.Info("MCP server initializing", "clientInfo", params["clientInfo"])
	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		ServerInfo: ServerInfo{Name: "codeaxe", Version: s.version},
	}
}

// handleCallTool runs a tool and wraps its envelope in MCP text content.
// Tool failures are reported inside the result; only unknown tools and bad
// requests become JSON-RPC errors.
func (s *Server) handleCallTool(ctx context.Context, params map[string]interface{}) (interface{}, *RPCError) {
	name, ok := params["name"].(string)
	if !ok || name == "" {
		return nil, &RPCError{Code: InvalidParams, Message: "missing tool name"}
	}
	handler, exists := s.tools[name]
	if !exists {
		return nil, &RPCError{Code: InvalidParams, Message: "unknown tool: " + name}
	}

	args, ok := params["arguments"].(map[string]interface{})
	if !ok {
		args = make(map[string]interface{})
	}
	s.logger.Info("Calling tool", "tool", name, "params", args)

	resp := handler(ctx, args)
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, &RPCError{Code: InternalError, Message: "marshal response: " + err.Error()}
	}
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": string(data)},
		},
		"isError": resp.Failed(),
	}, nil
}
